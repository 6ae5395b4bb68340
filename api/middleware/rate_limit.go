package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/agricontract-backend/api/responses"
	pkgerrors "github.com/angelmondragon/agricontract-backend/pkg/errors"
	"github.com/angelmondragon/agricontract-backend/pkg/logger"
	"golang.org/x/time/rate"
)

// KeyLimiter applies a token bucket per key and periodically evicts idle entries.
type KeyLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu    sync.Mutex
	byKey map[string]*limiterEntry
	hits  uint64
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKeyLimiter returns nil when rps or burst is not positive; a nil limiter allows everything.
func NewKeyLimiter(rps float64, burst int, idleTTL time.Duration) *KeyLimiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &KeyLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		byKey:   make(map[string]*limiterEntry),
	}
}

// Allow reports whether one token can be consumed for key at now.
func (l *KeyLimiter) Allow(key string, now time.Time) bool {
	if l == nil {
		return true
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.byKey[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.byKey[key] = e
	}
	e.lastSeen = now
	allowed := e.limiter.AllowN(now, 1)

	l.hits++
	if l.hits%512 == 0 {
		cutoff := now.Add(-l.idleTTL)
		for k, v := range l.byKey {
			if v.lastSeen.Before(cutoff) {
				delete(l.byKey, k)
			}
		}
	}
	return allowed
}

// RateLimit throttles every request by client IP.
func RateLimit(limiter *KeyLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !limiter.Allow(ip, time.Now()) {
				ctx := r.Context()
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "ip", ip), "api.rate_limit.blocked")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LocalWindowCounter is an in-process WindowCounter for deployments without redis.
// Each scope gets a bucket refilling limit tokens per window.
type LocalWindowCounter struct {
	mu      sync.Mutex
	buckets map[string]*KeyLimiter
	now     func() time.Time
}

func NewLocalWindowCounter() *LocalWindowCounter {
	return &LocalWindowCounter{buckets: make(map[string]*KeyLimiter), now: time.Now}
}

func (c *LocalWindowCounter) FixedWindowAllow(_ context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	if limit <= 0 || window <= 0 {
		return true, 0, nil
	}
	policy := window.String() + "#" + strconv.FormatInt(limit, 10)

	c.mu.Lock()
	l, ok := c.buckets[policy]
	if !ok {
		l = NewKeyLimiter(float64(limit)/window.Seconds(), int(limit), 2*window)
		c.buckets[policy] = l
	}
	c.mu.Unlock()

	if l.Allow(scope, c.now()) {
		return true, 0, nil
	}
	return false, limit + 1, nil
}
