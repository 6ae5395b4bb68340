package storage

import (
	"context"
	"errors"

	redisclient "github.com/angelmondragon/agricontract-backend/pkg/redis"
)

type redisStore interface {
	Get(ctx context.Context, key string) (string, error)
	Apply(ctx context.Context, sets map[string]string, dels []string) error
}

// RedisKV persists collections as plain string keys; commits run in MULTI/EXEC.
type RedisKV struct {
	client redisStore
}

func NewRedisKV(client redisStore) *RedisKV {
	return &RedisKV{client: client}
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, key)
	if errors.Is(err, redisclient.ErrNil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisKV) Commit(ctx context.Context, sets map[string]string, dels []string) error {
	return r.client.Apply(ctx, sets, dels)
}
