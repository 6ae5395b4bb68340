package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/angelmondragon/agricontract-backend/pkg/events"
	"github.com/angelmondragon/agricontract-backend/pkg/logger"
)

const (
	defaultPublishTimeout = 10 * time.Second
	defaultQueueSize      = 256
)

// ErrForwarderStopped is returned by Handle once Stop has been called.
var ErrForwarderStopped = errors.New("pubsub forwarder stopped")

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type outbound struct {
	ctx context.Context
	msg *gcppubsub.Message
}

// Forwarder publishes every domain event envelope to a Pub/Sub topic from a
// background worker. Handle only enqueues, so commands never wait on the
// broker; Stop drains what is queued.
type Forwarder struct {
	pub     publisher
	logg    *logger.Logger
	timeout time.Duration

	mu      sync.RWMutex
	stopped bool
	queue   chan outbound
	done    chan struct{}
}

// NewForwarder wraps a Pub/Sub publisher handle and starts its worker.
func NewForwarder(p *gcppubsub.Publisher, logg *logger.Logger) (*Forwarder, error) {
	if p == nil {
		return nil, fmt.Errorf("pubsub publisher required")
	}
	return newForwarder(&gcpPublisher{Publisher: p}, logg, defaultQueueSize), nil
}

func newForwarder(p publisher, logg *logger.Logger, size int) *Forwarder {
	if logg == nil {
		logg = logger.Nop()
	}
	f := &Forwarder{
		pub:     p,
		logg:    logg,
		timeout: defaultPublishTimeout,
		queue:   make(chan outbound, size),
		done:    make(chan struct{}),
	}
	go f.run()
	return f
}

// Handle implements events.Handler.
func (f *Forwarder) Handle(ctx context.Context, event events.DomainEvent) error {
	envelope, err := event.Envelope()
	if err != nil {
		return err
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	msg := &gcppubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event_id":       envelope.EventID,
			"event_type":     string(envelope.EventType),
			"aggregate_type": string(envelope.AggregateType),
			"aggregate_id":   envelope.AggregateID,
			"occurred_at":    envelope.OccurredAt.Format(time.RFC3339Nano),
		},
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.stopped {
		return ErrForwarderStopped
	}
	select {
	case f.queue <- outbound{ctx: context.WithoutCancel(ctx), msg: msg}:
		return nil
	default:
		return fmt.Errorf("pubsub forward queue full, dropping %s", envelope.EventID)
	}
}

// Stop rejects new events and waits until queued ones are published.
func (f *Forwarder) Stop() error {
	f.mu.Lock()
	if !f.stopped {
		f.stopped = true
		close(f.queue)
	}
	f.mu.Unlock()
	<-f.done
	return nil
}

func (f *Forwarder) run() {
	defer close(f.done)
	for item := range f.queue {
		if err := f.publish(item); err != nil {
			ctx := f.logg.WithFields(item.ctx, map[string]any{
				"event_id":   item.msg.Attributes["event_id"],
				"event_type": item.msg.Attributes["event_type"],
			})
			f.logg.Error(ctx, "pubsub.forward_failed", err)
		}
	}
}

func (f *Forwarder) publish(item outbound) error {
	ctx, cancel := context.WithTimeout(item.ctx, f.timeout)
	defer cancel()
	result := f.pub.Publish(ctx, item.msg)
	if result == nil {
		return fmt.Errorf("publisher returned nil for event %s", item.msg.Attributes["event_id"])
	}
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish %s: %w", item.msg.Attributes["event_type"], err)
	}
	return nil
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	*gcppubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	return r.PublishResult.Get(ctx)
}
