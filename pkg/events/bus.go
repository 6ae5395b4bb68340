package events

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/angelmondragon/agricontract-backend/pkg/enums"
	"github.com/angelmondragon/agricontract-backend/pkg/logger"
	"github.com/google/uuid"
)

// Handler reacts to a published event. Returned errors are logged and never
// reach the publisher: the mutation that produced the event is already durable.
type Handler interface {
	Handle(ctx context.Context, event DomainEvent) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event DomainEvent) error

func (f HandlerFunc) Handle(ctx context.Context, event DomainEvent) error {
	return f(ctx, event)
}

// Publisher is the surface the engine and identity service depend on.
type Publisher interface {
	Publish(ctx context.Context, event DomainEvent)
}

type subscription struct {
	seq     int
	name    string
	handler Handler
	types   map[enums.EventType]struct{}
}

func (s subscription) wants(t enums.EventType) bool {
	if len(s.types) == 0 {
		return true
	}
	_, ok := s.types[t]
	return ok
}

// Bus is a synchronous in-process observer registry.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]subscription
	next int
	logg *logger.Logger
	now  func() time.Time
}

// NewBus builds an empty bus; logg may be nil.
func NewBus(logg *logger.Logger) *Bus {
	return &Bus{
		subs: make(map[int]subscription),
		logg: logg,
		now:  time.Now,
	}
}

// Subscribe registers h for the listed event types (all types when none are
// given) and returns a function that removes it.
func (b *Bus) Subscribe(name string, h Handler, types ...enums.EventType) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	seq := b.next
	sub := subscription{seq: seq, name: name, handler: h, types: map[enums.EventType]struct{}{}}
	for _, t := range types {
		sub.types[t] = struct{}{}
	}
	b.subs[seq] = sub

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, seq)
	}
}

// Publish stamps the event and delivers it to matching subscribers in
// subscription order.
func (b *Bus) Publish(ctx context.Context, event DomainEvent) {
	if ctx == nil {
		ctx = context.Background()
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = b.now().UTC()
	}
	if event.Version == 0 {
		event.Version = CurrentVersion
	}

	for _, sub := range b.snapshot(event.Type) {
		if err := b.deliver(ctx, sub, event); err != nil && b.logg != nil {
			logCtx := b.logg.WithFields(ctx, map[string]any{
				"subscriber":   sub.name,
				"event_id":     event.ID,
				"event_type":   event.Type,
				"aggregate_id": event.AggregateID,
			})
			b.logg.Error(logCtx, "event subscriber failed", err)
		}
	}
}

func (b *Bus) snapshot(t enums.EventType) []subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.wants(t) {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (b *Bus) deliver(ctx context.Context, sub subscription, event DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber panic: %v", r)
		}
	}()
	return sub.handler.Handle(ctx, event)
}
