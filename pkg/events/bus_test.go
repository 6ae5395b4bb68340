package events

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/angelmondragon/agricontract-backend/pkg/db/models"
	"github.com/angelmondragon/agricontract-backend/pkg/enums"
	"github.com/angelmondragon/agricontract-backend/pkg/logger"
)

func TestBusDeliversInSubscriptionOrderAndFilters(t *testing.T) {
	bus := NewBus(nil)
	var seen []string

	bus.Subscribe("all", HandlerFunc(func(ctx context.Context, e DomainEvent) error {
		seen = append(seen, "all:"+string(e.Type))
		return nil
	}))
	bus.Subscribe("approvals", HandlerFunc(func(ctx context.Context, e DomainEvent) error {
		seen = append(seen, "approvals:"+string(e.Type))
		return nil
	}), enums.EventApplicationApproved)

	bus.Publish(context.Background(), DomainEvent{Type: enums.EventContractCreated})
	bus.Publish(context.Background(), DomainEvent{Type: enums.EventApplicationApproved})

	want := []string{
		"all:contract.created",
		"all:application.approved",
		"approvals:application.approved",
	}
	if strings.Join(seen, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected delivery order %v", seen)
	}
}

func TestBusStampsEvents(t *testing.T) {
	bus := NewBus(nil)
	var got DomainEvent
	bus.Subscribe("capture", HandlerFunc(func(ctx context.Context, e DomainEvent) error {
		got = e
		return nil
	}))

	bus.Publish(context.Background(), DomainEvent{Type: enums.EventContractCreated, AggregateID: "5"})

	if got.ID == "" || got.OccurredAt.IsZero() || got.Version != CurrentVersion {
		t.Fatalf("expected id, timestamp and version to be stamped: %+v", got)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus(nil)
	calls := 0
	unsubscribe := bus.Subscribe("counter", HandlerFunc(func(ctx context.Context, e DomainEvent) error {
		calls++
		return nil
	}))

	bus.Publish(context.Background(), DomainEvent{Type: enums.EventSessionStarted})
	unsubscribe()
	bus.Publish(context.Background(), DomainEvent{Type: enums.EventSessionStarted})

	if calls != 1 {
		t.Fatalf("expected 1 delivery, got %d", calls)
	}
}

func TestBusIsolatesFailingSubscribers(t *testing.T) {
	buf := &bytes.Buffer{}
	bus := NewBus(logger.New(logger.Options{ServiceName: "test", Output: buf}))
	delivered := false

	bus.Subscribe("broken", HandlerFunc(func(ctx context.Context, e DomainEvent) error {
		return errors.New("pubsub down")
	}))
	bus.Subscribe("panicky", HandlerFunc(func(ctx context.Context, e DomainEvent) error {
		panic("boom")
	}))
	bus.Subscribe("healthy", HandlerFunc(func(ctx context.Context, e DomainEvent) error {
		delivered = true
		return nil
	}))

	bus.Publish(context.Background(), DomainEvent{Type: enums.EventApplicationRejected})

	if !delivered {
		t.Fatalf("expected healthy subscriber to run")
	}
	if strings.Count(buf.String(), "event subscriber failed") != 2 {
		t.Fatalf("expected both failures logged, got %s", buf.String())
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	event := DomainEvent{
		ID:            "evt-1",
		Type:          enums.EventApplicationApproved,
		AggregateType: enums.AggregateApplication,
		AggregateID:   "42",
		Actor:         &ActorRef{UserID: "user_1", Role: enums.RoleFactory},
		Data: ApplicationApprovedPayload{
			Application:  models.Application{ID: 42, ContractID: 7, Status: enums.ApplicationStatusApproved},
			AutoRejected: []int64{43, 44},
		},
	}

	env, err := event.Envelope()
	if err != nil {
		t.Fatalf("Envelope: %v", err)
	}
	if env.Version != CurrentVersion {
		t.Fatalf("expected default version, got %d", env.Version)
	}

	payload, err := DecodeData[ApplicationApprovedPayload](env)
	if err != nil {
		t.Fatalf("DecodeData: %v", err)
	}
	if payload.Application.ID != 42 || len(payload.AutoRejected) != 2 {
		t.Fatalf("unexpected payload %+v", payload)
	}
}
