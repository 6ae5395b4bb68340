package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/angelmondragon/agricontract-backend/pkg/db/models"
	"github.com/angelmondragon/agricontract-backend/pkg/enums"
	"github.com/angelmondragon/agricontract-backend/pkg/events"
	"github.com/angelmondragon/agricontract-backend/pkg/logger"
)

type fakeResult struct {
	err error
}

func (r fakeResult) Get(context.Context) (string, error) {
	return "msg-1", r.err
}

type fakePublisher struct {
	msgs    []*gcppubsub.Message
	ctxErrs []error
	err     error
	block   chan struct{}
}

func (f *fakePublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if f.block != nil {
		<-f.block
	}
	f.msgs = append(f.msgs, msg)
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	return fakeResult{err: f.err}
}

func approvedEvent() events.DomainEvent {
	return events.DomainEvent{
		ID:            "evt-1",
		Type:          enums.EventApplicationApproved,
		AggregateType: enums.AggregateApplication,
		AggregateID:   "3",
		Actor:         &events.ActorRef{UserID: "user_f", Role: enums.RoleFactory},
		Data: events.ApplicationApprovedPayload{
			Application:  models.Application{ID: 3, ContractID: 5, FarmerName: "Asha Patil", Status: enums.ApplicationStatusApproved},
			Contract:     models.Contract{ID: 5, Crop: "Wheat", Status: enums.ContractStatusApproved},
			AutoRejected: []int64{4},
		},
		Version:    events.CurrentVersion,
		OccurredAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestForwarderPublishesEnvelope(t *testing.T) {
	pub := &fakePublisher{}
	f := newForwarder(pub, logger.Nop(), 4)

	if err := f.Handle(context.Background(), approvedEvent()); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if err := f.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if len(pub.msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(pub.msgs))
	}
	msg := pub.msgs[0]
	if msg.Attributes["event_type"] != "application.approved" || msg.Attributes["aggregate_id"] != "3" {
		t.Fatalf("unexpected attributes %v", msg.Attributes)
	}

	var env events.Envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	payload, err := events.DecodeData[events.ApplicationApprovedPayload](env)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Contract.Crop != "Wheat" || len(payload.AutoRejected) != 1 {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestForwarderOutlivesRequestContext(t *testing.T) {
	pub := &fakePublisher{block: make(chan struct{})}
	f := newForwarder(pub, logger.Nop(), 4)

	ctx, cancel := context.WithCancel(context.Background())
	if err := f.Handle(ctx, approvedEvent()); err != nil {
		t.Fatalf("handle: %v", err)
	}
	cancel()
	close(pub.block)
	_ = f.Stop()

	if len(pub.msgs) != 1 {
		t.Fatalf("expected the event to be published after cancel, got %d", len(pub.msgs))
	}
	if pub.ctxErrs[0] != nil {
		t.Fatalf("publish context was cancelled with the request: %v", pub.ctxErrs[0])
	}
}

func TestForwarderLogsPublishError(t *testing.T) {
	var buf bytes.Buffer
	f := newForwarder(&fakePublisher{err: errors.New("unavailable")}, logger.New(logger.Options{Output: &buf}), 4)

	if err := f.Handle(context.Background(), approvedEvent()); err != nil {
		t.Fatalf("handle should only enqueue, got %v", err)
	}
	_ = f.Stop()
	if !strings.Contains(buf.String(), "pubsub.forward_failed") || !strings.Contains(buf.String(), "evt-1") {
		t.Fatalf("expected failure log, got %q", buf.String())
	}
}

func TestForwarderQueueFullAndStopped(t *testing.T) {
	pub := &fakePublisher{block: make(chan struct{})}
	f := newForwarder(pub, logger.Nop(), 1)

	// the worker holds one event inside Publish, the queue holds another
	var queued int
	for i := 0; i < 3; i++ {
		if err := f.Handle(context.Background(), approvedEvent()); err == nil {
			queued++
		}
	}
	if queued < 1 || queued > 2 {
		t.Fatalf("unexpected number of queued events %d", queued)
	}

	close(pub.block)
	_ = f.Stop()
	if len(pub.msgs) != queued {
		t.Fatalf("expected %d published, got %d", queued, len(pub.msgs))
	}
	if err := f.Handle(context.Background(), approvedEvent()); !errors.Is(err, ErrForwarderStopped) {
		t.Fatalf("expected stopped error, got %v", err)
	}
	if err := f.Stop(); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}

func TestNewForwarderRequiresPublisher(t *testing.T) {
	if _, err := NewForwarder(nil, logger.Nop()); err == nil {
		t.Fatal("expected error")
	}
}

func TestMessages(t *testing.T) {
	cases := []struct {
		event events.DomainEvent
		want  string
	}{
		{
			events.DomainEvent{Type: enums.EventContractCreated, Data: events.ContractCreatedPayload{Contract: models.Contract{Crop: "Rice"}}},
			"Contract for Rice created successfully.",
		},
		{
			events.DomainEvent{Type: enums.EventApplicationSubmitted, Data: events.ApplicationSubmittedPayload{}},
			"Application submitted successfully.",
		},
		{approvedEvent(), "Application from Asha Patil has been approved. Others auto-rejected."},
		{
			events.DomainEvent{Type: enums.EventApplicationRejected, Data: events.ApplicationRejectedPayload{Application: models.Application{FarmerName: "Bharat"}}},
			"Application from Bharat has been rejected.",
		},
	}
	for _, tc := range cases {
		got, ok := Message(tc.event)
		if !ok || got != tc.want {
			t.Fatalf("Message(%s) = %q, %v want %q", tc.event.Type, got, ok, tc.want)
		}
	}
	if _, ok := Message(events.DomainEvent{Type: enums.EventSessionStarted}); ok {
		t.Fatal("session.started has no toast")
	}
}

func TestWireDeliversToToasterAndDetaches(t *testing.T) {
	bus := events.NewBus(logger.Nop())
	var out bytes.Buffer
	detach := Wire(bus, Options{Logger: logger.Nop(), Toaster: NewToaster(&out)})

	bus.Publish(context.Background(), approvedEvent())
	if !strings.Contains(out.String(), "Asha Patil has been approved") {
		t.Fatalf("expected toast, got %q", out.String())
	}

	detach()
	out.Reset()
	bus.Publish(context.Background(), approvedEvent())
	if out.Len() != 0 {
		t.Fatalf("expected no output after detach, got %q", out.String())
	}
}
