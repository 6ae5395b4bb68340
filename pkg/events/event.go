package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/angelmondragon/agricontract-backend/pkg/enums"
)

// CurrentVersion is stamped on every envelope produced by this service.
const CurrentVersion = 1

// ActorRef identifies who produced the event.
type ActorRef struct {
	UserID string     `json:"userId"`
	Role   enums.Role `json:"role,omitempty"`
}

// DomainEvent is published after a mutation has been committed.
type DomainEvent struct {
	ID            string
	Type          enums.EventType
	AggregateType enums.AggregateType
	AggregateID   string
	Actor         *ActorRef
	Data          any
	Version       int
	OccurredAt    time.Time
}

// Envelope is the stable wire form of a DomainEvent.
type Envelope struct {
	Version       int                 `json:"version"`
	EventID       string              `json:"eventId"`
	EventType     enums.EventType     `json:"eventType"`
	AggregateType enums.AggregateType `json:"aggregateType"`
	AggregateID   string              `json:"aggregateId"`
	OccurredAt    time.Time           `json:"occurredAt"`
	Actor         *ActorRef           `json:"actor,omitempty"`
	Data          json.RawMessage     `json:"data"`
}

// Envelope serializes the event payload.
func (e DomainEvent) Envelope() (Envelope, error) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", e.Type, err)
	}
	version := e.Version
	if version == 0 {
		version = CurrentVersion
	}
	return Envelope{
		Version:       version,
		EventID:       e.ID,
		EventType:     e.Type,
		AggregateType: e.AggregateType,
		AggregateID:   e.AggregateID,
		OccurredAt:    e.OccurredAt,
		Actor:         e.Actor,
		Data:          data,
	}, nil
}

// DecodeData unmarshals an envelope's payload into T.
func DecodeData[T any](env Envelope) (T, error) {
	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("decode %s@v%d: %w", env.EventType, env.Version, err)
	}
	return out, nil
}
