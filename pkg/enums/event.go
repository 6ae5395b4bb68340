package enums

import "fmt"

// AggregateType names the entity a domain event is about.
type AggregateType string

const (
	AggregateUser        AggregateType = "user"
	AggregateSession     AggregateType = "session"
	AggregateContract    AggregateType = "contract"
	AggregateApplication AggregateType = "application"
)

var validAggregateTypes = []AggregateType{
	AggregateUser,
	AggregateSession,
	AggregateContract,
	AggregateApplication,
}

// IsValid reports whether the value is a known aggregate.
func (a AggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// EventType identifies a domain event emitted after a successful mutation.
type EventType string

const (
	EventUserRegistered       EventType = "user.registered"
	EventSessionStarted       EventType = "session.started"
	EventSessionEnded         EventType = "session.ended"
	EventContractCreated      EventType = "contract.created"
	EventApplicationSubmitted EventType = "application.submitted"
	EventApplicationApproved  EventType = "application.approved"
	EventApplicationRejected  EventType = "application.rejected"
)

var validEventTypes = []EventType{
	EventUserRegistered,
	EventSessionStarted,
	EventSessionEnded,
	EventContractCreated,
	EventApplicationSubmitted,
	EventApplicationApproved,
	EventApplicationRejected,
}

func (e EventType) String() string {
	return string(e)
}

// IsValid reports whether the value is a known EventType.
func (e EventType) IsValid() bool {
	for _, candidate := range validEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEventType converts raw input into an EventType.
func ParseEventType(value string) (EventType, error) {
	for _, candidate := range validEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
