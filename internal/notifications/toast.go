package notifications

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/angelmondragon/agricontract-backend/pkg/enums"
	"github.com/angelmondragon/agricontract-backend/pkg/events"
)

// Toaster prints a one-line confirmation for each user-facing event.
type Toaster struct {
	mu  sync.Mutex
	out io.Writer
}

func NewToaster(out io.Writer) *Toaster {
	return &Toaster{out: out}
}

func (t *Toaster) Handle(_ context.Context, event events.DomainEvent) error {
	msg, ok := Message(event)
	if !ok {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintln(t.out, msg)
	return err
}

// Message returns the confirmation text for an event, if it has one.
func Message(event events.DomainEvent) (string, bool) {
	switch event.Type {
	case enums.EventContractCreated:
		if p, ok := event.Data.(events.ContractCreatedPayload); ok {
			return fmt.Sprintf("Contract for %s created successfully.", p.Contract.Crop), true
		}
	case enums.EventApplicationSubmitted:
		return "Application submitted successfully.", true
	case enums.EventApplicationApproved:
		if p, ok := event.Data.(events.ApplicationApprovedPayload); ok {
			return fmt.Sprintf("Application from %s has been approved. Others auto-rejected.", p.Application.FarmerName), true
		}
	case enums.EventApplicationRejected:
		if p, ok := event.Data.(events.ApplicationRejectedPayload); ok {
			return fmt.Sprintf("Application from %s has been rejected.", p.Application.FarmerName), true
		}
	case enums.EventUserRegistered:
		if p, ok := event.Data.(events.UserRegisteredPayload); ok {
			return fmt.Sprintf("Welcome, %s! Your %s account is ready.", p.Name, p.Role.DisplayName()), true
		}
	case enums.EventSessionEnded:
		return "Logged out.", true
	}
	return "", false
}
