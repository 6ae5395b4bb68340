package notifications

import (
	"context"

	"github.com/angelmondragon/agricontract-backend/pkg/events"
	"github.com/angelmondragon/agricontract-backend/pkg/logger"
	"github.com/angelmondragon/agricontract-backend/pkg/metrics"
)

// LogHandler writes one info line per event.
func LogHandler(logg *logger.Logger) events.Handler {
	return events.HandlerFunc(func(ctx context.Context, event events.DomainEvent) error {
		fields := map[string]any{
			"event_id":       event.ID,
			"event_type":     event.Type,
			"aggregate_type": event.AggregateType,
			"aggregate_id":   event.AggregateID,
		}
		if event.Actor != nil {
			fields["user_id"] = event.Actor.UserID
			fields["actor_role"] = event.Actor.Role
		}
		logg.Info(logg.WithFields(ctx, fields), "domain event published")
		return nil
	})
}

// MetricsHandler counts events by type.
func MetricsHandler(m *metrics.CommandMetrics) events.Handler {
	return events.HandlerFunc(func(_ context.Context, event events.DomainEvent) error {
		m.IncEvent(string(event.Type))
		return nil
	})
}

// Options selects which subscribers Wire attaches.
type Options struct {
	Logger    *logger.Logger
	Metrics   *metrics.CommandMetrics
	Toaster   *Toaster
	Forwarder *Forwarder
}

// Wire subscribes the configured handlers to bus and returns a function that
// detaches all of them.
func Wire(bus *events.Bus, opts Options) func() {
	var cancels []func()
	if opts.Logger != nil {
		cancels = append(cancels, bus.Subscribe("log", LogHandler(opts.Logger)))
	}
	if opts.Metrics != nil {
		cancels = append(cancels, bus.Subscribe("metrics", MetricsHandler(opts.Metrics)))
	}
	if opts.Toaster != nil {
		cancels = append(cancels, bus.Subscribe("toast", opts.Toaster))
	}
	if opts.Forwarder != nil {
		cancels = append(cancels, bus.Subscribe("pubsub", opts.Forwarder))
	}
	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
}
