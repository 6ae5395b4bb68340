package metrics

import (
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/agricontract-backend/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const outcomeOK = "ok"

// CommandMetrics records every engine and identity command.
type CommandMetrics struct {
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
	events   *prometheus.CounterVec
}

// NewCommandMetrics registers the command metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewCommandMetrics(reg prometheus.Registerer) *CommandMetrics {
	if reg == nil {
		return &CommandMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agricontract_command_duration_seconds",
		Help:    "Duration of marketplace and identity commands in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"command"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agricontract_command_total",
		Help: "Commands executed, by outcome (ok or error code).",
	}, []string{"command", "outcome"})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agricontract_domain_events_total",
		Help: "Domain events published.",
	}, []string{"event_type"})
	reg.MustRegister(duration, outcomes, events)
	return &CommandMetrics{
		duration: duration,
		outcomes: outcomes,
		events:   events,
	}
}

// Observe records the latency and outcome of one command.
func (c *CommandMetrics) Observe(command string, took time.Duration, err error) {
	if c == nil || c.duration == nil {
		return
	}
	command = normalizeLabel(command)
	c.duration.WithLabelValues(command).Observe(took.Seconds())
	c.outcomes.WithLabelValues(command, Outcome(err)).Inc()
}

// IncEvent counts a published domain event.
func (c *CommandMetrics) IncEvent(eventType string) {
	if c == nil || c.events == nil {
		return
	}
	c.events.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// Outcome maps an error to a low-cardinality label.
func Outcome(err error) string {
	if err == nil {
		return outcomeOK
	}
	if typed := pkgerrors.As(err); typed != nil {
		return strings.ToLower(string(typed.Code()))
	}
	return strings.ToLower(string(pkgerrors.CodeInternal))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
