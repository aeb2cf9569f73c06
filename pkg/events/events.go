// Package events publishes case lifecycle notifications on NATS.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Type string

const (
	CaseCreated       Type = "created"
	CaseUpdated       Type = "updated"
	CaseStatusChanged Type = "status_changed"
	CaseDeleted       Type = "deleted"
)

// Event is the JSON payload of a case notification.
type Event struct {
	Type      Type      `json:"type"`
	CaseID    int64     `json:"case_id"`
	LabID     string    `json:"lab_id"`
	Status    string    `json:"status,omitempty"`
	ActorID   string    `json:"actor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher delivers events best effort. Publish never fails the caller.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Subject is <prefix>.case.<type>.<lab_id>.
func Subject(prefix string, e Event) string {
	parts := []string{"case", string(e.Type), e.LabID}
	if prefix != "" {
		parts = append([]string{prefix}, parts...)
	}
	return strings.Join(parts, ".")
}

type conn interface {
	Publish(subject string, data []byte) error
}

// NatsPublisher publishes on a NATS connection.
type NatsPublisher struct {
	nc     conn
	prefix string
	logger *slog.Logger
}

func NewNatsPublisher(nc *nats.Conn, prefix string, logger *slog.Logger) *NatsPublisher {
	return &NatsPublisher{nc: nc, prefix: prefix, logger: logger.With("component", "events")}
}

func (p *NatsPublisher) Publish(ctx context.Context, e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	subject := Subject(p.prefix, e)

	data, err := json.Marshal(e)
	if err != nil {
		p.logger.ErrorContext(ctx, "encoding event", "subject", subject, "error", err)
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.WarnContext(ctx, "publishing event", "subject", subject, "error", err)
	}
}

// Nop drops every event. Used when NATS is disabled.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}

type counted struct {
	next   Publisher
	events metric.Int64Counter
}

// WithMetrics counts published events by type on the global meter.
func WithMetrics(next Publisher) Publisher {
	events, err := otel.Meter("github.com/Alijeyrad/caseservice/pkg/events").Int64Counter(
		"case_events_total",
		metric.WithDescription("Case events handed to the publisher"),
	)
	if err != nil {
		return next
	}
	return &counted{next: next, events: events}
}

func (c *counted) Publish(ctx context.Context, e Event) {
	c.events.Add(ctx, 1, metric.WithAttributes(attribute.String("type", string(e.Type))))
	c.next.Publish(ctx, e)
}
