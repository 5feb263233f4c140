// Package publish announces finished comparisons on a NATS subject.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/c360studio/semdoc/diff"
)

// DefaultSubject is the subject prefix used when none is configured.
const DefaultSubject = "semdoc.diff"

// ReportIDHeader carries the report identifier on every message.
const ReportIDHeader = "Semdoc-Report-Id"

// Conn is the part of *nats.Conn the publisher needs.
type Conn interface {
	PublishMsg(msg *nats.Msg) error
	Flush() error
}

// Event is the message body: the report header and totals without the
// structures themselves.
type Event struct {
	ID        uuid.UUID    `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Reference string       `json:"reference"`
	Compared  string       `json:"compared"`
	Identical bool         `json:"identical"`
	Summary   diff.Summary `json:"summary"`
}

// NewEvent extracts the event from a report.
func NewEvent(r *diff.Report) Event {
	return Event{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		Reference: r.Reference,
		Compared:  r.Compared,
		Identical: r.Summary.Identical(),
		Summary:   r.Summary,
	}
}

// Publisher sends report events. Messages go to "<subject>.changed" or
// "<subject>.identical" so subscribers can filter with a wildcard.
type Publisher struct {
	conn    Conn
	subject string
	logger  *slog.Logger
}

// New wraps an existing connection.
func New(conn Conn, subject string, logger *slog.Logger) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{conn: conn, subject: subject, logger: logger}
}

// Connect dials url and returns a publisher with the live connection.
// A zero timeout keeps the client default.
func Connect(url, subject string, timeout time.Duration, logger *slog.Logger) (*Publisher, *nats.Conn, error) {
	opts := []nats.Option{nats.Name("semdoc"), nats.MaxReconnects(5), nats.ReconnectWait(time.Second)}
	if timeout > 0 {
		opts = append(opts, nats.Timeout(timeout))
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	return New(nc, subject, logger), nc, nil
}

// Subject returns the subject an event is published on.
func (p *Publisher) Subject(e Event) string {
	if e.Identical {
		return p.subject + ".identical"
	}
	return p.subject + ".changed"
}

// Publish sends the event for r and flushes the connection.
func (p *Publisher) Publish(ctx context.Context, r *diff.Report) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	e := NewEvent(r)
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := nats.NewMsg(p.Subject(e))
	msg.Data = data
	msg.Header.Set(ReportIDHeader, e.ID.String())

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish to %s: %w", msg.Subject, err)
	}
	if err := p.conn.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	p.logger.Debug("Published comparison",
		slog.String("subject", msg.Subject),
		slog.String("id", e.ID.String()))
	return nil
}
