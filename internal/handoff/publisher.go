package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/pinpoint/internal/models"
	"github.com/nats-io/nats.go"
)

// DefaultSubject is where confirmed locations are published.
const DefaultSubject = "booking.location.confirmed"

// ErrEmptyAddress is returned when a location without an address is handed off.
var ErrEmptyAddress = errors.New("confirmed location has no address")

// Conn is the part of a NATS connection used for publishing.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Publisher hands confirmed locations to the next booking step.
// The payload is encoded exactly once as a JSON object.
type Publisher struct {
	conn    Conn
	subject string
	log     *slog.Logger
}

// NewPublisher creates a publisher on an existing connection.
func NewPublisher(conn Conn, subject string, log *slog.Logger) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Publisher{conn: conn, subject: subject, log: log}
}

// Connect dials NATS with reconnects enabled.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("pinpoint"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	return conn, nil
}

// Publish sends location on the configured subject.
func (p *Publisher) Publish(ctx context.Context, location models.ConfirmedLocation) error {
	if location.Address == "" {
		return ErrEmptyAddress
	}

	data, err := json.Marshal(location)
	if err != nil {
		return fmt.Errorf("failed to encode confirmed location: %w", err)
	}

	if err = p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish confirmed location: %w", err)
	}

	p.log.InfoContext(ctx, "Confirmed location published", "subject", p.subject, "address", location.Address)

	return nil
}
