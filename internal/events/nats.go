package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// natsEnvelope is the wire form of a mirrored event.
type natsEnvelope struct {
	Source string    `json:"source"`
	Event  Event     `json:"event"`
	SentAt time.Time `json:"sent_at"`
}

// NATSForwarder mirrors bus events onto a NATS subject so sibling nodes can
// observe aggregate activity. It is optional: a nil connection disables it.
type NATSForwarder struct {
	conn    *nats.Conn
	subject string
	nodeID  string
	logger  zerolog.Logger
}

// NewNATSForwarder builds a forwarder. Returns nil when conn is nil or the
// subject is empty, which callers treat as "not configured".
func NewNATSForwarder(conn *nats.Conn, subject string, logger zerolog.Logger) *NATSForwarder {
	if conn == nil || subject == "" {
		return nil
	}
	return &NATSForwarder{
		conn:    conn,
		subject: subject,
		nodeID:  uuid.NewString(),
		logger:  logger.With().Str("component", "nats_forwarder").Logger(),
	}
}

// Handle publishes the event to the configured subject.
func (f *NATSForwarder) Handle(_ context.Context, event Event) error {
	payload, err := json.Marshal(natsEnvelope{
		Source: f.nodeID,
		Event:  event,
		SentAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return f.conn.Publish(f.subject, payload)
}
