package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is the NATS subject tool call records are published
// to when none is configured.
const DefaultSubject = "flagsweeper.toolcalls"

// NATSSink publishes tool call records as JSON to a NATS subject.
type NATSSink struct {
	conn    *nats.Conn
	subject string
}

// NewNATSSink connects to the NATS server at url and publishes to the
// given subject (DefaultSubject when empty).
func NewNATSSink(url, subject string) (*NATSSink, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	conn, err := nats.Connect(url, nats.Name("flagsweeper-audit"))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATSSink{conn: conn, subject: subject}, nil
}

// Store publishes the record. Delivery is fire-and-forget; the
// context is honored only up to the client's internal flush.
func (s *NATSSink) Store(_ context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode audit record: %w", err)
	}
	return s.conn.Publish(s.subject, data)
}

// Close drains and closes the NATS connection.
func (s *NATSSink) Close() {
	if s.conn == nil {
		return
	}
	_ = s.conn.Drain()
	s.conn.Close()
}
