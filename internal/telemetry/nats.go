package telemetry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"pnr_parser/internal/pnr"
)

// DefaultSubject is the NATS subject decode events are published on.
const DefaultSubject = "pnr.decode.events"

// NATSSink publishes decode events as JSON on a NATS subject, so downstream
// consumers (dashboards, audit pipelines) can tail resolutions live.
type NATSSink struct {
	conn    *nats.Conn
	subject string
}

// NewNATSSink connects to a NATS server. An empty subject uses DefaultSubject.
func NewNATSSink(url, subject string) (*NATSSink, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	conn, err := nats.Connect(url,
		nats.Name("pnr-parser-telemetry"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSSink{conn: conn, subject: subject}, nil
}

// Record publishes one event. The publish is buffered client-side; errors
// here are marshalling or connection-level only.
func (s *NATSSink) Record(_ context.Context, ev pnr.DecodeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal decode event: %w", err)
	}
	if err := s.conn.Publish(s.subject, payload); err != nil {
		return fmt.Errorf("publish decode event: %w", err)
	}
	return nil
}

// Close drains pending publishes and closes the connection.
func (s *NATSSink) Close() error {
	if err := s.conn.Drain(); err != nil {
		s.conn.Close()
		return err
	}
	return nil
}
