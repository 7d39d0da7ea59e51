// Package telemetry provides append-only sinks for decode events.
//
// Sinks are fire-and-forget relative to resolution: the resolver logs and
// swallows sink errors, so resolution never fails solely because telemetry
// failed.
package telemetry

import (
	"context"

	"go.uber.org/zap"

	"pnr_parser/internal/pnr"
)

// Sink receives one record per resolution attempt.
type Sink interface {
	Record(ctx context.Context, ev pnr.DecodeEvent) error
	Close() error
}

// ConsoleSink is the degraded-mode sink: events go to the structured log.
type ConsoleSink struct {
	log *zap.SugaredLogger
}

// NewConsoleSink creates a sink that logs events instead of persisting them.
func NewConsoleSink(log *zap.SugaredLogger) *ConsoleSink {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ConsoleSink{log: log}
}

func (s *ConsoleSink) Record(_ context.Context, ev pnr.DecodeEvent) error {
	s.log.Infow("decode event",
		"source_hash", ev.SourceHash,
		"token", ev.Token,
		"token_kind", ev.TokenKind,
		"status", ev.Status,
		"target_id", ev.TargetID,
		"target_kind", ev.TargetKind,
		"message", ev.Message,
	)
	return nil
}

func (s *ConsoleSink) Close() error { return nil }

// MultiSink fans an event out to several sinks. A failing sink does not stop
// the others; the first error is returned for logging.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines sinks; nil entries are dropped.
func NewMultiSink(sinks ...Sink) *MultiSink {
	m := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

func (m *MultiSink) Record(ctx context.Context, ev pnr.DecodeEvent) error {
	var first error
	for _, s := range m.sinks {
		if err := s.Record(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m *MultiSink) Close() error {
	var first error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
