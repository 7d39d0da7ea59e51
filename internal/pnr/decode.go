package pnr

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// TokenKind tags what a raw token was extracted as.
type TokenKind string

const (
	TokenAirline TokenKind = "airline"
	TokenAirport TokenKind = "airport"
	TokenCity    TokenKind = "city"
	TokenSegment TokenKind = "segment"
)

// EntityKind identifies a catalog entity family.
type EntityKind string

const (
	KindAirline EntityKind = "airline"
	KindAirport EntityKind = "airport"
	KindCity    EntityKind = "city"
	KindNone    EntityKind = ""
)

// MatchSource identifies which step of the resolution chain produced a result.
type MatchSource string

const (
	SourceOverride   MatchSource = "override"
	SourceExactMatch MatchSource = "exact_match"
	SourceAlias      MatchSource = "alias"
	SourceHeuristic  MatchSource = "heuristic"
	SourceNone       MatchSource = ""
)

// Entity is a canonical catalog record for an airline or airport.
type Entity struct {
	ID      string     `json:"id"`
	Kind    EntityKind `json:"kind"`
	IATA    string     `json:"iata,omitempty"`
	ICAO    string     `json:"icao,omitempty"`
	Name    string     `json:"name"`
	City    string     `json:"city,omitempty"`
	Country string     `json:"country,omitempty"`
	Aliases []string   `json:"aliases,omitempty"`
}

// DecodeResult is the outcome of one resolution attempt.
// Suggestions is only populated on failure.
type DecodeResult struct {
	Success      bool        `json:"success"`
	Type         EntityKind  `json:"type"`
	Data         *Entity     `json:"data"`
	Source       MatchSource `json:"source"`
	Confidence   int         `json:"confidence"` // 0-100
	OriginalCode string      `json:"original_code"`
	Suggestions  []string    `json:"suggestions,omitempty"`
}

// Override is a human-entered correction mapping a raw token directly to a
// catalog record. It takes precedence over all automated matching and is
// never auto-deleted; a superseding correction overwrites the cache entry.
type Override struct {
	ID         string     `json:"id"`
	Token      string     `json:"token"`
	TokenKind  TokenKind  `json:"token_kind"`
	TargetID   string     `json:"target_id"`
	TargetKind EntityKind `json:"target_kind"`
	Reason     string     `json:"reason,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// EventStatus classifies a DecodeEvent.
type EventStatus string

const (
	EventExact     EventStatus = "exact"
	EventOverride  EventStatus = "override"
	EventAlias     EventStatus = "alias"
	EventHeuristic EventStatus = "heuristic"
	EventError     EventStatus = "error"
)

// DecodeEvent is a write-only telemetry record, one per resolution attempt.
type DecodeEvent struct {
	SourceHash string      `json:"source_hash"` // groups events from one parse run
	Token      string      `json:"token"`
	TokenKind  TokenKind   `json:"token_kind"`
	Status     EventStatus `json:"status"`
	TargetID   string      `json:"target_id,omitempty"`
	TargetKind EntityKind  `json:"target_kind,omitempty"`
	Message    string      `json:"message,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// UnknownCode is one row of the unresolved-token ledger.
type UnknownCode struct {
	Code       string    `json:"code"`
	Context    string    `json:"context,omitempty"`
	Attempts   int       `json:"attempts"`
	LastSeenAt time.Time `json:"last_seen_at"`
	Resolved   bool      `json:"resolved"`
}

// SourceHash returns a short non-reversible digest of a source text, used as
// the per-batch grouping key for DecodeEvents.
func SourceHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:8])
}
