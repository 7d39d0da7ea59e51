// Package resolver resolves raw airline/airport code tokens to canonical
// catalog records through a precedence chain of manual overrides, known
// aliases, exact catalog lookups and a pluggable heuristic seam.
package resolver

import (
	"context"

	"pnr_parser/internal/pnr"
)

// AliasEntry is one catalog-declared alternate spelling for an entity,
// read at cache-warm time only.
type AliasEntry struct {
	Alias      string
	TargetID   string
	TargetKind pnr.EntityKind
}

// CatalogStore is the read-only catalog collaborator.
// FindByCode and FindByID return (nil, nil) when no record exists.
type CatalogStore interface {
	// FindByCode looks a code up against the catalog's IATA column first,
	// then ICAO, for the given entity kind.
	FindByCode(ctx context.Context, kind pnr.EntityKind, code string) (*pnr.Entity, error)

	// FindByID fetches an entity by its catalog id.
	FindByID(ctx context.Context, kind pnr.EntityKind, id string) (*pnr.Entity, error)

	// ListAliases returns every entity's alias list.
	ListAliases(ctx context.Context) ([]AliasEntry, error)

	// SuggestByPrefix returns up to limit codes sharing a prefix with the
	// token, used for best-effort suggestions on failed resolutions.
	SuggestByPrefix(ctx context.Context, kind pnr.EntityKind, prefix string, limit int) ([]string, error)
}

// OverrideStore persists human corrections.
type OverrideStore interface {
	ListOverrides(ctx context.Context) ([]pnr.Override, error)
	SaveOverride(ctx context.Context, ov pnr.Override) error
}

// UnknownCodeStore is the ledger of tokens that could not be resolved.
type UnknownCodeStore interface {
	// RecordAttempt upserts the code, incrementing its attempt counter and
	// refreshing last-seen.
	RecordAttempt(ctx context.Context, code, usage string) error
	ListUnknown(ctx context.Context, limit int) ([]pnr.UnknownCode, error)
	MarkResolved(ctx context.Context, code string) error
}

// HeuristicMatcher is the seam for similarity-based fallback matching.
// The shipped implementation always reports no match; the seam exists so a
// real fuzzy matcher can be plugged in without touching the precedence chain.
type HeuristicMatcher interface {
	// Match returns the matched entity and a confidence (0-100), or
	// (nil, 0, nil) when there is no match.
	Match(ctx context.Context, token string, kind pnr.EntityKind) (*pnr.Entity, int, error)
}

// NoopHeuristic is the default, intentionally unimplemented matcher.
type NoopHeuristic struct{}

func (NoopHeuristic) Match(context.Context, string, pnr.EntityKind) (*pnr.Entity, int, error) {
	return nil, 0, nil
}
