package resolver

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"pnr_parser/internal/pnr"
	"pnr_parser/internal/telemetry"
)

// Confidence levels per resolution source.
const (
	confidenceOverride  = 100
	confidenceAlias     = 95
	confidenceIATAExact = 95
	confidenceICAOExact = 90
)

const suggestionLimit = 5

// cacheTarget is the value half of the override/alias caches.
type cacheTarget struct {
	ID   string
	Kind pnr.EntityKind
}

// Resolver owns the warm override/alias caches and runs the precedence chain.
// Construct once and share; cache reads are guarded for concurrent use, and
// the only write path is SaveOverride.
type Resolver struct {
	catalog   CatalogStore
	overrides OverrideStore
	unknown   UnknownCodeStore
	sink      telemetry.Sink
	heuristic HeuristicMatcher
	log       *zap.SugaredLogger

	mu            sync.RWMutex
	overrideCache map[string]cacheTarget
	aliasCache    map[string]cacheTarget

	now func() time.Time
}

// Options configures optional collaborators.
type Options struct {
	// Heuristic defaults to NoopHeuristic.
	Heuristic HeuristicMatcher

	// Sink defaults to a logger-backed console sink.
	Sink telemetry.Sink

	// Unknown may be nil; failed resolutions are then only logged.
	Unknown UnknownCodeStore

	Logger *zap.SugaredLogger
}

// New builds a Resolver and warms both caches from the stores.
func New(ctx context.Context, catalog CatalogStore, overrides OverrideStore, opts Options) (*Resolver, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	sink := opts.Sink
	if sink == nil {
		sink = telemetry.NewConsoleSink(log)
	}
	heuristic := opts.Heuristic
	if heuristic == nil {
		heuristic = NoopHeuristic{}
	}

	r := &Resolver{
		catalog:       catalog,
		overrides:     overrides,
		unknown:       opts.Unknown,
		sink:          sink,
		heuristic:     heuristic,
		log:           log,
		overrideCache: make(map[string]cacheTarget),
		aliasCache:    make(map[string]cacheTarget),
		now:           time.Now,
	}

	if err := r.warm(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// warm populates the override and alias caches from persistent storage.
func (r *Resolver) warm(ctx context.Context) error {
	rows, err := r.overrides.ListOverrides(ctx)
	if err != nil {
		return fmt.Errorf("warm override cache: %w", err)
	}
	for _, ov := range rows {
		r.overrideCache[cacheKey(ov.TokenKind, ov.Token)] = cacheTarget{ID: ov.TargetID, Kind: ov.TargetKind}
	}

	aliases, err := r.catalog.ListAliases(ctx)
	if err != nil {
		return fmt.Errorf("warm alias cache: %w", err)
	}
	for _, a := range aliases {
		r.aliasCache[cacheKey(tokenKindFor(a.TargetKind), a.Alias)] = cacheTarget{ID: a.TargetID, Kind: a.TargetKind}
	}

	r.log.Infow("resolver caches warmed", "overrides", len(rows), "aliases", len(aliases))
	return nil
}

// cacheKey builds the shared lookup key: tokenKind:lowercase(token).
func cacheKey(kind pnr.TokenKind, token string) string {
	return string(kind) + ":" + strings.ToLower(token)
}

// entityKindFor maps a token kind to the catalog family it resolves against.
// City tokens share the airport code space.
func entityKindFor(kind pnr.TokenKind) pnr.EntityKind {
	switch kind {
	case pnr.TokenAirline:
		return pnr.KindAirline
	default:
		return pnr.KindAirport
	}
}

// tokenKindFor is the inverse mapping used when warming the alias cache.
func tokenKindFor(kind pnr.EntityKind) pnr.TokenKind {
	if kind == pnr.KindAirline {
		return pnr.TokenAirline
	}
	return pnr.TokenAirport
}

// Resolve runs the precedence chain for one token:
// override (100) -> alias (95) -> exact IATA/ICAO match (90-95) -> heuristic
// seam -> failure with best-effort suggestions.
//
// Every attempt emits exactly one DecodeEvent; telemetry or ledger write
// failures never change the returned result.
func (r *Resolver) Resolve(ctx context.Context, token string, kind pnr.TokenKind, sourceHash string) pnr.DecodeResult {
	key := cacheKey(kind, token)

	// 1. Manual override.
	r.mu.RLock()
	target, ok := r.overrideCache[key]
	r.mu.RUnlock()
	if ok {
		if entity, err := r.catalog.FindByID(ctx, target.Kind, target.ID); err == nil && entity != nil {
			return r.succeed(ctx, token, kind, sourceHash, entity, pnr.SourceOverride, confidenceOverride, pnr.EventOverride)
		} else if err != nil {
			r.log.Warnw("override target fetch failed", "token", token, "target_id", target.ID, "error", err)
		}
	}

	// 2. Catalog alias.
	r.mu.RLock()
	target, ok = r.aliasCache[key]
	r.mu.RUnlock()
	if ok {
		if entity, err := r.catalog.FindByID(ctx, target.Kind, target.ID); err == nil && entity != nil {
			return r.succeed(ctx, token, kind, sourceHash, entity, pnr.SourceAlias, confidenceAlias, pnr.EventAlias)
		} else if err != nil {
			r.log.Warnw("alias target fetch failed", "token", token, "target_id", target.ID, "error", err)
		}
	}

	// 3. Exact IATA/ICAO match.
	entityKind := entityKindFor(kind)
	entity, err := r.catalog.FindByCode(ctx, entityKind, token)
	if err != nil {
		r.log.Warnw("catalog lookup failed", "token", token, "kind", kind, "error", err)
	}
	if entity != nil {
		confidence := confidenceICAOExact
		if strings.EqualFold(entity.IATA, token) {
			confidence = confidenceIATAExact
		}
		return r.succeed(ctx, token, kind, sourceHash, entity, pnr.SourceExactMatch, confidence, pnr.EventExact)
	}

	// 4. Heuristic seam. The default matcher always reports no match.
	if entity, confidence, herr := r.heuristic.Match(ctx, token, entityKind); herr == nil && entity != nil {
		return r.succeed(ctx, token, kind, sourceHash, entity, pnr.SourceHeuristic, confidence, pnr.EventHeuristic)
	}

	// 5. Terminal failure.
	return r.fail(ctx, token, kind, sourceHash)
}

func (r *Resolver) succeed(ctx context.Context, token string, kind pnr.TokenKind, sourceHash string,
	entity *pnr.Entity, source pnr.MatchSource, confidence int, status pnr.EventStatus) pnr.DecodeResult {

	r.emit(ctx, pnr.DecodeEvent{
		SourceHash: sourceHash,
		Token:      token,
		TokenKind:  kind,
		Status:     status,
		TargetID:   entity.ID,
		TargetKind: entity.Kind,
		Message:    entity.Name,
		OccurredAt: r.now().UTC(),
	})

	return pnr.DecodeResult{
		Success:      true,
		Type:         entity.Kind,
		Data:         entity,
		Source:       source,
		Confidence:   confidence,
		OriginalCode: token,
	}
}

func (r *Resolver) fail(ctx context.Context, token string, kind pnr.TokenKind, sourceHash string) pnr.DecodeResult {
	r.emit(ctx, pnr.DecodeEvent{
		SourceHash: sourceHash,
		Token:      token,
		TokenKind:  kind,
		Status:     pnr.EventError,
		Message:    "no override, alias or exact match",
		OccurredAt: r.now().UTC(),
	})

	// Ledger write is fail-open: repeated failures build an auditable
	// attempt history, but a broken ledger must not break resolution.
	if r.unknown != nil {
		if err := r.unknown.RecordAttempt(ctx, token, string(kind)); err != nil {
			r.log.Warnw("unknown-code ledger write failed", "token", token, "error", err)
		}
	}

	var suggestions []string
	if len(token) >= 2 {
		s, err := r.catalog.SuggestByPrefix(ctx, entityKindFor(kind), token[:2], suggestionLimit)
		if err != nil {
			r.log.Debugw("suggestion lookup failed", "token", token, "error", err)
		} else {
			suggestions = s
		}
	}

	return pnr.DecodeResult{
		Success:      false,
		Type:         pnr.KindNone,
		Source:       pnr.SourceNone,
		OriginalCode: token,
		Suggestions:  suggestions,
	}
}

// emit writes one telemetry event, fire-and-forget.
func (r *Resolver) emit(ctx context.Context, ev pnr.DecodeEvent) {
	if err := r.sink.Record(ctx, ev); err != nil {
		r.log.Warnw("telemetry write failed", "token", ev.Token, "error", err)
	}
}

// SaveOverride persists a human correction and mirrors it into the override
// cache under the same key used at lookup time, so the next resolution of the
// token in this process succeeds via the override path without a reload.
//
// Fail-open: if persistence fails the cache is left unchanged and lookups
// keep falling through to exact match.
func (r *Resolver) SaveOverride(ctx context.Context, ov pnr.Override) error {
	if err := r.overrides.SaveOverride(ctx, ov); err != nil {
		return fmt.Errorf("save override: %w", err)
	}

	r.mu.Lock()
	r.overrideCache[cacheKey(ov.TokenKind, ov.Token)] = cacheTarget{ID: ov.TargetID, Kind: ov.TargetKind}
	r.mu.Unlock()

	if r.unknown != nil {
		if err := r.unknown.MarkResolved(ctx, ov.Token); err != nil {
			r.log.Warnw("unknown-code resolve mark failed", "token", ov.Token, "error", err)
		}
	}

	r.log.Infow("override saved", "token", ov.Token, "kind", ov.TokenKind, "target", ov.TargetID)
	return nil
}

// UnknownCodes returns the current triage queue, most-attempted first.
func (r *Resolver) UnknownCodes(ctx context.Context, limit int) ([]pnr.UnknownCode, error) {
	if r.unknown == nil {
		return nil, nil
	}
	return r.unknown.ListUnknown(ctx, limit)
}

// MarkUnknownResolved clears a code from the triage queue without creating an
// override, for codes that were handled out of band.
func (r *Resolver) MarkUnknownResolved(ctx context.Context, code string) error {
	if r.unknown == nil {
		return nil
	}
	if err := r.unknown.MarkResolved(ctx, code); err != nil {
		return fmt.Errorf("mark resolved: %w", err)
	}
	return nil
}
