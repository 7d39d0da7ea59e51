package resolver

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pnr_parser/internal/pnr"
)

// fakeCatalog is an in-memory CatalogStore.
type fakeCatalog struct {
	entities []pnr.Entity
	aliases  []AliasEntry
	findErr  error
}

func (f *fakeCatalog) FindByCode(_ context.Context, kind pnr.EntityKind, code string) (*pnr.Entity, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	// IATA takes precedence over ICAO.
	for i := range f.entities {
		e := &f.entities[i]
		if e.Kind == kind && e.IATA == code {
			return e, nil
		}
	}
	for i := range f.entities {
		e := &f.entities[i]
		if e.Kind == kind && e.ICAO == code {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalog) FindByID(_ context.Context, kind pnr.EntityKind, id string) (*pnr.Entity, error) {
	for i := range f.entities {
		if f.entities[i].Kind == kind && f.entities[i].ID == id {
			return &f.entities[i], nil
		}
	}
	return nil, nil
}

func (f *fakeCatalog) ListAliases(context.Context) ([]AliasEntry, error) {
	return f.aliases, nil
}

func (f *fakeCatalog) SuggestByPrefix(_ context.Context, kind pnr.EntityKind, prefix string, limit int) ([]string, error) {
	var out []string
	for _, e := range f.entities {
		if e.Kind != kind {
			continue
		}
		if len(e.IATA) >= len(prefix) && e.IATA[:len(prefix)] == prefix {
			out = append(out, e.IATA)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// fakeOverrides is an in-memory OverrideStore.
type fakeOverrides struct {
	rows    []pnr.Override
	saveErr error
}

func (f *fakeOverrides) ListOverrides(context.Context) ([]pnr.Override, error) {
	return f.rows, nil
}

func (f *fakeOverrides) SaveOverride(_ context.Context, ov pnr.Override) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.rows = append(f.rows, ov)
	return nil
}

// fakeUnknown is an in-memory UnknownCodeStore.
type fakeUnknown struct {
	mu       sync.Mutex
	attempts map[string]int
	resolved map[string]bool
}

func newFakeUnknown() *fakeUnknown {
	return &fakeUnknown{attempts: make(map[string]int), resolved: make(map[string]bool)}
}

func (f *fakeUnknown) RecordAttempt(_ context.Context, code, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts[code]++
	f.resolved[code] = false
	return nil
}

func (f *fakeUnknown) ListUnknown(_ context.Context, limit int) ([]pnr.UnknownCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []pnr.UnknownCode
	for code, n := range f.attempts {
		if f.resolved[code] {
			continue
		}
		out = append(out, pnr.UnknownCode{Code: code, Attempts: n})
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeUnknown) MarkResolved(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolved[code] = true
	return nil
}

// recordingSink captures telemetry events; Record can be made to fail.
type recordingSink struct {
	mu     sync.Mutex
	events []pnr.DecodeEvent
	err    error
}

func (s *recordingSink) Record(_ context.Context, ev pnr.DecodeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) Close() error { return nil }

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{
		entities: []pnr.Entity{
			{ID: "al-latam", Kind: pnr.KindAirline, IATA: "LA", ICAO: "LAN", Name: "LATAM Airlines"},
			{ID: "al-ita", Kind: pnr.KindAirline, IATA: "AZ", ICAO: "ITY", Name: "ITA Airways"},
			{ID: "ap-gru", Kind: pnr.KindAirport, IATA: "GRU", ICAO: "SBGR", Name: "Guarulhos International"},
			{ID: "ap-gig", Kind: pnr.KindAirport, IATA: "GIG", ICAO: "SBGL", Name: "Galeão International"},
		},
		aliases: []AliasEntry{
			{Alias: "LATAM", TargetID: "al-latam", TargetKind: pnr.KindAirline},
		},
	}
}

func TestResolveExactIATAMatch(t *testing.T) {
	sink := &recordingSink{}
	r, err := New(context.Background(), testCatalog(), &fakeOverrides{}, Options{Sink: sink})
	require.NoError(t, err)

	res := r.Resolve(context.Background(), "LA", pnr.TokenAirline, "hash1")

	assert.True(t, res.Success)
	assert.Equal(t, pnr.SourceExactMatch, res.Source)
	assert.Equal(t, "LATAM Airlines", res.Data.Name)
	assert.Equal(t, "LA", res.OriginalCode)
	assert.GreaterOrEqual(t, res.Confidence, 90)
	assert.LessOrEqual(t, res.Confidence, 100)
}

func TestResolveICAOLowerConfidence(t *testing.T) {
	r, err := New(context.Background(), testCatalog(), &fakeOverrides{}, Options{})
	require.NoError(t, err)

	iata := r.Resolve(context.Background(), "GRU", pnr.TokenAirport, "")
	icao := r.Resolve(context.Background(), "SBGR", pnr.TokenAirport, "")

	assert.True(t, iata.Success)
	assert.True(t, icao.Success)
	assert.Equal(t, iata.Data.ID, icao.Data.ID)
	assert.Greater(t, iata.Confidence, icao.Confidence)
}

func TestResolveOverrideBeatsExactMatch(t *testing.T) {
	// "AZ" exists in the catalog as ITA Airways, but a manual override pins
	// it to LATAM.
	overrides := &fakeOverrides{rows: []pnr.Override{
		{ID: "ov1", Token: "AZ", TokenKind: pnr.TokenAirline, TargetID: "al-latam", TargetKind: pnr.KindAirline},
	}}
	r, err := New(context.Background(), testCatalog(), overrides, Options{})
	require.NoError(t, err)

	res := r.Resolve(context.Background(), "AZ", pnr.TokenAirline, "")

	assert.True(t, res.Success)
	assert.Equal(t, pnr.SourceOverride, res.Source)
	assert.Equal(t, 100, res.Confidence)
	assert.Equal(t, "al-latam", res.Data.ID)
}

func TestResolveAlias(t *testing.T) {
	r, err := New(context.Background(), testCatalog(), &fakeOverrides{}, Options{})
	require.NoError(t, err)

	res := r.Resolve(context.Background(), "latam", pnr.TokenAirline, "")

	assert.True(t, res.Success)
	assert.Equal(t, pnr.SourceAlias, res.Source)
	assert.Equal(t, 95, res.Confidence)
	assert.Equal(t, "al-latam", res.Data.ID)
}

func TestResolveIdempotent(t *testing.T) {
	r, err := New(context.Background(), testCatalog(), &fakeOverrides{}, Options{})
	require.NoError(t, err)

	first := r.Resolve(context.Background(), "LA", pnr.TokenAirline, "h")
	second := r.Resolve(context.Background(), "LA", pnr.TokenAirline, "h")
	assert.Equal(t, first, second)
}

func TestResolveFailureSuggestionsAndLedger(t *testing.T) {
	unknown := newFakeUnknown()
	r, err := New(context.Background(), testCatalog(), &fakeOverrides{}, Options{Unknown: unknown})
	require.NoError(t, err)

	res := r.Resolve(context.Background(), "GIX", pnr.TokenAirport, "h")

	assert.False(t, res.Success)
	assert.Equal(t, pnr.KindNone, res.Type)
	assert.Equal(t, "GIX", res.OriginalCode)
	assert.Contains(t, res.Suggestions, "GIG")
	assert.Equal(t, 1, unknown.attempts["GIX"])

	r.Resolve(context.Background(), "GIX", pnr.TokenAirport, "h")
	assert.Equal(t, 2, unknown.attempts["GIX"])
}

func TestResolveEmitsOneEventPerAttempt(t *testing.T) {
	sink := &recordingSink{}
	r, err := New(context.Background(), testCatalog(), &fakeOverrides{}, Options{Sink: sink})
	require.NoError(t, err)

	r.Resolve(context.Background(), "LA", pnr.TokenAirline, "h")
	r.Resolve(context.Background(), "NOPE", pnr.TokenAirline, "h")

	require.Equal(t, 2, sink.count())
	assert.Equal(t, pnr.EventExact, sink.events[0].Status)
	assert.Equal(t, pnr.EventError, sink.events[1].Status)
	assert.Equal(t, "h", sink.events[0].SourceHash)
}

func TestResolveTelemetryFailureIsFailOpen(t *testing.T) {
	sink := &recordingSink{err: errors.New("sink down")}
	r, err := New(context.Background(), testCatalog(), &fakeOverrides{}, Options{Sink: sink})
	require.NoError(t, err)

	res := r.Resolve(context.Background(), "LA", pnr.TokenAirline, "h")
	assert.True(t, res.Success)
	assert.Equal(t, pnr.SourceExactMatch, res.Source)
}

func TestResolveCatalogErrorFallsThrough(t *testing.T) {
	catalog := testCatalog()
	catalog.findErr = errors.New("catalog down")
	r, err := New(context.Background(), catalog, &fakeOverrides{}, Options{})
	require.NoError(t, err)

	res := r.Resolve(context.Background(), "LA", pnr.TokenAirline, "h")
	assert.False(t, res.Success)
}

func TestSaveOverrideWriteThrough(t *testing.T) {
	overrides := &fakeOverrides{}
	unknown := newFakeUnknown()
	r, err := New(context.Background(), testCatalog(), overrides, Options{Unknown: unknown})
	require.NoError(t, err)

	// Token fails first, recording a ledger entry.
	r.Resolve(context.Background(), "QL", pnr.TokenAirline, "")
	assert.Equal(t, 1, unknown.attempts["QL"])

	ov := pnr.Override{
		ID: "ov-ql", Token: "QL", TokenKind: pnr.TokenAirline,
		TargetID: "al-latam", TargetKind: pnr.KindAirline,
	}
	require.NoError(t, r.SaveOverride(context.Background(), ov))
	require.Len(t, overrides.rows, 1)

	// No reload needed: the override path wins immediately.
	res := r.Resolve(context.Background(), "QL", pnr.TokenAirline, "")
	assert.True(t, res.Success)
	assert.Equal(t, pnr.SourceOverride, res.Source)

	// And the ledger entry is cleared.
	assert.True(t, unknown.resolved["QL"])
}

func TestSaveOverridePersistFailureLeavesCacheUntouched(t *testing.T) {
	overrides := &fakeOverrides{saveErr: errors.New("disk full")}
	r, err := New(context.Background(), testCatalog(), overrides, Options{})
	require.NoError(t, err)

	ov := pnr.Override{
		ID: "ov-x", Token: "XX", TokenKind: pnr.TokenAirline,
		TargetID: "al-latam", TargetKind: pnr.KindAirline,
	}
	require.Error(t, r.SaveOverride(context.Background(), ov))

	res := r.Resolve(context.Background(), "XX", pnr.TokenAirline, "")
	assert.False(t, res.Success)
}

func TestResolveCaseInsensitiveCacheKeys(t *testing.T) {
	overrides := &fakeOverrides{rows: []pnr.Override{
		{ID: "ov1", Token: "ql", TokenKind: pnr.TokenAirline, TargetID: "al-latam", TargetKind: pnr.KindAirline},
	}}
	r, err := New(context.Background(), testCatalog(), overrides, Options{})
	require.NoError(t, err)

	res := r.Resolve(context.Background(), "QL", pnr.TokenAirline, "")
	assert.True(t, res.Success)
	assert.Equal(t, pnr.SourceOverride, res.Source)
}

func TestResolveBatchPreservesOrder(t *testing.T) {
	r, err := New(context.Background(), testCatalog(), &fakeOverrides{}, Options{})
	require.NoError(t, err)

	tokens := []Token{
		{Token: "LA", Kind: pnr.TokenAirline},
		{Token: "NOPE", Kind: pnr.TokenAirline},
		{Token: "GRU", Kind: pnr.TokenAirport},
		{Token: "GIG", Kind: pnr.TokenAirport},
		{Token: "AZ", Kind: pnr.TokenAirline},
	}
	results := r.ResolveBatch(context.Background(), tokens, "h", 3)

	require.Len(t, results, len(tokens))
	for i, tok := range tokens {
		assert.Equal(t, tok.Token, results[i].OriginalCode, "index %d", i)
	}
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.True(t, results[2].Success)
}

func TestResolveBatchEmpty(t *testing.T) {
	r, err := New(context.Background(), testCatalog(), &fakeOverrides{}, Options{})
	require.NoError(t, err)

	results := r.ResolveBatch(context.Background(), nil, "h", 4)
	assert.Empty(t, results)
}

func TestResolveBatchCancelledContext(t *testing.T) {
	r, err := New(context.Background(), testCatalog(), &fakeOverrides{}, Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tokens := []Token{{Token: "LA", Kind: pnr.TokenAirline}, {Token: "GRU", Kind: pnr.TokenAirport}}
	results := r.ResolveBatch(ctx, tokens, "h", 1)

	require.Len(t, results, 2)
	for i, res := range results {
		assert.Equal(t, tokens[i].Token, res.OriginalCode)
	}
}
