package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pnr_parser/internal/pnr"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestEntityUpsertAndFindByCode(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	e := pnr.Entity{
		ID: "al-latam", Kind: pnr.KindAirline,
		IATA: "la", ICAO: "lan",
		Name: "LATAM Airlines", Country: "CL",
	}
	require.NoError(t, db.UpsertEntity(ctx, e))

	// Codes are stored upper-cased; lookups normalise too.
	got, err := db.FindByCode(ctx, pnr.KindAirline, "la")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "LA", got.IATA)
	assert.Equal(t, "LATAM Airlines", got.Name)

	// ICAO fallback.
	got, err = db.FindByCode(ctx, pnr.KindAirline, "LAN")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "al-latam", got.ID)

	// Absent codes yield (nil, nil).
	got, err = db.FindByCode(ctx, pnr.KindAirline, "ZZ")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Wrong kind does not match.
	got, err = db.FindByCode(ctx, pnr.KindAirport, "LA")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEntityUpsertReplaces(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	e := pnr.Entity{ID: "ap-gru", Kind: pnr.KindAirport, IATA: "GRU", Name: "Guarulhos"}
	require.NoError(t, db.UpsertEntity(ctx, e))

	e.Name = "Guarulhos International"
	e.City = "São Paulo"
	require.NoError(t, db.UpsertEntity(ctx, e))

	got, err := db.FindByID(ctx, pnr.KindAirport, "ap-gru")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Guarulhos International", got.Name)
	assert.Equal(t, "São Paulo", got.City)
}

func TestListAliases(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.UpsertEntity(ctx, pnr.Entity{
		ID: "al-latam", Kind: pnr.KindAirline, IATA: "LA", Name: "LATAM Airlines",
		Aliases: []string{"LATAM", "TAM"},
	}))
	require.NoError(t, db.UpsertEntity(ctx, pnr.Entity{
		ID: "ap-gru", Kind: pnr.KindAirport, IATA: "GRU", Name: "Guarulhos",
	}))

	entries, err := db.ListAliases(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byAlias := make(map[string]string)
	for _, a := range entries {
		byAlias[a.Alias] = a.TargetID
	}
	assert.Equal(t, "al-latam", byAlias["LATAM"])
	assert.Equal(t, "al-latam", byAlias["TAM"])
}

func TestSuggestByPrefix(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, e := range []pnr.Entity{
		{ID: "ap-gru", Kind: pnr.KindAirport, IATA: "GRU", Name: "Guarulhos"},
		{ID: "ap-gig", Kind: pnr.KindAirport, IATA: "GIG", Name: "Galeão"},
		{ID: "ap-fco", Kind: pnr.KindAirport, IATA: "FCO", Name: "Fiumicino"},
	} {
		require.NoError(t, db.UpsertEntity(ctx, e))
	}

	codes, err := db.SuggestByPrefix(ctx, pnr.KindAirport, "G", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"GIG", "GRU"}, codes)

	codes, err = db.SuggestByPrefix(ctx, pnr.KindAirport, "ZZ", 5)
	require.NoError(t, err)
	assert.Empty(t, codes)
}

func TestOverrideUpsertByTokenKind(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	ov := pnr.Override{
		ID: "ov1", Token: "QL", TokenKind: pnr.TokenAirline,
		TargetID: "al-latam", TargetKind: pnr.KindAirline, Reason: "legacy code",
	}
	require.NoError(t, db.SaveOverride(ctx, ov))

	// A superseding correction for the same token+kind replaces the row.
	ov.ID = "ov2"
	ov.TargetID = "al-ita"
	require.NoError(t, db.SaveOverride(ctx, ov))

	rows, err := db.ListOverrides(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "al-ita", rows[0].TargetID)
	assert.Equal(t, "QL", rows[0].Token)
	assert.Equal(t, pnr.TokenAirline, rows[0].TokenKind)
}

func TestUnknownCodeLedger(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.RecordAttempt(ctx, "ZZ", "airline"))
	require.NoError(t, db.RecordAttempt(ctx, "ZZ", "airline"))
	require.NoError(t, db.RecordAttempt(ctx, "QQQ", "airport"))

	codes, err := db.ListUnknown(ctx, 10)
	require.NoError(t, err)
	require.Len(t, codes, 2)

	// Most-attempted first.
	assert.Equal(t, "ZZ", codes[0].Code)
	assert.Equal(t, 2, codes[0].Attempts)
	assert.Equal(t, "airline", codes[0].Context)
	assert.Equal(t, "QQQ", codes[1].Code)

	require.NoError(t, db.MarkResolved(ctx, "ZZ"))
	codes, err = db.ListUnknown(ctx, 10)
	require.NoError(t, err)
	require.Len(t, codes, 1)
	assert.Equal(t, "QQQ", codes[0].Code)

	// A fresh attempt reopens a resolved code.
	require.NoError(t, db.RecordAttempt(ctx, "ZZ", "airline"))
	codes, err = db.ListUnknown(ctx, 10)
	require.NoError(t, err)
	require.Len(t, codes, 2)
}
