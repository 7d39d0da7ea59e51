// Package storage provides the persistent stores behind the code resolution
// engine: the airline/airport catalog, manual overrides, the unknown-code
// ledger and the decode-event telemetry table.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"pnr_parser/internal/pnr"
	"pnr_parser/internal/resolver"
)

// DB wraps a SQLite database holding the catalog, overrides and the
// unknown-code ledger. It is the embedded alternative to Postgres and the
// backing store for tests (use ":memory:").
type DB struct {
	db *sql.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent access.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database tables and indices.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS catalog_entities (
		id          TEXT PRIMARY KEY,
		kind        TEXT NOT NULL,
		iata        TEXT,
		icao        TEXT,
		name        TEXT NOT NULL,
		city        TEXT,
		country     TEXT,
		aliases     TEXT,
		created_at  TEXT DEFAULT (datetime('now'))
	);

	CREATE INDEX IF NOT EXISTS idx_entities_kind_iata ON catalog_entities(kind, iata);
	CREATE INDEX IF NOT EXISTS idx_entities_kind_icao ON catalog_entities(kind, icao);

	CREATE TABLE IF NOT EXISTS code_overrides (
		id          TEXT PRIMARY KEY,
		token       TEXT NOT NULL,
		token_kind  TEXT NOT NULL,
		target_id   TEXT NOT NULL,
		target_kind TEXT NOT NULL,
		reason      TEXT,
		created_at  TEXT NOT NULL,
		UNIQUE(token_kind, token)
	);

	CREATE TABLE IF NOT EXISTS unknown_codes (
		code          TEXT PRIMARY KEY,
		context       TEXT,
		attempts      INTEGER NOT NULL DEFAULT 1,
		last_seen_at  TEXT NOT NULL,
		resolved      INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_unknown_attempts ON unknown_codes(attempts);
	`

	if _, err := db.Exec(schema); err != nil {
		return err
	}

	return migrateSchema(db)
}

// migrateSchema adds new columns to existing databases.
func migrateSchema(db *sql.DB) error {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('unknown_codes') WHERE name='resolved'`).Scan(&count)
	if err != nil {
		return err
	}

	if count == 0 {
		if _, err := db.Exec(`ALTER TABLE unknown_codes ADD COLUMN resolved INTEGER NOT NULL DEFAULT 0`); err != nil {
			// Ignore "duplicate column" errors for idempotency.
			if !strings.Contains(err.Error(), "duplicate column") {
				return err
			}
		}
	}

	return nil
}

// UpsertEntity inserts or replaces a catalog record. Codes are stored
// upper-cased so lookups can be case-insensitive without COLLATE tricks.
func (d *DB) UpsertEntity(ctx context.Context, e pnr.Entity) error {
	aliases, err := json.Marshal(e.Aliases)
	if err != nil {
		return fmt.Errorf("marshal aliases: %w", err)
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO catalog_entities (id, kind, iata, icao, name, city, country, aliases)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			iata = excluded.iata,
			icao = excluded.icao,
			name = excluded.name,
			city = excluded.city,
			country = excluded.country,
			aliases = excluded.aliases
	`, e.ID, string(e.Kind), strings.ToUpper(e.IATA), strings.ToUpper(e.ICAO),
		e.Name, e.City, e.Country, string(aliases))
	if err != nil {
		return fmt.Errorf("upsert entity: %w", err)
	}
	return nil
}

const entityColumns = `id, kind, iata, icao, name, city, country, aliases`

func scanEntity(row *sql.Row) (*pnr.Entity, error) {
	var e pnr.Entity
	var kind string
	var iata, icao, city, country, aliases sql.NullString

	err := row.Scan(&e.ID, &kind, &iata, &icao, &e.Name, &city, &country, &aliases)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan entity: %w", err)
	}

	e.Kind = pnr.EntityKind(kind)
	e.IATA = iata.String
	e.ICAO = icao.String
	e.City = city.String
	e.Country = country.String
	if aliases.Valid && aliases.String != "" {
		_ = json.Unmarshal([]byte(aliases.String), &e.Aliases)
	}
	return &e, nil
}

// FindByCode looks a token up against the IATA column first, then ICAO.
func (d *DB) FindByCode(ctx context.Context, kind pnr.EntityKind, code string) (*pnr.Entity, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, nil
	}

	row := d.db.QueryRowContext(ctx,
		`SELECT `+entityColumns+` FROM catalog_entities WHERE kind = ? AND iata = ?`,
		string(kind), code)
	e, err := scanEntity(row)
	if err != nil || e != nil {
		return e, err
	}

	row = d.db.QueryRowContext(ctx,
		`SELECT `+entityColumns+` FROM catalog_entities WHERE kind = ? AND icao = ?`,
		string(kind), code)
	return scanEntity(row)
}

// FindByID fetches an entity by catalog id.
func (d *DB) FindByID(ctx context.Context, kind pnr.EntityKind, id string) (*pnr.Entity, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+entityColumns+` FROM catalog_entities WHERE kind = ? AND id = ?`,
		string(kind), id)
	return scanEntity(row)
}

// ListAliases returns every entity's alias list for cache warming.
func (d *DB) ListAliases(ctx context.Context) ([]resolver.AliasEntry, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, kind, aliases FROM catalog_entities WHERE aliases IS NOT NULL AND aliases != ''`)
	if err != nil {
		return nil, fmt.Errorf("list aliases: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []resolver.AliasEntry
	for rows.Next() {
		var id, kind string
		var aliases string
		if err := rows.Scan(&id, &kind, &aliases); err != nil {
			return nil, fmt.Errorf("scan alias row: %w", err)
		}
		var list []string
		if err := json.Unmarshal([]byte(aliases), &list); err != nil {
			continue
		}
		for _, a := range list {
			if a == "" {
				continue
			}
			entries = append(entries, resolver.AliasEntry{
				Alias:      a,
				TargetID:   id,
				TargetKind: pnr.EntityKind(kind),
			})
		}
	}
	return entries, rows.Err()
}

// SuggestByPrefix returns up to limit codes sharing a prefix with a token.
func (d *DB) SuggestByPrefix(ctx context.Context, kind pnr.EntityKind, prefix string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 5
	}
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil, nil
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT iata FROM catalog_entities
		WHERE kind = ? AND iata LIKE ? AND iata IS NOT NULL AND iata != ''
		ORDER BY iata LIMIT ?
	`, string(kind), prefix+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("suggest by prefix: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var codes []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

// ListOverrides reads all override rows for cache warming.
func (d *DB) ListOverrides(ctx context.Context) ([]pnr.Override, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, token, token_kind, target_id, target_kind, reason, created_at
		FROM code_overrides ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var overrides []pnr.Override
	for rows.Next() {
		var ov pnr.Override
		var tokenKind, targetKind string
		var reason sql.NullString
		var createdAt string
		if err := rows.Scan(&ov.ID, &ov.Token, &tokenKind, &ov.TargetID, &targetKind, &reason, &createdAt); err != nil {
			return nil, fmt.Errorf("scan override row: %w", err)
		}
		ov.TokenKind = pnr.TokenKind(tokenKind)
		ov.TargetKind = pnr.EntityKind(targetKind)
		ov.Reason = reason.String
		ov.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		overrides = append(overrides, ov)
	}
	return overrides, rows.Err()
}

// SaveOverride appends one correction. A later correction for the same
// token+kind replaces the earlier row; overrides are never auto-deleted.
func (d *DB) SaveOverride(ctx context.Context, ov pnr.Override) error {
	createdAt := ov.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO code_overrides (id, token, token_kind, target_id, target_kind, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(token_kind, token) DO UPDATE SET
			target_id = excluded.target_id,
			target_kind = excluded.target_kind,
			reason = excluded.reason,
			created_at = excluded.created_at
	`, ov.ID, ov.Token, string(ov.TokenKind), ov.TargetID, string(ov.TargetKind),
		ov.Reason, createdAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save override: %w", err)
	}
	return nil
}

// RecordAttempt upserts an unknown code, incrementing its attempt counter.
func (d *DB) RecordAttempt(ctx context.Context, code, usage string) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO unknown_codes (code, context, attempts, last_seen_at, resolved)
		VALUES (?, ?, 1, ?, 0)
		ON CONFLICT(code) DO UPDATE SET
			attempts = unknown_codes.attempts + 1,
			last_seen_at = excluded.last_seen_at,
			context = excluded.context,
			resolved = 0
	`, code, usage, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record unknown code: %w", err)
	}
	return nil
}

// ListUnknown returns unresolved codes, most-attempted first.
func (d *DB) ListUnknown(ctx context.Context, limit int) ([]pnr.UnknownCode, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := d.db.QueryContext(ctx, `
		SELECT code, context, attempts, last_seen_at, resolved
		FROM unknown_codes WHERE resolved = 0
		ORDER BY attempts DESC, last_seen_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unknown codes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var codes []pnr.UnknownCode
	for rows.Next() {
		var uc pnr.UnknownCode
		var usage sql.NullString
		var lastSeen string
		var resolved int
		if err := rows.Scan(&uc.Code, &usage, &uc.Attempts, &lastSeen, &resolved); err != nil {
			return nil, fmt.Errorf("scan unknown code: %w", err)
		}
		uc.Context = usage.String
		uc.LastSeenAt, _ = time.Parse(time.RFC3339, lastSeen)
		uc.Resolved = resolved == 1
		codes = append(codes, uc)
	}
	return codes, rows.Err()
}

// MarkResolved flags an unknown code as handled.
func (d *DB) MarkResolved(ctx context.Context, code string) error {
	_, err := d.db.ExecContext(ctx, `UPDATE unknown_codes SET resolved = 1 WHERE code = ?`, code)
	return err
}
