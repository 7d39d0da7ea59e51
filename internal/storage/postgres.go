package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pnr_parser/internal/pnr"
	"pnr_parser/internal/resolver"
)

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// PostgresDB wraps a PostgreSQL connection pool implementing the catalog,
// override and unknown-code ports for production deployments.
type PostgresDB struct {
	pool *pgxpool.Pool
}

// OpenPostgres opens a connection pool to PostgreSQL.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresDB, error) {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	// Test the connection.
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresDB{pool: pool}, nil
}

// Close closes the PostgreSQL connection pool.
func (d *PostgresDB) Close() {
	d.pool.Close()
}

// CreateSchema creates the PostgreSQL tables.
func (d *PostgresDB) CreateSchema(ctx context.Context) error {
	schema := `
	-- Reference data: airlines and airports in one table, discriminated by kind
	CREATE TABLE IF NOT EXISTS catalog_entities (
		id          TEXT PRIMARY KEY,
		kind        TEXT NOT NULL,
		iata        TEXT,
		icao        TEXT,
		name        TEXT NOT NULL,
		city        TEXT,
		country     TEXT,
		aliases     JSONB NOT NULL DEFAULT '[]',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_entities_kind_iata ON catalog_entities(kind, iata);
	CREATE INDEX IF NOT EXISTS idx_entities_kind_icao ON catalog_entities(kind, icao);
	CREATE INDEX IF NOT EXISTS idx_entities_aliases ON catalog_entities USING GIN (aliases);

	-- Manual corrections: one row per token+kind, superseding rows overwrite
	CREATE TABLE IF NOT EXISTS code_overrides (
		id          TEXT PRIMARY KEY,
		token       TEXT NOT NULL,
		token_kind  TEXT NOT NULL,
		target_id   TEXT NOT NULL,
		target_kind TEXT NOT NULL,
		reason      TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(token_kind, token)
	);

	-- Triage queue for tokens no chain step could resolve
	CREATE TABLE IF NOT EXISTS unknown_codes (
		code          TEXT PRIMARY KEY,
		context       TEXT,
		attempts      INTEGER NOT NULL DEFAULT 1,
		last_seen_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		resolved      BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE INDEX IF NOT EXISTS idx_unknown_attempts ON unknown_codes(attempts DESC);
	`

	if _, err := d.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// UpsertEntity inserts or updates a catalog record.
func (d *PostgresDB) UpsertEntity(ctx context.Context, e pnr.Entity) error {
	aliases := e.Aliases
	if aliases == nil {
		aliases = []string{}
	}
	_, err := d.pool.Exec(ctx, `
		INSERT INTO catalog_entities (id, kind, iata, icao, name, city, country, aliases)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			kind = EXCLUDED.kind,
			iata = EXCLUDED.iata,
			icao = EXCLUDED.icao,
			name = EXCLUDED.name,
			city = EXCLUDED.city,
			country = EXCLUDED.country,
			aliases = EXCLUDED.aliases
	`, e.ID, string(e.Kind), strings.ToUpper(e.IATA), strings.ToUpper(e.ICAO),
		e.Name, e.City, e.Country, aliases)
	return err
}

func (d *PostgresDB) findEntity(ctx context.Context, where string, args ...any) (*pnr.Entity, error) {
	var e pnr.Entity
	var kind string
	var iata, icao, city, country *string

	err := d.pool.QueryRow(ctx, `
		SELECT id, kind, iata, icao, name, city, country, aliases
		FROM catalog_entities WHERE `+where,
		args...).Scan(&e.ID, &kind, &iata, &icao, &e.Name, &city, &country, &e.Aliases)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	e.Kind = pnr.EntityKind(kind)
	if iata != nil {
		e.IATA = *iata
	}
	if icao != nil {
		e.ICAO = *icao
	}
	if city != nil {
		e.City = *city
	}
	if country != nil {
		e.Country = *country
	}
	return &e, nil
}

// FindByCode looks a token up against the IATA column first, then ICAO.
func (d *PostgresDB) FindByCode(ctx context.Context, kind pnr.EntityKind, code string) (*pnr.Entity, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, nil
	}

	e, err := d.findEntity(ctx, `kind = $1 AND iata = $2`, string(kind), code)
	if err != nil || e != nil {
		return e, err
	}
	return d.findEntity(ctx, `kind = $1 AND icao = $2`, string(kind), code)
}

// FindByID fetches an entity by catalog id.
func (d *PostgresDB) FindByID(ctx context.Context, kind pnr.EntityKind, id string) (*pnr.Entity, error) {
	return d.findEntity(ctx, `kind = $1 AND id = $2`, string(kind), id)
}

// ListAliases returns every entity's alias list for cache warming.
func (d *PostgresDB) ListAliases(ctx context.Context) ([]resolver.AliasEntry, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, kind, jsonb_array_elements_text(aliases)
		FROM catalog_entities WHERE jsonb_array_length(aliases) > 0
	`)
	if err != nil {
		return nil, fmt.Errorf("list aliases: %w", err)
	}
	defer rows.Close()

	var entries []resolver.AliasEntry
	for rows.Next() {
		var id, kind, alias string
		if err := rows.Scan(&id, &kind, &alias); err != nil {
			return nil, fmt.Errorf("scan alias row: %w", err)
		}
		if alias == "" {
			continue
		}
		entries = append(entries, resolver.AliasEntry{
			Alias:      alias,
			TargetID:   id,
			TargetKind: pnr.EntityKind(kind),
		})
	}
	return entries, rows.Err()
}

// SuggestByPrefix returns up to limit codes sharing a prefix with a token.
func (d *PostgresDB) SuggestByPrefix(ctx context.Context, kind pnr.EntityKind, prefix string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 5
	}
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil, nil
	}

	rows, err := d.pool.Query(ctx, `
		SELECT iata FROM catalog_entities
		WHERE kind = $1 AND iata LIKE $2 AND iata IS NOT NULL AND iata != ''
		ORDER BY iata LIMIT $3
	`, string(kind), prefix+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("suggest by prefix: %w", err)
	}
	defer rows.Close()

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
func (d *PostgresDB) ListOverrides(ctx context.Context) ([]pnr.Override, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, token, token_kind, target_id, target_kind, COALESCE(reason, ''), created_at
		FROM code_overrides ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	defer rows.Close()

	var overrides []pnr.Override
	for rows.Next() {
		var ov pnr.Override
		var tokenKind, targetKind string
		if err := rows.Scan(&ov.ID, &ov.Token, &tokenKind, &ov.TargetID, &targetKind, &ov.Reason, &ov.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan override row: %w", err)
		}
		ov.TokenKind = pnr.TokenKind(tokenKind)
		ov.TargetKind = pnr.EntityKind(targetKind)
		overrides = append(overrides, ov)
	}
	return overrides, rows.Err()
}

// SaveOverride appends one correction; superseding rows overwrite.
func (d *PostgresDB) SaveOverride(ctx context.Context, ov pnr.Override) error {
	createdAt := ov.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := d.pool.Exec(ctx, `
		INSERT INTO code_overrides (id, token, token_kind, target_id, target_kind, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (token_kind, token) DO UPDATE SET
			target_id = EXCLUDED.target_id,
			target_kind = EXCLUDED.target_kind,
			reason = EXCLUDED.reason,
			created_at = EXCLUDED.created_at
	`, ov.ID, ov.Token, string(ov.TokenKind), ov.TargetID, string(ov.TargetKind), ov.Reason, createdAt)
	if err != nil {
		return fmt.Errorf("save override: %w", err)
	}
	return nil
}

// RecordAttempt upserts an unknown code, incrementing its attempt counter.
func (d *PostgresDB) RecordAttempt(ctx context.Context, code, usage string) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO unknown_codes (code, context, attempts, last_seen_at, resolved)
		VALUES ($1, $2, 1, NOW(), FALSE)
		ON CONFLICT (code) DO UPDATE SET
			attempts = unknown_codes.attempts + 1,
			last_seen_at = NOW(),
			context = EXCLUDED.context,
			resolved = FALSE
	`, code, usage)
	if err != nil {
		return fmt.Errorf("record unknown code: %w", err)
	}
	return nil
}

// ListUnknown returns unresolved codes, most-attempted first.
func (d *PostgresDB) ListUnknown(ctx context.Context, limit int) ([]pnr.UnknownCode, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := d.pool.Query(ctx, `
		SELECT code, COALESCE(context, ''), attempts, last_seen_at, resolved
		FROM unknown_codes WHERE NOT resolved
		ORDER BY attempts DESC, last_seen_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unknown codes: %w", err)
	}
	defer rows.Close()

	var codes []pnr.UnknownCode
	for rows.Next() {
		var uc pnr.UnknownCode
		if err := rows.Scan(&uc.Code, &uc.Context, &uc.Attempts, &uc.LastSeenAt, &uc.Resolved); err != nil {
			return nil, fmt.Errorf("scan unknown code: %w", err)
		}
		codes = append(codes, uc)
	}
	return codes, rows.Err()
}

// MarkResolved flags an unknown code as handled.
func (d *PostgresDB) MarkResolved(ctx context.Context, code string) error {
	_, err := d.pool.Exec(ctx, `UPDATE unknown_codes SET resolved = TRUE WHERE code = $1`, code)
	return err
}
