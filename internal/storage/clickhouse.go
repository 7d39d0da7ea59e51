package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"pnr_parser/internal/pnr"
)

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// ClickHouseDB wraps a ClickHouse connection used as the append-only
// decode-event telemetry sink. Events are write-only and never mutated,
// which is exactly the MergeTree shape.
type ClickHouseDB struct {
	conn driver.Conn
}

// OpenClickHouse opens a connection to ClickHouse.
func OpenClickHouse(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseDB, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:     10 * time.Second,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}

	// Test the connection.
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Close closes the ClickHouse connection.
func (d *ClickHouseDB) Close() error {
	return d.conn.Close()
}

// CreateSchema creates the decode-event table.
func (d *ClickHouseDB) CreateSchema(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS decode_events (
		source_hash   LowCardinality(String),
		token         LowCardinality(String),
		token_kind    LowCardinality(String),
		status        LowCardinality(String),
		target_id     String,
		target_kind   LowCardinality(String),
		message       String,
		occurred_at   DateTime64(3)
	)
	ENGINE = MergeTree()
	PARTITION BY toYYYYMM(occurred_at)
	ORDER BY (status, token_kind, occurred_at)
	SETTINGS index_granularity = 8192`

	if err := d.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Record appends one decode event, satisfying telemetry.Sink.
func (d *ClickHouseDB) Record(ctx context.Context, ev pnr.DecodeEvent) error {
	err := d.conn.Exec(ctx, `
		INSERT INTO decode_events
			(source_hash, token, token_kind, status, target_id, target_kind, message, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.SourceHash, ev.Token, string(ev.TokenKind), string(ev.Status),
		ev.TargetID, string(ev.TargetKind), ev.Message, ev.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert decode event: %w", err)
	}
	return nil
}

// RecordBatch appends many decode events in one batch insert.
func (d *ClickHouseDB) RecordBatch(ctx context.Context, events []pnr.DecodeEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := d.conn.PrepareBatch(ctx, `
		INSERT INTO decode_events
			(source_hash, token, token_kind, status, target_id, target_kind, message, occurred_at)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, ev := range events {
		if err := batch.Append(
			ev.SourceHash, ev.Token, string(ev.TokenKind), string(ev.Status),
			ev.TargetID, string(ev.TargetKind), ev.Message, ev.OccurredAt,
		); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// EventCounts returns event counts per status for a source hash (batch).
func (d *ClickHouseDB) EventCounts(ctx context.Context, sourceHash string) (map[string]uint64, error) {
	rows, err := d.conn.Query(ctx, `
		SELECT status, count() FROM decode_events
		WHERE source_hash = ? GROUP BY status
	`, sourceHash)
	if err != nil {
		return nil, fmt.Errorf("query event counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]uint64)
	for rows.Next() {
		var status string
		var count uint64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
