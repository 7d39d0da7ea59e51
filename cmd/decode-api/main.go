// Package main provides the decode-api server for booking-text parsing and
// airline/airport code resolution.
//
// The server parses pasted GDS booking texts into structured options and
// resolves carrier/airport codes against a catalog, with manual overrides,
// an unknown-code triage queue and per-attempt decode telemetry.
//
// Configuration is environment-based (a .env file is honored for local
// development):
//
//	PORT            HTTP port (default: 8085)
//	AUTH_ENABLED    Enable API key authentication
//	API_KEYS        Comma-separated list of valid API keys
//	STORE_BACKEND   "sqlite" (default) or "postgres"
//	SQLITE_PATH     SQLite catalog path (default: pnr_catalog.db)
//	PG_*            PostgreSQL connection settings
//	CH_HOST         ClickHouse host; empty disables event storage
//	NATS_URL        NATS server URL; empty disables event publishing
//	STRIP_METADATA  Drop leading agency lines from single-block texts
//	BATCH_WORKERS   Concurrent resolutions per batch (default: 4)
//
// API Endpoints:
//
//	POST /api/parse
//	    Parse a booking text into structured options.
//
//	POST /api/decode
//	    Resolve a single code token.
//
//	POST /api/decode/batch
//	    Resolve multiple tokens concurrently.
//
//	POST /api/overrides
//	    Save a manual code correction.
//
//	GET /api/unknown-codes
//	    List the unresolved-code triage queue.
//
//	POST /api/unknown-codes/{code}/resolve
//	    Mark a queued code as handled.
//
//	GET /api/health
//	    Health check endpoint.
package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"pnr_parser/internal/api"
	"pnr_parser/internal/config"
	"pnr_parser/internal/resolver"
	"pnr_parser/internal/storage"
	"pnr_parser/internal/telemetry"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	cfg := config.Load()
	ctx := context.Background()

	// Catalog, override and unknown-code storage.
	var (
		catalog   resolver.CatalogStore
		overrides resolver.OverrideStore
		unknown   resolver.UnknownCodeStore
	)
	switch cfg.StoreBackend {
	case "postgres":
		pg, err := storage.OpenPostgres(ctx, storage.PostgresConfig{
			Host:     cfg.PGHost,
			Port:     cfg.PGPort,
			Database: cfg.PGDatabase,
			User:     cfg.PGUser,
			Password: cfg.PGPassword,
		})
		if err != nil {
			log.Fatalw("postgres open failed", "error", err)
		}
		defer pg.Close()
		if err := pg.CreateSchema(ctx); err != nil {
			log.Fatalw("postgres schema failed", "error", err)
		}
		catalog, overrides, unknown = pg, pg, pg
	default:
		db, err := storage.Open(cfg.SQLitePath)
		if err != nil {
			log.Fatalw("sqlite open failed", "path", cfg.SQLitePath, "error", err)
		}
		defer db.Close()
		catalog, overrides, unknown = db, db, db
	}

	// Telemetry sinks: console always, ClickHouse and NATS when configured.
	sinks := []telemetry.Sink{telemetry.NewConsoleSink(log)}
	if cfg.CHHost != "" {
		ch, err := storage.OpenClickHouse(ctx, storage.ClickHouseConfig{
			Host:     cfg.CHHost,
			Port:     cfg.CHPort,
			Database: cfg.CHDatabase,
			User:     cfg.CHUser,
			Password: cfg.CHPassword,
		})
		if err != nil {
			log.Fatalw("clickhouse open failed", "error", err)
		}
		if err := ch.CreateSchema(ctx); err != nil {
			log.Fatalw("clickhouse schema failed", "error", err)
		}
		sinks = append(sinks, ch)
	}
	if cfg.NATSURL != "" {
		subject := cfg.NATSSubject
		if subject == "" {
			subject = telemetry.DefaultSubject
		}
		ns, err := telemetry.NewNATSSink(cfg.NATSURL, subject)
		if err != nil {
			log.Fatalw("nats connect failed", "url", cfg.NATSURL, "error", err)
		}
		sinks = append(sinks, ns)
	}
	sink := telemetry.NewMultiSink(sinks...)
	defer sink.Close()

	res, err := resolver.New(ctx, catalog, overrides, resolver.Options{
		Sink:    sink,
		Unknown: unknown,
		Logger:  log,
	})
	if err != nil {
		log.Fatalw("resolver init failed", "error", err)
	}

	server := api.NewServer(res, api.Config{
		Port:          cfg.Port,
		AuthEnabled:   cfg.AuthEnabled,
		APIKeys:       cfg.APIKeys,
		StripMetadata: cfg.StripMetadata,
		BatchWorkers:  cfg.BatchWorkers,
		Logger:        log,
	})

	if err := server.Run(); err != nil {
		log.Fatalw("server error", "error", err)
	}
}
