package postgres_adapter

import (
	"context"
	"fmt"
	"monitoring-service/internal/contextkeys"
	"monitoring-service/internal/core/port"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Таблицы сервиса. Ключ уникальности объявления (source, external_id)
// держит upsert атомарным при конкурентных прогонах.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS listings (
		id BIGSERIAL PRIMARY KEY,
		source VARCHAR(64) NOT NULL,
		external_id VARCHAR(128) NOT NULL,
		url TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		price DOUBLE PRECISION,
		surface_area DOUBLE PRECISION,
		bedrooms INT,
		bathrooms INT,
		floor VARCHAR(64),
		province VARCHAR(128) NOT NULL DEFAULT '',
		city VARCHAR(128) NOT NULL DEFAULT '',
		zone VARCHAR(128) NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		postal_code VARCHAR(16) NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		operation_type VARCHAR(16) NOT NULL DEFAULT '',
		property_type VARCHAR(64) NOT NULL DEFAULT '',
		features JSONB NOT NULL DEFAULT '{}'::jsonb,
		agency TEXT NOT NULL DEFAULT '',
		images TEXT[] NOT NULL DEFAULT '{}',
		fingerprint VARCHAR(64) NOT NULL,
		published_at TIMESTAMPTZ,
		first_seen_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_seen_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (source, external_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_last_seen_at ON listings(last_seen_at)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_fingerprint ON listings(fingerprint)`,
	`CREATE TABLE IF NOT EXISTS runs (
		id UUID PRIMARY KEY,
		status VARCHAR(16) NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL,
		total_found INT NOT NULL DEFAULT 0,
		total_new INT NOT NULL DEFAULT 0,
		total_errors INT NOT NULL DEFAULT 0,
		source_stats JSONB NOT NULL DEFAULT '{}'::jsonb,
		error_message TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id BIGSERIAL PRIMARY KEY,
		source VARCHAR(64) NOT NULL,
		external_id VARCHAR(128) NOT NULL,
		profile VARCHAR(128) NOT NULL,
		notified_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (source, external_id, profile)
	)`,
}

// EnsureSchema создает таблицы и индексы сервиса, если их еще нет.
// Вызывается один раз при старте приложения, до первого прогона.
func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	logger := contextkeys.LoggerFromContext(ctx)
	schemaLogger := logger.WithFields(port.Fields{
		"component": "postgres_adapter",
		"method":    "EnsureSchema",
	})

	if dbPool == nil {
		return fmt.Errorf("ensure schema: dbPool cannot be nil")
	}

	schemaLogger.Debug("Ensuring database schema", nil)

	for _, stmt := range schemaStatements {
		if _, err := dbPool.Exec(ctx, stmt); err != nil {
			schemaLogger.Error("Failed to apply schema statement", err, nil)
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	schemaLogger.Info("Database schema is up to date", nil)
	return nil
}
