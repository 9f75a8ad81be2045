// Package database persists the position journal in PostgreSQL. The rest of
// the system runs fine without a database; every repository method treats a
// nil pool as "journal disabled".
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// DB wraps the PostgreSQL connection pool
type DB struct {
	Pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewDB connects to PostgreSQL using a pgx connection URL
func NewDB(url string, logger zerolog.Logger) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	log := logger.With().Str("component", "database").Logger()
	log.Info().Msg("connected to PostgreSQL")

	return &DB{Pool: pool, logger: log}, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		db.logger.Info().Msg("database connection closed")
	}
}

// RunMigrations creates the journal schema if it does not exist
func (db *DB) RunMigrations(ctx context.Context) error {
	if db.Pool == nil {
		return nil
	}
	db.logger.Info().Msg("running database migrations")

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS positions (
			id SERIAL PRIMARY KEY,
			venue VARCHAR(32) NOT NULL,
			market_id VARCHAR(255) NOT NULL DEFAULT '',
			question TEXT NOT NULL,
			side VARCHAR(4) NOT NULL,
			entry_price DECIMAL(10, 4) NOT NULL,
			exit_price DECIMAL(10, 4),
			quantity DECIMAL(20, 4) NOT NULL,
			pnl DECIMAL(20, 4),
			notes TEXT NOT NULL DEFAULT '',
			status VARCHAR(16) NOT NULL DEFAULT 'open',
			opened_at TIMESTAMP NOT NULL DEFAULT NOW(),
			closed_at TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_positions_status ON positions(status)`,
		`CREATE INDEX IF NOT EXISTS idx_positions_opened_at ON positions(opened_at DESC)`,
	}

	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	db.logger.Info().Msg("migrations complete")
	return nil
}
