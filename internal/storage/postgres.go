package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// postgresKV stores keys in a single table.
type postgresKV struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS storefront_kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// NewPostgresKV creates a PostgreSQL-backed KV, creating its table if needed.
// The pool stays owned by the caller.
func NewPostgresKV(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) (KV, error) {
	logger = logger.With().Str("component", "postgres-kv").Logger()

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		logger.Error().Err(err).Msg("failed to create storefront_kv table")
		return nil, fmt.Errorf("failed to create storefront_kv table: %w", err)
	}

	return &postgresKV{pool: pool, logger: logger}, nil
}

func (p *postgresKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query := `SELECT value FROM storefront_kv WHERE key = $1`

	var value string
	err := p.pool.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		p.logger.Error().Err(err).Str("key", key).Msg("failed to query key")
		return nil, false, fmt.Errorf("failed to query key %s: %w", key, err)
	}

	return []byte(value), true, nil
}

func (p *postgresKV) Put(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO storefront_kv (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	if _, err := p.pool.Exec(ctx, query, key, string(value)); err != nil {
		p.logger.Error().Err(err).Str("key", key).Msg("failed to upsert key")
		return fmt.Errorf("failed to upsert key %s: %w", key, err)
	}
	return nil
}

func (p *postgresKV) Delete(ctx context.Context, key string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM storefront_kv WHERE key = $1`, key); err != nil {
		p.logger.Error().Err(err).Str("key", key).Msg("failed to delete key")
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

func (p *postgresKV) Close() error {
	return nil
}
