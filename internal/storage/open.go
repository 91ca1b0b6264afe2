package storage

import (
	"context"
	"fmt"

	"bookstore/internal/config"
	"bookstore/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Open builds the cart store selected by cfg.Store.Driver.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (CartStore, error) {
	kv, err := openKV(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("driver", cfg.Store.Driver).
		Str("namespace", cfg.Store.Namespace).
		Msg("cart store opened")

	return NewCartStore(kv, cfg.Store.Namespace, logger), nil
}

func openKV(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (KV, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		return NewMemoryKV(), nil

	case config.StoreDriverFile:
		kv, err := NewFileKV(cfg.Store.FilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open file store: %w", err)
		}
		return kv, nil

	case config.StoreDriverPostgres:
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		kv, err := NewPostgresKV(ctx, pool, logger)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return &poolOwningKV{KV: kv, pool: pool}, nil

	case config.StoreDriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Redis.Addr, err)
		}
		return NewRedisKV(client), nil

	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}

// poolOwningKV closes the pool it was opened with.
type poolOwningKV struct {
	KV
	pool *pgxpool.Pool
}

func (p *poolOwningKV) Close() error {
	err := p.KV.Close()
	p.pool.Close()
	return err
}
