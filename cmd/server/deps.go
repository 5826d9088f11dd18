package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/walletcore/internal/infrastructure/config"
	"github.com/iho/walletcore/internal/infrastructure/postgres"
	"github.com/iho/walletcore/internal/infrastructure/redis"
)

// optionalArchivePool connects to the archive database when configured and
// runs migrations. Archival is optional; a missing URL disables it.
func optionalArchivePool(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *pgxpool.Pool {
	if cfg.ArchiveDatabaseURL == "" {
		logger.Info().Msg("no archive database configured, journal archival disabled")
		return nil
	}

	if err := postgres.RunMigrations(cfg.ArchiveDatabaseURL, cfg.MigrationsPath); err != nil {
		logger.Fatal().Err(err).Msg("failed to run archive migrations")
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.ArchiveDatabaseURL,
		MaxConns:    cfg.ArchiveDatabaseMaxConns,
		MinConns:    cfg.ArchiveDatabaseMinConns,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to archive database")
	}

	logger.Info().Msg("connected to archive database")
	return pool
}

// optionalRedisClient connects to Redis when configured. Redis backs
// idempotency keys, rate snapshots and notification streaming; a missing
// URL disables all three.
func optionalRedisClient(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *goredis.Client {
	if cfg.RedisURL == "" {
		logger.Info().Msg("no redis configured, idempotency and rate snapshots disabled")
		return nil
	}

	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}

	logger.Info().Msg("connected to redis")
	return client
}
