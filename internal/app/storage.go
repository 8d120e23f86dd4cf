package app

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/clinic_booking/internal/config"
	"github.com/Freeeeeet/clinic_booking/internal/repository"
	"github.com/Freeeeeet/clinic_booking/internal/repository/memory"
	"github.com/Freeeeeet/clinic_booking/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// OpenStore создаёт хранилище по конфигу. Для PostgreSQL заодно применяет миграции.
// Вызывающий отвечает за Close.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn("Using in-memory storage, data will be lost on restart")
		return memory.NewStore(cfg.LockTimeout), nil
	case config.StoragePostgres:
		return openPostgres(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.GetDBDSN())
	if err != nil {
		return nil, fmt.Errorf("parse db dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("✅ Connected to database", zap.Int32("max_conns", poolConfig.MaxConns))

	migrator, err := NewMigrator(pool, migrations.FS, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	defer migrator.Close()

	if err := migrator.Run(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return repository.NewPostgresStore(pool, cfg.LockTimeout), nil
}
