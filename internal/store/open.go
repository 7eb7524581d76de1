package store

import (
	"context"
	"fmt"

	"github.com/glizzus/sound-panel/internal/config"
	"github.com/glizzus/sound-panel/internal/datalayer"
)

// Open builds the store selected by cfg.Backend. Backend specific settings
// are read from the environment.
func Open(ctx context.Context, cfg *config.StorageConfig) (GuildStore, error) {
	switch cfg.Backend {
	case config.StorageBackendPostgres:
		pgConfig, err := config.NewPostgresConfigFromEnv()
		if err != nil {
			return nil, fmt.Errorf("failed to load postgres config: %w", err)
		}
		pool, err := datalayer.NewPostgresPool(ctx, pgConfig)
		if err != nil {
			return nil, err
		}
		if err := datalayer.MigratePostgres(pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to migrate postgres: %w", err)
		}
		return NewPostgresStore(pool), nil

	case config.StorageBackendRedis:
		redisConfig, err := config.NewRedisConfigFromEnv()
		if err != nil {
			return nil, fmt.Errorf("failed to load redis config: %w", err)
		}
		client, err := datalayer.NewRedisClient(ctx, redisConfig.URL)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, redisConfig.Prefix), nil

	case config.StorageBackendFile, "":
		return NewFileStore(cfg.DataDir)
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}
