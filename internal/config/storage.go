package config

import (
	"context"

	"github.com/sethvargo/go-envconfig"
)

const (
	StorageBackendFile     = "file"
	StorageBackendPostgres = "postgres"
	StorageBackendRedis    = "redis"
)

type StorageConfig struct {
	Backend string `env:"STORAGE_BACKEND, default=file" validate:"oneof=file postgres redis"`
	DataDir string `env:"BOT_DATA_DIR, default=bot_data" validate:"required"`
}

func NewStorageConfigFromEnv() (*StorageConfig, error) {
	return newStorageConfig(context.Background(), nil)
}

func newStorageConfig(ctx context.Context, l envconfig.Lookuper) (*StorageConfig, error) {
	var cfg StorageConfig
	if err := process(ctx, l, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
