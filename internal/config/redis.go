package config

import (
	"context"
)

type RedisConfig struct {
	URL    string `env:"REDIS_URL, required" validate:"url"`
	Prefix string `env:"REDIS_KEY_PREFIX, default=sound-panel"`
}

func NewRedisConfigFromEnv() (*RedisConfig, error) {
	var cfg RedisConfig
	if err := process(context.Background(), nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
