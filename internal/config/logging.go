package config

import (
	"context"
	"log/slog"
	"strings"
)

type LogConfig struct {
	Level             string `env:"LOG_LEVEL, default=info" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	SentryDSN         string `env:"SENTRY_DSN"`
	SentryEnvironment string `env:"SENTRY_ENVIRONMENT, default=production"`
}

func NewLogConfigFromEnv() (*LogConfig, error) {
	var cfg LogConfig
	if err := process(context.Background(), nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
