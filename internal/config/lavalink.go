package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type LavalinkConfig struct {
	Host         string        `env:"LAVA_HOST, default=127.0.0.1" validate:"required"`
	Port         int           `env:"LAVA_PORT, default=2333" validate:"min=1,max=65535"`
	Password     string        `env:"LAVA_PASSWORD, default=youshallnotpass"`
	RawSSL       string        `env:"LAVA_SSL, default=false"`
	SearchPrefix string        `env:"LAVA_SEARCH_PREFIX, default=ytsearch" validate:"required"`
	RetryDelay   time.Duration `env:"LAVA_RETRY_DELAY, default=5s" validate:"min=0"`
}

func NewLavalinkConfigFromEnv() (*LavalinkConfig, error) {
	return newLavalinkConfig(context.Background(), nil)
}

func newLavalinkConfig(ctx context.Context, l envconfig.Lookuper) (*LavalinkConfig, error) {
	var cfg LavalinkConfig
	if err := process(ctx, l, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SSL reports whether the node is reached over TLS.
// Only "true", "1" and "yes" enable it.
func (c *LavalinkConfig) SSL() bool {
	switch strings.ToLower(strings.TrimSpace(c.RawSSL)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func (c *LavalinkConfig) BaseURL() string {
	scheme := "http"
	if c.SSL() {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.Host, c.Port)
}

func (c *LavalinkConfig) WebSocketURL() string {
	scheme := "ws"
	if c.SSL() {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s:%d/v4/websocket", scheme, c.Host, c.Port)
}
