package config

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	minMessageCache     = 100
	defaultStartDelay   = time.Second
	defaultRestartDelay = 5 * time.Second
)

type DiscordConfig struct {
	Prefix      string `env:"DISCORD_PREFIX, default=!" validate:"required"`
	MaxMessages int    `env:"DISCORD_MAX_MESSAGES, default=200"`
	// GuildID limits slash command registration to one guild.
	// Commands are registered globally when it is empty.
	GuildID string `env:"DISCORD_GUILD_ID" validate:"omitempty,numeric"`

	RawStartDelay   string `env:"BOT_START_DELAY, default=1.0"`
	RawRestartDelay string `env:"BOT_RESTART_DELAY, default=5.0"`
}

func NewDiscordConfigFromEnv() (*DiscordConfig, error) {
	return newDiscordConfig(context.Background(), nil)
}

func newDiscordConfig(ctx context.Context, l envconfig.Lookuper) (*DiscordConfig, error) {
	var cfg DiscordConfig
	if err := process(ctx, l, &cfg); err != nil {
		return nil, err
	}
	if cfg.MaxMessages < minMessageCache {
		cfg.MaxMessages = minMessageCache
	}
	return &cfg, nil
}

// StartDelay is the pause between launching two consecutive bots.
func (c *DiscordConfig) StartDelay() time.Duration {
	return parseSeconds(c.RawStartDelay, defaultStartDelay)
}

// RestartDelay is the pause before a crashed bot is started again.
func (c *DiscordConfig) RestartDelay() time.Duration {
	return parseSeconds(c.RawRestartDelay, defaultRestartDelay)
}

// parseSeconds reads a decimal number of seconds, falling back to def
// when the value is not a finite number a time.Duration can hold.
func parseSeconds(raw string, def time.Duration) time.Duration {
	secs, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return def
	}
	nanos := secs * float64(time.Second)
	if nanos >= math.MaxInt64 || nanos <= math.MinInt64 {
		return def
	}
	return time.Duration(nanos)
}
