package config

import (
	"context"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

// EmojiConfig holds the panel emojis used when a guild has no override.
type EmojiConfig struct {
	Pause   string `env:"EMOJI_PAUSE, default=⏸️"`
	Resume  string `env:"EMOJI_RESUME, default=▶️"`
	Stop    string `env:"EMOJI_STOP, default=⏹️"`
	Skip    string `env:"EMOJI_SKIP, default=⏭️"`
	Restart string `env:"EMOJI_RESTART, default=🔁"`
	VolUp   string `env:"EMOJI_VOL_UP, default=🔼"`
	VolDown string `env:"EMOJI_VOL_DOWN, default=🔽"`
}

var defaultEmojis = EmojiConfig{
	Pause:   "⏸️",
	Resume:  "▶️",
	Stop:    "⏹️",
	Skip:    "⏭️",
	Restart: "🔁",
	VolUp:   "🔼",
	VolDown: "🔽",
}

func NewEmojiConfigFromEnv() (*EmojiConfig, error) {
	return newEmojiConfig(context.Background(), nil)
}

func newEmojiConfig(ctx context.Context, l envconfig.Lookuper) (*EmojiConfig, error) {
	var cfg EmojiConfig
	if err := process(ctx, l, &cfg); err != nil {
		return nil, err
	}

	// A variable that is set but blank keeps the default.
	fallback := func(v *string, def string) {
		if *v = strings.TrimSpace(*v); *v == "" {
			*v = def
		}
	}
	fallback(&cfg.Pause, defaultEmojis.Pause)
	fallback(&cfg.Resume, defaultEmojis.Resume)
	fallback(&cfg.Stop, defaultEmojis.Stop)
	fallback(&cfg.Skip, defaultEmojis.Skip)
	fallback(&cfg.Restart, defaultEmojis.Restart)
	fallback(&cfg.VolUp, defaultEmojis.VolUp)
	fallback(&cfg.VolDown, defaultEmojis.VolDown)

	return &cfg, nil
}
