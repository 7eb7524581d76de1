package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sethvargo/go-envconfig"
)

func TestDiscordConfigDefaults(t *testing.T) {
	cfg, err := newDiscordConfig(t.Context(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Prefix != "!" {
		t.Errorf("expected prefix !, got %q", cfg.Prefix)
	}
	if cfg.MaxMessages != 200 {
		t.Errorf("expected 200 cached messages, got %d", cfg.MaxMessages)
	}
	if cfg.StartDelay() != time.Second {
		t.Errorf("expected start delay 1s, got %v", cfg.StartDelay())
	}
	if cfg.RestartDelay() != 5*time.Second {
		t.Errorf("expected restart delay 5s, got %v", cfg.RestartDelay())
	}
}

func TestDiscordConfigOverrides(t *testing.T) {
	tc := []struct {
		name         string
		env          map[string]string
		maxMessages  int
		startDelay   time.Duration
		restartDelay time.Duration
	}{
		{
			name:         "message cache is floored",
			env:          map[string]string{"DISCORD_MAX_MESSAGES": "10"},
			maxMessages:  100,
			startDelay:   time.Second,
			restartDelay: 5 * time.Second,
		},
		{
			name:         "fractional delays",
			env:          map[string]string{"BOT_START_DELAY": "0.5", "BOT_RESTART_DELAY": "2.25"},
			maxMessages:  200,
			startDelay:   500 * time.Millisecond,
			restartDelay: 2250 * time.Millisecond,
		},
		{
			name:         "invalid delays fall back",
			env:          map[string]string{"BOT_START_DELAY": "soon", "BOT_RESTART_DELAY": ""},
			maxMessages:  200,
			startDelay:   time.Second,
			restartDelay: 5 * time.Second,
		},
		{
			name:         "non finite delays fall back",
			env:          map[string]string{"BOT_START_DELAY": "NaN", "BOT_RESTART_DELAY": "+Inf"},
			maxMessages:  200,
			startDelay:   time.Second,
			restartDelay: 5 * time.Second,
		},
		{
			name:         "delays too long for a duration fall back",
			env:          map[string]string{"BOT_START_DELAY": "1e30", "BOT_RESTART_DELAY": "-1e30"},
			maxMessages:  200,
			startDelay:   time.Second,
			restartDelay: 5 * time.Second,
		},
	}

	for _, test := range tc {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := newDiscordConfig(t.Context(), envconfig.MapLookuper(test.env))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.MaxMessages != test.maxMessages {
				t.Errorf("expected %d cached messages, got %d", test.maxMessages, cfg.MaxMessages)
			}
			if cfg.StartDelay() != test.startDelay {
				t.Errorf("expected start delay %v, got %v", test.startDelay, cfg.StartDelay())
			}
			if cfg.RestartDelay() != test.restartDelay {
				t.Errorf("expected restart delay %v, got %v", test.restartDelay, cfg.RestartDelay())
			}
		})
	}
}

func TestLavalinkConfigURLs(t *testing.T) {
	tc := []struct {
		name    string
		env     map[string]string
		baseURL string
		wsURL   string
	}{
		{
			name:    "defaults",
			env:     map[string]string{},
			baseURL: "http://127.0.0.1:2333",
			wsURL:   "ws://127.0.0.1:2333/v4/websocket",
		},
		{
			name:    "ssl enabled with yes",
			env:     map[string]string{"LAVA_HOST": "lava.example", "LAVA_PORT": "443", "LAVA_SSL": "YES"},
			baseURL: "https://lava.example:443",
			wsURL:   "wss://lava.example:443/v4/websocket",
		},
		{
			name:    "unknown ssl value is false",
			env:     map[string]string{"LAVA_SSL": "on"},
			baseURL: "http://127.0.0.1:2333",
			wsURL:   "ws://127.0.0.1:2333/v4/websocket",
		},
	}

	for _, test := range tc {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := newLavalinkConfig(t.Context(), envconfig.MapLookuper(test.env))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := cfg.BaseURL(); got != test.baseURL {
				t.Errorf("expected base URL %s, got %s", test.baseURL, got)
			}
			if got := cfg.WebSocketURL(); got != test.wsURL {
				t.Errorf("expected websocket URL %s, got %s", test.wsURL, got)
			}
		})
	}
}

func TestLavalinkConfigRejectsBadPort(t *testing.T) {
	_, err := newLavalinkConfig(t.Context(), envconfig.MapLookuper(map[string]string{"LAVA_PORT": "70000"}))
	if err == nil {
		t.Fatal("expected an error for an out of range port")
	}
}

func TestEmojiConfig(t *testing.T) {
	cfg, err := newEmojiConfig(t.Context(), envconfig.MapLookuper(map[string]string{
		"EMOJI_STOP":     "  ",
		"EMOJI_SKIP":     " 123456 ",
		"EMOJI_VOL_DOWN": "<:down:42>",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := &EmojiConfig{
		Pause:   "⏸️",
		Resume:  "▶️",
		Stop:    "⏹️",
		Skip:    "123456",
		Restart: "🔁",
		VolUp:   "🔼",
		VolDown: "<:down:42>",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("EmojiConfig mismatch (-want +got):\n%s", diff)
	}
}

func TestStorageConfigRejectsUnknownBackend(t *testing.T) {
	_, err := newStorageConfig(t.Context(), envconfig.MapLookuper(map[string]string{"STORAGE_BACKEND": "sqlite"}))
	if err == nil {
		t.Fatal("expected an error for an unknown backend")
	}
}

func TestMinioConfigDisabledByDefault(t *testing.T) {
	cfg, err := newMinioConfig(t.Context(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Enabled() {
		t.Error("expected attachment staging to be disabled without an endpoint")
	}
}
