package logging_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/glizzus/sound-panel/internal/config"
	"github.com/glizzus/sound-panel/internal/logging"
)

func TestSetupWithoutSentry(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	flush, err := logging.Setup(&buf, &config.LogConfig{Level: "warn"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer flush()

	slog.Info("hidden message")
	slog.Warn("visible message", "bot", 1)

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Errorf("info record should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "visible message") {
		t.Errorf("warn record missing from output: %q", out)
	}
}
