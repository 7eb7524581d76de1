// Package logging builds the process-wide slog logger.
//
// Records go to stdout through a tint handler. When a Sentry DSN is
// configured, warnings and errors are also reported to Sentry.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/glizzus/sound-panel/internal/config"
	"github.com/lmittmann/tint"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Setup installs the default logger and returns a flush function that
// must run before the process exits.
func Setup(w io.Writer, cfg *config.LogConfig) (flush func(), err error) {
	console := tint.NewHandler(w, &tint.Options{
		Level:      cfg.SlogLevel(),
		TimeFormat: time.DateTime,
	})

	if cfg.SentryDSN == "" {
		slog.SetDefault(slog.New(console))
		return func() {}, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize sentry: %w", err)
	}

	logger := slog.New(slogmulti.Fanout(
		console,
		slogsentry.Option{Level: slog.LevelWarn}.NewSentryHandler(),
	))
	slog.SetDefault(logger)

	return func() { sentry.Flush(2 * time.Second) }, nil
}
