// Package bot runs one Discord bot per token, restarting bots that crash.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/glizzus/sound-panel/internal/schedule"
	"golang.org/x/sync/errgroup"
)

const msgNoTokens = "❔ ما في توكنات متوفرة لتشغيل البوت"

// ErrLoginFailure means Discord rejected the token. The bot is not retried.
var ErrLoginFailure = errors.New("login failure")

// Runner is one lifetime of a bot. Run blocks until ctx is done or the
// bot fails.
type Runner interface {
	Run(ctx context.Context) error
}

// Factory builds a fresh runner for the bot at index.
type Factory func(index int, token string) Runner

type Launcher struct {
	factory      Factory
	startDelay   time.Duration
	restartDelay time.Duration
	// minRestartDelay is the floor applied to restartDelay.
	minRestartDelay time.Duration
}

func NewLauncher(factory Factory, startDelay, restartDelay time.Duration) *Launcher {
	return &Launcher{
		factory:         factory,
		startDelay:      startDelay,
		restartDelay:    restartDelay,
		minRestartDelay: time.Second,
	}
}

// RunAll starts a bot for every token, startDelay apart, and waits until
// all of them have stopped.
func (l *Launcher) RunAll(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		slog.Warn(msgNoTokens)
		return nil
	}

	var g errgroup.Group
	start := time.Now()
	for i, token := range tokens {
		at := start.Add(time.Duration(i) * max(l.startDelay, 0))
		g.Go(func() error {
			if err := schedule.SleepUntil(ctx, at); err != nil {
				return nil
			}
			l.runBot(ctx, i, token)
			return nil
		})
	}
	return g.Wait()
}

func (l *Launcher) runBot(ctx context.Context, index int, token string) {
	logger := slog.With("bot", index+1)
	attempt := 0
	for {
		err := l.factory(index, token).Run(ctx)
		switch {
		case errors.Is(err, ErrLoginFailure):
			logger.Error("Login failed, giving up on this bot", "error", err)
			return
		case ctx.Err() != nil:
			return
		case err == nil:
			logger.Info("Bot stopped")
			return
		}

		attempt++
		wait := max(l.minRestartDelay, l.restartDelay)
		logger.Warn("Bot crashed, restarting", "attempt", attempt, "retryIn", wait, "error", err)
		if err := schedule.Sleep(ctx, wait); err != nil {
			return
		}
	}
}
