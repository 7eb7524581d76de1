package store_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/glizzus/sound-panel/internal/datalayer"
	"github.com/glizzus/sound-panel/internal/store"
	"github.com/google/go-cmp/cmp"
	"github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestRedisStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := t.Context()
	redisContainer, err := redis.Run(ctx, "redis:7")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	defer func() {
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate redis container: %v", err)
		}
	}()

	uri, err := redisContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	client, err := datalayer.NewRedisClient(ctx, uri)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}

	s := store.NewRedisStore(client, "test")
	defer s.Close()

	t.Run("A missing text channel should be ErrNotFound", func(t *testing.T) {
		if _, err := s.TextChannel(ctx, "1"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("A text channel should round trip", func(t *testing.T) {
		if err := s.SetTextChannel(ctx, "1", "42"); err != nil {
			t.Fatalf("failed to set text channel: %v", err)
		}
		got, err := s.TextChannel(ctx, "1")
		if err != nil {
			t.Fatalf("failed to read text channel: %v", err)
		}
		if got != "42" {
			t.Errorf("expected 42, got %s", got)
		}
	})

	t.Run("Concurrent emoji updates should all be kept", func(t *testing.T) {
		updates := []map[string]string{
			{"stop": "🛑"},
			{"skip": "⏩"},
			{"pause": "⏯️"},
			{"vol_up": "➕"},
		}

		var wg sync.WaitGroup
		errs := make(chan error, len(updates))
		for _, update := range updates {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- s.SetEmojiOverrides(ctx, "1", update)
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatalf("failed to set overrides: %v", err)
			}
		}

		got, err := s.EmojiOverrides(ctx, "1")
		if err != nil {
			t.Fatalf("failed to read overrides: %v", err)
		}
		want := map[string]string{"stop": "🛑", "skip": "⏩", "pause": "⏯️", "vol_up": "➕"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("overrides mismatch (-want +got):\n%s", diff)
		}
	})
}
