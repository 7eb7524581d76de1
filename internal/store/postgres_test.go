package store_test

import (
	"errors"
	"testing"

	"github.com/glizzus/sound-panel/internal/datalayer"
	"github.com/glizzus/sound-panel/internal/store"
	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := t.Context()
	postgresContainer, err := postgres.Run(
		ctx,
		"postgres",
		postgres.WithDatabase("soundpanel"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	defer func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate postgres container: %v", err)
		}
	}()

	connStr, err := postgresContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create postgres pool: %v", err)
	}
	defer pool.Close()

	if err := datalayer.MigratePostgres(pool); err != nil {
		t.Fatalf("failed to migrate postgres: %v", err)
	}

	s := store.NewPostgresStore(pool)

	t.Run("A missing text channel should be ErrNotFound", func(t *testing.T) {
		if _, err := s.TextChannel(ctx, "1"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("The latest text channel should win", func(t *testing.T) {
		for _, channelID := range []string{"10", "20"} {
			if err := s.SetTextChannel(ctx, "1", channelID); err != nil {
				t.Fatalf("failed to set text channel: %v", err)
			}
		}
		got, err := s.TextChannel(ctx, "1")
		if err != nil {
			t.Fatalf("failed to read text channel: %v", err)
		}
		if got != "20" {
			t.Errorf("expected 20, got %s", got)
		}
	})

	t.Run("Emoji overrides should merge", func(t *testing.T) {
		if err := s.SetEmojiOverrides(ctx, "1", map[string]string{"stop": "🛑", "skip": "⏩"}); err != nil {
			t.Fatalf("failed to set overrides: %v", err)
		}
		if err := s.SetEmojiOverrides(ctx, "1", map[string]string{"stop": "✋"}); err != nil {
			t.Fatalf("failed to set overrides: %v", err)
		}

		got, err := s.EmojiOverrides(ctx, "1")
		if err != nil {
			t.Fatalf("failed to read overrides: %v", err)
		}
		want := map[string]string{"stop": "✋", "skip": "⏩"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("overrides mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Another guild should have no overrides", func(t *testing.T) {
		got, err := s.EmojiOverrides(ctx, "2")
		if err != nil {
			t.Fatalf("failed to read overrides: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected no overrides, got %v", got)
		}
	})
}
