package e2e

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/glizzus/sound-panel/internal/datalayer"
	"github.com/glizzus/sound-panel/internal/generator"
	"github.com/glizzus/sound-panel/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/redis"
)

// RandomSnowFlakeGenerator yields snowflake-sized IDs so tests sharing a
// database do not collide.
type RandomSnowFlakeGenerator struct {
	counter uint64
}

func (g *RandomSnowFlakeGenerator) Next() (string, error) {
	const min = 1e17
	atomic.CompareAndSwapUint64(&g.counter, 0, min)
	id := atomic.AddUint64(&g.counter, 1)
	return fmt.Sprintf("%d", id), nil
}

var _ generator.Generator[string] = (*RandomSnowFlakeGenerator)(nil)

// GuildIDs is shared by every test so their guilds never overlap.
var GuildIDs = &RandomSnowFlakeGenerator{}

var seedOnce sync.Once

// SeedGlobalNoise fills the store with settings of unrelated guilds.
func SeedGlobalNoise(t *testing.T, s store.GuildStore) {
	t.Helper()
	seedOnce.Do(func() {
		for i := range 100 {
			guildID, _ := GuildIDs.Next()
			if err := s.SetTextChannel(t.Context(), guildID, fmt.Sprintf("%d", uint64(1e17)+uint64(i))); err != nil {
				t.Fatalf("failed to seed text channel: %v", err)
			}
			if err := s.SetEmojiOverrides(t.Context(), guildID, map[string]string{"stop": "🛑"}); err != nil {
				t.Fatalf("failed to seed emojis: %v", err)
			}
		}
	})
}

var (
	postgresOnce      sync.Once
	postgresContainer *postgres.PostgresContainer
	postgresConnStr   string
	postgresErr       error
	postgresUsers     sync.WaitGroup

	redisOnce      sync.Once
	redisContainer *redis.RedisContainer
	redisURI       string
	redisErr       error
	redisUsers     sync.WaitGroup
)

// UsePostgres signals that the test is using Postgres as its database.
// This will either provision or reuse a Postgres container for the test.
// Do not expect a clean state in the database; it is shared across tests
// to simulate real-world usage.
func UsePostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	postgresOnce.Do(func() {
		ctx := context.Background()
		postgresContainer, postgresErr = postgres.Run(
			ctx,
			"postgres",
			postgres.WithDatabase("soundpanel"),
			postgres.WithUsername("user"),
			postgres.WithPassword("password"),
			postgres.BasicWaitStrategies(),
		)
		if postgresErr != nil {
			return
		}
		postgresConnStr, postgresErr = postgresContainer.ConnectionString(ctx)
		if postgresErr != nil {
			return
		}

		var pool *pgxpool.Pool
		pool, postgresErr = pgxpool.New(ctx, postgresConnStr)
		if postgresErr != nil {
			return
		}
		defer pool.Close()

		postgresErr = datalayer.MigratePostgres(pool)
	})

	if postgresErr != nil {
		t.Fatalf("failed to start postgres container: %v", postgresErr)
	}
	postgresUsers.Add(1)
	t.Cleanup(postgresUsers.Done)

	return postgresConnStr
}

// PostgresStore connects a store to the shared database.
// It performs no modifications or migrations on the database schema.
func PostgresStore(t *testing.T, connStr string) *store.PostgresStore {
	t.Helper()
	pool, err := pgxpool.New(t.Context(), connStr)
	if err != nil {
		t.Fatalf("failed to create postgres pool: %v", err)
	}

	s := store.NewPostgresStore(pool)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// UseRedis provisions or reuses a Redis container for the test.
func UseRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	redisOnce.Do(func() {
		ctx := context.Background()
		redisContainer, redisErr = redis.Run(ctx, "redis:7")
		if redisErr != nil {
			return
		}
		redisURI, redisErr = redisContainer.ConnectionString(ctx)
	})

	if redisErr != nil {
		t.Fatalf("failed to start redis container: %v", redisErr)
	}
	redisUsers.Add(1)
	t.Cleanup(redisUsers.Done)

	return redisURI
}

// RedisStore connects a store with its own key prefix to the shared Redis.
func RedisStore(t *testing.T, uri, prefix string) *store.RedisStore {
	t.Helper()
	client, err := datalayer.NewRedisClient(t.Context(), uri)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}

	s := store.NewRedisStore(client, prefix)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TerminatePostgresForE2E() {
	postgresUsers.Wait()
	if postgresContainer != nil {
		if err := postgresContainer.Terminate(context.Background()); err != nil {
			fmt.Printf("failed to terminate postgres container: %v", err)
		}
	}
}

func TerminateRedisForE2E() {
	redisUsers.Wait()
	if redisContainer != nil {
		if err := redisContainer.Terminate(context.Background()); err != nil {
			fmt.Printf("failed to terminate redis container: %v", err)
		}
	}
}
