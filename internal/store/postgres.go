package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore expects the schema to be migrated already.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

var _ GuildStore = (*PostgresStore)(nil)

func (s *PostgresStore) TextChannel(ctx context.Context, guildID string) (string, error) {
	const query = `SELECT channel_id FROM guild_text_channel WHERE guild_id = $1`

	var channelID string
	if err := s.db.QueryRow(ctx, query, guildID).Scan(&channelID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to query text channel: %w", err)
	}
	return channelID, nil
}

func (s *PostgresStore) SetTextChannel(ctx context.Context, guildID, channelID string) error {
	const query = `
	INSERT INTO guild_text_channel (guild_id, channel_id)
	VALUES ($1, $2)
	ON CONFLICT (guild_id) DO UPDATE SET
		channel_id = EXCLUDED.channel_id,
		updated_at = now()
	`

	if _, err := s.db.Exec(ctx, query, guildID, channelID); err != nil {
		return fmt.Errorf("failed to save text channel: %w", err)
	}
	return nil
}

func (s *PostgresStore) EmojiOverrides(ctx context.Context, guildID string) (map[string]string, error) {
	const query = `SELECT emoji_key, emoji_value FROM guild_emoji_override WHERE guild_id = $1`

	rows, err := s.db.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to query emoji overrides: %w", err)
	}
	defer rows.Close()

	overrides := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan emoji override: %w", err)
		}
		overrides[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read emoji overrides: %w", err)
	}
	return overrides, nil
}

func (s *PostgresStore) SetEmojiOverrides(ctx context.Context, guildID string, overrides map[string]string) error {
	const query = `
	INSERT INTO guild_emoji_override (guild_id, emoji_key, emoji_value)
	VALUES ($1, $2, $3)
	ON CONFLICT (guild_id, emoji_key) DO UPDATE SET
		emoji_value = EXCLUDED.emoji_value,
		updated_at = now()
	`

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	batch := &pgx.Batch{}
	for key, value := range overrides {
		batch.Queue(query, guildID, key, value)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save emoji overrides: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
