// Package store persists per-guild bot settings: the text channel that
// receives control panels and the emoji overrides of the panel buttons.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a guild has no stored value.
var ErrNotFound = errors.New("not found")

type GuildStore interface {
	TextChannel(ctx context.Context, guildID string) (string, error)
	SetTextChannel(ctx context.Context, guildID, channelID string) error

	// EmojiOverrides returns an empty map for a guild without overrides.
	EmojiOverrides(ctx context.Context, guildID string) (map[string]string, error)
	// SetEmojiOverrides merges overrides into the guild's stored set.
	SetEmojiOverrides(ctx context.Context, guildID string, overrides map[string]string) error

	Close() error
}
