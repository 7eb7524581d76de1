package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const maxWatchRetries = 5

// RedisStore keeps text channels in one hash and each guild's emoji
// overrides as a msgpack encoded map.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

var _ GuildStore = (*RedisStore)(nil)

func (s *RedisStore) textChannelsKey() string {
	return s.prefix + ":text_channels"
}

func (s *RedisStore) emojisKey(guildID string) string {
	return s.prefix + ":emojis:" + guildID
}

func (s *RedisStore) TextChannel(ctx context.Context, guildID string) (string, error) {
	channelID, err := s.client.HGet(ctx, s.textChannelsKey(), guildID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read text channel: %w", err)
	}
	return channelID, nil
}

func (s *RedisStore) SetTextChannel(ctx context.Context, guildID, channelID string) error {
	if err := s.client.HSet(ctx, s.textChannelsKey(), guildID, channelID).Err(); err != nil {
		return fmt.Errorf("failed to save text channel: %w", err)
	}
	return nil
}

type emojiOverrides struct {
	Values map[string]string `msgpack:"values"`
}

func decodeOverrides(raw []byte) (map[string]string, error) {
	var decoded emojiOverrides
	if err := msgpack.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	if decoded.Values == nil {
		decoded.Values = make(map[string]string)
	}
	return decoded.Values, nil
}

func (s *RedisStore) EmojiOverrides(ctx context.Context, guildID string) (map[string]string, error) {
	raw, err := s.client.Get(ctx, s.emojisKey(guildID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read emoji overrides: %w", err)
	}
	overrides, err := decodeOverrides(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode emoji overrides: %w", err)
	}
	return overrides, nil
}

// SetEmojiOverrides merges under WATCH so concurrent writers from other
// processes do not drop each other's keys.
func (s *RedisStore) SetEmojiOverrides(ctx context.Context, guildID string, overrides map[string]string) error {
	key := s.emojisKey(guildID)

	merge := func(tx *redis.Tx) error {
		current := make(map[string]string)
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if current, err = decodeOverrides(raw); err != nil {
				return err
			}
		}

		for k, v := range overrides {
			current[k] = v
		}
		encoded, err := msgpack.Marshal(emojiOverrides{Values: current})
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, 0)
			return nil
		})
		return err
	}

	for range maxWatchRetries {
		err := s.client.Watch(ctx, merge, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to save emoji overrides: %w", err)
		}
		return nil
	}
	return fmt.Errorf("failed to save emoji overrides: too much contention on %s", key)
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
