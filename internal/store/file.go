package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/schollz/jsonstore"
)

const (
	TextChannelsFile = "text_channels.json"
	EmojisFile       = "emojis.json"
)

// FileStore keeps guild settings as JSON files in a data directory,
// usually a mounted volume. Every change is written to disk immediately.
type FileStore struct {
	dir string

	// saveMu serializes writes of the same file.
	saveMu   sync.Mutex
	channels *jsonstore.JSONStore
	emojis   *jsonstore.JSONStore
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &FileStore{dir: dir}

	channels, migrated, err := openTextChannels(filepath.Join(dir, TextChannelsFile))
	if err != nil {
		return nil, err
	}
	s.channels = channels
	if migrated {
		if err := s.save(s.channels, TextChannelsFile); err != nil {
			return nil, fmt.Errorf("failed to rewrite legacy text channels: %w", err)
		}
	}

	emojis, err := openJSONStore(filepath.Join(dir, EmojisFile))
	if err != nil {
		return nil, err
	}
	s.emojis = emojis

	return s, nil
}

var _ GuildStore = (*FileStore)(nil)

func (s *FileStore) TextChannel(_ context.Context, guildID string) (string, error) {
	var channelID int64
	if err := s.channels.Get(guildID, &channelID); err != nil {
		var noSuchKey jsonstore.NoSuchKeyError
		if errors.As(err, &noSuchKey) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read text channel: %w", err)
	}
	return strconv.FormatInt(channelID, 10), nil
}

func (s *FileStore) SetTextChannel(_ context.Context, guildID, channelID string) error {
	id, err := strconv.ParseInt(channelID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid channel id %q: %w", channelID, err)
	}
	if err := s.channels.Set(guildID, id); err != nil {
		return fmt.Errorf("failed to set text channel: %w", err)
	}
	return s.save(s.channels, TextChannelsFile)
}

func (s *FileStore) EmojiOverrides(_ context.Context, guildID string) (map[string]string, error) {
	overrides := make(map[string]string)
	if err := s.emojis.Get(guildID, &overrides); err != nil {
		var noSuchKey jsonstore.NoSuchKeyError
		if errors.As(err, &noSuchKey) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read emoji overrides: %w", err)
	}
	return overrides, nil
}

func (s *FileStore) SetEmojiOverrides(ctx context.Context, guildID string, overrides map[string]string) error {
	s.saveMu.Lock()
	current, err := s.EmojiOverrides(ctx, guildID)
	if err != nil {
		s.saveMu.Unlock()
		return err
	}
	for k, v := range overrides {
		current[k] = v
	}
	err = s.emojis.Set(guildID, current)
	s.saveMu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to set emoji overrides: %w", err)
	}
	return s.save(s.emojis, EmojisFile)
}

func (s *FileStore) Close() error {
	return nil
}

// save writes the store next to its final path and renames it into place
// so a crash never leaves a truncated file behind.
func (s *FileStore) save(ks *jsonstore.JSONStore, name string) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := jsonstore.Save(ks, tmp); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

// openJSONStore opens path, starting empty when the file is missing or
// unreadable.
func openJSONStore(path string) (*jsonstore.JSONStore, error) {
	ks, err := jsonstore.Open(path)
	if err == nil {
		return ks, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return new(jsonstore.JSONStore), nil
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	slog.Warn("Ignoring unreadable data file", "path", path, "error", err)
	return new(jsonstore.JSONStore), nil
}

// openTextChannels also accepts the older flat {"guild_id": channel_id}
// layout. migrated reports whether that layout was found and converted.
func openTextChannels(path string) (ks *jsonstore.JSONStore, migrated bool, err error) {
	ks, err = jsonstore.Open(path)
	if err == nil {
		return ks, false, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return new(jsonstore.JSONStore), false, nil
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return nil, false, fmt.Errorf("failed to open %s: %w", path, err)
	}

	legacy, lerr := readLegacyTextChannels(path)
	if lerr != nil {
		slog.Warn("Ignoring unreadable data file", "path", path, "error", err)
		return new(jsonstore.JSONStore), false, nil
	}

	ks = new(jsonstore.JSONStore)
	for guildID, channelID := range legacy {
		if err := ks.Set(guildID, channelID); err != nil {
			return nil, false, err
		}
	}
	slog.Info("Imported legacy text channel file", "path", path, "guilds", len(legacy))
	return ks, true, nil
}

func readLegacyTextChannels(path string) (map[string]int64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var legacy map[string]int64
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, err
	}
	return legacy, nil
}
