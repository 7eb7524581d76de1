package emoji

import (
	"context"
	"fmt"
	"sync"
)

// OverrideStore persists per-guild emoji overrides.
type OverrideStore interface {
	EmojiOverrides(ctx context.Context, guildID string) (map[string]string, error)
	SetEmojiOverrides(ctx context.Context, guildID string, overrides map[string]string) error
}

// Registry resolves the emoji set of a guild. One registry is shared by
// every bot in the process, so an override set through one bot shows up on
// the panels of all of them.
type Registry struct {
	defaults Set
	store    OverrideStore

	mu    sync.RWMutex
	cache map[string]map[Key]string
}

func NewRegistry(defaults Set, store OverrideStore) *Registry {
	return &Registry{
		defaults: defaults,
		store:    store,
		cache:    make(map[string]map[Key]string),
	}
}

// ForGuild returns the defaults merged with the guild's overrides.
// An empty guild ID yields the defaults.
func (r *Registry) ForGuild(ctx context.Context, guildID string) (Set, error) {
	if guildID == "" {
		return r.defaults.Merge(nil), nil
	}
	overrides, err := r.overrides(ctx, guildID)
	if err != nil {
		return nil, err
	}
	return r.defaults.Merge(overrides), nil
}

// Update parses raw values and stores the non-blank ones as overrides.
// Slots missing from raw, or blank, keep their current value.
func (r *Registry) Update(ctx context.Context, guildID string, raw map[Key]string) error {
	parsed := make(map[string]string)
	for _, k := range Keys {
		if v, ok := Parse(raw[k]); ok {
			parsed[string(k)] = v
		}
	}
	if len(parsed) == 0 {
		return nil
	}

	if err := r.store.SetEmojiOverrides(ctx, guildID, parsed); err != nil {
		return fmt.Errorf("failed to save emoji overrides: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.cache[guildID]
	if !ok {
		// Let the next read reload the merged result from the store.
		return nil
	}
	for k, v := range parsed {
		current[Key(k)] = v
	}
	return nil
}

func (r *Registry) overrides(ctx context.Context, guildID string) (map[Key]string, error) {
	r.mu.RLock()
	cached, ok := r.cache[guildID]
	if ok {
		cached = copyOverrides(cached)
	}
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	stored, err := r.store.EmojiOverrides(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to load emoji overrides: %w", err)
	}
	overrides := make(map[Key]string, len(stored))
	for k, v := range stored {
		overrides[Key(k)] = v
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.cache[guildID]; ok {
		return copyOverrides(existing), nil
	}
	r.cache[guildID] = overrides
	return copyOverrides(overrides), nil
}

func copyOverrides(m map[Key]string) map[Key]string {
	c := make(map[Key]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
