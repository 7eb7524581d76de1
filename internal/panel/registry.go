package panel

import (
	"fmt"
	"sync"
	"time"

	"github.com/glizzus/sound-panel/internal/generator"
)

// DefaultTTL is how long a panel's buttons keep working.
const DefaultTTL = 180 * time.Second

type Panel struct {
	ID        string
	OwnerID   string
	GuildID   string
	ExpiresAt time.Time
}

// Registry tracks live panels. Expired panels are dropped lazily.
type Registry struct {
	ttl         time.Duration
	idGenerator generator.Generator[string]
	now         func() time.Time

	mu     sync.Mutex
	panels map[string]Panel
}

func NewRegistry(ttl time.Duration, idGenerator generator.Generator[string]) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if idGenerator == nil {
		idGenerator = &generator.ShortIDGenerator{}
	}
	return &Registry{
		ttl:         ttl,
		idGenerator: idGenerator,
		now:         time.Now,
		panels:      make(map[string]Panel),
	}
}

func (r *Registry) Create(ownerID, guildID string) (Panel, error) {
	id, err := r.idGenerator.Next()
	if err != nil {
		return Panel{}, fmt.Errorf("failed to generate panel ID: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.pruneLocked(now)

	p := Panel{
		ID:        id,
		OwnerID:   ownerID,
		GuildID:   guildID,
		ExpiresAt: now.Add(r.ttl),
	}
	r.panels[id] = p
	return p, nil
}

// Lookup returns a live panel. ok is false for unknown or expired panels.
func (r *Registry) Lookup(id string) (p Panel, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok = r.panels[id]
	if !ok {
		return Panel{}, false
	}
	if !r.now().Before(p.ExpiresAt) {
		delete(r.panels, id)
		return Panel{}, false
	}
	return p, true
}

// Forget drops a panel whose message could not be sent.
func (r *Registry) Forget(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.panels, id)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.panels)
}

func (r *Registry) pruneLocked(now time.Time) {
	for id, p := range r.panels {
		if !now.Before(p.ExpiresAt) {
			delete(r.panels, id)
		}
	}
}
