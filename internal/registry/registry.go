package registry

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xtding233/lighting-backend/internal/lighting"
)

var ErrUnknownPlayer = errors.New("unknown player")

// Entry is the lighting currently assigned to a player.
type Entry struct {
	Player    string            `json:"player"`
	Scene     string            `json:"scene,omitempty"`
	Revision  string            `json:"revision"`
	UpdatedAt time.Time         `json:"updated_at"`
	Lighting  lighting.Lighting `json:"lighting"`
}

// Registry holds per-player lighting. Lighting is stored and returned by
// value, so readers never observe a write in progress.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
	subs    map[string]map[*subscriber]struct{}
	now     func() time.Time
}

type subscriber struct {
	ch chan Entry
}

func New() *Registry {
	return &Registry{
		entries: make(map[string]Entry),
		subs:    make(map[string]map[*subscriber]struct{}),
		now:     time.Now,
	}
}

// Set stores l for player under a fresh revision and notifies subscribers.
func (r *Registry) Set(player, scene string, l lighting.Lighting) Entry {
	e := Entry{
		Player:    player,
		Scene:     scene,
		Revision:  uuid.NewString(),
		UpdatedAt: r.now(),
		Lighting:  l,
	}

	r.mu.Lock()
	r.entries[player] = e
	for s := range r.subs[player] {
		offer(s.ch, e)
	}
	r.mu.Unlock()
	return e
}

func (r *Registry) Get(player string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[player]
	if !ok {
		return Entry{}, ErrUnknownPlayer
	}
	return e, nil
}

// Delete forgets player and closes its subscriber channels.
func (r *Registry) Delete(player string) {
	r.mu.Lock()
	delete(r.entries, player)
	for s := range r.subs[player] {
		close(s.ch)
	}
	delete(r.subs, player)
	r.mu.Unlock()
}

// Players returns the tracked player names, sorted.
func (r *Registry) Players() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.entries))
	for p := range r.entries {
		out = append(out, p)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Subscribe returns a channel carrying the latest entry for player. If the
// player already has lighting, it is delivered first. A slow reader skips
// intermediate entries but always sees the most recent one. The channel is
// closed by cancel or when the player is deleted, whichever comes first.
func (r *Registry) Subscribe(player string) (<-chan Entry, func()) {
	s := &subscriber{ch: make(chan Entry, 1)}

	r.mu.Lock()
	if r.subs[player] == nil {
		r.subs[player] = make(map[*subscriber]struct{})
	}
	r.subs[player][s] = struct{}{}
	if e, ok := r.entries[player]; ok {
		offer(s.ch, e)
	}
	r.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			subs := r.subs[player]
			if _, ok := subs[s]; !ok {
				return // already closed by Delete
			}
			delete(subs, s)
			if len(subs) == 0 {
				delete(r.subs, player)
			}
			close(s.ch)
		})
	}
	return s.ch, cancel
}

// offer replaces any undelivered entry with e. Callers hold r.mu, which is
// the only writer to ch.
func offer(ch chan Entry, e Entry) {
	select {
	case ch <- e:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- e
}
