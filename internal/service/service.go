package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/xtding233/lighting-backend/internal/logging"
	"github.com/xtding233/lighting-backend/internal/preset"
	"github.com/xtding233/lighting-backend/internal/registry"
)

// Service resolves lighting presets for players and keeps the registry in
// sync with the preset files.
type Service struct {
	resolver preset.Resolver
	reg      *registry.Registry
	log      logging.Logger

	// mu serializes every resolve-and-store so Reload never writes back a
	// stale scene or a removed player.
	mu        sync.Mutex
	overrides map[string]preset.Overrides // replayed on Reload
}

func New(resolver preset.Resolver, reg *registry.Registry, log logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{
		resolver:  resolver,
		reg:       reg,
		log:       log,
		overrides: make(map[string]preset.Overrides),
	}
}

// Assign resolves scene + player presets plus overrides and stores the result.
func (s *Service) Assign(player, scene string, o preset.Overrides) (registry.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assignLocked(player, scene, o)
}

func (s *Service) assignLocked(player, scene string, o preset.Overrides) (registry.Entry, error) {
	if player == "" {
		return registry.Entry{}, fmt.Errorf("%w: empty player", preset.ErrBadName)
	}
	raw, l, err := s.resolver.Resolve(scene, player, o)
	if err != nil {
		return registry.Entry{}, err
	}
	s.overrides[player] = o

	e := s.reg.Set(player, scene, l)
	s.log.Infof("player %s: scene %q, preset version %q, revision %s", player, scene, raw.Version, e.Revision)
	return e, nil
}

// Override re-resolves a tracked player in its current scene. o replaces the
// player's previous overrides.
func (s *Service) Override(player string, o preset.Overrides) (registry.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.reg.Get(player)
	if err != nil {
		return registry.Entry{}, err
	}
	return s.assignLocked(player, cur.Scene, o)
}

// Reload drops cached presets and re-resolves every tracked player with its
// stored overrides. A player whose presets no longer resolve keeps its
// previous lighting. Assign, Override and Remove wait for it to finish.
func (s *Service) Reload() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resolver.Invalidate()
	updated := 0
	for _, player := range s.reg.Players() {
		cur, err := s.reg.Get(player)
		if err != nil {
			continue
		}
		_, l, err := s.resolver.Resolve(cur.Scene, player, s.overrides[player])
		if err != nil {
			s.log.Warnf("reload player %s: keeping revision %s: %v", player, cur.Revision, err)
			continue
		}
		if l == cur.Lighting {
			continue
		}
		e := s.reg.Set(player, cur.Scene, l)
		s.log.Debugf("reload player %s: revision %s", player, e.Revision)
		updated++
	}
	return updated
}

func (s *Service) Get(player string) (registry.Entry, error) {
	return s.reg.Get(player)
}

// Remove forgets a player and ends its watches.
func (s *Service) Remove(player string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reg.Delete(player)
	delete(s.overrides, player)
}

// Watch streams entries for player until ctx is done or the player is
// removed. The returned channel is closed afterwards.
func (s *Service) Watch(ctx context.Context, player string) <-chan registry.Entry {
	in, cancel := s.reg.Subscribe(player)
	out := make(chan registry.Entry)
	go func() {
		defer close(out)
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// WantedExposure evaluates the player's exposure equation for an observed
// luminance.
func (s *Service) WantedExposure(player string, observed float32) (float32, error) {
	e, err := s.reg.Get(player)
	if err != nil {
		return 0, err
	}
	return e.Lighting.Exposure.WantedExposure(observed), nil
}
