// Package theme persists the light/dark flag.
package theme

import (
	"context"
	"fmt"
	"sync"

	"cryptopulse/internal/domain"

	"github.com/rs/zerolog/log"
)

// Key is the single persisted key.
const Key = "theme"

type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Store caches the current mode and writes every change through to the KV.
type Store struct {
	kv   KV
	mu   sync.Mutex
	mode domain.ThemeMode
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv, mode: domain.ThemeLight}
}

// Load reads the persisted mode. Missing or unknown values mean light; a read
// error also leaves light in place and is returned to the caller.
func (s *Store) Load(ctx context.Context) (domain.ThemeMode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok, err := s.kv.Get(ctx, Key)
	if err != nil {
		s.mode = domain.ThemeLight
		return s.mode, fmt.Errorf("load theme: %w", err)
	}
	if !ok {
		s.mode = domain.ThemeLight
		return s.mode, nil
	}
	s.mode = domain.ParseThemeMode(v)
	return s.mode, nil
}

func (s *Store) Mode() domain.ThemeMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Toggle flips the mode and persists it before returning. If the write
// fails the in-memory mode is left unchanged.
func (s *Store) Toggle(ctx context.Context) (domain.ThemeMode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.mode.Toggle()
	if err := s.kv.Set(ctx, Key, string(next)); err != nil {
		return s.mode, fmt.Errorf("persist theme: %w", err)
	}
	s.mode = next
	log.Debug().Str("mode", string(next)).Msg("theme toggled")
	return next, nil
}
