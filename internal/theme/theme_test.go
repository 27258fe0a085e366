package theme

import (
	"context"
	"errors"
	"testing"

	"cryptopulse/internal/cache"
	"cryptopulse/internal/domain"
	"cryptopulse/internal/render"
)

type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("redis down")
}

func (failingKV) Set(context.Context, string, string) error {
	return errors.New("redis down")
}

func TestToggleSurvivesReload(t *testing.T) {
	ctx := context.Background()
	kv := cache.NewMemoryKV()

	s := NewStore(kv)
	if mode, err := s.Load(ctx); err != nil || mode != domain.ThemeLight {
		t.Fatalf("expected default light, got %s %v", mode, err)
	}

	mode, err := s.Toggle(ctx)
	if err != nil || mode != domain.ThemeDark {
		t.Fatalf("expected dark after toggle, got %s %v", mode, err)
	}
	if v, _, _ := kv.Get(ctx, Key); v != "dark" {
		t.Fatalf("expected persisted dark, got %q", v)
	}
	if render.ThemeClass(mode) != "dark-mode" {
		t.Fatal("dark mode should apply the dark-mode class")
	}

	reloaded := NewStore(kv)
	if mode, _ := reloaded.Load(ctx); mode != domain.ThemeDark {
		t.Fatalf("expected dark after reload, got %s", mode)
	}

	mode, _ = reloaded.Toggle(ctx)
	if mode != domain.ThemeLight {
		t.Fatalf("second toggle should restore light, got %s", mode)
	}
	if v, _, _ := kv.Get(ctx, Key); v != "light" {
		t.Fatalf("expected persisted light, got %q", v)
	}
	if render.ThemeClass(mode) != "" {
		t.Fatal("light mode should have no body class")
	}
}

func TestLoadUnknownValueIsLight(t *testing.T) {
	ctx := context.Background()
	kv := cache.NewMemoryKV()
	kv.Set(ctx, Key, "sepia")

	if mode, err := NewStore(kv).Load(ctx); err != nil || mode != domain.ThemeLight {
		t.Fatalf("expected light, got %s %v", mode, err)
	}
}

func TestStoreErrors(t *testing.T) {
	s := NewStore(failingKV{})
	mode, err := s.Load(context.Background())
	if err == nil || mode != domain.ThemeLight {
		t.Fatalf("expected light with error, got %s %v", mode, err)
	}
	if _, err := s.Toggle(context.Background()); err == nil {
		t.Fatal("expected toggle error")
	}
	if s.Mode() != domain.ThemeLight {
		t.Fatal("failed write must not change the mode")
	}
}
