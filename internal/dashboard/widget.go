package dashboard

import (
	"html/template"
	"sync"
	"time"
)

// Widget is one page slot. It is the scheduler's sink: a successful render
// replaces the fragment, a failed tick keeps the last good fragment and only
// falls back when nothing good has been rendered yet.
type Widget[T any] struct {
	name     string
	render   func(T) (template.HTML, error)
	fallback func() template.HTML

	mu       sync.RWMutex
	html     template.HTML
	data     T
	rendered bool
	failing  bool
	updated  time.Time
}

func NewWidget[T any](name string, loading template.HTML, render func(T) (template.HTML, error), fallback func() template.HTML) *Widget[T] {
	return &Widget[T]{
		name:     name,
		render:   render,
		fallback: fallback,
		html:     loading,
	}
}

func (w *Widget[T]) Name() string { return w.name }

// Render builds the fragment outside the lock, then swaps it in.
func (w *Widget[T]) Render(data T) error {
	html, err := w.render(data)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.html = html
	w.data = data
	w.rendered = true
	w.failing = false
	w.updated = time.Now().UTC()
	w.mu.Unlock()
	return nil
}

func (w *Widget[T]) RenderError(error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failing = true
	if w.rendered {
		return
	}
	w.html = w.fallback()
	w.updated = time.Now().UTC()
}

// HTML returns the current fragment.
func (w *Widget[T]) HTML() template.HTML {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.html
}

// Latest returns the data behind the last good render.
func (w *Widget[T]) Latest() (T, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.data, w.rendered
}

// Stale reports whether the most recent tick failed while an older render
// is still being shown.
func (w *Widget[T]) Stale() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.rendered && w.failing
}

func (w *Widget[T]) Updated() time.Time {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.updated
}
