package job

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type State int32

const (
	StateIdle State = iota
	StateFetching
)

func (s State) String() string {
	if s == StateFetching {
		return "fetching"
	}
	return "idle"
}

// Outcome is how the most recent completed tick ended.
type Outcome string

const (
	OutcomeNone     Outcome = ""
	OutcomeRendered Outcome = "rendered"
	OutcomeErrored  Outcome = "errored"
)

// FetchFunc loads one source's normalized data.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Sink receives a tick's result. Render is only called with data from a
// successful fetch; a failed fetch or a failed Render ends in RenderError.
type Sink[T any] interface {
	Render(data T) error
	RenderError(err error)
}

// Status is a point-in-time view of one scheduler.
type Status struct {
	Name        string    `json:"name"`
	State       string    `json:"state"`
	LastOutcome Outcome   `json:"last_outcome,omitempty"`
	Interval    string    `json:"interval"`
	Ticks       int64     `json:"ticks"`
	Skipped     int64     `json:"skipped"`
	LastSuccess time.Time `json:"last_success,omitzero"`
	LastErrorAt time.Time `json:"last_error_at,omitzero"`
	LastError   string    `json:"last_error,omitempty"`
}

// Scheduler drives one data source on a fixed period and hands each result
// to its sink. At most one fetch is in flight per scheduler.
type Scheduler[T any] struct {
	name     string
	interval time.Duration
	fetch    FetchFunc[T]
	sink     Sink[T]
	tracer   trace.Tracer

	busy  atomic.Bool
	state atomic.Int32
	wg    sync.WaitGroup

	mu      sync.Mutex
	baseCtx context.Context
	status  Status
}

func NewScheduler[T any](tracer trace.Tracer, name string, interval time.Duration, fetch FetchFunc[T], sink Sink[T]) *Scheduler[T] {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Scheduler[T]{
		name:     name,
		interval: interval,
		fetch:    fetch,
		sink:     sink,
		tracer:   tracer,
		status:   Status{Name: name, Interval: interval.String()},
	}
}

func (s *Scheduler[T]) Name() string { return s.name }

func (s *Scheduler[T]) Interval() time.Duration { return s.interval }

// Start ticks immediately, then every interval. Blocks until ctx is cancelled
// and in-flight ticks have finished.
func (s *Scheduler[T]) Start(ctx context.Context) {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()

	log.Info().Str("source", s.name).Dur("interval", s.interval).Msg("refresh scheduler starting")

	s.Tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			log.Info().Str("source", s.name).Msg("refresh scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick dispatches one fetch unless one is already in flight. It reports
// whether a fetch was dispatched; the fetch itself runs asynchronously.
func (s *Scheduler[T]) Tick(ctx context.Context) bool {
	if !s.busy.CompareAndSwap(false, true) {
		s.mu.Lock()
		s.status.Skipped++
		s.mu.Unlock()
		log.Debug().Str("source", s.name).Msg("tick skipped, fetch still in flight")
		return false
	}

	s.mu.Lock()
	s.status.Ticks++
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.busy.Store(false)
		s.run(ctx)
	}()
	return true
}

// Trigger ticks outside the timer using the context Start was given, so the
// fetch is not tied to the caller's lifetime.
func (s *Scheduler[T]) Trigger() bool {
	s.mu.Lock()
	ctx := s.baseCtx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	return s.Tick(ctx)
}

// Wait blocks until no fetch is in flight.
func (s *Scheduler[T]) Wait() { s.wg.Wait() }

func (s *Scheduler[T]) Busy() bool { return s.busy.Load() }

func (s *Scheduler[T]) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.status
	st.State = State(s.state.Load()).String()
	return st
}

func (s *Scheduler[T]) run(ctx context.Context) {
	ctx, span := s.tracer.Start(ctx, "refresh.tick")
	defer span.End()
	span.SetAttributes(attribute.String("source", s.name))

	s.state.Store(int32(StateFetching))
	defer s.state.Store(int32(StateIdle))

	err := s.fetchAndRender(ctx)
	now := time.Now().UTC()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.sink.RenderError(err)

		s.mu.Lock()
		s.status.LastOutcome = OutcomeErrored
		s.status.LastErrorAt = now
		s.status.LastError = err.Error()
		s.mu.Unlock()

		log.Warn().Err(err).Str("source", s.name).Msg("refresh tick failed")
		return
	}

	s.mu.Lock()
	s.status.LastOutcome = OutcomeRendered
	s.status.LastSuccess = now
	s.mu.Unlock()
}

func (s *Scheduler[T]) fetchAndRender(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s tick panicked: %v", s.name, r)
		}
	}()

	data, err := s.fetch(ctx)
	if err != nil {
		return err
	}
	if err := s.sink.Render(data); err != nil {
		return fmt.Errorf("render %s: %w", s.name, err)
	}
	return nil
}
