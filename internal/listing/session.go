package listing

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mmcdole/marquee/internal/domain"
)

// ErrSessionStopped is returned by Send once Run has returned
var ErrSessionStopped = errors.New("listing session stopped")

// Fetcher is the list half of the catalog repository
type Fetcher interface {
	FetchList(ctx context.Context, forceRemote bool, category string, page int) <-chan domain.Resource[[]domain.Movie]
}

// Observer receives a snapshot after every state change.
// It is called from the session goroutine and must not block.
type Observer interface {
	OnState(State)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(State)

func (f ObserverFunc) OnState(s State) { f(s) }

// Event is an input to the session: Paginate or ToggleCategory
type Event interface {
	event()
}

// Paginate requests the next page of a category from the remote source
type Paginate struct {
	Category string
}

// ToggleCategory makes the next tracked category visible
type ToggleCategory struct{}

func (Paginate) event()       {}
func (ToggleCategory) event() {}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithOrdering sets how incoming batches are arranged (default Shuffle)
func WithOrdering(o Ordering) SessionOption {
	return func(s *Session) { s.order = o }
}

// WithObserver registers the state observer
func WithObserver(o Observer) SessionOption {
	return func(s *Session) { s.observer = o }
}

// WithLogger sets the session logger
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// Session owns one State and is its only writer. Events and repository
// results are applied one at a time on the goroutine running Run.
type Session struct {
	fetcher  Fetcher
	order    Ordering
	observer Observer
	logger   *slog.Logger

	events  chan Event
	results chan Result
	done    chan struct{}

	mu    sync.RWMutex
	state State

	// Owned by the Run goroutine
	inflight map[string]context.CancelFunc
}

// NewSession creates a session tracking the given categories
func NewSession(fetcher Fetcher, categories []string, opts ...SessionOption) *Session {
	s := &Session{
		fetcher:  fetcher,
		order:    Shuffle,
		logger:   slog.Default(),
		events:   make(chan Event, 16),
		results:  make(chan Result, 16),
		done:     make(chan struct{}),
		state:    NewState(categories),
		inflight: make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a deep copy of the current state
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Send queues an event for the session loop
func (s *Session) Send(ctx context.Context, ev Event) error {
	select {
	case s.events <- ev:
		return nil
	case <-s.done:
		return ErrSessionStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run loads the first page of every tracked category (cache first), then
// applies events and results until ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)
	defer func() {
		for _, cancel := range s.inflight {
			cancel()
		}
	}()

	for _, category := range s.Snapshot().Categories {
		s.fetch(ctx, category, false, FirstPage)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev := <-s.events:
			s.handle(ctx, ev)

		case r := <-s.results:
			s.apply(func(st State) State { return Reduce(st, r, s.order) })
		}
	}
}

func (s *Session) handle(ctx context.Context, ev Event) {
	switch ev := ev.(type) {
	case Paginate:
		st := s.current()
		if !st.Tracks(ev.Category) {
			s.logger.Warn("paginate for untracked category", "category", ev.Category)
			return
		}
		s.fetch(ctx, ev.Category, true, st.Cursors[ev.Category])

	case ToggleCategory:
		s.apply(State.Toggle)
	}
}

// fetch starts a request for category, superseding any in flight
func (s *Session) fetch(ctx context.Context, category string, forceRemote bool, page int) {
	if cancel, ok := s.inflight[category]; ok {
		cancel()
	}

	var token uint64
	s.apply(func(st State) State {
		st, token = st.Begin(category)
		return st
	})

	reqCtx, cancel := context.WithCancel(ctx)
	s.inflight[category] = cancel
	s.logger.Debug("fetching list", "category", category, "page", page, "forced", forceRemote, "token", token)

	stream := s.fetcher.FetchList(reqCtx, forceRemote, category, page)
	go func() {
		defer cancel()
		for res := range stream {
			select {
			case s.results <- Result{Category: category, Token: token, State: res}:
			case <-reqCtx.Done():
				return
			}
		}
	}()
}

func (s *Session) current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// apply replaces the state and notifies the observer
func (s *Session) apply(fn func(State) State) {
	s.mu.Lock()
	s.state = fn(s.state)
	next := s.state
	s.mu.Unlock()

	if s.observer != nil {
		s.observer.OnState(next.Clone())
	}
}
