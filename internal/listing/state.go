// Package listing folds repository streams into per-category browse state.
package listing

import (
	"math/rand"
	"slices"

	"github.com/mmcdole/marquee/internal/domain"
)

// FirstPage is the cursor every category starts on
const FirstPage = 1

// State is the browse screen aggregate. Per-category lists are append-only
// and cursors only move forward. Treat a State as a value: Reduce never
// mutates its input.
type State struct {
	Loading    bool
	Categories []string // Tracked categories in display order
	Active     int      // Index into Categories of the visible one
	Cursors    map[string]int
	Movies     map[string][]domain.Movie

	// Latest request token per category; results for older tokens are stale
	requests map[string]uint64
}

// NewState returns the initial state for the given categories
func NewState(categories []string) State {
	s := State{
		Categories: slices.Clone(categories),
		Cursors:    make(map[string]int, len(categories)),
		Movies:     make(map[string][]domain.Movie, len(categories)),
		requests:   make(map[string]uint64, len(categories)),
	}
	for _, c := range categories {
		s.Cursors[c] = FirstPage
		s.Movies[c] = nil
	}
	return s
}

// ActiveCategory returns the visible category ("" when none are tracked)
func (s State) ActiveCategory() string {
	if len(s.Categories) == 0 {
		return ""
	}
	return s.Categories[s.Active%len(s.Categories)]
}

// Tracks reports whether category is one of the state's categories
func (s State) Tracks(category string) bool {
	_, ok := s.Cursors[category]
	return ok
}

// Clone returns a deep copy
func (s State) Clone() State {
	out := s
	out.Categories = slices.Clone(s.Categories)
	out.Cursors = copyMap(s.Cursors)
	out.Movies = make(map[string][]domain.Movie, len(s.Movies))
	for k, v := range s.Movies {
		out.Movies[k] = slices.Clone(v)
	}
	out.requests = copyMap(s.requests)
	return out
}

// Begin registers a new request for category and returns its token.
// Any earlier request for the same category becomes stale.
func (s State) Begin(category string) (State, uint64) {
	next := s
	next.requests = copyMap(s.requests)
	next.requests[category]++
	return next, next.requests[category]
}

// Toggle makes the next tracked category visible
func (s State) Toggle() State {
	if len(s.Categories) == 0 {
		return s
	}
	next := s
	next.Active = (s.Active + 1) % len(s.Categories)
	return next
}

// Result is one repository state tagged with the request that produced it
type Result struct {
	Category string
	Token    uint64
	State    domain.Resource[[]domain.Movie]
}

// Reduce folds one result into the state:
//   - Success appends the ordered batch and advances the cursor
//   - Failure clears the loading flag only
//   - Loading sets the loading flag
//
// Results from superseded requests are ignored.
func Reduce(s State, r Result, order Ordering) State {
	if r.Token != s.requests[r.Category] {
		return s
	}
	if order == nil {
		order = Preserve
	}

	next := s
	switch v := r.State.(type) {
	case domain.Loading[[]domain.Movie]:
		next.Loading = v.IsLoading

	case domain.Success[[]domain.Movie]:
		prev := s.Movies[r.Category]
		batch := order.Order(slices.Clone(v.Data))
		merged := make([]domain.Movie, 0, len(prev)+len(batch))
		merged = append(merged, prev...)
		merged = append(merged, batch...)

		next.Movies = copyMap(s.Movies)
		next.Movies[r.Category] = merged
		next.Cursors = copyMap(s.Cursors)
		next.Cursors[r.Category] = s.cursor(r.Category) + 1

	case domain.Failure[[]domain.Movie]:
		next.Loading = false
	}
	return next
}

// ShouldPaginate reports whether reaching index in category's list should
// request the next page: index is the last element and nothing is loading.
func ShouldPaginate(s State, category string, index int) bool {
	n := len(s.Movies[category])
	return !s.Loading && n > 0 && index == n-1
}

func (s State) cursor(category string) int {
	if c, ok := s.Cursors[category]; ok {
		return c
	}
	return FirstPage
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Ordering arranges an incoming batch before it is appended.
// It must only permute the batch it is given.
type Ordering interface {
	Order(batch []domain.Movie) []domain.Movie
}

// OrderingFunc adapts a function to Ordering
type OrderingFunc func([]domain.Movie) []domain.Movie

func (f OrderingFunc) Order(batch []domain.Movie) []domain.Movie { return f(batch) }

var (
	// Shuffle randomly permutes each incoming batch
	Shuffle Ordering = OrderingFunc(func(batch []domain.Movie) []domain.Movie {
		rand.Shuffle(len(batch), func(i, j int) { batch[i], batch[j] = batch[j], batch[i] })
		return batch
	})

	// Preserve keeps batches in the order the repository returned them
	Preserve Ordering = OrderingFunc(func(batch []domain.Movie) []domain.Movie { return batch })
)
