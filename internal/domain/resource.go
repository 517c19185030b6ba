package domain

// Resource is one step of a progressive fetch: Loading, Success or Failure.
// The set is closed; consumers type-switch over the three variants.
type Resource[T any] interface {
	sealed(T)
}

// Loading toggles the loading indicator.
type Loading[T any] struct {
	IsLoading bool
}

// Success carries the fetched payload.
type Success[T any] struct {
	Data T
}

// Failure carries a user-facing message. Err holds the underlying cause for
// logging and is never shown to the user.
type Failure[T any] struct {
	Message string
	Err     error
}

func (Loading[T]) sealed(T) {}
func (Success[T]) sealed(T) {}
func (Failure[T]) sealed(T) {}

// Collect drains a resource stream into a slice. Intended for tests and
// plain (non-interactive) output.
func Collect[T any](ch <-chan Resource[T]) []Resource[T] {
	var out []Resource[T]
	for r := range ch {
		out = append(out, r)
	}
	return out
}
