package domain

import "context"

// MovieStore is the persisted movie table (bbolt or SQLite).
// Implementations must be safe for concurrent use: each Upsert commits as a
// single batch and readers never observe part of a batch.
type MovieStore interface {
	// Upsert inserts or replaces every entity in one atomic batch
	Upsert(ctx context.Context, movies []MovieEntity) error

	// GetByID returns ErrMovieNotFound when no row has the identifier
	GetByID(ctx context.Context, id int) (MovieEntity, error)

	// GetByCategory returns every row whose category matches. Order is unspecified.
	GetByCategory(ctx context.Context, category string) ([]MovieEntity, error)

	Close() error
}
