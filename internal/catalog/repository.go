// Package catalog is the cache-first movie repository. Every fetch is a
// short stream of domain.Resource states the caller ranges over.
package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mmcdole/marquee/internal/adapter/source/tmdb"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/mapper"
)

// streamBuffer holds Loading(true), a result and Loading(false), so a
// producer never blocks on a slow or departed consumer.
const streamBuffer = 3

// RemoteSource fetches one page of a category from the catalog API
type RemoteSource interface {
	FetchPage(ctx context.Context, category string, page int) (*tmdb.MovieListResponse, error)
}

// Repository orchestrates the remote source and the local store.
type Repository struct {
	source RemoteSource
	store  domain.MovieStore
	logger *slog.Logger
}

// NewRepository creates a new repository.
func NewRepository(source RemoteSource, store domain.MovieStore, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{source: source, store: store, logger: logger}
}

// FetchList streams the movies of a category. Cached rows win unless
// forceRemote is set; a cache hit returns the whole category whatever page
// was asked for.
func (r *Repository) FetchList(ctx context.Context, forceRemote bool, category string, page int) <-chan domain.Resource[[]domain.Movie] {
	out := make(chan domain.Resource[[]domain.Movie], streamBuffer)
	log := r.logger.With("request_id", uuid.NewString(), "category", category, "page", page)

	go func() {
		defer close(out)
		em := emitter[[]domain.Movie]{ctx: ctx, out: out}

		if !em.emit(domain.Loading[[]domain.Movie]{IsLoading: true}) {
			return
		}
		em.emit(r.fetchList(ctx, log, forceRemote, category, page))
		em.emit(domain.Loading[[]domain.Movie]{IsLoading: false})
	}()

	return out
}

func (r *Repository) fetchList(ctx context.Context, log *slog.Logger, forceRemote bool, category string, page int) domain.Resource[[]domain.Movie] {
	// 1. Local cache
	if !forceRemote {
		cached, err := r.store.GetByCategory(ctx, category)
		switch {
		case err != nil:
			log.Warn("cache read failed, falling back to remote", "error", err)
		case len(cached) > 0:
			log.Debug("cache hit", "count", len(cached))
			return domain.Success[[]domain.Movie]{Data: mapper.ToMovies(cached, category)}
		}
	}

	// 2. Remote
	log.Debug("fetching from remote", "forced", forceRemote)
	resp, err := r.source.FetchPage(ctx, category, page)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Error("failed to fetch movies", "error", err)
		}
		return domain.Failure[[]domain.Movie]{Message: domain.MsgLoadMoviesFailed, Err: err}
	}

	entities := mapper.ToEntities(resp.Results, category)
	if err := r.store.Upsert(ctx, entities); err != nil {
		log.Error("failed to save movies", "error", err, "count", len(entities))
	}

	log.Debug("fetched movies", "count", len(entities), "total_pages", resp.TotalPages)
	return domain.Success[[]domain.Movie]{Data: mapper.ToMovies(entities, category)}
}

// FetchOne streams a single persisted movie. There is no remote fallback.
func (r *Repository) FetchOne(ctx context.Context, id int) <-chan domain.Resource[domain.Movie] {
	out := make(chan domain.Resource[domain.Movie], streamBuffer)
	log := r.logger.With("request_id", uuid.NewString(), "movie_id", id)

	go func() {
		defer close(out)
		em := emitter[domain.Movie]{ctx: ctx, out: out}

		if !em.emit(domain.Loading[domain.Movie]{IsLoading: true}) {
			return
		}
		em.emit(r.fetchOne(ctx, log, id))
		em.emit(domain.Loading[domain.Movie]{IsLoading: false})
	}()

	return out
}

func (r *Repository) fetchOne(ctx context.Context, log *slog.Logger, id int) domain.Resource[domain.Movie] {
	e, err := r.store.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrMovieNotFound) {
			log.Error("failed to read movie", "error", err)
		}
		return domain.Failure[domain.Movie]{Message: domain.MsgNoSuchMovie, Err: err}
	}
	return domain.Success[domain.Movie]{Data: mapper.ToMovie(e, e.Category)}
}

// emitter sends states until its context is cancelled. After cancellation
// it drops everything so a superseded fetch goes quiet.
type emitter[T any] struct {
	ctx context.Context
	out chan<- domain.Resource[T]
}

func (e emitter[T]) emit(r domain.Resource[T]) bool {
	if e.ctx.Err() != nil {
		return false
	}
	e.out <- r
	return true
}
