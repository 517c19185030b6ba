package store_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/store"
)

func openStores(t *testing.T) map[string]*store.MovieStore {
	t.Helper()
	bolt, err := store.NewMovieStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = bolt.Close() })

	return map[string]*store.MovieStore{
		"bolt":   bolt,
		"memory": store.NewMemoryStore(),
	}
}

func movie(id int, category string) domain.MovieEntity {
	return domain.MovieEntity{
		ID:       id,
		Title:    fmt.Sprintf("Movie %d", id),
		GenreIDs: "28,12",
		Category: category,
	}
}

func ids(movies []domain.MovieEntity) []int {
	out := make([]int, len(movies))
	for i, m := range movies {
		out[i] = m.ID
	}
	sort.Ints(out)
	return out
}

func Test_MovieStore_UpsertAndRead(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Upsert(ctx, []domain.MovieEntity{movie(5, "popular"), movie(7, "popular"), movie(9, "upcoming")}))

			popular, err := s.GetByCategory(ctx, "popular")
			require.NoError(t, err)
			assert.Equal(t, []int{5, 7}, ids(popular))

			got, err := s.GetByID(ctx, 9)
			require.NoError(t, err)
			assert.Equal(t, movie(9, "upcoming"), got)

			assert.Equal(t, 3, s.Count())
		})
	}
}

func Test_MovieStore_MissingRows(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.GetByID(ctx, 99)
			assert.ErrorIs(t, err, domain.ErrMovieNotFound)

			movies, err := s.GetByCategory(ctx, "popular")
			require.NoError(t, err)
			assert.Empty(t, movies)
		})
	}
}

func Test_MovieStore_OverwriteReplacesAllFields(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Upsert(ctx, []domain.MovieEntity{movie(5, "popular")}))

			updated := domain.MovieEntity{ID: 5, Title: "Renamed", VoteAverage: 9.1, GenreIDs: "", Category: "popular"}
			require.NoError(t, s.Upsert(ctx, []domain.MovieEntity{updated}))

			got, err := s.GetByID(ctx, 5)
			require.NoError(t, err)
			assert.Equal(t, updated, got)
		})
	}
}

func Test_MovieStore_LastCategoryWins(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Upsert(ctx, []domain.MovieEntity{movie(5, "popular"), movie(6, "popular")}))
			require.NoError(t, s.Upsert(ctx, []domain.MovieEntity{movie(5, "upcoming")}))

			popular, err := s.GetByCategory(ctx, "popular")
			require.NoError(t, err)
			assert.Equal(t, []int{6}, ids(popular))

			upcoming, err := s.GetByCategory(ctx, "upcoming")
			require.NoError(t, err)
			assert.Equal(t, []int{5}, ids(upcoming))

			got, err := s.GetByID(ctx, 5)
			require.NoError(t, err)
			assert.Equal(t, "upcoming", got.Category)
		})
	}
}

func Test_MovieStore_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	batch := []domain.MovieEntity{movie(1, "popular"), movie(2, "popular"), movie(3, "popular")}

	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Upsert(ctx, batch))
			once, err := s.GetByCategory(ctx, "popular")
			require.NoError(t, err)

			require.NoError(t, s.Upsert(ctx, batch))
			twice, err := s.GetByCategory(ctx, "popular")
			require.NoError(t, err)

			assert.ElementsMatch(t, once, twice)
			assert.Equal(t, 3, s.Count())
		})
	}
}

func Test_MovieStore_EmptyBatchAndUnassignedID(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Upsert(ctx, nil))
			assert.Equal(t, 0, s.Count())

			require.NoError(t, s.Upsert(ctx, []domain.MovieEntity{movie(domain.UnassignedID, "")}))
			got, err := s.GetByID(ctx, domain.UnassignedID)
			require.NoError(t, err)
			assert.Equal(t, "", got.Category)

			uncategorised, err := s.GetByCategory(ctx, "")
			require.NoError(t, err)
			assert.Len(t, uncategorised, 1)
		})
	}
}

func Test_MovieStore_InvalidateAll(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Upsert(ctx, []domain.MovieEntity{movie(1, "popular")}))
			require.NoError(t, s.InvalidateAll())

			assert.Equal(t, 0, s.Count())
			movies, err := s.GetByCategory(ctx, "popular")
			require.NoError(t, err)
			assert.Empty(t, movies)
		})
	}
}

func Test_MovieStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := store.NewMovieStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx, []domain.MovieEntity{movie(42, "top_rated")}))
	require.NoError(t, s.Close())

	reopened, err := store.NewMovieStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "top_rated", got.Category)
}

func Test_MovieStore_ConcurrentBatchesAreAtomic(t *testing.T) {
	ctx := context.Background()
	const batchSize = 20

	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			batch := func(category string, offset int) []domain.MovieEntity {
				out := make([]domain.MovieEntity, batchSize)
				for i := range out {
					out[i] = movie(offset+i, category)
				}
				return out
			}

			var wg sync.WaitGroup
			for round := 0; round < 5; round++ {
				wg.Add(3)
				go func(r int) {
					defer wg.Done()
					assert.NoError(t, s.Upsert(ctx, batch("popular", r*batchSize)))
				}(round)
				go func(r int) {
					defer wg.Done()
					assert.NoError(t, s.Upsert(ctx, batch("upcoming", 1000+r*batchSize)))
				}(round)
				go func() {
					defer wg.Done()
					movies, err := s.GetByCategory(ctx, "popular")
					assert.NoError(t, err)
					assert.Zero(t, len(movies)%batchSize, "reader saw a partial batch")
				}()
			}
			wg.Wait()

			popular, err := s.GetByCategory(ctx, "popular")
			require.NoError(t, err)
			assert.Len(t, popular, 5*batchSize)
		})
	}
}

func Test_MovieStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := store.NewMemoryStore()
	assert.ErrorIs(t, s.Upsert(ctx, []domain.MovieEntity{movie(1, "popular")}), context.Canceled)
	assert.Equal(t, 0, s.Count())
}
