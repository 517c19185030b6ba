package store

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	bolt "go.etcd.io/bbolt"

	"github.com/mmcdole/marquee/internal/domain"
)

// Bucket names
var (
	bucketMovies     = []byte("movies")     // id -> JSON MovieEntity
	bucketCategories = []byte("categories") // category -> {id -> nil}
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MovieStore implements domain.MovieStore using BoltDB.
// Rows are keyed by movie ID; a per-category index bucket answers
// GetByCategory without scanning the whole table.
type MovieStore struct {
	db *bolt.DB

	// Memory-only mode (no cache dir): rows live here instead of BoltDB
	mu   sync.RWMutex
	rows map[int]domain.MovieEntity
}

// NewMovieStore opens (or creates) movies.db under cacheDir.
// An empty cacheDir gives a memory-only store with the same semantics.
func NewMovieStore(cacheDir string) (*MovieStore, error) {
	if cacheDir == "" {
		return NewMemoryStore(), nil
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(cacheDir, "movies.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketMovies, bucketCategories} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &MovieStore{db: db}, nil
}

// NewMemoryStore returns a store that keeps rows in process memory only
func NewMemoryStore() *MovieStore {
	return &MovieStore{rows: make(map[int]domain.MovieEntity)}
}

func (s *MovieStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Upsert writes the whole batch in one transaction. A row whose ID already
// exists is replaced, and its category index entry moves with it.
func (s *MovieStore) Upsert(ctx context.Context, movies []domain.MovieEntity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(movies) == 0 {
		return nil
	}

	if s.db == nil {
		s.mu.Lock()
		for _, m := range movies {
			s.rows[m.ID] = m
		}
		s.mu.Unlock()
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		rows := tx.Bucket(bucketMovies)
		index := tx.Bucket(bucketCategories)

		for _, m := range movies {
			key := itob(m.ID)

			// Drop the old index entry when the category changes
			if prev := rows.Get(key); prev != nil {
				var old domain.MovieEntity
				if err := json.Unmarshal(prev, &old); err == nil && old.Category != m.Category {
					if b := index.Bucket([]byte(categoryKey(old.Category))); b != nil {
						if err := b.Delete(key); err != nil {
							return err
						}
					}
				}
			}

			data, err := json.Marshal(m)
			if err != nil {
				return err
			}
			if err := rows.Put(key, data); err != nil {
				return err
			}

			cat, err := index.CreateBucketIfNotExists([]byte(categoryKey(m.Category)))
			if err != nil {
				return err
			}
			if err := cat.Put(key, []byte{}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *MovieStore) GetByID(ctx context.Context, id int) (domain.MovieEntity, error) {
	if err := ctx.Err(); err != nil {
		return domain.MovieEntity{}, err
	}

	if s.db == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		m, ok := s.rows[id]
		if !ok {
			return domain.MovieEntity{}, domain.ErrMovieNotFound
		}
		return m, nil
	}

	var (
		movie domain.MovieEntity
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketMovies).Get(itob(id))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &movie)
	})
	if err != nil {
		return domain.MovieEntity{}, fmt.Errorf("%w: movie %d: %v", domain.ErrMalformedStoredData, id, err)
	}
	if !found {
		return domain.MovieEntity{}, domain.ErrMovieNotFound
	}
	return movie, nil
}

func (s *MovieStore) GetByCategory(ctx context.Context, category string) ([]domain.MovieEntity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.db == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		var movies []domain.MovieEntity
		for _, m := range s.rows {
			if m.Category == category {
				movies = append(movies, m)
			}
		}
		return movies, nil
	}

	var movies []domain.MovieEntity
	err := s.db.View(func(tx *bolt.Tx) error {
		cat := tx.Bucket(bucketCategories).Bucket([]byte(categoryKey(category)))
		if cat == nil {
			return nil
		}
		rows := tx.Bucket(bucketMovies)
		return cat.ForEach(func(k, _ []byte) error {
			v := rows.Get(k)
			if v == nil {
				return nil
			}
			var m domain.MovieEntity
			if err := json.Unmarshal(v, &m); err != nil {
				return err
			}
			movies = append(movies, m)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: category %q: %v", domain.ErrMalformedStoredData, category, err)
	}
	return movies, nil
}

// Count returns the number of persisted rows
func (s *MovieStore) Count() int {
	if s.db == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return len(s.rows)
	}
	n := 0
	s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketMovies).Stats().KeyN
		return nil
	})
	return n
}

// InvalidateAll wipes every row and index entry
func (s *MovieStore) InvalidateAll() error {
	if s.db == nil {
		s.mu.Lock()
		s.rows = make(map[int]domain.MovieEntity)
		s.mu.Unlock()
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketMovies, bucketCategories} {
			if err := tx.DeleteBucket(bucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}

// itob encodes an ID as an 8-byte big-endian key
func itob(id int) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(int64(id)))
	return b
}

// categoryKey maps a category to its index bucket name.
// BoltDB rejects empty bucket names, so "" gets a placeholder.
func categoryKey(category string) string {
	if category == "" {
		return "\x00"
	}
	return category
}
