// Package sqlstore persists movies in a single SQLite table through GORM.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mmcdole/marquee/internal/domain"
)

// movieRow is the movies table. Genre ids stay a delimited string.
type movieRow struct {
	ID               int    `gorm:"primaryKey;autoIncrement:false"`
	Title            string
	OriginalTitle    string
	OriginalLanguage string
	Overview         string
	BackdropPath     string
	PosterPath       string
	ReleaseDate      string
	Popularity       float64
	VoteAverage      float64
	VoteCount        int
	GenreIDs         string `gorm:"column:genre_ids"`
	Adult            bool
	Video            bool
	Category         string `gorm:"index"`
}

func (movieRow) TableName() string { return "movies" }

// Store implements domain.MovieStore on SQLite
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) movies.sqlite under cacheDir. ":memory:" opens a
// private in-memory database.
func Open(cacheDir string) (*Store, error) {
	dsn := ":memory:"
	if cacheDir != ":memory:" {
		if err := os.MkdirAll(cacheDir, 0755); err != nil {
			return nil, err
		}
		dsn = filepath.Join(cacheDir, "movies.sqlite") + "?_busy_timeout=5000&_journal_mode=WAL"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	return New(db)
}

// New wraps an existing GORM handle and migrates the movies table
func New(db *gorm.DB) (*Store, error) {
	// SQLite allows one writer; a single connection also keeps ":memory:" shared
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&movieRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate movies table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Upsert writes the batch inside one transaction using INSERT ... ON CONFLICT(id) DO UPDATE
func (s *Store) Upsert(ctx context.Context, movies []domain.MovieEntity) error {
	if len(movies) == 0 {
		return ctx.Err()
	}

	rows := make([]movieRow, len(movies))
	for i, m := range movies {
		rows[i] = toRow(m)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// One statement per row: a batch may repeat an id, and SQLite rejects
		// a single multi-row upsert that touches the same row twice.
		for i := range rows {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(&rows[i]).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetByID(ctx context.Context, id int) (domain.MovieEntity, error) {
	var row movieRow
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.MovieEntity{}, domain.ErrMovieNotFound
	}
	if err != nil {
		return domain.MovieEntity{}, err
	}
	return fromRow(row), nil
}

func (s *Store) GetByCategory(ctx context.Context, category string) ([]domain.MovieEntity, error) {
	var rows []movieRow
	if err := s.db.WithContext(ctx).Where("category = ?", category).Find(&rows).Error; err != nil {
		return nil, err
	}
	movies := make([]domain.MovieEntity, len(rows))
	for i, r := range rows {
		movies[i] = fromRow(r)
	}
	return movies, nil
}

// Count returns the number of persisted rows
func (s *Store) Count() int {
	var n int64
	s.db.Model(&movieRow{}).Count(&n)
	return int(n)
}

// InvalidateAll deletes every row
func (s *Store) InvalidateAll() error {
	return s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&movieRow{}).Error
}

func toRow(m domain.MovieEntity) movieRow {
	return movieRow{
		ID:               m.ID,
		Title:            m.Title,
		OriginalTitle:    m.OriginalTitle,
		OriginalLanguage: m.OriginalLanguage,
		Overview:         m.Overview,
		BackdropPath:     m.BackdropPath,
		PosterPath:       m.PosterPath,
		ReleaseDate:      m.ReleaseDate,
		Popularity:       m.Popularity,
		VoteAverage:      m.VoteAverage,
		VoteCount:        m.VoteCount,
		GenreIDs:         m.GenreIDs,
		Adult:            m.Adult,
		Video:            m.Video,
		Category:         m.Category,
	}
}

func fromRow(r movieRow) domain.MovieEntity {
	return domain.MovieEntity{
		ID:               r.ID,
		Title:            r.Title,
		OriginalTitle:    r.OriginalTitle,
		OriginalLanguage: r.OriginalLanguage,
		Overview:         r.Overview,
		BackdropPath:     r.BackdropPath,
		PosterPath:       r.PosterPath,
		ReleaseDate:      r.ReleaseDate,
		Popularity:       r.Popularity,
		VoteAverage:      r.VoteAverage,
		VoteCount:        r.VoteCount,
		GenreIDs:         r.GenreIDs,
		Adult:            r.Adult,
		Video:            r.Video,
		Category:         r.Category,
	}
}
