package domain

import (
	"fmt"
	"strings"
)

// Categories understood by the catalog endpoint (/movie/{category})
const (
	CategoryPopular    = "popular"
	CategoryUpcoming   = "upcoming"
	CategoryTopRated   = "top_rated"
	CategoryNowPlaying = "now_playing"
)

// UnknownGenres is the sentinel genre list for "genres unavailable"
var UnknownGenres = []int{-1, -2}

// UnassignedID marks a movie whose wire record carried no identifier
const UnassignedID = -1

// Movie is the in-memory representation handed to the presentation layer
type Movie struct {
	ID               int
	Title            string
	OriginalTitle    string
	OriginalLanguage string
	Overview         string
	BackdropPath     string // Path fragment, joined with the image base URL for display
	PosterPath       string
	ReleaseDate      string // YYYY-MM-DD
	Popularity       float64
	VoteAverage      float64 // 0-10 scale
	VoteCount        int
	GenreIDs         []int
	Adult            bool
	Video            bool

	// Category the movie was fetched under. Not part of identity.
	Category string
}

// Year returns the release year parsed from ReleaseDate ("" if unknown)
func (m Movie) Year() string {
	if len(m.ReleaseDate) < 4 {
		return ""
	}
	return m.ReleaseDate[:4]
}

// HasKnownGenres reports whether GenreIDs holds real genre identifiers
func (m Movie) HasKnownGenres() bool {
	if len(m.GenreIDs) != len(UnknownGenres) {
		return true
	}
	for i, id := range m.GenreIDs {
		if id != UnknownGenres[i] {
			return true
		}
	}
	return false
}

// FormattedRating returns the vote average with its vote count, e.g. "7.4 (1203)"
func (m Movie) FormattedRating() string {
	if m.VoteCount == 0 {
		return "unrated"
	}
	return fmt.Sprintf("%.1f (%d)", m.VoteAverage, m.VoteCount)
}

// MovieEntity is the persisted form of a movie.
// ID is the primary key; writing an entity whose ID already exists replaces
// every field, including Category.
type MovieEntity struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	OriginalLanguage string  `json:"original_language"`
	Overview         string  `json:"overview"`
	BackdropPath     string  `json:"backdrop_path"`
	PosterPath       string  `json:"poster_path"`
	ReleaseDate      string  `json:"release_date"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	GenreIDs         string  `json:"genre_ids"` // Comma-joined
	Adult            bool    `json:"adult"`
	Video            bool    `json:"video"`
	Category         string  `json:"category"`
}

// NormalizeCategory trims and lowercases a category label
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}
