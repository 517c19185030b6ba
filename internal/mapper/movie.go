// Package mapper converts between the catalog wire format, the persisted
// entity and the domain movie. Conversions never fail: absent or malformed
// fields degrade to defaults and sentinels.
package mapper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mmcdole/marquee/internal/adapter/source/tmdb"
	"github.com/mmcdole/marquee/internal/domain"
)

const genreSeparator = ","

// unknownGenresEncoded is domain.UnknownGenres in stored form
const unknownGenresEncoded = "-1,-2"

// ToEntities maps a page of wire results into persisted entities
func ToEntities(dtos []tmdb.MovieDTO, category string) []domain.MovieEntity {
	entities := make([]domain.MovieEntity, 0, len(dtos))
	for _, dto := range dtos {
		entities = append(entities, ToEntity(dto, category))
	}
	return entities
}

// ToEntity maps a wire result into its persisted form under category
func ToEntity(dto tmdb.MovieDTO, category string) domain.MovieEntity {
	return domain.MovieEntity{
		ID:               intOr(dto.ID, domain.UnassignedID),
		Title:            stringOr(dto.Title),
		OriginalTitle:    stringOr(dto.OriginalTitle),
		OriginalLanguage: stringOr(dto.OriginalLanguage),
		Overview:         stringOr(dto.Overview),
		BackdropPath:     stringOr(dto.BackdropPath),
		PosterPath:       stringOr(dto.PosterPath),
		ReleaseDate:      stringOr(dto.ReleaseDate),
		Popularity:       floatOr(dto.Popularity),
		VoteAverage:      floatOr(dto.VoteAverage),
		VoteCount:        intOr(dto.VoteCount, 0),
		GenreIDs:         encodeGenres(dto.GenreIDs),
		Adult:            boolOr(dto.Adult),
		Video:            boolOr(dto.Video),
		Category:         category,
	}
}

// ToMovies maps persisted entities into domain movies under category
func ToMovies(entities []domain.MovieEntity, category string) []domain.Movie {
	movies := make([]domain.Movie, 0, len(entities))
	for _, e := range entities {
		movies = append(movies, ToMovie(e, category))
	}
	return movies
}

// ToMovie maps a persisted entity into a domain movie under category
func ToMovie(e domain.MovieEntity, category string) domain.Movie {
	genres, err := DecodeGenres(e.GenreIDs)
	if err != nil {
		genres = unknownGenres()
	}
	return domain.Movie{
		ID:               e.ID,
		Title:            e.Title,
		OriginalTitle:    e.OriginalTitle,
		OriginalLanguage: e.OriginalLanguage,
		Overview:         e.Overview,
		BackdropPath:     e.BackdropPath,
		PosterPath:       e.PosterPath,
		ReleaseDate:      e.ReleaseDate,
		Popularity:       e.Popularity,
		VoteAverage:      e.VoteAverage,
		VoteCount:        e.VoteCount,
		GenreIDs:         genres,
		Adult:            e.Adult,
		Video:            e.Video,
		Category:         category,
	}
}

// EncodeGenres joins genre ids into their stored form
func EncodeGenres(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, genreSeparator)
}

// DecodeGenres parses the stored genre string. The empty string is an empty
// list; any unparsable element fails the whole value.
func DecodeGenres(encoded string) ([]int, error) {
	if encoded == "" {
		return []int{}, nil
	}
	parts := strings.Split(encoded, genreSeparator)
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%w: genre ids %q", domain.ErrMalformedStoredData, encoded)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func encodeGenres(g *tmdb.GenreList) string {
	if g == nil || !g.Valid {
		return unknownGenresEncoded
	}
	return EncodeGenres(g.IDs)
}

func unknownGenres() []int {
	return append([]int(nil), domain.UnknownGenres...)
}

func stringOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intOr(i *int, def int) int {
	if i == nil {
		return def
	}
	return *i
}

func floatOr(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func boolOr(b *bool) bool {
	if b == nil {
		return false
	}
	return *b
}
