package mapper_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/marquee/internal/adapter/source/tmdb"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/mapper"
)

func decodeDTO(t *testing.T, raw string) tmdb.MovieDTO {
	t.Helper()
	var dto tmdb.MovieDTO
	require.NoError(t, json.Unmarshal([]byte(raw), &dto))
	return dto
}

func Test_ToEntity_Defaults(t *testing.T) {
	e := mapper.ToEntity(decodeDTO(t, `{}`), "popular")

	assert.Equal(t, domain.UnassignedID, e.ID)
	assert.Equal(t, "", e.Title)
	assert.Equal(t, "", e.OriginalTitle)
	assert.Equal(t, "", e.Overview)
	assert.Equal(t, "", e.BackdropPath)
	assert.Equal(t, "", e.PosterPath)
	assert.Equal(t, "", e.ReleaseDate)
	assert.Zero(t, e.Popularity)
	assert.Zero(t, e.VoteAverage)
	assert.Zero(t, e.VoteCount)
	assert.False(t, e.Adult)
	assert.False(t, e.Video)
	assert.Equal(t, "-1,-2", e.GenreIDs)
	assert.Equal(t, "popular", e.Category)
}

func Test_ToEntity_CopiesFields(t *testing.T) {
	dto := decodeDTO(t, `{"id": 550, "title": "Fight Club", "original_title": "Fight Club",
		"overview": "A ticking-time-bomb insomniac...", "backdrop_path": "/b.jpg", "poster_path": "/p.jpg",
		"release_date": "1999-10-15", "vote_average": 8.4, "popularity": 61.4, "vote_count": 26280,
		"adult": false, "video": true, "original_language": "en", "genre_ids": [18, 53]}`)

	e := mapper.ToEntity(dto, "top_rated")

	assert.Equal(t, domain.MovieEntity{
		ID:               550,
		Title:            "Fight Club",
		OriginalTitle:    "Fight Club",
		OriginalLanguage: "en",
		Overview:         "A ticking-time-bomb insomniac...",
		BackdropPath:     "/b.jpg",
		PosterPath:       "/p.jpg",
		ReleaseDate:      "1999-10-15",
		Popularity:       61.4,
		VoteAverage:      8.4,
		VoteCount:        26280,
		GenreIDs:         "18,53",
		Adult:            false,
		Video:            true,
		Category:         "top_rated",
	}, e)
}

func Test_GenreRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []int
	}{
		{name: "valid_sequence", raw: `{"genre_ids": [28, 12, 878]}`, want: []int{28, 12, 878}},
		{name: "single_genre", raw: `{"genre_ids": [99]}`, want: []int{99}},
		{name: "empty_sequence", raw: `{"genre_ids": []}`, want: []int{}},
		{name: "negative_ids_survive", raw: `{"genre_ids": [-5, 3]}`, want: []int{-5, 3}},
		{name: "absent", raw: `{}`, want: []int{-1, -2}},
		{name: "null", raw: `{"genre_ids": null}`, want: []int{-1, -2}},
		{name: "malformed_string", raw: `{"genre_ids": "28,12"}`, want: []int{-1, -2}},
		{name: "malformed_elements", raw: `{"genre_ids": ["a", "b"]}`, want: []int{-1, -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dto := decodeDTO(t, tt.raw)
			movie := mapper.ToMovie(mapper.ToEntity(dto, "popular"), "popular")
			assert.Equal(t, tt.want, movie.GenreIDs)
		})
	}
}

func Test_ToMovie_MalformedStoredGenres(t *testing.T) {
	for _, stored := range []string{"1,,2", "x", "1,2,", " 3", "1;2"} {
		t.Run(stored, func(t *testing.T) {
			movie := mapper.ToMovie(domain.MovieEntity{ID: 1, GenreIDs: stored}, "popular")
			assert.Equal(t, []int{-1, -2}, movie.GenreIDs, "whole list replaced, never partially parsed")
		})
	}
}

func Test_ToMovie_UsesGivenCategory(t *testing.T) {
	e := domain.MovieEntity{ID: 5, Title: "Four Rooms", GenreIDs: "35", Category: "top_rated"}

	movie := mapper.ToMovie(e, "popular")

	assert.Equal(t, "popular", movie.Category)
	assert.Equal(t, 5, movie.ID)
	assert.Equal(t, "Four Rooms", movie.Title)
	assert.Equal(t, []int{35}, movie.GenreIDs)
}

func Test_DecodeGenres_ReportsMalformedData(t *testing.T) {
	_, err := mapper.DecodeGenres("1,two")
	assert.ErrorIs(t, err, domain.ErrMalformedStoredData)
}

func Test_ToEntities_PreservesOrder(t *testing.T) {
	one, two := 1, 2
	entities := mapper.ToEntities([]tmdb.MovieDTO{{ID: &two}, {ID: &one}}, "upcoming")

	require.Len(t, entities, 2)
	assert.Equal(t, 2, entities[0].ID)
	assert.Equal(t, 1, entities[1].ID)

	movies := mapper.ToMovies(entities, "upcoming")
	require.Len(t, movies, 2)
	assert.Equal(t, 2, movies[0].ID)
	assert.Equal(t, "upcoming", movies[1].Category)
}
