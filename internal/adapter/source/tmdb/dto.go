package tmdb

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MovieListResponse is the paginated envelope returned by /movie/{category}
type MovieListResponse struct {
	Page         int        `json:"page"`
	Results      []MovieDTO `json:"results"`
	TotalPages   int        `json:"total_pages"`
	TotalResults int        `json:"total_results"`
}

// MovieDTO is a single result entry. Every field is optional; nil means the
// field was absent or null on the wire.
type MovieDTO struct {
	ID               *int       `json:"id,omitempty"`
	Title            *string    `json:"title,omitempty"`
	OriginalTitle    *string    `json:"original_title,omitempty"`
	OriginalLanguage *string    `json:"original_language,omitempty"`
	Overview         *string    `json:"overview,omitempty"`
	BackdropPath     *string    `json:"backdrop_path,omitempty"`
	PosterPath       *string    `json:"poster_path,omitempty"`
	ReleaseDate      *string    `json:"release_date,omitempty"`
	VoteAverage      *float64   `json:"vote_average,omitempty"`
	Popularity       *float64   `json:"popularity,omitempty"`
	VoteCount        *int       `json:"vote_count,omitempty"`
	Adult            *bool      `json:"adult,omitempty"`
	Video            *bool      `json:"video,omitempty"`
	GenreIDs         *GenreList `json:"genre_ids,omitempty"`
}

// GenreList decodes genre_ids leniently. A value that is not an array of
// integers leaves Valid false instead of failing the whole response.
type GenreList struct {
	IDs   []int
	Valid bool
}

func (g *GenreList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*g = GenreList{}
		return nil
	}
	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		*g = GenreList{}
		return nil
	}
	if ids == nil {
		ids = []int{}
	}
	*g = GenreList{IDs: ids, Valid: true}
	return nil
}

func (g GenreList) MarshalJSON() ([]byte, error) {
	if !g.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(g.IDs)
}

// errorResponse is the body TMDB sends alongside non-2xx statuses
type errorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Success       bool   `json:"success"`
}
