package listing

import "github.com/mmcdole/marquee/internal/domain"

// DetailState is the single-movie screen state fed by a FetchOne stream
type DetailState struct {
	Loading bool
	Movie   domain.Movie
	Found   bool
	Error   string
}

// ReduceDetail folds one FetchOne state into a DetailState
func ReduceDetail(s DetailState, r domain.Resource[domain.Movie]) DetailState {
	switch v := r.(type) {
	case domain.Loading[domain.Movie]:
		s.Loading = v.IsLoading
	case domain.Success[domain.Movie]:
		s.Movie = v.Data
		s.Found = true
		s.Error = ""
	case domain.Failure[domain.Movie]:
		s.Loading = false
		s.Found = false
		s.Error = v.Message
	}
	return s
}
