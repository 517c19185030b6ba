package listing

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/marquee/internal/domain"
)

// Search finds movies across every accumulated list whose title fuzzily
// contains query, best match first. Each movie ID appears once.
func Search(s State, query string) []domain.Movie {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var (
		candidates []domain.Movie
		titles     []string
		seen       = make(map[int]bool)
	)
	for _, category := range s.Categories {
		for _, m := range s.Movies[category] {
			if seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			candidates = append(candidates, m)
			titles = append(titles, strings.ToLower(m.Title))
		}
	}

	ranks := fuzzy.RankFindFold(query, titles)

	type scored struct {
		movie domain.Movie
		score int
	}
	results := make([]scored, 0, len(ranks))
	for _, r := range ranks {
		results = append(results, scored{
			movie: candidates[r.OriginalIndex],
			score: matchScore(r.Target, query),
		})
	}

	// Lower is better; ties keep list order
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score < results[j].score
	})

	out := make([]domain.Movie, len(results))
	for i, r := range results {
		out[i] = r.movie
	}
	return out
}

// matchScore ranks a lowercase title against a lowercase query
func matchScore(title, query string) int {
	switch {
	case title == query:
		return 0
	case strings.HasPrefix(title, query):
		return 10
	case strings.Contains(title, query):
		return 50
	}
	return 100 + fuzzy.LevenshteinDistance(query, title)
}
