package tui

import (
	"math"
	"strings"

	"github.com/mmcdole/marquee/internal/tui/styles"
)

const (
	starCount = 5
	fullStar  = "★"
	halfStar  = "½"
	emptyStar = "☆"
)

// RatingStars renders a 0-10 vote average as five stars. Any fractional
// part of the five-star rating shows as one half star.
func RatingStars(voteAverage float64) string {
	full, half, empty := starSplit(voteAverage)
	return strings.Repeat(fullStar, full) + strings.Repeat(halfStar, half) + strings.Repeat(emptyStar, empty)
}

// renderRatingStars is RatingStars with the star styles applied
func renderRatingStars(voteAverage float64) string {
	full, half, empty := starSplit(voteAverage)
	return styles.StarStyle.Render(strings.Repeat(fullStar, full)+strings.Repeat(halfStar, half)) +
		styles.EmptyStarStyle.Render(strings.Repeat(emptyStar, empty))
}

func starSplit(voteAverage float64) (full, half, empty int) {
	rating := voteAverage / 2
	if math.IsNaN(rating) || rating < 0 {
		rating = 0
	}
	if rating > starCount {
		rating = starCount
	}

	full = int(math.Floor(rating))
	if rating != math.Floor(rating) {
		half = 1
	}
	empty = starCount - int(math.Ceil(rating))
	return full, half, empty
}
