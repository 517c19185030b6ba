package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/marquee/internal/adapter/source/tmdb"
	"github.com/mmcdole/marquee/internal/listing"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// RenderSpinner renders a loading spinner
func RenderSpinner(frame int) string {
	return styles.SpinnerStyle.Render(styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])
}

// renderTabs renders the category tab bar
func renderTabs(s listing.State) string {
	tabs := make([]string, 0, len(s.Categories))
	for i, c := range s.Categories {
		label := fmt.Sprintf("%s (%d)", categoryLabel(c), len(s.Movies[c]))
		if i == s.Active%max(len(s.Categories), 1) {
			tabs = append(tabs, styles.ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, styles.InactiveTabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// categoryLabel turns "top_rated" into "Top Rated"
func categoryLabel(category string) string {
	words := strings.Fields(strings.ReplaceAll(category, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// renderDetails renders the details pane for a FetchOne state
func renderDetails(d listing.DetailState, imageBaseURL string, width, height int) string {
	style := styles.ActiveBorder
	frameW, frameH := style.GetFrameSize()
	inner := max(width-frameW-2, 10)

	var b strings.Builder
	switch {
	case d.Loading && !d.Found:
		b.WriteString(RenderSpinner(0) + styles.DimStyle.Render(" Loading..."))
	case d.Error != "":
		b.WriteString(styles.ErrorStyle.Render(d.Error))
	case d.Found:
		m := d.Movie
		b.WriteString(styles.TitleStyle.Render(styles.Truncate(m.Title, inner)) + "\n")
		if m.OriginalTitle != "" && m.OriginalTitle != m.Title {
			b.WriteString(styles.SubtitleStyle.Render(styles.Truncate(m.OriginalTitle, inner)) + "\n")
		}
		b.WriteString("\n")
		b.WriteString(renderRatingStars(m.VoteAverage) + " " + styles.DimStyle.Render(m.FormattedRating()) + "\n")

		meta := []string{}
		if m.ReleaseDate != "" {
			meta = append(meta, m.ReleaseDate)
		}
		if m.OriginalLanguage != "" {
			meta = append(meta, strings.ToUpper(m.OriginalLanguage))
		}
		if m.Adult {
			meta = append(meta, "18+")
		}
		if len(meta) > 0 {
			b.WriteString(styles.DimStyle.Render(strings.Join(meta, " · ")) + "\n")
		}
		b.WriteString(styles.DimStyle.Render("Category: "+categoryLabel(m.Category)) + "\n\n")

		if m.Overview != "" {
			b.WriteString(wordWrap(m.Overview, inner) + "\n\n")
		}
		if poster := tmdb.ImageURL(imageBaseURL, m.PosterPath); poster != "" {
			b.WriteString(styles.DimStyle.Render("Poster:   ") + styles.Truncate(poster, inner-10) + "\n")
		}
		if backdrop := tmdb.ImageURL(imageBaseURL, m.BackdropPath); backdrop != "" {
			b.WriteString(styles.DimStyle.Render("Backdrop: ") + styles.Truncate(backdrop, inner-10) + "\n")
		}
	}

	return style.
		Width(max(width-frameW, 0)).
		Height(max(height-frameH, 0)).
		Padding(0, 1).
		Render(b.String())
}

// renderHelp renders the help screen
func renderHelp(width, height int) string {
	help := `
NAVIGATION                      BROWSE
  j/k        Up/down               Tab    Next category
  g/Home     First item            Enter  Details
  G/End      Last item             h/Esc  Close details
  Ctrl+u/d   Scroll half page      /      Filter
                                   o      Open poster

Reaching the last movie loads the next page.

  q          Quit                  ?      This help

Press any key to return...
`
	return lipgloss.Place(width, height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(help))
}

func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	lineLen := 0
	for _, word := range strings.Fields(text) {
		wordLen := lipgloss.Width(word)
		if lineLen > 0 && lineLen+wordLen+1 > width {
			result.WriteString("\n")
			lineLen = 0
		}
		if lineLen > 0 {
			result.WriteString(" ")
			lineLen++
		}
		result.WriteString(word)
		lineLen += wordLen
	}
	return result.String()
}
