package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// Layout constants for the movie list
const (
	// Border adds 1 char on each side
	BorderWidth  = 2
	BorderHeight = 2

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2
)

// MovieList is a scrollable, filterable list of one category's movies
type MovieList struct {
	movies []domain.Movie

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width  int
	height int

	title        string
	loading      bool
	spinnerFrame int

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	filteredIdx  []int // indices into movies
}

// NewMovieList creates an empty list
func NewMovieList() *MovieList {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return &MovieList{filterInput: ti}
}

// SetMovies replaces the list contents. The cursor stays put so appended
// pages don't move the selection; a new category resets it.
func (l *MovieList) SetMovies(title string, movies []domain.Movie) {
	if title != l.title {
		l.cursor = 0
		l.offset = 0
		l.clearFilter()
	}
	l.title = title
	l.movies = movies
	if l.filterActive {
		l.applyFilter()
	}
	if n := l.ItemCount(); l.cursor >= n {
		l.cursor = max(n-1, 0)
	}
	l.ensureVisible()
}

// Update handles navigation and filter keys
func (l *MovieList) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	// Typing into the filter
	if l.filterActive && l.filterInput.Focused() {
		switch km.String() {
		case "esc":
			l.clearFilter()
			return nil
		case "enter":
			// Accept filter, blur input to allow navigation
			l.filterInput.Blur()
			return nil
		case "backspace":
			if l.filterInput.Value() == "" {
				l.clearFilter()
				return nil
			}
		}
		var cmd tea.Cmd
		l.filterInput, cmd = l.filterInput.Update(msg)
		l.applyFilter()
		return cmd
	}

	if l.filterActive {
		switch km.String() {
		case "esc":
			l.clearFilter()
			return nil
		case "/":
			l.filterInput.Focus()
			return nil
		}
	}

	count := l.ItemCount()
	if count == 0 {
		return nil
	}

	switch km.String() {
	case "j", "down":
		if l.cursor < count-1 {
			l.cursor++
		}
	case "k", "up":
		if l.cursor > 0 {
			l.cursor--
		}
	case "g", "home":
		l.cursor = 0
	case "G", "end":
		l.cursor = count - 1
	case "ctrl+d", "pgdown":
		l.cursor = min(l.cursor+max(l.maxVisible/2, 1), count-1)
	case "ctrl+u", "pgup":
		l.cursor = max(l.cursor-max(l.maxVisible/2, 1), 0)
	}
	l.ensureVisible()
	return nil
}

// View renders the bordered list
func (l *MovieList) View() string {
	style := styles.ActiveBorder
	frameW, frameH := style.GetFrameSize()
	return style.
		Width(max(l.width-frameW, 0)).
		Height(max(l.height-frameH, 0)).
		Render(l.renderContent())
}

func (l *MovieList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.recalcMaxVisible()
	l.ensureVisible()
}

func (l *MovieList) SetLoading(loading bool) { l.loading = loading }

func (l *MovieList) SetSpinnerFrame(frame int) { l.spinnerFrame = frame }

// SelectedMovie returns the movie under the cursor
func (l *MovieList) SelectedMovie() (domain.Movie, bool) {
	if l.ItemCount() == 0 {
		return domain.Movie{}, false
	}
	return l.movies[l.mapIndex(l.cursor)], true
}

// SelectedIndex returns the cursor position in the unfiltered list.
// Pagination is decided on this index.
func (l *MovieList) SelectedIndex() int {
	if l.ItemCount() == 0 {
		return -1
	}
	return l.mapIndex(l.cursor)
}

// ItemCount returns the number of visible (filtered) rows
func (l *MovieList) ItemCount() int {
	if l.filterActive && l.filterQuery != "" {
		return len(l.filteredIdx)
	}
	return len(l.movies)
}

// ToggleFilter activates the filter input
func (l *MovieList) ToggleFilter() {
	l.filterActive = true
	l.filterInput.Focus()
	l.recalcMaxVisible()
}

// IsFilterTyping returns true if filter is active AND input is focused
func (l *MovieList) IsFilterTyping() bool {
	return l.filterActive && l.filterInput.Focused()
}

// IsFiltering returns true if a filter is applied
func (l *MovieList) IsFiltering() bool {
	return l.filterActive
}

func (l *MovieList) recalcMaxVisible() {
	// Reserve space for title line + scroll indicators
	l.maxVisible = l.height - BorderHeight - ScrollIndicatorLines - 1
	if l.filterActive {
		l.maxVisible--
	}
	if l.maxVisible < 1 {
		l.maxVisible = 1
	}
}

func (l *MovieList) ensureVisible() {
	if l.maxVisible <= 0 {
		return
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.maxVisible {
		l.offset = l.cursor - l.maxVisible + 1
	}
}

func (l *MovieList) clearFilter() {
	l.filterActive = false
	l.filterQuery = ""
	l.filteredIdx = nil
	l.filterInput.SetValue("")
	l.filterInput.Blur()
	l.recalcMaxVisible()
}

func (l *MovieList) applyFilter() {
	query := l.filterInput.Value()
	if query != l.filterQuery {
		l.cursor = 0
		l.offset = 0
	}
	l.filterQuery = query

	if query == "" {
		l.filteredIdx = nil
		return
	}

	lowerTitles := make([]string, len(l.movies))
	for i, m := range l.movies {
		lowerTitles[i] = strings.ToLower(m.Title)
	}

	matches := fuzzy.Find(strings.ToLower(query), lowerTitles)
	l.filteredIdx = make([]int, len(matches))
	for i, match := range matches {
		l.filteredIdx[i] = match.Index
	}
}

func (l *MovieList) mapIndex(i int) int {
	if l.filterActive && l.filterQuery != "" {
		return l.filteredIdx[i]
	}
	return i
}

func (l *MovieList) renderContent() string {
	itemWidth := max(l.width-BorderWidth, 10)
	titleLine := styles.AccentStyle.Render(styles.Truncate(l.title, itemWidth))

	count := l.ItemCount()
	if count == 0 {
		msg := styles.DimStyle.Render("No movies")
		switch {
		case l.loading:
			msg = RenderSpinner(l.spinnerFrame) + styles.DimStyle.Render(" Loading...")
		case l.filterActive && l.filterQuery != "":
			msg = styles.DimStyle.Render("No matches")
		}
		content := titleLine + "\n \n" + msg + "\n "
		if l.filterActive {
			content += "\n" + l.renderFilterBar()
		}
		return content
	}

	end := min(l.offset+l.maxVisible, count)
	lines := make([]string, 0, end-l.offset)
	for i := l.offset; i < end; i++ {
		lines = append(lines, l.renderMovieRow(l.movies[l.mapIndex(i)], i == l.cursor, itemWidth))
	}

	// Always reserve header and footer lines to prevent layout shifts
	header := " "
	if l.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	switch {
	case end < count:
		footer = styles.DimStyle.Render("↓ more")
	case l.loading:
		footer = RenderSpinner(l.spinnerFrame) + styles.DimStyle.Render(" loading next page...")
	}

	content := titleLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer
	if l.filterActive {
		content += "\n" + l.renderFilterBar()
	}
	return content
}

func (l *MovieList) renderMovieRow(m domain.Movie, selected bool, width int) string {
	stars := RatingStars(m.VoteAverage)
	starFg := styles.Gold

	title := m.Title
	if year := m.Year(); year != "" {
		title = fmt.Sprintf("%s (%s)", title, year)
	}

	// Available space: width - stars - space - margins(2)
	title = styles.Truncate(title, max(width-lipgloss.Width(stars)-3, 5))

	parts := []styles.RowPart{
		{Text: stars, Foreground: &starFg},
		{Text: " " + title},
	}
	return styles.RenderListRow(parts, selected, width)
}

func (l *MovieList) renderFilterBar() string {
	countStr := ""
	if l.filterQuery != "" {
		countStr = styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", l.ItemCount(), len(l.movies)))
	}
	return l.filterInput.View() + countStr
}
