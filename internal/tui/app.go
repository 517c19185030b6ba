package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/marquee/internal/adapter/source/tmdb"
	"github.com/mmcdole/marquee/internal/listing"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// ApplicationState represents the current screen
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateDetails
	StateHelp
)

// Layout
const (
	ListColumnPercent = 45 // List width while the details pane is open
	MinColumnWidth    = 20

	// Tab bar + footer
	ChromeHeight = 2

	tickInterval = 100 * time.Millisecond
)

// Model is the main Bubble Tea model for the application
type Model struct {
	State ApplicationState
	Ready bool

	// Collaborators
	Session EventSender
	Fetcher DetailFetcher
	Opener  ImageOpener
	states  <-chan listing.State

	ImageBaseURL string
	Keys         KeyMap

	// UI components
	List *MovieList

	// Data
	Browse   listing.State
	Detail   listing.DetailState
	detailID int

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg    string
	StatusIsErr  bool
	SpinnerFrame int
}

// NewModel creates a new application model. states is the session's
// snapshot feed (ChannelObserver.States). opener may be nil.
func NewModel(session EventSender, fetcher DetailFetcher, opener ImageOpener, states <-chan listing.State, initial listing.State, imageBaseURL string) Model {
	m := Model{
		State:        StateBrowsing,
		Session:      session,
		Fetcher:      fetcher,
		Opener:       opener,
		states:       states,
		ImageBaseURL: imageBaseURL,
		Keys:         DefaultKeyMap(),
		List:         NewMovieList(),
		Browse:       initial,
	}
	m.syncList()
	return m
}

// Init starts listening for session snapshots and the spinner
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		WaitForStateCmd(m.states),
		TickCmd(tickInterval),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case ListStateMsg:
		m.Browse = msg.State
		m.syncList()
		return m, WaitForStateCmd(m.states)

	case DetailStateMsg:
		// Ignore streams for a movie that is no longer shown
		if msg.MovieID == m.detailID && m.State == StateDetails {
			m.Detail = msg.State
		}
		return m, msg.NextCmd

	case TickMsg:
		m.SpinnerFrame++
		m.List.SetSpinnerFrame(m.SpinnerFrame)
		return m, TickCmd(tickInterval)

	case ErrMsg:
		m.StatusMsg = msg.Error()
		m.StatusIsErr = true
		return m, ClearStatusCmd(5 * time.Second)

	case StatusMsg:
		m.StatusMsg = msg.Message
		m.StatusIsErr = msg.IsError
		return m, ClearStatusCmd(3 * time.Second)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.State == StateHelp {
		m.State = StateBrowsing
		return m, nil
	}

	// Filter input swallows everything else
	if m.List.IsFilterTyping() {
		return m, m.List.Update(msg)
	}

	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Help):
		m.State = StateHelp
		return m, nil

	case m.State == StateDetails && (key.Matches(msg, m.Keys.Back) || key.Matches(msg, m.Keys.Escape)):
		m.State = StateBrowsing
		m.detailID = 0
		m.updateLayout()
		return m, nil

	case key.Matches(msg, m.Keys.NextCategory):
		return m, SendEventCmd(m.Session, listing.ToggleCategory{})

	case key.Matches(msg, m.Keys.Filter) && !m.List.IsFiltering():
		m.List.ToggleFilter()
		return m, nil

	case key.Matches(msg, m.Keys.Enter):
		return m.openDetails()

	case key.Matches(msg, m.Keys.OpenPoster) && m.Opener != nil:
		movie, ok := m.List.SelectedMovie()
		if !ok {
			return m, nil
		}
		return m, OpenImageCmd(m.Opener, tmdb.ImageURL(m.ImageBaseURL, movie.PosterPath))
	}

	before := m.List.SelectedIndex()
	cmd := m.List.Update(msg)
	after := m.List.SelectedIndex()

	// The consumer reached the last movie: ask for the next page
	category := m.Browse.ActiveCategory()
	if after != before && listing.ShouldPaginate(m.Browse, category, after) {
		cmd = tea.Batch(cmd, SendEventCmd(m.Session, listing.Paginate{Category: category}))
	}

	// The details pane follows the selection
	if m.State == StateDetails {
		next, detailCmd := m.openDetails()
		return next, tea.Batch(cmd, detailCmd)
	}
	return m, cmd
}

// openDetails shows the details pane for the selected movie
func (m Model) openDetails() (tea.Model, tea.Cmd) {
	movie, ok := m.List.SelectedMovie()
	if !ok {
		return m, nil
	}
	if m.State == StateDetails && m.detailID == movie.ID {
		return m, nil
	}

	m.State = StateDetails
	m.detailID = movie.ID
	m.Detail = listing.DetailState{Loading: true}
	m.updateLayout()
	return m, LoadDetailCmd(m.Fetcher, movie.ID)
}

// syncList pushes the active category into the list component
func (m *Model) syncList() {
	category := m.Browse.ActiveCategory()
	m.List.SetMovies(categoryLabel(category), m.Browse.Movies[category])
	m.List.SetLoading(m.Browse.Loading)
}

func (m *Model) updateLayout() {
	contentHeight := m.Height - ChromeHeight
	listWidth := m.Width
	if m.State == StateDetails {
		listWidth = max(m.Width*ListColumnPercent/100, MinColumnWidth)
	}
	m.List.SetSize(listWidth, contentHeight)
}

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}
	if m.State == StateHelp {
		return renderHelp(m.Width, m.Height)
	}

	content := m.List.View()
	if m.State == StateDetails {
		listWidth := max(m.Width*ListColumnPercent/100, MinColumnWidth)
		details := renderDetails(m.Detail, m.ImageBaseURL, m.Width-listWidth, m.Height-ChromeHeight)
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, details)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		renderTabs(m.Browse),
		content,
		m.renderFooter(),
	)
}

func (m Model) renderFooter() string {
	var left string
	switch {
	case m.StatusMsg != "" && m.StatusIsErr:
		left = styles.ErrorStyle.Render(m.StatusMsg)
	case m.StatusMsg != "":
		left = styles.DimStyle.Render(m.StatusMsg)
	case m.Browse.Loading:
		left = RenderSpinner(m.SpinnerFrame) + " " + styles.DimStyle.Render("Loading...")
	}

	right := styles.AccentStyle.Render("tab") + styles.DimStyle.Render(" category  ") +
		styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")

	gap := max(m.Width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return left + strings.Repeat(" ", gap) + right
}
