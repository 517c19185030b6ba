package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/marquee/internal/listing"
)

// ListStateMsg carries a new browse snapshot from the session
type ListStateMsg struct {
	State listing.State
}

// DetailStateMsg carries one step of a details load. NextCmd reads the
// following step; it is nil once the stream is done.
type DetailStateMsg struct {
	MovieID int
	State   listing.DetailState
	NextCmd tea.Cmd
}

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// TickMsg drives the spinner animation
type TickMsg struct{}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}
