package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/listing"
)

// EventSender queues browse events (listing.Session)
type EventSender interface {
	Send(ctx context.Context, ev listing.Event) error
}

// DetailFetcher loads one persisted movie (catalog.Repository)
type DetailFetcher interface {
	FetchOne(ctx context.Context, id int) <-chan domain.Resource[domain.Movie]
}

// ImageOpener shows an image URL outside the terminal (adapter.Opener)
type ImageOpener interface {
	Open(url string) error
}

// Command factories for async operations

// WaitForStateCmd blocks until the session publishes a new snapshot
func WaitForStateCmd(states <-chan listing.State) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-states
		if !ok {
			return nil
		}
		return ListStateMsg{State: s}
	}
}

// SendEventCmd hands an event to the session loop
func SendEventCmd(sender EventSender, ev listing.Event) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := sender.Send(ctx, ev); err != nil {
			return ErrMsg{Err: err, Context: "sending event"}
		}
		return nil
	}
}

// LoadDetailCmd streams a FetchOne into DetailStateMsgs.
// Uses a continuation pattern to pump every state to the UI.
func LoadDetailCmd(fetcher DetailFetcher, id int) tea.Cmd {
	return func() tea.Msg {
		stream := fetcher.FetchOne(context.Background(), id)
		return readDetail(id, listing.DetailState{}, stream)
	}
}

// readDetail folds the next stream value and embeds the continuation
func readDetail(id int, state listing.DetailState, stream <-chan domain.Resource[domain.Movie]) tea.Msg {
	r, ok := <-stream
	if !ok {
		return DetailStateMsg{MovieID: id, State: state}
	}

	next := listing.ReduceDetail(state, r)
	return DetailStateMsg{
		MovieID: id,
		State:   next,
		NextCmd: func() tea.Msg { return readDetail(id, next, stream) },
	}
}

// OpenImageCmd hands an image URL to the external viewer
func OpenImageCmd(opener ImageOpener, url string) tea.Cmd {
	return func() tea.Msg {
		if err := opener.Open(url); err != nil {
			return ErrMsg{Err: err, Context: "opening poster"}
		}
		return StatusMsg{Message: "Opened poster"}
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
