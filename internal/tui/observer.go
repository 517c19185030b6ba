package tui

import "github.com/mmcdole/marquee/internal/listing"

// ChannelObserver adapts listing.Observer to a channel for Bubble Tea.
// The channel only needs the newest state, so a full channel has its stale
// value replaced instead of blocking the session loop.
type ChannelObserver struct {
	ch chan listing.State
}

// NewChannelObserver creates a new channel-based observer.
func NewChannelObserver() *ChannelObserver {
	return &ChannelObserver{ch: make(chan listing.State, 1)}
}

// OnState publishes the latest state (non-blocking).
func (o *ChannelObserver) OnState(s listing.State) {
	for {
		select {
		case o.ch <- s:
			return
		default:
		}
		// Drop the unread stale state, then retry
		select {
		case <-o.ch:
		default:
		}
	}
}

// States returns the receive side for the UI
func (o *ChannelObserver) States() <-chan listing.State {
	return o.ch
}
