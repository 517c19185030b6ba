package tui

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/listing"
)

type recordingSender struct {
	mu     sync.Mutex
	events []listing.Event
}

func (r *recordingSender) Send(_ context.Context, ev listing.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

type storeFetcher map[int]domain.Movie

func (f storeFetcher) FetchOne(_ context.Context, id int) <-chan domain.Resource[domain.Movie] {
	ch := make(chan domain.Resource[domain.Movie], 3)
	ch <- domain.Loading[domain.Movie]{IsLoading: true}
	if m, ok := f[id]; ok {
		ch <- domain.Success[domain.Movie]{Data: m}
	} else {
		ch <- domain.Failure[domain.Movie]{Message: domain.MsgNoSuchMovie}
	}
	ch <- domain.Loading[domain.Movie]{IsLoading: false}
	close(ch)
	return ch
}

// run executes cmd, expanding batches, and returns every message produced
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func browseState(ids ...int) listing.State {
	s := listing.NewState([]string{domain.CategoryPopular, domain.CategoryUpcoming})
	s, token := s.Begin(domain.CategoryPopular)
	movies := make([]domain.Movie, len(ids))
	for i, id := range ids {
		movies[i] = domain.Movie{ID: id, Title: "Movie", Category: domain.CategoryPopular}
	}
	return listing.Reduce(s, listing.Result{
		Category: domain.CategoryPopular,
		Token:    token,
		State:    domain.Success[[]domain.Movie]{Data: movies},
	}, listing.Preserve)
}

func newTestModel(sender EventSender, fetcher DetailFetcher, s listing.State) Model {
	m := NewModel(sender, fetcher, nil, make(chan listing.State), s, "")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func Test_Model_ReachingLastMoviePaginates(t *testing.T) {
	sender := &recordingSender{}
	m := newTestModel(sender, storeFetcher{}, browseState(1, 2, 3))

	next, cmd := m.Update(keyMsg("j"))
	run(cmd)
	assert.Empty(t, sender.events, "middle of the list")

	_, cmd = next.Update(keyMsg("j"))
	run(cmd)
	assert.Equal(t, []listing.Event{listing.Paginate{Category: domain.CategoryPopular}}, sender.events)
}

func Test_Model_NoPaginationWhileLoading(t *testing.T) {
	sender := &recordingSender{}
	s := browseState(1, 2)
	s.Loading = true
	m := newTestModel(sender, storeFetcher{}, s)

	_, cmd := m.Update(keyMsg("G"))
	run(cmd)
	assert.Empty(t, sender.events)
}

func Test_Model_TabTogglesCategory(t *testing.T) {
	sender := &recordingSender{}
	m := newTestModel(sender, storeFetcher{}, browseState(1))

	_, cmd := m.Update(keyMsg("tab"))
	run(cmd)
	assert.Equal(t, []listing.Event{listing.ToggleCategory{}}, sender.events)
}

func Test_Model_EnterLoadsDetails(t *testing.T) {
	movie := domain.Movie{ID: 1, Title: "Movie", Category: domain.CategoryTopRated, VoteAverage: 7.4}
	m := newTestModel(&recordingSender{}, storeFetcher{1: movie}, browseState(1))

	next, cmd := m.Update(keyMsg("enter"))
	model := next.(Model)
	require.Equal(t, StateDetails, model.State)
	assert.True(t, model.Detail.Loading)

	// Pump the detail stream to completion
	for cmd != nil {
		msgs := run(cmd)
		require.Len(t, msgs, 1)
		next, cmd = model.Update(msgs[0])
		model = next.(Model)
	}

	assert.True(t, model.Detail.Found)
	assert.False(t, model.Detail.Loading)
	assert.Equal(t, domain.CategoryTopRated, model.Detail.Movie.Category)
	assert.Contains(t, model.View(), "Top Rated")

	next, _ = model.Update(keyMsg("esc"))
	assert.Equal(t, StateBrowsing, next.(Model).State)
}

func Test_Model_ListStateSwitchesCategory(t *testing.T) {
	m := newTestModel(&recordingSender{}, storeFetcher{}, browseState(1, 2))
	assert.Equal(t, 2, m.List.ItemCount())

	toggled := m.Browse.Toggle()
	next, cmd := m.Update(ListStateMsg{State: toggled})
	assert.NotNil(t, cmd, "keeps listening for snapshots")

	model := next.(Model)
	assert.Equal(t, 0, model.List.ItemCount())
	assert.Equal(t, domain.CategoryUpcoming, model.Browse.ActiveCategory())
}

type recordingOpener struct{ urls []string }

func (o *recordingOpener) Open(url string) error {
	o.urls = append(o.urls, url)
	return nil
}

func Test_Model_OpenPoster(t *testing.T) {
	s := browseState(1)
	s.Movies[domain.CategoryPopular][0].PosterPath = "/poster.jpg"
	opener := &recordingOpener{}
	m := NewModel(&recordingSender{}, storeFetcher{}, opener, make(chan listing.State), s, "https://img.example/w500")

	_, cmd := m.Update(keyMsg("o"))
	msgs := run(cmd)

	assert.Equal(t, []string{"https://img.example/w500/poster.jpg"}, opener.urls)
	assert.Equal(t, []tea.Msg{StatusMsg{Message: "Opened poster"}}, msgs)
}
