package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/SamuelNgundi/fullstack-comic-app/web/core"
)

type fakeCatalog struct {
	mu      sync.Mutex
	calls   []core.PageParams
	failOn  int
	count   map[string]int
	pageLen int
}

func (f *fakeCatalog) comics(_ context.Context, p core.PageParams) (core.Page[core.RawComic], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, p)
	if p.Page == f.failOn {
		return core.Page[core.RawComic]{}, errors.New("catalog down")
	}
	cat := p.Category
	if core.IsAllCategory(cat) {
		cat = "Action"
	}
	count := f.count[cat]
	n := min(f.pageLen, max(0, count-(p.Page-1)*f.pageLen))
	res := make([]core.RawComic, 0, n)
	for i := range n {
		res = append(res, core.RawComic{
			ID:         p.Page*100 + i,
			Title:      fmt.Sprintf("%s p%d #%d", cat, p.Page, i),
			Categories: []core.Category{{ID: 1, Name: cat}},
		})
	}
	return core.Page[core.RawComic]{Results: res, Count: count}, nil
}

func (f *fakeCatalog) categories(context.Context) ([]core.Category, error) {
	return []core.Category{{ID: 1, Name: "Action"}, {ID: 2, Name: "Drama"}}, nil
}

func (f *fakeCatalog) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newModel(t *testing.T, f *fakeCatalog) *Model {
	t.Helper()
	m, err := New(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)), Deps{
		Comics:     f.comics,
		Categories: f.categories,
		PageSize:   12,
	})
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

// settle feeds query messages into the model until a request resolves.
func settle(t *testing.T, m *Model) {
	t.Helper()
	for {
		select {
		case msg := <-m.events:
			m.Update(msg)
			if s, ok := msg.(stateMsg); ok && !s.Loading {
				return
			}
		case <-time.After(2 * time.Second):
			t.Fatal("query did not resolve")
		}
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_LoadingThenItems(t *testing.T) {
	f := &fakeCatalog{count: map[string]int{"Action": 25}, pageLen: 12}
	m := newModel(t, f)

	m.Init()
	require.True(t, m.state.Loading)
	require.Equal(t, core.PlaceholderCount, strings.Count(m.View(), "░░░░░░░░░░░░░░░░░░░░"))

	settle(t, m)
	view := m.ListView()
	require.Equal(t, core.ListItems, view.State)
	require.Len(t, view.Cards, 12)
	require.Contains(t, m.View(), "1/3")
}

func TestModel_Paging(t *testing.T) {
	f := &fakeCatalog{count: map[string]int{"Action": 25}, pageLen: 12}
	m := newModel(t, f)
	m.Init()
	settle(t, m)

	m.Update(key("p"))
	require.Equal(t, 1, f.callCount())

	m.Update(key("n"))
	settle(t, m)
	require.Equal(t, 2, m.state.CurrentPage)
	require.Contains(t, m.View(), "2/3")

	m.Update(key("n"))
	settle(t, m)
	require.Len(t, m.ListView().Cards, 1)

	m.Update(key("n"))
	require.Equal(t, 3, f.callCount())
	require.Equal(t, 3, m.state.CurrentPage)
}

func TestModel_FailedPageKeepsItems(t *testing.T) {
	f := &fakeCatalog{count: map[string]int{"Action": 25}, pageLen: 12, failOn: 2}
	m := newModel(t, f)
	m.Init()
	settle(t, m)
	before := m.items

	m.Update(key("n"))
	settle(t, m)
	require.Error(t, m.state.Err)
	require.Equal(t, before, m.items)
	require.Contains(t, m.View(), "failed to load page")
}

func TestModel_CategoryNavigation(t *testing.T) {
	f := &fakeCatalog{count: map[string]int{"Action": 25, "Drama": 0}, pageLen: 12}
	m := newModel(t, f)
	m.Init()
	settle(t, m)
	m.Update(m.loadCategories())
	require.Len(t, m.nav.Entries, 3)

	m.Update(key("n"))
	settle(t, m)

	m.Update(key("right"))
	require.Equal(t, "Action", m.query.Options().Category)
	require.Equal(t, 1, m.state.CurrentPage)
	settle(t, m)

	m.Update(key("right"))
	settle(t, m)
	require.Equal(t, "Drama", m.nav.Active)
	require.Equal(t, core.ListEmpty, m.ListView().State)
	require.Contains(t, m.View(), core.NoResultsTitle)

	m.Update(key("right"))
	require.Equal(t, core.AllCategory, m.nav.Active)
}

func TestModel_Quit(t *testing.T) {
	f := &fakeCatalog{count: map[string]int{}, pageLen: 12}
	m := newModel(t, f)
	m.Init()

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
	require.Nil(t, m.waitForActivity())
}

func TestNew_Validation(t *testing.T) {
	f := &fakeCatalog{}
	_, err := New(context.Background(), slog.Default(), Deps{Categories: f.categories, PageSize: 12})
	require.ErrorIs(t, err, core.ErrNilDependency)
	_, err = New(context.Background(), slog.Default(), Deps{Comics: f.comics, Categories: f.categories})
	require.ErrorIs(t, err, core.ErrBadArguments)
}
