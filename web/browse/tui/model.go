package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/SamuelNgundi/fullstack-comic-app/web/core"
)

var (
	titleStyle       = lipgloss.NewStyle().Bold(true)
	tabStyle         = lipgloss.NewStyle().Padding(0, 1)
	activeTabStyle   = tabStyle.Foreground(lipgloss.Color("205")).Underline(true)
	placeholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	categoryStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("109"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type itemsMsg []core.Comic

type stateMsg core.QueryState

type categoriesMsg struct {
	categories []core.Category
	err        error
}

type Deps struct {
	Comics     core.FetchFunc[core.RawComic]
	Categories func(ctx context.Context) ([]core.Category, error)
	Normalizer core.Normalizer
	PageSize   int
	Category   string
}

// Model browses the catalog one page at a time. Fetches resolve on the query's
// goroutines and reach the event loop as messages through events.
type Model struct {
	ctx        context.Context
	log        *slog.Logger
	query      *core.PaginatedQuery[core.RawComic, core.Comic]
	categories func(ctx context.Context) ([]core.Category, error)
	pageSize   int

	events    chan tea.Msg
	done      chan struct{}
	closeOnce sync.Once

	allCategories []core.Category
	nav           core.FilterNav
	items         []core.Comic
	state         core.QueryState
	categoriesErr error

	spinner spinner.Model
	pager   paginator.Model
}

func New(ctx context.Context, log *slog.Logger, deps Deps) (*Model, error) {
	if deps.Comics == nil || deps.Categories == nil {
		return nil, core.ErrNilDependency
	}
	if deps.PageSize <= 0 {
		return nil, fmt.Errorf("page size %d: %w", deps.PageSize, core.ErrBadArguments)
	}
	category := deps.Category
	if category == "" {
		category = core.AllCategory
	}

	m := &Model{
		ctx:        ctx,
		log:        log,
		categories: deps.Categories,
		pageSize:   deps.PageSize,
		events:     make(chan tea.Msg, 16),
		done:       make(chan struct{}),
		nav:        core.BuildFilterNav(nil, category),
	}

	q, err := core.NewPaginatedQuery(ctx, log,
		func(items []core.Comic) { m.send(itemsMsg(items)) },
		deps.Comics,
		1,
		core.FilterOptions{Category: category},
		deps.Normalizer.Comic,
	)
	if err != nil {
		return nil, err
	}
	q.OnChange(func(s core.QueryState) { m.send(stateMsg(s)) })
	m.query = q

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot
	m.pager = paginator.New()
	m.pager.Type = paginator.Arabic
	m.pager.PerPage = deps.PageSize
	return m, nil
}

func (m *Model) send(msg tea.Msg) {
	select {
	case m.events <- msg:
	case <-m.done:
	}
}

func (m *Model) waitForActivity() tea.Msg {
	select {
	case <-m.done:
		return nil
	default:
	}
	select {
	case msg := <-m.events:
		return msg
	case <-m.done:
		return nil
	}
}

func (m *Model) loadCategories() tea.Msg {
	cats, err := m.categories(m.ctx)
	return categoriesMsg{categories: cats, err: err}
}

// Close stops the pending fetches. The model is unusable afterwards.
func (m *Model) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		m.query.Close()
	})
}

func (m *Model) Init() tea.Cmd {
	m.query.Start()
	m.state = m.query.State()
	return tea.Batch(m.spinner.Tick, m.loadCategories, m.waitForActivity)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case itemsMsg:
		m.items = msg
		return m, m.waitForActivity
	case stateMsg:
		m.state = core.QueryState(msg)
		return m, m.waitForActivity
	case categoriesMsg:
		if msg.err != nil {
			m.log.Warn("cannot load categories", "error", msg.err)
			m.categoriesErr = msg.err
			return m, nil
		}
		m.allCategories = msg.categories
		m.nav = core.BuildFilterNav(m.allCategories, m.nav.Active)
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.Close()
		return m, tea.Quit
	case "left", "h":
		m.selectCategory(m.nav.Step(-1).Name)
	case "right", "l":
		m.selectCategory(m.nav.Step(1).Name)
	case "n", "pgdown":
		m.gotoPage(m.state.CurrentPage + 1)
	case "p", "pgup":
		m.gotoPage(m.state.CurrentPage - 1)
	}
	return m, nil
}

func (m *Model) selectCategory(name string) {
	m.nav = core.BuildFilterNav(m.allCategories, name)
	m.query.SetOptions(core.FilterOptions{Category: name})
	m.state = m.query.State()
}

func (m *Model) gotoPage(page int) {
	if m.state.Loading || !m.pagination().Valid(page) {
		return
	}
	m.query.SetCurrentPage(page)
	m.state = m.query.State()
}

func (m *Model) pagination() core.PaginationState {
	return core.PaginationState{
		CurrentPage: m.state.CurrentPage,
		PageSize:    m.pageSize,
		TotalCount:  m.state.Count,
	}
}

// ListView is what View draws below the tabs.
func (m *Model) ListView() core.ListView {
	return core.BuildListView(core.ListInput{
		Loading:    m.state.Loading,
		Items:      core.FilterByCategory(m.items, m.nav.Active),
		Pagination: m.pagination(),
	})
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Comics"))
	b.WriteString("\n")
	tabs := make([]string, 0, len(m.nav.Entries))
	for _, e := range m.nav.Entries {
		if e.Active {
			tabs = append(tabs, activeTabStyle.Render(e.Name))
			continue
		}
		tabs = append(tabs, tabStyle.Render(e.Name))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	view := m.ListView()
	switch view.State {
	case core.ListLoading:
		b.WriteString(m.spinner.View() + " loading\n")
		for range view.Placeholders {
			b.WriteString(placeholderStyle.Render("  ░░░░░░░░░░░░░░░░░░░░"))
			b.WriteString("\n")
		}
	case core.ListItems:
		for _, card := range view.Cards {
			names := make([]string, 0, len(card.Categories))
			for _, c := range card.Categories {
				names = append(names, c.Name)
			}
			fmt.Fprintf(&b, "  %s %s\n", card.Comic.Title, categoryStyle.Render(strings.Join(names, ", ")))
		}
	case core.ListEmpty:
		b.WriteString("  " + view.Notice + "\n")
	}

	m.pager.TotalPages = max(1, view.Pagination.TotalPages())
	m.pager.Page = max(0, view.Pagination.CurrentPage-1)
	b.WriteString("\n  " + m.pager.View() + "\n")

	if m.state.Err != nil {
		b.WriteString(errorStyle.Render("  failed to load page: "+m.state.Err.Error()) + "\n")
	}
	if m.categoriesErr != nil {
		b.WriteString(errorStyle.Render("  categories unavailable") + "\n")
	}
	b.WriteString(helpStyle.Render("  ←/→ category • n/p page • q quit"))
	b.WriteString("\n")
	return b.String()
}
