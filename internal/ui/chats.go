package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"charm.land/bubbles/v2/list"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/danhigham/telegrame/internal/account"
	"github.com/danhigham/telegrame/internal/domain"
	"github.com/danhigham/telegrame/internal/search"
	"github.com/danhigham/telegrame/internal/state"
)

// searchInputHeight is the rendered height of the search box (1 inner + 2 border).
const searchInputHeight = 3

// userItem implements list.Item for search results.
type userItem struct {
	user domain.User
}

func (i userItem) FilterValue() string { return i.user.DisplayName }

// userItemDelegate renders a userItem in the list.
type userItemDelegate struct{}

func (d userItemDelegate) Height() int                             { return 2 }
func (d userItemDelegate) Spacing() int                            { return 1 }
func (d userItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d userItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(userItem)
	if !ok {
		return
	}

	isSelected := index == m.Index()
	// Account for the cursor prefix ("  " or "> ") in available width.
	contentWidth := m.Width() - 2
	if contentWidth < 1 {
		contentWidth = 1
	}

	nameStyle := lipgloss.NewStyle().MaxWidth(contentWidth).MaxHeight(1)
	descStyle := lipgloss.NewStyle().MaxWidth(contentWidth).MaxHeight(1).Foreground(lipgloss.Color("240"))

	cursor := "  "
	if isSelected {
		cursor = "> "
		nameStyle = nameStyle.Foreground(highlightColor).Bold(true)
		descStyle = descStyle.Foreground(lipgloss.Color("250"))
	}

	fmt.Fprintf(w, "%s%s\n%s%s", cursor, nameStyle.Render(it.user.DisplayName), "  ", descStyle.Render("@"+it.user.Username))
}

// ChatsModel is the people search: a debounced search field over a paged
// result list that loads the next page when the last row is reached.
type ChatsModel struct {
	ctx       context.Context
	input     textinput.Model
	list      list.Model
	debouncer *search.Debouncer
	paginator *search.Paginator
	store     *state.Store
	excluding string
	listFocus bool
	width     int
	height    int
}

func NewChatsModel(ctx context.Context, debouncer *search.Debouncer, paginator *search.Paginator, store *state.Store) ChatsModel {
	ti := textinput.New()
	ti.Prompt = "Search: "
	ti.Placeholder = "name or username"
	ti.CharLimit = 40

	l := list.New(nil, userItemDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return ChatsModel{
		ctx:       ctx,
		input:     ti,
		list:      l,
		debouncer: debouncer,
		paginator: paginator,
		store:     store,
	}
}

// SetExcluding sets the user id left out of results, normally the
// signed-in user.
func (m ChatsModel) SetExcluding(userID string) ChatsModel {
	m.excluding = userID
	return m
}

// Focus puts the cursor in the search field.
func (m ChatsModel) Focus() (ChatsModel, tea.Cmd) {
	m.listFocus = false
	return m, m.input.Focus()
}

// Reset clears the search field and results.
func (m ChatsModel) Reset() ChatsModel {
	m.input.SetValue("")
	m.debouncer.Input("")
	m.paginator.Reset("")
	m.store.ClearResults()
	m.listFocus = false
	return m.Refresh()
}

// Refresh reloads the result list from the store.
func (m ChatsModel) Refresh() ChatsModel {
	results := m.store.Results()
	items := make([]list.Item, len(results))
	for i, u := range results {
		items[i] = userItem{user: u}
	}
	m.list.SetItems(items)
	return m
}

func (m ChatsModel) Searching() bool {
	return m.paginator.Status() == search.StatusFetching
}

func (m ChatsModel) SetSize(w, h int) ChatsModel {
	m.width = w
	m.height = h
	m.input.SetWidth(max(10, w-14))
	m.list.SetSize(max(1, w-4), max(1, h-searchInputHeight-2))
	return m
}

func (m ChatsModel) Update(msg tea.Msg) (ChatsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case searchTickMsg:
		return m.fire(msg.token)

	case pageLoadedMsg:
		switch {
		case errors.Is(msg.err, search.ErrSuperseded),
			errors.Is(msg.err, search.ErrNoMorePages),
			errors.Is(msg.err, search.ErrFetchInFlight):
			return m, nil
		case msg.err != nil:
			text := account.Message(msg.err)
			return m, func() tea.Msg { return popupMsg{text: text} }
		}
		// A page can pass the paginator's own check and still arrive after
		// a newer term was committed on the loop.
		if !m.paginator.Current(msg.page) {
			return m, nil
		}
		if msg.page.First {
			m.store.SetResults(msg.page.Term, msg.page.Users)
		} else {
			m.store.AppendResults(msg.page.Term, msg.page.Users)
		}
		return m.Refresh(), nil

	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			if m.listFocus || len(m.list.Items()) > 0 {
				m.listFocus = !m.listFocus
			}
			if m.listFocus {
				m.input.Blur()
				return m, m.maybeLoadMore()
			}
			return m, m.input.Focus()
		case "enter":
			if m.listFocus {
				if item, ok := m.list.SelectedItem().(userItem); ok {
					user := item.user
					return m, func() tea.Msg {
						return pushSceneMsg{scene: domain.SceneUserProfile, user: user}
					}
				}
				return m, nil
			}
		}

		if m.listFocus {
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			return m, tea.Batch(cmd, m.maybeLoadMore())
		}

		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if after := m.input.Value(); after != before {
			return m.edited(after, cmd)
		}
		return m, cmd
	}
	return m, nil
}

// edited feeds the new field text to the debouncer.
func (m ChatsModel) edited(text string, cmd tea.Cmd) (ChatsModel, tea.Cmd) {
	tok := m.debouncer.Input(text)
	if tok.Immediate {
		m.paginator.Reset("")
		m.store.ClearResults()
		return m.Refresh(), cmd
	}
	return m, tea.Batch(cmd, scheduleTick(tok, m.debouncer.Interval()))
}

func (m ChatsModel) fire(tok search.Token) (ChatsModel, tea.Cmd) {
	term, ok := m.debouncer.Fire(tok)
	if !ok {
		if m.debouncer.Pending(tok) {
			return m, scheduleTick(tok, time.Until(tok.Deadline))
		}
		return m, nil
	}
	m.paginator.Reset(term)
	m.store.Commit(term)
	return m, fetchPage(m.ctx, m.paginator, term, m.excluding, false)
}

// maybeLoadMore requests the next page when the cursor is on the last row.
func (m ChatsModel) maybeLoadMore() tea.Cmd {
	n := len(m.list.Items())
	if !m.listFocus || n == 0 || m.list.Index() != n-1 {
		return nil
	}
	if !m.paginator.MoreAvailable() || m.Searching() {
		return nil
	}
	return fetchPage(m.ctx, m.paginator, m.paginator.Term(), m.excluding, true)
}

func scheduleTick(tok search.Token, d time.Duration) tea.Cmd {
	if d < 0 {
		d = 0
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return searchTickMsg{token: tok} })
}

func fetchPage(ctx context.Context, p *search.Paginator, term, excluding string, next bool) tea.Cmd {
	return func() tea.Msg {
		var (
			page search.Page
			err  error
		)
		if next {
			page, err = p.FetchNextPage(ctx, term, excluding)
		} else {
			page, err = p.FetchPage(ctx, term, excluding)
		}
		return pageLoadedMsg{page: page, err: err}
	}
}

func (m ChatsModel) View() string {
	inputBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(m.width)
	inputBox = applyBorderColor(inputBox, !m.listFocus)

	listH := m.height - searchInputHeight
	var body string
	switch {
	case m.store.NoResults():
		body = lipgloss.Place(max(1, m.width-4), max(1, listH-2), lipgloss.Center, lipgloss.Center,
			subtleStyle.Render("No results"))
	case len(m.list.Items()) == 0 && m.store.Term() == "":
		body = subtleStyle.Render("Type a name or username to find people.")
	default:
		body = m.list.View()
	}
	if m.Searching() {
		body = subtleStyle.Render("Searching...") + "\n" + body
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		inputBox.Render(m.input.View()),
		panel(body, m.width, listH, m.listFocus),
	)
}
