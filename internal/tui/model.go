// Package tui is the interactive terminal board. It renders the orchestrator
// state and turns key presses into orchestrator intents; list fetches and
// mutations run as tea.Cmds.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"todoboard/internal/board"
	"todoboard/internal/service"
)

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeCreate
	modeRename
	modeConfirm
)

type tab int

const (
	tabActive tab = iota
	tabCompleted
)

type mountedMsg struct{ err error }

type fetchedMsg struct {
	ticket  board.Ticket
	applied bool
	err     error
}

type mutatedMsg struct {
	op  string
	err error
}

// Model is the bubbletea model of the board.
type Model struct {
	ctx    context.Context
	board  *board.Orchestrator
	keys   KeyMap
	styles Styles

	state    board.State
	tab      tab
	cursor   int
	mode     mode
	input    textinput.Model
	inputErr string
	draft    board.Draft
	pending  service.Todo
	notice   string

	spinner  spinner.Model
	animate  bool
	spinning bool

	width    int
	quitting bool
}

// New creates the board model. Nothing is fetched until Init.
func New(ctx context.Context, o *board.Orchestrator) Model {
	return newModel(ctx, o, true)
}

func newModel(ctx context.Context, o *board.Orchestrator, animate bool) Model {
	input := textinput.New()
	input.CharLimit = 200
	input.Cursor.SetMode(cursor.CursorStatic)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:      ctx,
		board:    o,
		keys:     DefaultKeyMap(),
		styles:   NewStyles(),
		state:    o.State(),
		input:    input,
		spinner:  sp,
		animate:  animate,
		spinning: animate,
	}
}

// Init mounts the orchestrator: team members, then today's list.
func (m Model) Init() tea.Cmd {
	o, ctx := m.board, m.ctx
	mount := func() tea.Msg {
		return mountedMsg{err: o.Mount(ctx)}
	}
	if m.animate {
		return tea.Batch(mount, m.spinner.Tick)
	}
	return mount
}

// Update handles a message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case mountedMsg:
		m.sync()
		return m, nil
	case fetchedMsg:
		m.sync()
		return m, nil
	case mutatedMsg:
		m.sync()
		if msg.err != nil {
			return m.reopenDraft(), nil
		}
		m.notice = msg.op
		return m, nil
	case spinner.TickMsg:
		if !m.spinning {
			return m, nil
		}
		if !m.loading() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		switch m.mode {
		case modeSearch, modeCreate, modeRename:
			return m.updateInput(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		if m.state.LastError != nil {
			m.board.ClearError()
			m.sync()
		}
	case key.Matches(msg, m.keys.PrevDay):
		return m.shiftDay(-1)
	case key.Matches(msg, m.keys.NextDay):
		return m.shiftDay(1)
	case key.Matches(msg, m.keys.Today):
		return m.setQuery(m.state.Query.WithDate(m.board.Today()))
	case key.Matches(msg, m.keys.Member):
		return m.setQuery(m.state.Query.WithMember(m.nextMember()))
	case key.Matches(msg, m.keys.Search):
		m.openInput(modeSearch, "search titles", m.state.Query.Search)
	case key.Matches(msg, m.keys.Tab):
		if m.tab == tabActive {
			m.tab = tabCompleted
		} else {
			m.tab = tabActive
		}
		m.cursor = 0
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Refresh):
		t := m.board.RefreshTicket()
		m.sync()
		cmd := tea.Batch(m.fetch(t), m.spin())
		return m, cmd
	case key.Matches(msg, m.keys.Toggle):
		todo, ok := m.selected()
		if !ok {
			return m, nil
		}
		op := "completed"
		if todo.Completed {
			op = "reopened"
		}
		o, id, completed := m.board, todo.ID, !todo.Completed
		return m, m.mutate(op, func(ctx context.Context) error {
			_, err := o.Toggle(ctx, id, completed)
			return err
		})
	case key.Matches(msg, m.keys.New):
		m.draft = m.board.BeginCreate()
		m.sync()
		m.openInput(modeCreate, "title", "")
	case key.Matches(msg, m.keys.Edit):
		todo, ok := m.selected()
		if !ok {
			return m, nil
		}
		d, err := m.board.BeginEdit(m.ctx, todo.ID)
		m.sync()
		if err != nil {
			return m, nil
		}
		m.draft = d
		m.openInput(modeRename, "title", d.Title)
	case key.Matches(msg, m.keys.Delete):
		todo, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.pending = todo
		m.mode = modeConfirm
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		if m.mode != modeSearch {
			m.board.Cancel()
			m.sync()
		}
		m.closeInput()
		return m, nil
	case key.Matches(msg, m.keys.Enter):
		value := m.input.Value()
		if m.mode == modeSearch {
			m.closeInput()
			return m.setQuery(m.state.Query.WithSearch(value))
		}

		d := m.draft
		d.Title = value
		if err := d.Validate(); err != nil {
			m.inputErr = err.Error()
			return m, nil
		}
		op := "created"
		if d.Mode == board.DraftEdit {
			op = "renamed"
		}
		m.closeInput()
		o := m.board
		return m, m.mutate(op, func(ctx context.Context) error {
			_, err := o.Submit(ctx, d)
			return err
		})
	}

	m.inputErr = ""
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = modeBrowse
		o, id := m.board, m.pending.ID
		return m, m.mutate("deleted", func(ctx context.Context) error {
			_, err := o.Delete(ctx, id, func(service.Todo) bool { return true })
			return err
		})
	case "n", "N", "esc":
		m.mode = modeBrowse
		m.notice = "cancelled"
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// setQuery makes q active and starts its fetch unless it is already loaded.
func (m Model) setQuery(q board.Query) (tea.Model, tea.Cmd) {
	t, ok := m.board.SetQuery(q)
	m.sync()
	if !ok {
		return m, nil
	}
	m.cursor = 0
	cmd := tea.Batch(m.fetch(t), m.spin())
	return m, cmd
}

func (m Model) shiftDay(days int) (tea.Model, tea.Cmd) {
	date, err := board.ShiftDate(m.state.Query.Date, days)
	if err != nil {
		return m, nil
	}
	return m.setQuery(m.state.Query.WithDate(date))
}

func (m Model) fetch(t board.Ticket) tea.Cmd {
	o, ctx := m.board, m.ctx
	return func() tea.Msg {
		applied, err := o.Run(ctx, t)
		return fetchedMsg{ticket: t, applied: applied, err: err}
	}
}

func (m Model) mutate(op string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return mutatedMsg{op: op, err: fn(ctx)}
	}
}

// spin starts the loading spinner if it is not already running.
func (m *Model) spin() tea.Cmd {
	if !m.animate || m.spinning {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

// nextMember cycles the member filter: none, each cached member, none.
func (m Model) nextMember() *int64 {
	members := m.board.Members().All()
	current := m.state.Query.MemberID
	if current == nil {
		if len(members) == 0 {
			return nil
		}
		return service.Int64(members[0].ID)
	}
	for i, mem := range members {
		if mem.ID == *current && i+1 < len(members) {
			return service.Int64(members[i+1].ID)
		}
	}
	return nil
}

func (m *Model) openInput(md mode, placeholder, value string) {
	m.mode = md
	m.inputErr = ""
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *Model) closeInput() {
	m.mode = modeBrowse
	m.inputErr = ""
	m.input.Blur()
	m.input.SetValue("")
}

// reopenDraft returns to the title prompt when a submit failed and the
// orchestrator kept the draft staged.
func (m Model) reopenDraft() Model {
	if m.state.Draft == nil {
		return m
	}
	m.draft = *m.state.Draft
	md := modeCreate
	if m.draft.Mode == board.DraftEdit {
		md = modeRename
	}
	m.openInput(md, "title", m.draft.Title)
	return m
}

// sync takes a fresh snapshot and keeps the cursor in range.
func (m *Model) sync() {
	m.state = m.board.State()
	if n := len(m.visible()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m Model) loading() bool {
	return m.state.List.Status == board.Idle || m.state.List.Status == board.Loading
}

func (m Model) visible() []service.Todo {
	active, completed := board.Partition(m.state.List.Todos)
	if m.tab == tabCompleted {
		return completed
	}
	return active
}

func (m Model) selected() (service.Todo, bool) {
	todos := m.visible()
	if m.cursor < 0 || m.cursor >= len(todos) {
		return service.Todo{}, false
	}
	return todos[m.cursor], true
}
