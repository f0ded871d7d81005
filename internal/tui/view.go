package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"todoboard/internal/board"
	"todoboard/internal/output"
	"todoboard/internal/service"
)

// View renders the board.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.styles.Filter.Render(m.filterLine()))
	b.WriteString("\n\n")
	b.WriteString(m.tabs())
	b.WriteString("\n\n")
	b.WriteString(m.list())
	b.WriteString("\n")

	switch m.mode {
	case modeSearch, modeCreate, modeRename:
		b.WriteString("\n")
		b.WriteString(m.styles.Prompt.Render(m.promptLabel()))
		b.WriteString(m.input.View())
		if m.inputErr != "" {
			b.WriteString("\n")
			b.WriteString(m.styles.Error.Render(m.inputErr))
		}
		b.WriteString("\n")
	case modeConfirm:
		b.WriteString("\n")
		b.WriteString(m.styles.Prompt.Render(fmt.Sprintf("delete %q? (y/n)", output.DisplayTitle(m.pending.Title))))
		b.WriteString("\n")
	}

	if err := m.state.LastError; err != nil {
		b.WriteString("\n")
		b.WriteString(m.styles.Error.Render("error: " + err.Error()))
		b.WriteString(m.styles.Meta.Render("  (esc to dismiss)"))
		b.WriteString("\n")
	} else if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Status.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help())
	return b.String()
}

func (m Model) header() string {
	date := m.state.Query.Date
	label := date
	if d, err := time.Parse(board.DateLayout, date); err == nil {
		label = d.Format("Mon 02 Jan 2006")
	}
	if date == m.board.Today() {
		label += " (today)"
	}
	return m.styles.Header.Render("todoboard  " + label)
}

func (m Model) filterLine() string {
	member := "everyone"
	if id := m.state.Query.MemberID; id != nil {
		if mem, ok := m.board.Members().Lookup(*id); ok {
			member = mem.Name
		} else {
			member = fmt.Sprintf("#%d", *id)
		}
	}
	line := "member: " + member
	if m.state.Query.Search != "" {
		line += fmt.Sprintf("  search: %q", m.state.Query.Search)
	}
	return line
}

func (m Model) tabs() string {
	active, completed := board.Partition(m.state.List.Todos)
	render := func(t tab, title string, n int) string {
		label := fmt.Sprintf("%s (%d)", title, n)
		if m.tab == t {
			return m.styles.TabActive.Render(label)
		}
		return m.styles.Tab.Render(label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		render(tabActive, "Active", len(active)),
		render(tabCompleted, "Completed", len(completed)),
	)
}

func (m Model) list() string {
	st := m.state.List
	switch st.Status {
	case board.Idle:
		return m.styles.Meta.Render(m.spinnerPrefix() + "loading...")
	case board.Error:
		if len(st.Todos) == 0 {
			return m.styles.Error.Render("could not load todos")
		}
	case board.Loading:
		if len(st.Todos) == 0 {
			return m.styles.Meta.Render(m.spinnerPrefix() + "loading...")
		}
	}

	todos := m.visible()
	if len(todos) == 0 {
		if m.tab == tabCompleted {
			return m.styles.Meta.Render("nothing completed")
		}
		return m.styles.Meta.Render("no todos")
	}

	lines := make([]string, 0, len(todos))
	for i, t := range todos {
		lines = append(lines, m.item(t, i == m.cursor))
	}
	out := strings.Join(lines, "\n")
	if st.Status == board.Loading {
		out += "\n" + m.styles.Meta.Render(m.spinnerPrefix()+"refreshing...")
	}
	return out
}

func (m Model) item(t service.Todo, selected bool) string {
	title := output.DisplayTitle(t.Title)
	if t.Completed {
		title = m.styles.Done.Render(title)
	}
	line := m.styles.Swatch(t.Color) + " " + title
	var meta []string
	if span := output.TimeSpan(t); span != "" {
		meta = append(meta, span)
	}
	if name := m.board.Members().AssigneeName(t); name != "" {
		meta = append(meta, "@"+name)
	}
	if len(meta) > 0 {
		line += "  " + m.styles.Meta.Render(strings.Join(meta, "  "))
	}
	if selected {
		return m.styles.Selected.Render(line)
	}
	return m.styles.Item.Render(line)
}

func (m Model) promptLabel() string {
	switch m.mode {
	case modeSearch:
		return "search: "
	case modeRename:
		return "rename: "
	}
	return "new todo: "
}

func (m Model) spinnerPrefix() string {
	if !m.animate {
		return ""
	}
	return m.spinner.View() + " "
}

func (m Model) help() string {
	parts := make([]string, 0, len(m.keys.help()))
	for _, b := range m.keys.help() {
		h := b.Help()
		parts = append(parts, m.styles.HelpKey.Render(h.Key)+" "+m.styles.HelpDesc.Render(h.Desc))
	}
	line := strings.Join(parts, "  ")
	if m.width > 0 {
		return lipgloss.NewStyle().Width(m.width).Render(line)
	}
	return line
}
