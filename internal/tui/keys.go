package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the board's key bindings.
type KeyMap struct {
	PrevDay key.Binding
	NextDay key.Binding
	Today   key.Binding
	Search  key.Binding
	Member  key.Binding
	Tab     key.Binding
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	New     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Refresh key.Binding
	Back    key.Binding
	Enter   key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		PrevDay: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev day")),
		NextDay: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next day")),
		Today:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Member:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "member")),
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "active/completed")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		New:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "rename")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// help lists the bindings shown in the footer.
func (k KeyMap) help() []key.Binding {
	return []key.Binding{k.PrevDay, k.NextDay, k.Today, k.Search, k.Member, k.Tab, k.Toggle, k.New, k.Edit, k.Delete, k.Refresh, k.Quit}
}
