package tui

import (
	"github.com/charmbracelet/lipgloss"

	"todoboard/internal/service"
)

// Styles holds the board's lipgloss styles.
type Styles struct {
	Header    lipgloss.Style
	Filter    lipgloss.Style
	Tab       lipgloss.Style
	TabActive lipgloss.Style
	Item      lipgloss.Style
	Selected  lipgloss.Style
	Done      lipgloss.Style
	Meta      lipgloss.Style
	Prompt    lipgloss.Style
	Error     lipgloss.Style
	Status    lipgloss.Style
	HelpKey   lipgloss.Style
	HelpDesc  lipgloss.Style

	colors map[service.Color]lipgloss.Style
}

// NewStyles returns the default styles.
func NewStyles() Styles {
	muted := lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}
	accent := lipgloss.AdaptiveColor{Light: "#2563eb", Dark: "#7aa2f7"}

	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		Filter:    lipgloss.NewStyle().Foreground(muted),
		Tab:       lipgloss.NewStyle().Padding(0, 1).Foreground(muted),
		TabActive: lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true).Foreground(accent),
		Item:      lipgloss.NewStyle().PaddingLeft(2),
		Selected:  lipgloss.NewStyle().PaddingLeft(1).Bold(true).Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(accent),
		Done:      lipgloss.NewStyle().Strikethrough(true).Foreground(muted),
		Meta:      lipgloss.NewStyle().Foreground(muted),
		Prompt:    lipgloss.NewStyle().Foreground(accent),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e")).Bold(true),
		Status:    lipgloss.NewStyle().Foreground(muted).Italic(true),
		HelpKey:   lipgloss.NewStyle().Foreground(accent),
		HelpDesc:  lipgloss.NewStyle().Foreground(muted),
		colors: map[service.Color]lipgloss.Style{
			service.ColorBlue:   lipgloss.NewStyle().Foreground(lipgloss.Color("#7aa2f7")),
			service.ColorPurple: lipgloss.NewStyle().Foreground(lipgloss.Color("#bb9af7")),
			service.ColorYellow: lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68")),
			service.ColorPink:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ff79c6")),
			service.ColorGreen:  lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a")),
		},
	}
}

// Swatch renders the color marker of a todo.
func (s Styles) Swatch(c service.Color) string {
	style, ok := s.colors[c]
	if !ok {
		style = s.colors[service.DefaultColor]
	}
	return style.Render("●")
}
