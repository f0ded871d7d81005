package tui

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"todoboard/internal/board"
)

// Run shows the board on the terminal until the user quits or ctx ends.
func Run(ctx context.Context, o *board.Orchestrator, out io.Writer) error {
	p := tea.NewProgram(New(ctx, o),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithOutput(out),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
