package commands

import (
	"context"
	"flag"
	"io"

	"todoboard/internal/exitcode"
	"todoboard/internal/tui"
)

func init() {
	Register(&BoardCmd{})
}

// BoardCmd opens the interactive board.
type BoardCmd struct{}

func (c *BoardCmd) Name() string      { return "board" }
func (c *BoardCmd) Aliases() []string { return []string{"ui"} }
func (c *BoardCmd) Synopsis() string  { return "Open the interactive board" }
func (c *BoardCmd) Usage() string     { return "todoboard board" }
func (c *BoardCmd) NeedsAuth() bool   { return true }

func (c *BoardCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *BoardCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if err := tui.Run(ctx, newBoard(env), out); err != nil {
		return Fail(errOut, err)
	}
	return exitcode.Success
}
