package commands

import (
	"context"
	"flag"
	"io"
)

func init() {
	Register(&DoneCmd{})
	Register(&UndoCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string  { return "Mark a todo completed" }
func (c *DoneCmd) Usage() string     { return "todoboard done <id>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	return runToggle(ctx, env, args, true, out, errOut)
}

// UndoCmd implements the undo command.
type UndoCmd struct{}

func (c *UndoCmd) Name() string      { return "undo" }
func (c *UndoCmd) Aliases() []string { return []string{"reopen"} }
func (c *UndoCmd) Synopsis() string  { return "Mark a todo active again" }
func (c *UndoCmd) Usage() string     { return "todoboard undo <id>" }
func (c *UndoCmd) NeedsAuth() bool   { return true }

func (c *UndoCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UndoCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	return runToggle(ctx, env, args, false, out, errOut)
}

// runToggle is the shared implementation for done and undo.
func runToggle(ctx context.Context, env *Env, args []string, completed bool, out, errOut io.Writer) int {
	id, err := ParseID(args, "todo")
	if err != nil {
		return usageError(errOut, "%v", err)
	}
	if _, err := newBoard(env).Toggle(ctx, id, completed); err != nil {
		return Fail(errOut, err)
	}
	return succeed(env, out)
}
