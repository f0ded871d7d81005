package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todoboard/internal/exitcode"
	"todoboard/internal/service"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	yes bool
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a todo" }
func (c *RmCmd) Usage() string     { return "todoboard rm [--yes] <id>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.yes, "yes", false, "")
	fs.BoolVar(&c.yes, "y", false, "")
}

func (c *RmCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	id, err := ParseID(args, "todo")
	if err != nil {
		return usageError(errOut, "%v", err)
	}

	confirmer := func(todo service.Todo) bool {
		if c.yes {
			return true
		}
		prompt := fmt.Sprintf("delete todo #%d?", todo.ID)
		if todo.Title != "" {
			prompt = fmt.Sprintf("delete todo #%d %q?", todo.ID, todo.Title)
		}
		return confirm(env.Config.Stdin, errOut, prompt)
	}

	deleted, err := newBoard(env).Delete(ctx, id, confirmer)
	if err != nil {
		return Fail(errOut, err)
	}
	if !deleted {
		if !env.Config.Quiet {
			fmt.Fprintln(out, "cancelled")
		}
		return exitcode.Success
	}
	return succeed(env, out)
}
