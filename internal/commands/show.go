package commands

import (
	"context"
	"flag"
	"io"

	"todoboard/internal/board"
	"todoboard/internal/exitcode"
	"todoboard/internal/output"
	"todoboard/internal/service"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd implements the show command.
type ShowCmd struct {
	raw bool
}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return nil }
func (c *ShowCmd) Synopsis() string  { return "Show a todo" }
func (c *ShowCmd) Usage() string     { return "todoboard show [--raw] <id>" }
func (c *ShowCmd) NeedsAuth() bool   { return true }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.raw, "raw", false, "")
}

func (c *ShowCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	id, err := ParseID(args, "todo")
	if err != nil {
		return usageError(errOut, "%v", err)
	}

	todo, err := env.Service.GetTodo(ctx, id)
	if err != nil {
		return Fail(errOut, err)
	}

	members := board.NewMemberCache(env.Service)
	if err := members.Load(ctx); err != nil {
		env.logger().Debug("member load failed", "error", err)
	}

	description := service.Deref(todo.Description)
	if !c.raw {
		description = output.RenderMarkdown(description)
	}
	output.FormatTodoDetail(out, todo, members.AssigneeName(todo), description)
	return exitcode.Success
}
