package commands

import (
	"context"
	"errors"
	"flag"
	"io"
	"strings"

	"todoboard/internal/board"
	"todoboard/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command. The todo goes through a staged draft,
// so it gets the same defaults and validation as one created on the board.
type AddCmd struct {
	desc   string
	color  string
	start  string
	end    string
	date   string
	member string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a todo" }
func (c *AddCmd) Usage() string {
	return "todoboard add [--desc <text>] [--color <color>] [--start <time>] [--end <time>] [--date <day>] [--member <member>] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.desc, "desc", "", "")
	fs.StringVar(&c.color, "color", "", "")
	fs.StringVar(&c.start, "start", "", "")
	fs.StringVar(&c.end, "end", "", "")
	fs.StringVar(&c.date, "date", "", "")
	fs.StringVar(&c.date, "d", "", "")
	fs.StringVar(&c.member, "member", "", "")
	fs.StringVar(&c.member, "m", "", "")
}

func (c *AddCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		return usageError(errOut, "title required")
	}

	o := newBoard(env)
	d := o.BeginCreate()
	d.Title = title

	if c.desc != "" {
		d.Description = service.String(c.desc)
	}
	if c.color != "" {
		color, err := service.ParseColor(c.color)
		if err != nil {
			return usageError(errOut, "%v", err)
		}
		d.Color = color
	}
	if c.start != "" {
		d.StartTime = service.String(c.start)
	}
	if c.end != "" {
		d.EndTime = service.String(c.end)
	}
	if c.date != "" {
		date, err := board.ResolveDate(c.date, o.Now())
		if err != nil {
			return usageError(errOut, "%v", err)
		}
		d.Date = service.String(date)
	}
	if c.member != "" {
		id, err := resolveMember(ctx, o.Members(), c.member)
		if err != nil {
			return memberError(errOut, c.member, err)
		}
		d.AssignedToID = service.Int64(id)
	}

	if _, err := o.Submit(ctx, d); err != nil {
		if errors.Is(err, board.ErrTitleRequired) {
			return usageError(errOut, "title required")
		}
		return Fail(errOut, err)
	}
	return succeed(env, out)
}
