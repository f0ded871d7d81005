package commands

import (
	"context"
	"errors"
	"flag"
	"io"

	"todoboard/internal/board"
	"todoboard/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// optionalString is a string flag that remembers whether it was given, so
// "--desc ''" can be told apart from no --desc at all.
type optionalString struct {
	value string
	set   bool
}

func (s *optionalString) String() string { return s.value }

func (s *optionalString) Set(v string) error {
	s.value = v
	s.set = true
	return nil
}

// EditCmd implements the edit command. It starts an edit draft from the
// server's copy and changes only the fields given on the command line.
type EditCmd struct {
	title  optionalString
	desc   optionalString
	color  optionalString
	start  optionalString
	end    optionalString
	date   optionalString
	member optionalString
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Edit a todo" }
func (c *EditCmd) Usage() string {
	return "todoboard edit [--title <text>] [--desc <text>] [--color <color>] [--start <time>] [--end <time>] [--date <day>] [--member <member>] <id>"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	*c = EditCmd{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.desc, "desc", "")
	fs.Var(&c.color, "color", "")
	fs.Var(&c.start, "start", "")
	fs.Var(&c.end, "end", "")
	fs.Var(&c.date, "date", "")
	fs.Var(&c.date, "d", "")
	fs.Var(&c.member, "member", "")
	fs.Var(&c.member, "m", "")
}

func (c *EditCmd) changes() bool {
	return c.title.set || c.desc.set || c.color.set || c.start.set ||
		c.end.set || c.date.set || c.member.set
}

func (c *EditCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	id, err := ParseID(args, "todo")
	if err != nil {
		return usageError(errOut, "%v", err)
	}
	if !c.changes() {
		return usageError(errOut, "nothing to change")
	}

	o := newBoard(env)
	d, err := o.BeginEdit(ctx, id)
	if err != nil {
		return Fail(errOut, err)
	}

	if c.title.set {
		d.Title = c.title.value
	}
	if c.desc.set {
		d.Description = service.String(c.desc.value)
	}
	if c.color.set {
		color, err := service.ParseColor(c.color.value)
		if err != nil {
			return usageError(errOut, "%v", err)
		}
		d.Color = color
	}
	if c.start.set {
		d.StartTime = service.String(c.start.value)
	}
	if c.end.set {
		d.EndTime = service.String(c.end.value)
	}
	if c.date.set {
		date, err := board.ResolveDate(c.date.value, o.Now())
		if err != nil {
			return usageError(errOut, "%v", err)
		}
		d.Date = service.String(date)
	}
	if c.member.set {
		// An update cannot clear the assignee; it can only move it.
		if c.member.value == "" {
			return usageError(errOut, "member required")
		}
		mid, err := resolveMember(ctx, o.Members(), c.member.value)
		if err != nil {
			return memberError(errOut, c.member.value, err)
		}
		d.AssignedToID = service.Int64(mid)
	}

	if _, err := o.Submit(ctx, d); err != nil {
		if errors.Is(err, board.ErrTitleRequired) {
			return usageError(errOut, "title required")
		}
		return Fail(errOut, err)
	}
	return succeed(env, out)
}
