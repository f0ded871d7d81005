package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todoboard/internal/board"
	"todoboard/internal/exitcode"
	"todoboard/internal/output"
	"todoboard/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// Status filters for the list command.
const (
	StatusAll       = "all"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// ListCmd implements the list command, which is also the default command.
type ListCmd struct {
	date   string
	member string
	search string
	status string
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List todos for a day" }
func (c *ListCmd) Usage() string {
	return "todoboard list [--date <day>] [--member <member>] [--search <text>] [--status all|active|completed]"
}
func (c *ListCmd) NeedsAuth() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.date, "date", "", "")
	fs.StringVar(&c.date, "d", "", "")
	fs.StringVar(&c.member, "member", "", "")
	fs.StringVar(&c.member, "m", "", "")
	fs.StringVar(&c.search, "search", "", "")
	fs.StringVar(&c.search, "s", "", "")
	fs.StringVar(&c.status, "status", StatusAll, "")
}

func (c *ListCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return usageError(errOut, "unexpected argument: %s", args[0])
	}
	status := strings.ToLower(strings.TrimSpace(c.status))
	switch status {
	case StatusAll, StatusActive, StatusCompleted:
	default:
		return usageError(errOut, "invalid status: %s", c.status)
	}

	o := newBoard(env)
	date, err := board.ResolveDate(c.date, o.Now())
	if err != nil {
		return usageError(errOut, "%v", err)
	}
	q := board.Query{Date: date}.WithSearch(c.search)
	switch status {
	case StatusActive:
		q = q.WithCompleted(service.Bool(false))
	case StatusCompleted:
		q = q.WithCompleted(service.Bool(true))
	}

	members := o.Members()
	if c.member != "" {
		id, err := resolveMember(ctx, members, c.member)
		if err != nil {
			return memberError(errOut, c.member, err)
		}
		q = q.WithMember(&id)
	} else if err := members.Load(ctx); err != nil {
		// Names fall back to the server's snapshot.
		env.logger().Debug("member load failed", "error", err)
	}

	if err := o.ApplyQuery(ctx, q); err != nil {
		return Fail(errOut, err)
	}

	active, completed := board.Partition(o.State().List.Todos)
	switch status {
	case StatusActive:
		completed = nil
	case StatusCompleted:
		active = nil
	}

	if len(active) == 0 && len(completed) == 0 {
		if !env.Config.Quiet {
			fmt.Fprintf(out, "no todos for %s\n", date)
		}
		return exitcode.Success
	}

	if status != StatusCompleted {
		printSection(out, "Active", active, members)
	}
	if status != StatusActive {
		printSection(out, "Completed", completed, members)
	}
	return exitcode.Success
}

func printSection(out io.Writer, title string, todos []service.Todo, members *board.MemberCache) {
	output.FormatSectionHeader(out, title, len(todos))
	for _, t := range todos {
		output.FormatTodo(out, t, members.AssigneeName(t))
	}
}
