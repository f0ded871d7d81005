package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todoboard/internal/exitcode"
)

func init() {
	Register(&HelpCmd{registry: DefaultRegistry})
}

// HelpCmd implements the help command.
type HelpCmd struct {
	registry *Registry
}

// NewHelpCmd returns a help command listing the commands of r.
func NewHelpCmd(r *Registry) *HelpCmd {
	return &HelpCmd{registry: r}
}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "todoboard help [command]" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		cmd, found := c.registry.Find(args[0])
		if !found {
			return usageError(errOut, "unknown command: %s", args[0])
		}
		fmt.Fprintf(out, "Usage:\n  %s\n\n%s\n", cmd.Usage(), cmd.Synopsis())
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			fmt.Fprintf(out, "Aliases: %s\n", strings.Join(aliases, ", "))
		}
		return exitcode.Success
	}

	fmt.Fprintln(out, "Usage:")
	fmt.Fprintf(out, "  %-12s %s\n", "todoboard", "List today's todos")
	for _, cmd := range c.registry.All() {
		fmt.Fprintf(out, "  %-12s %s\n", cmd.Name(), cmd.Synopsis())
	}
	fmt.Fprint(out, commonFlagsHelp)
	return exitcode.Success
}

const commonFlagsHelp = `
Common flags:
  --config <dir>   Override config directory
  --api <url>      Override the backend URL
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Run 'todoboard help <command>' for the flags of a command.
`
