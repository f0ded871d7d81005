package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todoboard/internal/exitcode"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command. It never contacts the server.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Remove the stored token" }
func (c *LogoutCmd) Usage() string     { return "todoboard logout" }
func (c *LogoutCmd) NeedsAuth() bool   { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	token, err := env.Tokens.Load(ctx)
	if err != nil {
		env.logger().Debug("stored token unreadable, clearing", "error", err)
	}
	if token == "" && err == nil {
		if !env.Config.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}

	if err := env.Session.Logout(ctx); err != nil {
		fmt.Fprintf(errOut, "error: failed to remove token: %v\n", err)
		return exitcode.AuthError
	}
	return succeed(env, out)
}
