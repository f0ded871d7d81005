package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"todoboard/internal/exitcode"
)

func init() {
	Register(&WhoamiCmd{})
}

// WhoamiCmd implements the whoami command.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return nil }
func (c *WhoamiCmd) Synopsis() string  { return "Show the logged-in account" }
func (c *WhoamiCmd) Usage() string     { return "todoboard whoami" }
func (c *WhoamiCmd) NeedsAuth() bool   { return true }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	st := env.Session.State()
	if !st.Authenticated || st.User == nil {
		fmt.Fprintln(errOut, "error: not logged in (run: todoboard login)")
		return exitcode.AuthError
	}

	fmt.Fprintf(out, "%s (id %d)\n", st.User.Email, st.User.ID)
	if exp, ok := tokenExpiry(st.Token); ok {
		fmt.Fprintf(out, "token expires %s\n", exp.UTC().Format(time.RFC3339))
	}
	return exitcode.Success
}

// tokenExpiry reads the exp claim of a JWT without verifying it. The server
// is the only judge of validity; this is for display.
func tokenExpiry(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
