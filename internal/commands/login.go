package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todoboard/internal/exitcode"
	"todoboard/internal/service"
)

func init() {
	Register(&LoginCmd{})
	Register(&RegisterCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	email    string
	password string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Log in to the backend" }
func (c *LoginCmd) Usage() string     { return "todoboard login [--email <email>] [--password <password>]" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return usageError(errOut, "unexpected argument: %s", args[0])
	}
	email, password, code := credentials(env, c.email, c.password, errOut)
	if code != exitcode.Success {
		return code
	}

	token, err := env.Service.Login(ctx, service.Credentials{Username: email, Password: password})
	if err != nil {
		return Fail(errOut, err)
	}
	if err := env.Session.Login(ctx, token.AccessToken); err != nil {
		return Fail(errOut, err)
	}

	if !env.Config.Quiet {
		if st := env.Session.State(); st.User != nil {
			fmt.Fprintf(out, "logged in as %s\n", st.User.Email)
		} else {
			fmt.Fprintln(out, "ok")
		}
	}
	return exitcode.Success
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	email    string
	password string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account" }
func (c *RegisterCmd) Usage() string     { return "todoboard register --email <email> [--password <password>]" }
func (c *RegisterCmd) NeedsAuth() bool   { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return usageError(errOut, "unexpected argument: %s", args[0])
	}
	if strings.TrimSpace(c.email) == "" {
		return usageError(errOut, "email required")
	}
	email, password, code := credentials(env, c.email, c.password, errOut)
	if code != exitcode.Success {
		return code
	}

	if err := env.Service.Register(ctx, service.Registration{Email: email, Password: password}); err != nil {
		return Fail(errOut, err)
	}
	return succeed(env, out)
}

// credentials completes email and password from stdin when they were not
// given as flags. Prompts go to errOut.
func credentials(env *Env, email, password string, errOut io.Writer) (string, string, int) {
	in := env.Config.Stdin

	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Fprint(errOut, "Email: ")
		line, err := readLine(in)
		if err != nil || strings.TrimSpace(line) == "" {
			fmt.Fprintln(errOut)
			return "", "", usageError(errOut, "email required")
		}
		email = strings.TrimSpace(line)
	}

	if password == "" {
		fmt.Fprint(errOut, "Password: ")
		line, err := readLine(in)
		if err != nil || line == "" {
			fmt.Fprintln(errOut)
			return "", "", usageError(errOut, "password required")
		}
		password = line
	}
	return email, password, exitcode.Success
}
