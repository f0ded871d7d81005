package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"todoboard/internal/board"
	"todoboard/internal/exitcode"
)

// ParseID parses the first positional argument as a resource id.
// what names the resource in error messages ("todo", "member").
func ParseID(args []string, what string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s id required", what)
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("unexpected argument: %s", args[1])
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s id: %s", what, args[0])
	}
	return id, nil
}

// Fail reports err on errOut and returns the matching exit code.
func Fail(errOut io.Writer, err error) int {
	code := exitcode.FromError(err)
	switch code {
	case exitcode.AuthError:
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
	case exitcode.BackendError:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	default:
		fmt.Fprintf(errOut, "error: %v\n", err)
	}
	return code
}

func usageError(errOut io.Writer, format string, args ...any) int {
	fmt.Fprintf(errOut, "error: "+format+"\n", args...)
	return exitcode.UserError
}

func succeed(env *Env, out io.Writer) int {
	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

func newBoard(env *Env) *board.Orchestrator {
	return board.New(env.Service, board.WithLogger(env.logger()), board.WithClock(env.now))
}

// resolveMember maps a member reference (id or name) to an id, loading the
// cache first.
func resolveMember(ctx context.Context, cache *board.MemberCache, ref string) (int64, error) {
	if err := cache.Load(ctx); err != nil {
		// A numeric reference does not need the cache.
		if id, perr := strconv.ParseInt(strings.TrimSpace(ref), 10, 64); perr == nil && id > 0 {
			return id, nil
		}
		return 0, err
	}
	return cache.Resolve(ref)
}

func memberError(errOut io.Writer, ref string, err error) int {
	switch {
	case errors.Is(err, board.ErrMemberNotFound):
		return usageError(errOut, "member not found: %s", ref)
	case errors.Is(err, board.ErrAmbiguousMember):
		return usageError(errOut, "ambiguous member name: %s", ref)
	}
	return Fail(errOut, err)
}

// readLine reads one line from in, without the line terminator.
// A nil reader yields io.EOF. Pass a *bufio.Reader to read several lines
// from the same input.
func readLine(in io.Reader) (string, error) {
	if in == nil {
		return "", io.EOF
	}
	br, buffered := in.(*bufio.Reader)
	if !buffered {
		br = bufio.NewReader(in)
	}
	line, err := br.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// confirm prints prompt to errOut and reads the answer from in. Only "y" and
// "yes" agree; anything else, including a read failure, declines.
func confirm(in io.Reader, errOut io.Writer, prompt string) bool {
	fmt.Fprintf(errOut, "%s [y/N] ", prompt)
	answer, err := readLine(in)
	if err != nil {
		fmt.Fprintln(errOut)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
