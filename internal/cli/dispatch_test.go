package cli_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"todoboard/internal/cli"
	"todoboard/internal/commands"
	"todoboard/internal/config"
	"todoboard/internal/exitcode"
	"todoboard/internal/service"
	"todoboard/internal/testutil"
	"todoboard/internal/tokenstore"
)

var testNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// harness wires a dispatcher to a FakeService and an in-memory token store.
type harness struct {
	fake  *testutil.FakeService
	store *tokenstore.MemoryStore
	dir   string
	opts  []cli.Option
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fake := testutil.NewFakeService()
	fake.Now = func() time.Time { return testNow }
	fake.AddUser("alice@example.com", "secret")
	store := tokenstore.NewMemoryStore("")
	fake.Tokens = store
	return &harness{fake: fake, store: store, dir: t.TempDir()}
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	if err := h.store.Save(context.Background(), h.fake.IssueToken("alice@example.com")); err != nil {
		t.Fatalf("save token: %v", err)
	}
}

func (h *harness) factory(cfg *config.Config, tokens tokenstore.Store, logger *slog.Logger) (service.Service, error) {
	return h.fake, nil
}

func (h *harness) run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	opts := append([]cli.Option{
		cli.WithTokenStore(func(*config.Config) (tokenstore.Store, error) { return h.store, nil }),
		cli.WithClock(func() time.Time { return testNow }),
	}, h.opts...)
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, h.factory, opts...)

	var stdout, stderr bytes.Buffer
	full := append([]string{args[0], "--config", h.dir}, args[1:]...)
	code := dispatcher.Run(context.Background(), full, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.run(t, "unknowncmd")
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newHarness(t).factory)

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"--quiet"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	h := newHarness(t)

	stdout, stderr, code := h.run(t, "help")
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
	if len(h.fake.Calls()) != 0 {
		t.Errorf("help must not contact the server, got %v", h.fake.Calls())
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	h := newHarness(t)

	stdout, stderr, code := h.run(t, "version")
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "todoboard 0.1.0\n" {
		t.Errorf("expected 'todoboard 0.1.0\\n', got %q", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.run(t, "help", "--unknown")
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagNeedsArgument(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newHarness(t).factory)

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"list", "--date"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: flag needs an argument: -date\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestDispatcher_InvalidAPIURL(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.run(t, "version", "--api", "ftp://example.com")
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: invalid api url: ftp://example.com\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestDispatcher_NoArgsListsToday(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.fake.AddTodo(service.Todo{Title: "Standup", Date: service.String("2024-05-01")})
	h.fake.AddTodo(service.Todo{Title: "Later", Date: service.String("2024-05-02")})

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, h.factory,
		cli.WithTokenStore(func(*config.Config) (tokenstore.Store, error) { return h.store, nil }),
		cli.WithClock(func() time.Time { return testNow }),
	)
	t.Setenv("XDG_CONFIG_HOME", h.dir)

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), nil, &stdout, &stderr)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Standup") || strings.Contains(stdout.String(), "Later") {
		t.Errorf("unexpected output:\n%s", stdout.String())
	}
}

func TestDispatcher_NeedsAuth_NotLoggedIn(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.run(t, "list")
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: not logged in (run: todoboard login)\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
	if len(h.fake.ListCalls()) != 0 {
		t.Error("expected no list request without a session")
	}
}

func TestDispatcher_NeedsAuth_RejectedTokenIsCleared(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	token, _ := h.store.Load(context.Background())
	h.fake.RevokeToken(token)

	_, stderr, code := h.run(t, "list")
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: not logged in (run: todoboard login)\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
	if token, _ := h.store.Load(context.Background()); token != "" {
		t.Error("expected rejected token cleared")
	}
}

func TestDispatcher_NeedsAuth_NetworkError(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.fake.MeErr = &service.NetworkError{Op: "me", Err: errors.New("connection refused")}

	_, stderr, code := h.run(t, "list")
	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: backend error: me: network error: connection refused\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestDispatcher_FactoryError(t *testing.T) {
	h := newHarness(t)
	failing := func(*config.Config, tokenstore.Store, *slog.Logger) (service.Service, error) {
		return nil, errors.New("no backend")
	}
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, failing,
		cli.WithTokenStore(func(*config.Config) (tokenstore.Store, error) { return h.store, nil }),
	)

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"version", "--config", h.dir}, &stdout, &stderr)
	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr.String() != "error: backend error: no backend\n" {
		t.Errorf("unexpected stderr: %q", stderr.String())
	}
}

func TestDispatcher_TokenStoreError(t *testing.T) {
	h := newHarness(t)
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, h.factory,
		cli.WithTokenStore(func(*config.Config) (tokenstore.Store, error) { return nil, errors.New("locked") }),
	)

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"whoami", "--config", h.dir}, &stdout, &stderr)
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr.String() != "error: auth error: open token store: locked\n" {
		t.Errorf("unexpected stderr: %q", stderr.String())
	}
}

func TestDispatcher_LoginReadsStdin(t *testing.T) {
	h := newHarness(t)
	h.opts = []cli.Option{cli.WithStdin(strings.NewReader("alice@example.com\nsecret\n"))}

	stdout, _, code := h.run(t, "login")
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d", code)
	}
	if stdout != "logged in as alice@example.com\n" {
		t.Errorf("unexpected output: %q", stdout)
	}
	if token, _ := h.store.Load(context.Background()); token == "" {
		t.Error("expected token persisted")
	}

	stdout, _, code = h.run(t, "whoami")
	if code != exitcode.Success || stdout != "alice@example.com (id 1)\n" {
		t.Errorf("unexpected whoami: %d %q", code, stdout)
	}
}

func TestDispatcher_QuietFlag(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	stdout, _, code := h.run(t, "add", "--quiet", "Buy", "milk")
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d", code)
	}
	if stdout != "" {
		t.Errorf("expected no output with --quiet, got %q", stdout)
	}
	if creates := h.fake.Creates(); len(creates) != 1 || creates[0].Title != "Buy milk" {
		t.Errorf("unexpected creates: %+v", creates)
	}
}
