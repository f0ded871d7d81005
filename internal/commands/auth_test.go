package commands_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"todoboard/internal/backend/rest"
	"todoboard/internal/commands"
	"todoboard/internal/exitcode"
	"todoboard/internal/session"
	"todoboard/internal/testutil"
	"todoboard/internal/tokenstore"
)

// loggedOut returns an environment with no stored token.
func loggedOut(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t)
	if err := env.Session.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	return env
}

func storedToken(t *testing.T, env *testEnv) string {
	t.Helper()
	token, err := env.store.Load(context.Background())
	if err != nil {
		t.Fatalf("load token: %v", err)
	}
	return token
}

func TestLoginCommand_Flags(t *testing.T) {
	env := loggedOut(t)

	stdout, stderr, code := runCommand(t, env, &commands.LoginCmd{}, "--email", "alice@example.com", "--password", "secret")
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d: %s", code, stderr)
	}
	if stdout != "logged in as alice@example.com\n" {
		t.Errorf("unexpected output: %q", stdout)
	}
	if storedToken(t, env) == "" {
		t.Error("expected token persisted")
	}
	if !env.Session.Authenticated() {
		t.Error("expected session authenticated")
	}
}

func TestLoginCommand_PromptsOnStdin(t *testing.T) {
	env := loggedOut(t).withInput("alice@example.com\nsecret\n")

	_, stderr, code := runCommand(t, env, &commands.LoginCmd{})
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d: %s", code, stderr)
	}
	if stderr != "Email: Password: " {
		t.Errorf("unexpected prompts: %q", stderr)
	}
	if !env.Session.Authenticated() {
		t.Error("expected session authenticated")
	}
}

func TestLoginCommand_BadPassword(t *testing.T) {
	env := loggedOut(t)

	_, stderr, code := runCommand(t, env, &commands.LoginCmd{}, "--email", "alice@example.com", "--password", "wrong")
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: auth error: server error 401: Incorrect username or password\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
	if storedToken(t, env) != "" {
		t.Error("expected no token persisted")
	}
}

func TestLoginCommand_MissingPassword(t *testing.T) {
	env := loggedOut(t)

	_, stderr, code := runCommand(t, env, &commands.LoginCmd{}, "--email", "alice@example.com")
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasSuffix(stderr, "error: password required\n") {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestLogoutCommand(t *testing.T) {
	env := newTestEnv(t)

	stdout, stderr, code := runCommand(t, env, &commands.LogoutCmd{})
	if code != exitcode.Success || stdout != "ok\n" || stderr != "" {
		t.Fatalf("unexpected result: %d %q %q", code, stdout, stderr)
	}
	if storedToken(t, env) != "" {
		t.Error("expected token cleared")
	}
	if env.Session.Authenticated() {
		t.Error("expected session reset")
	}
	if len(env.fake.Calls()) != 0 {
		t.Errorf("logout must not contact the server, got %v", env.fake.Calls())
	}

	stdout, _, code = runCommand(t, env, &commands.LogoutCmd{})
	if code != exitcode.Success || stdout != "not logged in\n" {
		t.Errorf("unexpected second logout: %d %q", code, stdout)
	}

	env.Config.Quiet = true
	stdout, _, _ = runCommand(t, env, &commands.LogoutCmd{})
	if stdout != "" {
		t.Errorf("expected no output in quiet mode, got %q", stdout)
	}
}

func TestRegisterCommand(t *testing.T) {
	env := loggedOut(t)

	stdout, _, code := runCommand(t, env, &commands.RegisterCmd{}, "--email", "bob@example.com", "--password", "pw")
	if code != exitcode.Success || stdout != "ok\n" {
		t.Fatalf("unexpected result: %d %q", code, stdout)
	}
	if _, _, code := runCommand(t, env, &commands.LoginCmd{}, "--email", "bob@example.com", "--password", "pw"); code != exitcode.Success {
		t.Errorf("expected new account to log in, got %d", code)
	}

	_, stderr, code := runCommand(t, env, &commands.RegisterCmd{}, "--email", "bob@example.com", "--password", "pw")
	if code != exitcode.UserError || stderr != "error: server error 400: Email already registered\n" {
		t.Errorf("unexpected duplicate result: %d %q", code, stderr)
	}

	_, stderr, code = runCommand(t, env, &commands.RegisterCmd{})
	if code != exitcode.UserError || stderr != "error: email required\n" {
		t.Errorf("unexpected missing email result: %d %q", code, stderr)
	}
}

func TestWhoamiCommand(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, code := runCommand(t, env, &commands.WhoamiCmd{})
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d", code)
	}
	if stdout != "alice@example.com (id 1)\n" {
		t.Errorf("unexpected output: %q", stdout)
	}

	env = loggedOut(t)
	_, stderr, code := runCommand(t, env, &commands.WhoamiCmd{})
	if code != exitcode.AuthError || stderr != "error: not logged in (run: todoboard login)\n" {
		t.Errorf("unexpected logged-out result: %d %q", code, stderr)
	}
}

func TestWhoamiCommand_JWTExpiry(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	backend.AddUser("bob@example.com", "pw")
	token := backend.Token("bob@example.com", time.Hour)

	store := tokenstore.NewMemoryStore(token)
	client := rest.NewWithHTTPClient(backend.URL, backend.Client(), store)
	sess := session.New(store, client)
	if err := sess.CheckAuth(context.Background()); err != nil {
		t.Fatalf("check auth: %v", err)
	}

	env := newTestEnv(t)
	env.Service = client
	env.Session = sess
	env.Tokens = store

	stdout, _, code := runCommand(t, env, &commands.WhoamiCmd{})
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d", code)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 2 || lines[0] != "bob@example.com (id 1)" {
		t.Fatalf("unexpected output: %q", stdout)
	}
	exp, err := time.Parse(time.RFC3339, strings.TrimPrefix(lines[1], "token expires "))
	if err != nil {
		t.Fatalf("unexpected expiry line %q: %v", lines[1], err)
	}
	if d := time.Until(exp); d <= 0 || d > time.Hour+time.Minute {
		t.Errorf("unexpected expiry %v", exp)
	}
}
