package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"todoboard/internal/service"
	"todoboard/internal/testutil"
	"todoboard/internal/tokenstore"
)

func newTestSession(t *testing.T, opts ...Option) (*Session, *testutil.FakeService, *tokenstore.MemoryStore) {
	t.Helper()
	store := tokenstore.NewMemoryStore("")
	fake := testutil.NewFakeService()
	fake.Tokens = store
	fake.AddUser("ada@example.com", "pw")
	return New(store, fake, opts...), fake, store
}

func assertInvariant(t *testing.T, st State) {
	t.Helper()
	want := st.Token != "" && st.User != nil
	if st.Authenticated != want {
		t.Errorf("Authenticated=%v but token=%q user=%v", st.Authenticated, st.Token, st.User)
	}
}

func TestNew_StartsLoading(t *testing.T) {
	s, _, _ := newTestSession(t)
	if !s.State().Loading {
		t.Error("expected loading before CheckAuth")
	}
}

func TestCheckAuth_NoToken(t *testing.T) {
	s, fake, _ := newTestSession(t)
	fake.MeErr = errors.New("must not be called")

	if err := s.CheckAuth(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st := s.State()
	if st.Authenticated || st.Loading || st.User != nil {
		t.Errorf("expected resolved unauthenticated state, got %+v", st)
	}
	assertInvariant(t, st)
}

func TestLogin_ValidToken(t *testing.T) {
	s, fake, store := newTestSession(t)
	ctx := context.Background()
	token := fake.IssueToken("ada@example.com")

	if err := s.Login(ctx, token); err != nil {
		t.Fatalf("login: %v", err)
	}
	st := s.State()
	if !st.Authenticated || st.User == nil || st.User.Email != "ada@example.com" {
		t.Fatalf("expected authenticated ada, got %+v", st)
	}
	if st.Loading {
		t.Error("expected loading to be false")
	}
	assertInvariant(t, st)

	persisted, _ := store.Load(ctx)
	if persisted != token {
		t.Errorf("expected token persisted, got %q", persisted)
	}
}

func TestLogin_InvalidTokenClearsEverything(t *testing.T) {
	s, _, store := newTestSession(t)
	ctx := context.Background()

	err := s.Login(ctx, "not-a-real-token")
	if !service.IsAuthError(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
	st := s.State()
	if st.Authenticated || st.User != nil || st.Token != "" {
		t.Errorf("expected reset state, got %+v", st)
	}
	assertInvariant(t, st)
	if persisted, _ := store.Load(ctx); persisted != "" {
		t.Errorf("expected no persisted token, got %q", persisted)
	}
}

func TestCheckAuth_RevokedToken(t *testing.T) {
	s, fake, store := newTestSession(t)
	ctx := context.Background()
	token := fake.IssueToken("ada@example.com")
	if err := s.Login(ctx, token); err != nil {
		t.Fatalf("login: %v", err)
	}

	fake.RevokeToken(token)
	if err := s.CheckAuth(ctx); err == nil {
		t.Fatal("expected identity failure")
	}
	if s.Authenticated() {
		t.Error("expected unauthenticated after revoke")
	}
	if persisted, _ := store.Load(ctx); persisted != "" {
		t.Errorf("expected token cleared, got %q", persisted)
	}
}

func TestCheckAuth_NetworkErrorClearsByDefault(t *testing.T) {
	s, fake, store := newTestSession(t)
	ctx := context.Background()
	_ = store.Save(ctx, fake.IssueToken("ada@example.com"))
	fake.MeErr = &service.NetworkError{Op: "identity", Err: errors.New("connection refused")}

	if err := s.CheckAuth(ctx); !service.IsNetworkError(err) {
		t.Fatalf("expected network error, got %v", err)
	}
	if persisted, _ := store.Load(ctx); persisted != "" {
		t.Errorf("expected token cleared on network failure, got %q", persisted)
	}
}

func TestCheckAuth_KeepTokenOnNetworkError(t *testing.T) {
	s, fake, store := newTestSession(t, WithKeepTokenOnNetworkError(true))
	ctx := context.Background()
	token := fake.IssueToken("ada@example.com")
	_ = store.Save(ctx, token)
	fake.MeErr = &service.NetworkError{Op: "identity", Err: errors.New("connection refused")}

	if err := s.CheckAuth(ctx); err == nil {
		t.Fatal("expected error")
	}
	st := s.State()
	if st.Authenticated {
		t.Error("expected unauthenticated while server unreachable")
	}
	assertInvariant(t, st)
	if persisted, _ := store.Load(ctx); persisted != token {
		t.Errorf("expected token kept, got %q", persisted)
	}

	// Auth rejections still clear the token.
	fake.MeErr = testutil.Unauthorized()
	_ = s.CheckAuth(ctx)
	if persisted, _ := store.Load(ctx); persisted != "" {
		t.Errorf("expected token cleared on 401, got %q", persisted)
	}
}

func TestCheckAuth_CorruptTokenIsCleared(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := tokenstore.NewFileStore(path)
	fake := testutil.NewFakeService()
	fake.MeErr = errors.New("must not be called")
	s := New(store, fake)

	if err := s.CheckAuth(context.Background()); err != nil {
		t.Fatalf("expected unreadable token to resolve to logged out, got %v", err)
	}
	st := s.State()
	if st.Authenticated || st.Loading {
		t.Errorf("expected resolved unauthenticated state, got %+v", st)
	}
	assertInvariant(t, st)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected token file removed, stat err = %v", err)
	}

	if err := s.CheckAuth(context.Background()); err != nil {
		t.Errorf("second check: %v", err)
	}
}

func TestLogout_NoServerCall(t *testing.T) {
	s, fake, store := newTestSession(t)
	ctx := context.Background()
	if err := s.Login(ctx, fake.IssueToken("ada@example.com")); err != nil {
		t.Fatalf("login: %v", err)
	}
	fake.MeErr = errors.New("must not be called")

	if err := s.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	st := s.State()
	if st.Authenticated || st.User != nil || st.Token != "" {
		t.Errorf("expected reset state, got %+v", st)
	}
	if persisted, _ := store.Load(ctx); persisted != "" {
		t.Errorf("expected token cleared, got %q", persisted)
	}
}

func TestSubscribe(t *testing.T) {
	s, fake, _ := newTestSession(t)
	ctx := context.Background()

	var seen []State
	unsubscribe := s.Subscribe(func(st State) { seen = append(seen, st) })

	if err := s.Login(ctx, fake.IssueToken("ada@example.com")); err != nil {
		t.Fatalf("login: %v", err)
	}
	if len(seen) == 0 || !seen[len(seen)-1].Authenticated {
		t.Fatalf("expected authenticated notification, got %+v", seen)
	}

	unsubscribe()
	count := len(seen)
	_ = s.Logout(ctx)
	if len(seen) != count {
		t.Error("expected no notifications after unsubscribe")
	}
}

func TestState_ReturnsCopy(t *testing.T) {
	s, fake, _ := newTestSession(t)
	if err := s.Login(context.Background(), fake.IssueToken("ada@example.com")); err != nil {
		t.Fatalf("login: %v", err)
	}
	st := s.State()
	st.User.Email = "mutated"
	if s.State().User.Email != "ada@example.com" {
		t.Error("State must not expose internal user")
	}
}
