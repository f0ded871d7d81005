// Package session tracks who is logged in.
//
// A Session owns the persisted bearer token and the identity it resolves to.
// It is created once per process and passed to whatever needs it.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"todoboard/internal/service"
	"todoboard/internal/tokenstore"
)

// IdentityFetcher resolves the current token to a user.
type IdentityFetcher interface {
	Me(ctx context.Context) (service.User, error)
}

// State is a snapshot of the session.
// Authenticated is true exactly when Token is non-empty and User is set.
type State struct {
	Token         string
	User          *service.User
	Authenticated bool
	Loading       bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithKeepTokenOnNetworkError keeps the persisted token when the identity
// check fails because the server could not be reached. The session still
// reports unauthenticated.
func WithKeepTokenOnNetworkError(keep bool) Option {
	return func(s *Session) { s.keepOnNetworkError = keep }
}

// Session is the authentication state of the client.
type Session struct {
	store    tokenstore.Store
	identity IdentityFetcher
	log      *slog.Logger

	keepOnNetworkError bool

	mu        sync.Mutex
	state     State
	listeners map[int]func(State)
	nextID    int
}

// New creates a Session in the loading state. Call CheckAuth to resolve it.
func New(store tokenstore.Store, identity IdentityFetcher, opts ...Option) *Session {
	s := &Session{
		store:     store,
		identity:  identity,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		state:     State{Loading: true},
		listeners: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Authenticated reports whether a verified user is logged in.
func (s *Session) Authenticated() bool {
	return s.State().Authenticated
}

// Subscribe registers fn to be called with every new state. The returned
// function removes the subscription.
func (s *Session) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// CheckAuth loads the persisted token and verifies it with the server.
//
// Without a token the session resolves to unauthenticated and no request is
// made. An undecodable stored token is cleared and treated the same way. If
// the identity fetch fails the token is cleared, unless the failure is a
// network error and the session keeps tokens on network errors. The returned
// error is the identity failure, if any.
func (s *Session) CheckAuth(ctx context.Context) error {
	token, err := s.store.Load(ctx)
	if errors.Is(err, tokenstore.ErrCorrupt) {
		s.log.Warn("stored token unreadable, clearing it", "error", err)
		if clearErr := s.store.Clear(ctx); clearErr != nil {
			s.set(State{})
			return fmt.Errorf("clear token: %w", clearErr)
		}
		s.set(State{})
		return nil
	}
	if err != nil {
		s.set(State{})
		return fmt.Errorf("load token: %w", err)
	}
	if token == "" {
		s.set(State{})
		return nil
	}

	user, err := s.identity.Me(ctx)
	if err != nil {
		if s.keepOnNetworkError && service.IsNetworkError(err) {
			s.log.Debug("identity check failed, keeping token", "error", err)
			s.set(State{})
			return err
		}
		s.log.Debug("identity check failed, clearing token", "error", err)
		if clearErr := s.store.Clear(ctx); clearErr != nil {
			s.log.Warn("failed to clear token", "error", clearErr)
		}
		s.set(State{})
		return err
	}

	s.set(State{Token: token, User: &user, Authenticated: true})
	return nil
}

// Login persists token and re-runs CheckAuth. The token's shape is not
// checked; only the identity fetch establishes validity.
func (s *Session) Login(ctx context.Context, token string) error {
	s.mu.Lock()
	s.state.Loading = true
	s.mu.Unlock()

	if err := s.store.Save(ctx, token); err != nil {
		s.set(State{})
		return fmt.Errorf("save token: %w", err)
	}
	return s.CheckAuth(ctx)
}

// Logout clears the persisted token and resets state. It never contacts
// the server.
func (s *Session) Logout(ctx context.Context) error {
	err := s.store.Clear(ctx)
	s.set(State{})
	if err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

func (s *Session) set(st State) {
	s.mu.Lock()
	s.state = st
	snap := s.snapshotLocked()
	listeners := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

func (s *Session) snapshotLocked() State {
	snap := s.state
	if snap.User != nil {
		u := *snap.User
		snap.User = &u
	}
	return snap
}
