// Package tokenstore persists the bearer token between runs.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"todoboard/internal/config"
)

// Store is durable storage for a single token string.
//
// Load returns "" with a nil error when no token is stored. Clear on an
// empty store is not an error.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	Close() error
}

// ErrCorrupt is returned by Load when the stored token cannot be decoded.
// Clearing the store recovers from it.
var ErrCorrupt = errors.New("corrupt token")

// Open returns the store selected by cfg.TokenStore.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.TokenStore {
	case "", config.StoreFile:
		return NewFileStore(cfg.TokenPath()), nil
	case config.StoreSQLite:
		if err := cfg.EnsureDir(); err != nil {
			return nil, fmt.Errorf("create config directory: %w", err)
		}
		return OpenSQLite(cfg.DatabasePath())
	case config.StoreMemory:
		return NewMemoryStore(""), nil
	default:
		return nil, fmt.Errorf("unknown token store: %s", cfg.TokenStore)
	}
}

// MemoryStore keeps the token in process memory only.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore creates a MemoryStore holding token.
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (m *MemoryStore) Load(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *MemoryStore) Save(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	return m.Save(ctx, "")
}

func (m *MemoryStore) Close() error { return nil }
