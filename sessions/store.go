// Package sessions issues and resolves login sessions.
//
// A session is a server-side record (session id -> user id) with a TTL, kept in
// Redis or, for development, in process memory. The browser only holds a signed
// token naming the session id, so logout and expiry are enforced server-side.
package sessions

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSessionNotFound is returned when the session id is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// Store keeps session records
type Store interface {
	Save(ctx context.Context, id string, userID int64, ttl time.Duration) error
	Lookup(ctx context.Context, id string) (int64, error)
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	userID    int64
	expiresAt time.Time
}

// MemoryStore is a process-local Store. Sessions are lost on restart and are not
// shared between replicas; use RedisStore outside development.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, id string, userID int64, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[id] = memoryEntry{userID: userID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Lookup(_ context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return 0, ErrSessionNotFound
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, id)
		return 0, ErrSessionNotFound
	}
	return e.userID, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
	return nil
}
