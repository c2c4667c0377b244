package memory

import (
	"context"
	"sync"
	"time"
)

// SessionStore implements repository.KeyValueStore for one browsing session.
// Values live only in process memory.
type SessionStore struct {
	items map[string]string
	mu    sync.RWMutex
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{items: make(map[string]string)}
}

// GetItem returns the value stored under key.
func (s *SessionStore) GetItem(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.items[key]
	return value, ok, nil
}

// SetItem stores value under key.
func (s *SessionStore) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return nil
}

// RemoveItem deletes key.
func (s *SessionStore) RemoveItem(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

type sessionEntry struct {
	store    *SessionStore
	lastSeen time.Time
}

// SessionRegistry hands out one SessionStore per session id and drops
// sessions that stay idle longer than the ttl.
type SessionRegistry struct {
	sessions map[string]*sessionEntry
	ttl      time.Duration
	now      func() time.Time
	mu       sync.Mutex
}

// NewSessionRegistry creates a registry; ttl <= 0 keeps sessions for the life of the process.
func NewSessionRegistry(ttl time.Duration) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*sessionEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the store for id, creating it on first use, and marks the
// session as active.
func (r *SessionRegistry) Get(id string) *SessionStore {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[id]
	if !ok {
		entry = &sessionEntry{store: NewSessionStore()}
		r.sessions[id] = entry
	}
	entry.lastSeen = r.now()
	return entry.store
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Purge drops sessions idle for longer than the ttl and returns how many were dropped.
func (r *SessionRegistry) Purge() int {
	if r.ttl <= 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.ttl)
	purged := 0
	for id, entry := range r.sessions {
		if entry.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			purged++
		}
	}
	return purged
}

// Run purges idle sessions every interval until ctx is done.
func (r *SessionRegistry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Purge()
		}
	}
}
