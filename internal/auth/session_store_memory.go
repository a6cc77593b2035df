package auth

import (
	"context"
	"sync"
)

// NewInMemorySessionStore returns a SessionStore backed by an in-memory map.
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[string]Session)}
}

// InMemorySessionStore implements SessionStore for tests and local development.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// Save replaces the user's session.
func (s *InMemorySessionStore) Save(_ context.Context, session Session) error {
	s.mu.Lock()
	s.sessions[session.Identity.UserID] = session
	s.mu.Unlock()
	return nil
}

// Find retrieves the user's current session.
func (s *InMemorySessionStore) Find(_ context.Context, userID string) (Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[userID]
	s.mu.RUnlock()
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return session, nil
}

// Rotate swaps the user's session for next if oldToken is still current.
func (s *InMemorySessionStore) Rotate(_ context.Context, userID, oldToken string, next Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.sessions[userID]
	if !ok {
		return ErrSessionNotFound
	}
	if current.RefreshToken != oldToken {
		return ErrRefreshTokenReused
	}
	s.sessions[userID] = next
	return nil
}

// Delete removes the user's session.
func (s *InMemorySessionStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
	return nil
}

// Has reports whether the user holds a session. Useful for tests.
func (s *InMemorySessionStore) Has(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[userID]
	return ok
}
