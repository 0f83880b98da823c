package client

import (
	"errors"
	"sync"
)

var ErrNotSignedIn = errors.New("not signed in")

// Session is the signed-in user as seen by the client.
type Session struct {
	UID     string
	IDToken string
}

// SessionStore holds the current session. Clear signs the user out locally.
type SessionStore interface {
	Current() (*Session, bool)
	Clear() error
}

// MemorySessionStore keeps the session in process memory.
type MemorySessionStore struct {
	mu      sync.Mutex
	session *Session
}

func NewMemorySessionStore(s *Session) *MemorySessionStore {
	return &MemorySessionStore{session: s}
}

func (m *MemorySessionStore) Current() (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil || m.session.IDToken == "" {
		return nil, false
	}
	s := *m.session
	return &s, true
}

func (m *MemorySessionStore) Set(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = s
}

func (m *MemorySessionStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}
