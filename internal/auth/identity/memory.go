package identity

import (
	"context"
	"net/url"
	"sync"
)

// MemoryProvider is an in-process Provider for local development and tests.
type MemoryProvider struct {
	mu      sync.Mutex
	users   map[string]User
	deletes []string
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{users: make(map[string]User)}
}

func (p *MemoryProvider) Add(u User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users[u.UID] = u
}

func (p *MemoryProvider) Exists(uid string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.users[uid]
	return ok
}

// Deletes returns the uids whose records were removed, in order.
func (p *MemoryProvider) Deletes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.deletes...)
}

func (p *MemoryProvider) LookupUser(_ context.Context, uid string) (*User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.users[uid]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (p *MemoryProvider) DeleteAccount(_ context.Context, uid string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.users[uid]; !ok {
		return ErrUserNotFound
	}
	delete(p.users, uid)
	p.deletes = append(p.deletes, uid)
	return nil
}

func (p *MemoryProvider) EmailVerificationLink(_ context.Context, email string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, u := range p.users {
		if u.Email == email {
			return "https://localhost/verify?email=" + url.QueryEscape(email), nil
		}
	}
	return "", ErrUserNotFound
}
