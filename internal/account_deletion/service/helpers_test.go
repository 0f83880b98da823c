package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/recipeshare/recipeshare-backend/internal/account_deletion/domain"
	"github.com/recipeshare/recipeshare-backend/internal/account_deletion/repository"
	authdomain "github.com/recipeshare/recipeshare-backend/internal/auth/domain"
	"github.com/recipeshare/recipeshare-backend/internal/auth/identity"
	"github.com/recipeshare/recipeshare-backend/internal/docstore"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// seedUser stores a profile plus the given number of owned documents.
func seedUser(store *docstore.MemoryStore, ids *identity.MemoryProvider, uid, role string, recipes, comments, notifications, likes int) {
	store.Put(authdomain.UsersCollection, uid, docstore.Document{
		authdomain.FieldRole: role,
		"email":              uid + "@example.com",
	})
	ids.Add(identity.User{UID: uid, Email: uid + "@example.com", EmailVerified: true})

	for i := 0; i < recipes; i++ {
		store.Put("recipes", fmt.Sprintf("%s-r%d", uid, i), docstore.Document{"createdBy": uid, "title": "dish"})
	}
	for i := 0; i < comments; i++ {
		store.Put("comments", fmt.Sprintf("%s-c%d", uid, i), docstore.Document{"userId": uid, "text": "nice"})
	}
	for i := 0; i < notifications; i++ {
		store.Put("notifications", fmt.Sprintf("%s-n%d", uid, i), docstore.Document{"userId": uid})
	}
	for i := 0; i < likes; i++ {
		store.Put("likes", fmt.Sprintf("%s-l%d", uid, i), docstore.Document{"userId": uid, "recipeId": "x"})
	}
}

func caller(uid string) *authdomain.Identity {
	return &authdomain.Identity{UID: uid, Email: uid + "@example.com", EmailVerified: true, AuthTime: testNow.Add(-time.Minute)}
}

// failingStore fails the n-th DeleteBatch call (1-based).
type failingStore struct {
	*docstore.MemoryStore
	failOn int

	mu    sync.Mutex
	calls int
}

func (s *failingStore) DeleteBatch(ctx context.Context, refs []docstore.Ref) error {
	s.mu.Lock()
	s.calls++
	n := s.calls
	s.mu.Unlock()
	if n == s.failOn {
		return errors.New("commit aborted")
	}
	return s.MemoryStore.DeleteBatch(ctx, refs)
}

// flakyProvider fails DeleteAccount until healed.
type flakyProvider struct {
	*identity.MemoryProvider

	mu     sync.Mutex
	broken bool
}

func (p *flakyProvider) DeleteAccount(ctx context.Context, uid string) error {
	p.mu.Lock()
	broken := p.broken
	p.mu.Unlock()
	if broken {
		return errors.New("auth backend unavailable")
	}
	return p.MemoryProvider.DeleteAccount(ctx, uid)
}

func (p *flakyProvider) heal() {
	p.mu.Lock()
	p.broken = false
	p.mu.Unlock()
}

type memoryAudit struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (a *memoryAudit) Record(_ context.Context, e *domain.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	e.ID = fmt.Sprintf("a%d", len(a.entries)+1)
	a.entries = append(a.entries, *e)
	return nil
}

func (a *memoryAudit) ListByTarget(_ context.Context, uid string, _ int) ([]domain.AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []domain.AuditEntry
	for _, e := range a.entries {
		if e.TargetUID == uid {
			out = append(out, e)
		}
	}
	return out, nil
}

func (a *memoryAudit) last() domain.AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.entries[len(a.entries)-1]
}

func setupRedisJournal(t *testing.T) *repository.JournalRepository {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return repository.NewJournalRepository(client)
}

// queryFailingStore fails QueryRefs for one collection.
type queryFailingStore struct {
	*docstore.MemoryStore
	collection string
}

func (s *queryFailingStore) QueryRefs(ctx context.Context, collection, field string, value any) ([]docstore.Ref, error) {
	if collection == s.collection {
		return nil, errors.New("query deadline exceeded")
	}
	return s.MemoryStore.QueryRefs(ctx, collection, field, value)
}
