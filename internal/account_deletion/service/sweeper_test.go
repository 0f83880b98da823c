package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipeshare/recipeshare-backend/internal/account_deletion/domain"
	authdomain "github.com/recipeshare/recipeshare-backend/internal/auth/domain"
	"github.com/recipeshare/recipeshare-backend/internal/auth/identity"
	"github.com/recipeshare/recipeshare-backend/internal/docstore"
)

func TestSweeper_ResolvesPendingIdentities(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	mem := identity.NewMemoryProvider()
	seedUser(store, mem, "u1", authdomain.RoleUser, 1, 0, 0, 0)
	ids := &flakyProvider{MemoryProvider: mem, broken: true}
	journal := setupRedisJournal(t)
	audit := &memoryAudit{}

	svc := newService(store, ids, journal, audit, 0)
	_, err := svc.DeleteOwnAccount(ctx, caller("u1"))
	require.Error(t, err)

	// content written after the failed attempt is picked up by the sweep
	store.Put("comments", "late", docstore.Document{"userId": "u1"})

	sweeper := NewSweeper(SweeperOptions{
		Pipeline: svc.Pipeline(),
		Journal:  journal,
		Audit:    audit,
		Limit:    10,
	})

	t.Run("still failing", func(t *testing.T) {
		report, err := sweeper.Sweep(ctx)
		require.Error(t, err)
		assert.Equal(t, SweepReport{Scanned: 1, Failed: 1}, report)

		pending, err := journal.List(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, 1, pending[0].Attempts)
		assert.Equal(t, domain.ModeSweep, audit.last().Mode)
		assert.Equal(t, domain.OutcomeIdentityPending, audit.last().Outcome)
	})

	t.Run("recovers", func(t *testing.T) {
		ids.heal()
		report, err := sweeper.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, SweepReport{Scanned: 1, Resolved: 1}, report)

		n, err := journal.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.False(t, mem.Exists("u1"))
		assert.Zero(t, store.Count("comments"))
		assert.Equal(t, domain.OutcomeSuccess, audit.last().Outcome)
		assert.Equal(t, "system", audit.last().ActorUID)
	})

	t.Run("nothing pending", func(t *testing.T) {
		report, err := sweeper.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, SweepReport{}, report)
	})
}

func TestSweeper_RespectsProfileScope(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	mem := identity.NewMemoryProvider()
	seedUser(store, mem, "u2", authdomain.RoleUser, 2, 0, 0, 0)
	journal := setupRedisJournal(t)
	require.NoError(t, journal.MarkPending(ctx, domain.PendingIdentity{
		UID:   "u2",
		Scope: domain.ScopeProfile,
		Stage: domain.StageIdentity,
	}))

	sweeper := NewSweeper(SweeperOptions{
		Pipeline: NewPipeline(store, mem, 0, nil),
		Journal:  journal,
		Limit:    10,
	})
	report, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Resolved)
	assert.Equal(t, 2, store.Count("recipes"))
	assert.False(t, mem.Exists("u2"))
}

func TestSweeper_StopsOnCancelledContext(t *testing.T) {
	store := docstore.NewMemoryStore()
	mem := identity.NewMemoryProvider()
	journal := setupRedisJournal(t)
	require.NoError(t, journal.MarkPending(context.Background(), domain.PendingIdentity{UID: "a", Scope: domain.ScopeFull}))
	require.NoError(t, journal.MarkPending(context.Background(), domain.PendingIdentity{UID: "b", Scope: domain.ScopeFull}))

	sweeper := NewSweeper(SweeperOptions{
		Pipeline:  NewPipeline(store, mem, 0, nil),
		Journal:   journal,
		PerSecond: 0.001,
		Limit:     10,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := sweeper.Sweep(ctx)
	require.Error(t, err)

	n, err := journal.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
