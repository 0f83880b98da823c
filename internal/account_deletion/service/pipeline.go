package service

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/recipeshare/recipeshare-backend/internal/account_deletion/domain"
	authdomain "github.com/recipeshare/recipeshare-backend/internal/auth/domain"
	"github.com/recipeshare/recipeshare-backend/internal/auth/identity"
	"github.com/recipeshare/recipeshare-backend/internal/docstore"
	"github.com/recipeshare/recipeshare-backend/internal/metrics"
)

// Pipeline is the single ordered deletion path shared by every caller:
// gather targets, cascade-delete data batch by batch, then delete the
// identity. The identity is only touched once every batch has committed.
type Pipeline struct {
	store      docstore.Store
	identities identity.Provider
	batchLimit int
	metrics    *metrics.DeletionMetrics
}

func NewPipeline(store docstore.Store, identities identity.Provider, batchLimit int, m *metrics.DeletionMetrics) *Pipeline {
	if batchLimit <= 0 || batchLimit > docstore.MaxBatchOps {
		batchLimit = docstore.MaxBatchOps
	}
	return &Pipeline{
		store:      store,
		identities: identities,
		batchLimit: batchLimit,
		metrics:    m,
	}
}

// Run deletes uid's footprint for scope. On failure the returned Result
// still reports how many batches committed, and the error is a
// *domain.StageError. Re-running after any failure is safe.
func (p *Pipeline) Run(ctx context.Context, uid string, scope domain.Scope) (*domain.Result, error) {
	res := &domain.Result{UID: uid, Scope: scope}

	refs, err := p.gather(ctx, uid, scope)
	if err != nil {
		return res, err
	}

	batches := docstore.Chunk(refs, p.batchLimit)
	res.BatchesPlanned = len(batches)
	for _, batch := range batches {
		if err := p.store.DeleteBatch(ctx, batch); err != nil {
			return res, &domain.StageError{
				Stage:            domain.StageBatch,
				BatchesCommitted: res.BatchesCommitted,
				Err:              err,
			}
		}
		res.BatchesCommitted++
		res.DocumentsDeleted += len(batch)
		p.metrics.IncBatch()
		for collection, n := range countByCollection(batch) {
			p.metrics.AddDocuments(collection, n)
		}
	}

	if err := p.deleteIdentity(ctx, uid, res); err != nil {
		return res, err
	}
	return res, nil
}

// gather collects every document reference to delete. The owned
// collections are queried concurrently; the profile is staged last so a
// partially applied multi-batch run leaves the account's root document.
func (p *Pipeline) gather(ctx context.Context, uid string, scope domain.Scope) ([]docstore.Ref, error) {
	g, gctx := errgroup.WithContext(ctx)

	var owned [][]docstore.Ref
	if scope == domain.ScopeFull {
		owned = make([][]docstore.Ref, len(domain.CascadeCollections))
		for i, oc := range domain.CascadeCollections {
			i, oc := i, oc
			g.Go(func() error {
				refs, err := p.store.QueryRefs(gctx, oc.Name, oc.Field, uid)
				if err != nil {
					return &domain.StageError{Stage: domain.StageGather, Collection: oc.Name, Err: err}
				}
				owned[i] = refs
				return nil
			})
		}
	}

	var hasProfile bool
	g.Go(func() error {
		_, err := p.store.Get(gctx, authdomain.UsersCollection, uid)
		switch {
		case err == nil:
			hasProfile = true
		case errors.Is(err, docstore.ErrNotFound):
		default:
			return &domain.StageError{Stage: domain.StageGather, Collection: authdomain.UsersCollection, Err: err}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var refs []docstore.Ref
	for _, r := range owned {
		refs = append(refs, r...)
	}
	if hasProfile {
		refs = append(refs, docstore.Ref{Collection: authdomain.UsersCollection, ID: uid})
	}
	return refs, nil
}

// deleteIdentity removes the Authentication record. A record that is
// already gone counts as done.
func (p *Pipeline) deleteIdentity(ctx context.Context, uid string, res *domain.Result) error {
	if _, err := p.identities.LookupUser(ctx, uid); err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			res.IdentityAlreadyGone = true
			return nil
		}
		return &domain.StageError{Stage: domain.StageIdentity, BatchesCommitted: res.BatchesCommitted, Err: err}
	}

	if err := p.identities.DeleteAccount(ctx, uid); err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			res.IdentityAlreadyGone = true
			return nil
		}
		return &domain.StageError{Stage: domain.StageIdentity, BatchesCommitted: res.BatchesCommitted, Err: err}
	}

	res.IdentityDeleted = true
	return nil
}

func countByCollection(refs []docstore.Ref) map[string]int {
	out := make(map[string]int)
	for _, r := range refs {
		out[r.Collection]++
	}
	return out
}
