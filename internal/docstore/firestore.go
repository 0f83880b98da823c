package docstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore implements Store on Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	if !snap.Exists() {
		return nil, ErrNotFound
	}
	return Document(snap.Data()), nil
}

func (s *FirestoreStore) QueryRefs(ctx context.Context, collection, field string, value any) ([]Ref, error) {
	// Select with no paths fetches document names only.
	snaps, err := s.client.Collection(collection).
		Where(field, "==", value).
		Select().
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, fmt.Errorf("query %s where %s: %w", collection, field, err)
	}

	refs := make([]Ref, 0, len(snaps))
	for _, snap := range snaps {
		refs = append(refs, Ref{Collection: collection, ID: snap.Ref.ID})
	}
	return refs, nil
}

func (s *FirestoreStore) DeleteBatch(ctx context.Context, refs []Ref) error {
	if len(refs) == 0 {
		return nil
	}
	if len(refs) > MaxBatchOps {
		return ErrBatchTooLarge
	}

	batch := s.client.Batch()
	for _, ref := range refs {
		batch.Delete(s.client.Collection(ref.Collection).Doc(ref.ID))
	}
	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch of %d deletes: %w", len(refs), err)
	}
	return nil
}

func (s *FirestoreStore) Merge(ctx context.Context, collection, id string, fields Document) error {
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, map[string]any(fields), firestore.MergeAll); err != nil {
		return fmt.Errorf("merge %s/%s: %w", collection, id, err)
	}
	return nil
}
