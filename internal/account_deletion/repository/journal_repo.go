package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/recipeshare/recipeshare-backend/internal/account_deletion/domain"
)

const (
	pendingKeyPrefix = "acct:pending:" // Hash per account: acct:pending:{uid}
	pendingSetKey    = "acct:pending"  // Set of uids awaiting identity deletion
)

// JournalRepository tracks accounts whose data is gone but whose login
// still exists, so the sweeper can finish them.
type JournalRepository struct {
	client *redis.Client
}

func NewJournalRepository(client *redis.Client) *JournalRepository {
	return &JournalRepository{client: client}
}

// MarkPending records uid as awaiting identity deletion. Repeated calls keep
// the original first_seen timestamp.
func (r *JournalRepository) MarkPending(ctx context.Context, p domain.PendingIdentity) error {
	if p.FirstSeen.IsZero() {
		p.FirstSeen = time.Now()
	}
	key := r.pendingKey(p.UID)

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key,
		"scope", string(p.Scope),
		"stage", string(p.Stage),
		"last_error", p.LastError,
	)
	pipe.HSetNX(ctx, key, "first_seen", p.FirstSeen.Unix())
	pipe.HSetNX(ctx, key, "attempts", 0)
	pipe.SAdd(ctx, pendingSetKey, p.UID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to mark identity pending: %w", err)
	}
	return nil
}

// RecordAttempt bumps the retry counter for uid.
func (r *JournalRepository) RecordAttempt(ctx context.Context, uid, lastError string) error {
	key := r.pendingKey(uid)

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to check pending identity: %w", err)
	}
	if exists == 0 {
		return domain.ErrPendingNotFound
	}

	pipe := r.client.TxPipeline()
	pipe.HIncrBy(ctx, key, "attempts", 1)
	pipe.HSet(ctx, key, "last_error", lastError)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

// Clear removes uid from the journal. Clearing an absent entry is not an error.
func (r *JournalRepository) Clear(ctx context.Context, uid string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.pendingKey(uid))
	pipe.SRem(ctx, pendingSetKey, uid)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear pending identity: %w", err)
	}
	return nil
}

// List returns up to limit pending entries ordered by uid.
func (r *JournalRepository) List(ctx context.Context, limit int) ([]domain.PendingIdentity, error) {
	uids, err := r.client.SMembers(ctx, pendingSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list pending identities: %w", err)
	}
	sort.Strings(uids)

	out := make([]domain.PendingIdentity, 0, len(uids))
	for _, uid := range uids {
		if limit > 0 && len(out) >= limit {
			break
		}
		fields, err := r.client.HGetAll(ctx, r.pendingKey(uid)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read pending identity %s: %w", uid, err)
		}
		if len(fields) == 0 {
			// set member without a hash; drop it
			r.client.SRem(ctx, pendingSetKey, uid)
			continue
		}
		out = append(out, parsePending(uid, fields))
	}
	return out, nil
}

// Count returns the number of pending entries.
func (r *JournalRepository) Count(ctx context.Context) (int, error) {
	n, err := r.client.SCard(ctx, pendingSetKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count pending identities: %w", err)
	}
	return int(n), nil
}

func parsePending(uid string, fields map[string]string) domain.PendingIdentity {
	p := domain.PendingIdentity{
		UID:       uid,
		Scope:     domain.Scope(fields["scope"]),
		Stage:     domain.Stage(fields["stage"]),
		LastError: fields["last_error"],
	}
	if !p.Scope.Valid() {
		p.Scope = domain.ScopeFull
	}
	if n, err := strconv.Atoi(fields["attempts"]); err == nil {
		p.Attempts = n
	}
	if ts, err := strconv.ParseInt(fields["first_seen"], 10, 64); err == nil {
		p.FirstSeen = time.Unix(ts, 0)
	}
	return p
}

func (r *JournalRepository) pendingKey(uid string) string {
	return fmt.Sprintf("%s%s", pendingKeyPrefix, uid)
}
