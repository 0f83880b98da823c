package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/recipeshare/recipeshare-backend/internal/account_deletion/domain"
	"github.com/recipeshare/recipeshare-backend/internal/apperrors"
	authdomain "github.com/recipeshare/recipeshare-backend/internal/auth/domain"
	"github.com/recipeshare/recipeshare-backend/internal/auth/identity"
	"github.com/recipeshare/recipeshare-backend/internal/docstore"
	"github.com/recipeshare/recipeshare-backend/internal/logging"
	"github.com/recipeshare/recipeshare-backend/internal/metrics"
)

// ReasonRequiresRecentLogin is the failed-precondition detail telling the
// client to re-authenticate before retrying.
const ReasonRequiresRecentLogin = "requires-recent-login"

// Journal remembers accounts whose login outlived their data.
type Journal interface {
	MarkPending(ctx context.Context, p domain.PendingIdentity) error
	RecordAttempt(ctx context.Context, uid, lastError string) error
	Clear(ctx context.Context, uid string) error
	List(ctx context.Context, limit int) ([]domain.PendingIdentity, error)
	Count(ctx context.Context) (int, error)
}

// AuditLog stores deletion attempts.
type AuditLog interface {
	Record(ctx context.Context, e *domain.AuditEntry) error
	ListByTarget(ctx context.Context, uid string, limit int) ([]domain.AuditEntry, error)
}

type Options struct {
	Store             docstore.Store
	Identities        identity.Provider
	Journal           Journal  // optional
	Audit             AuditLog // optional
	Metrics           *metrics.DeletionMetrics
	Logger            *logging.Logger
	BatchLimit        int
	RecentLoginWindow time.Duration
	Now               func() time.Time
}

// CleanupService implements self-service and administrator account deletion.
type CleanupService struct {
	pipeline          *Pipeline
	store             docstore.Store
	journal           Journal
	audit             AuditLog
	metrics           *metrics.DeletionMetrics
	log               *logging.Logger
	recentLoginWindow time.Duration
	now               func() time.Time
}

func NewCleanupService(opts Options) *CleanupService {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &CleanupService{
		pipeline:          NewPipeline(opts.Store, opts.Identities, opts.BatchLimit, opts.Metrics),
		store:             opts.Store,
		journal:           opts.Journal,
		audit:             opts.Audit,
		metrics:           opts.Metrics,
		log:               opts.Logger,
		recentLoginWindow: opts.RecentLoginWindow,
		now:               opts.Now,
	}
}

// Pipeline exposes the shared deletion pipeline, e.g. for the sweeper.
func (s *CleanupService) Pipeline() *Pipeline {
	return s.pipeline
}

// DeleteOwnAccount removes every document the caller owns, then the caller's
// Authentication record. The uid always comes from the verified identity.
func (s *CleanupService) DeleteOwnAccount(ctx context.Context, caller *authdomain.Identity) (*domain.Result, error) {
	if !caller.Authenticated() {
		return nil, apperrors.Unauthenticated("sign in to delete your account")
	}
	if !caller.AuthenticatedWithin(s.recentLoginWindow, s.now()) {
		return nil, apperrors.FailedPrecondition("please sign in again before deleting your account").
			WithDetail("reason", ReasonRequiresRecentLogin)
	}

	ctx = s.log.WithUID(ctx, caller.UID)
	start := s.now()
	res, err := s.pipeline.Run(ctx, caller.UID, domain.ScopeFull)
	return res, s.finish(ctx, domain.ModeSelf, caller.UID, res, err, start)
}

// DeleteUserAsAdmin removes another user's profile document and
// Authentication record. The target's recipes, comments, notifications and
// likes are kept.
func (s *CleanupService) DeleteUserAsAdmin(ctx context.Context, caller *authdomain.Identity, targetUID string) (*domain.Result, error) {
	if err := s.authorizeAdmin(ctx, caller); err != nil {
		return nil, err
	}
	targetUID = strings.TrimSpace(targetUID)
	if targetUID == "" {
		return nil, apperrors.InvalidArgument("target uid is required")
	}

	ctx = s.log.WithActor(s.log.WithUID(ctx, targetUID), caller.UID)
	start := s.now()
	res, err := s.pipeline.Run(ctx, targetUID, domain.ScopeProfile)
	return res, s.finish(ctx, domain.ModeAdmin, caller.UID, res, err, start)
}

// DeletionHistory lists recorded attempts against targetUID. Admins only.
func (s *CleanupService) DeletionHistory(ctx context.Context, caller *authdomain.Identity, targetUID string, limit int) ([]domain.AuditEntry, error) {
	if err := s.authorizeAdmin(ctx, caller); err != nil {
		return nil, err
	}
	if s.audit == nil {
		return nil, apperrors.FailedPrecondition("deletion audit is not enabled")
	}
	entries, err := s.audit.ListByTarget(ctx, strings.TrimSpace(targetUID), limit)
	if err != nil {
		s.log.Error(ctx, "list deletion history", err, "target_uid", targetUID)
		return nil, apperrors.Internal(err, "could not load deletion history")
	}
	return entries, nil
}

func (s *CleanupService) authorizeAdmin(ctx context.Context, caller *authdomain.Identity) error {
	if !caller.Authenticated() {
		return apperrors.Unauthenticated("sign in required")
	}
	if !caller.EmailVerified {
		return apperrors.PermissionDenied("a verified email is required")
	}

	profile, err := s.store.Get(ctx, authdomain.UsersCollection, caller.UID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return apperrors.PermissionDenied("administrator role required")
		}
		s.log.Error(ctx, "load caller profile", err, "actor_uid", caller.UID)
		return apperrors.Internal(err, "could not verify permissions").
			WithDetail("stage", string(domain.StageAuthorize))
	}
	if role, _ := profile[authdomain.FieldRole].(string); role != authdomain.RoleAdmin {
		return apperrors.PermissionDenied("administrator role required")
	}
	return nil
}

// finish records the outcome of a pipeline run and maps failures onto the
// callable error kinds.
func (s *CleanupService) finish(ctx context.Context, mode domain.Mode, actor string, res *domain.Result, runErr error, start time.Time) error {
	entry := &domain.AuditEntry{
		ActorUID:         actor,
		TargetUID:        res.UID,
		Mode:             mode,
		BatchesCommitted: res.BatchesCommitted,
		DocumentsDeleted: res.DocumentsDeleted,
	}

	if runErr == nil {
		entry.Outcome = domain.OutcomeSuccess
		if s.journal != nil {
			if err := s.journal.Clear(ctx, res.UID); err != nil {
				s.log.Warn(ctx, "clear pending identity", "error", err.Error())
			}
		}
		s.record(ctx, entry)
		s.metrics.ObserveRun(string(mode), entry.Outcome, s.now().Sub(start))
		s.log.Info(ctx, "account deleted",
			"mode", string(mode),
			"documents_deleted", res.DocumentsDeleted,
			"batches_committed", res.BatchesCommitted,
			"identity_already_gone", res.IdentityAlreadyGone,
		)
		return nil
	}

	stage, _ := domain.StageOf(runErr)
	entry.Stage = stage
	entry.ErrorMessage = runErr.Error()

	var out *apperrors.Error
	switch stage {
	case domain.StageIdentity:
		entry.Outcome = domain.OutcomeIdentityPending
		s.markPending(ctx, res, runErr)
		s.log.Critical(ctx, "account data removed but identity deletion failed", runErr,
			"mode", string(mode),
			"batches_committed", res.BatchesCommitted,
		)
		out = apperrors.Internal(runErr, "your data was removed but sign-in could not be disabled yet; it will be retried")
	case domain.StageBatch:
		entry.Outcome = domain.OutcomeFailed
		s.log.Error(ctx, "cascade delete failed", runErr,
			"mode", string(mode),
			"batches_committed", res.BatchesCommitted,
			"batches_planned", res.BatchesPlanned,
		)
		out = apperrors.Internal(runErr, "could not remove all account data; it is safe to try again")
	default:
		entry.Outcome = domain.OutcomeFailed
		s.log.Error(ctx, "gather account data failed", runErr, "mode", string(mode))
		out = apperrors.Internal(runErr, "could not read account data; it is safe to try again")
	}

	s.record(ctx, entry)
	s.metrics.ObserveRun(string(mode), entry.Outcome, s.now().Sub(start))

	return out.
		WithDetail("stage", string(stage)).
		WithDetail("batches_committed", res.BatchesCommitted).
		WithDetail("batches_planned", res.BatchesPlanned).
		WithDetail("identity_deleted", res.IdentityGone())
}

func (s *CleanupService) markPending(ctx context.Context, res *domain.Result, runErr error) {
	if s.journal == nil {
		return
	}
	err := s.journal.MarkPending(ctx, domain.PendingIdentity{
		UID:       res.UID,
		Scope:     res.Scope,
		Stage:     domain.StageIdentity,
		LastError: runErr.Error(),
		FirstSeen: s.now(),
	})
	if err != nil {
		s.log.Critical(ctx, "could not journal pending identity deletion", err)
		return
	}
	if n, err := s.journal.Count(ctx); err == nil {
		s.metrics.SetPending(n)
	}
}

func (s *CleanupService) record(ctx context.Context, e *domain.AuditEntry) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, e); err != nil {
		s.log.Warn(ctx, "record deletion audit entry", "error", err.Error())
	}
}
