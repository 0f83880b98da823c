package client

import (
	"context"
	"errors"

	"github.com/recipeshare/recipeshare-backend/internal/account_deletion/domain"
	"github.com/recipeshare/recipeshare-backend/internal/auth/identity"
	"github.com/recipeshare/recipeshare-backend/internal/logging"
)

// Cleaner is the server-side cleanup call.
type Cleaner interface {
	DeleteOwnAccount(ctx context.Context, idToken string) (*domain.Result, error)
}

// SelfDeleter removes the signed-in user's own Authentication record.
type SelfDeleter interface {
	DeleteAccount(ctx context.Context, idToken string) error
}

// Outcome describes what a client-initiated deletion achieved.
type Outcome struct {
	Result          *domain.Result
	IdentityRemoved bool
	SignedOut       bool
}

// Initiator runs the "delete my account" flow from the user's device:
// server cleanup first, direct identity removal only when the server
// removed every document but could not remove the login.
type Initiator struct {
	sessions SessionStore
	cleaner  Cleaner
	self     SelfDeleter
	notifier Notifier
	log      *logging.Logger
}

func NewInitiator(sessions SessionStore, cleaner Cleaner, self SelfDeleter, notifier Notifier, log *logging.Logger) *Initiator {
	if log == nil {
		log = logging.Nop()
	}
	return &Initiator{
		sessions: sessions,
		cleaner:  cleaner,
		self:     self,
		notifier: notifier,
		log:      log,
	}
}

const (
	msgNotSignedIn   = "You need to be signed in to delete your account."
	msgRecentLogin   = "For your security, please sign in again and then delete your account."
	msgDeleted       = "Your account has been deleted."
	msgDataFailed    = "We could not delete all of your data. Please sign in and try again."
	msgIdentityLater = "Your data was deleted, but your login could not be removed yet. It will be removed automatically."
	msgUnreachable   = "We could not reach the server. Your account was not changed; please try again."
)

// DeleteAccount deletes the current user's account. The returned error is
// nil only when no login remains.
func (i *Initiator) DeleteAccount(ctx context.Context) (*Outcome, error) {
	sess, ok := i.sessions.Current()
	if !ok {
		i.notifier.Failure(msgNotSignedIn, ErrNotSignedIn)
		return nil, ErrNotSignedIn
	}
	// the token is captured once; signing out later must not lose it
	token := sess.IDToken
	ctx = i.log.WithUID(ctx, sess.UID)

	out := &Outcome{}
	res, err := i.cleaner.DeleteOwnAccount(ctx, token)
	if err != nil {
		return out, i.handleCleanupError(ctx, token, out, err)
	}

	out.Result = res
	out.IdentityRemoved = res.IdentityGone()
	if !out.IdentityRemoved {
		if err := i.deleteSelf(ctx, token); err != nil {
			i.signOut(ctx, out)
			i.notifier.Failure(msgIdentityLater, err)
			return out, err
		}
		out.IdentityRemoved = true
	}

	i.signOut(ctx, out)
	i.notifier.Success(msgDeleted)
	return out, nil
}

func (i *Initiator) handleCleanupError(ctx context.Context, token string, out *Outcome, err error) error {
	if errors.Is(err, identity.ErrRequiresRecentLogin) {
		i.notifier.Failure(msgRecentLogin, err)
		return err
	}

	var remote *RemoteError
	if !errors.As(err, &remote) {
		i.log.Error(ctx, "cleanup request failed", err)
		i.notifier.Failure(msgUnreachable, err)
		return err
	}

	if !remote.MutationBegan() {
		i.log.Error(ctx, "cleanup rejected", err, "status", string(remote.Status))
		i.notifier.Failure(remote.Message, err)
		return err
	}

	if remote.Stage() == domain.StageIdentity {
		// every document is gone, only the login is left
		if selfErr := i.deleteSelf(ctx, token); selfErr == nil {
			out.IdentityRemoved = true
			i.signOut(ctx, out)
			i.notifier.Success(msgDeleted)
			return nil
		}
		i.signOut(ctx, out)
		i.notifier.Failure(msgIdentityLater, err)
		return err
	}

	i.log.Error(ctx, "cleanup partially applied", err, "batches_committed", remote.BatchesCommitted())
	i.signOut(ctx, out)
	i.notifier.Failure(msgDataFailed, err)
	return err
}

func (i *Initiator) deleteSelf(ctx context.Context, token string) error {
	if i.self == nil {
		return errors.New("self deletion is not configured")
	}
	if err := i.self.DeleteAccount(ctx, token); err != nil {
		i.log.Error(ctx, "delete own identity", err)
		return err
	}
	return nil
}

func (i *Initiator) signOut(ctx context.Context, out *Outcome) {
	if err := i.sessions.Clear(); err != nil {
		i.log.Warn(ctx, "local sign out", "error", err.Error())
		return
	}
	out.SignedOut = true
}
