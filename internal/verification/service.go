package verification

import (
	"context"
	"errors"

	"github.com/recipeshare/recipeshare-backend/internal/apperrors"
	authdomain "github.com/recipeshare/recipeshare-backend/internal/auth/domain"
	"github.com/recipeshare/recipeshare-backend/internal/auth/identity"
	"github.com/recipeshare/recipeshare-backend/internal/docstore"
	"github.com/recipeshare/recipeshare-backend/internal/logging"
	"github.com/recipeshare/recipeshare-backend/internal/mail"
)

// Service sends verification and welcome mail and mirrors the verified flag
// into the user's profile.
type Service struct {
	identities identity.Provider
	store      docstore.Store
	sender     mail.Sender
	appName    string
	log        *logging.Logger
}

func NewService(identities identity.Provider, store docstore.Store, sender mail.Sender, appName string, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{
		identities: identities,
		store:      store,
		sender:     sender,
		appName:    appName,
		log:        log,
	}
}

// ResendVerification mails a fresh verification link to the caller.
func (s *Service) ResendVerification(ctx context.Context, caller *authdomain.Identity) error {
	user, err := s.lookup(ctx, caller)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return apperrors.FailedPrecondition("email is already verified")
	}
	return s.send(ctx, user, mail.TemplateVerifyEmail, "Verify your email")
}

// SendWelcome mails the welcome message, which carries a verification link.
func (s *Service) SendWelcome(ctx context.Context, caller *authdomain.Identity) error {
	user, err := s.lookup(ctx, caller)
	if err != nil {
		return err
	}
	return s.send(ctx, user, mail.TemplateWelcome, "Welcome to "+s.appName)
}

// SyncVerified copies the Authentication emailVerified flag onto the profile.
func (s *Service) SyncVerified(ctx context.Context, caller *authdomain.Identity) (bool, error) {
	if !caller.Authenticated() {
		return false, apperrors.Unauthenticated("sign in required")
	}
	user, err := s.identities.LookupUser(ctx, caller.UID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return false, apperrors.Unauthenticated("account no longer exists")
		}
		return false, apperrors.Internal(err, "could not load account")
	}

	err = s.store.Merge(ctx, authdomain.UsersCollection, caller.UID, docstore.Document{
		authdomain.FieldEmailVerified: user.EmailVerified,
	})
	if err != nil {
		s.log.Error(ctx, "sync email verified", err, "uid", caller.UID)
		return false, apperrors.Internal(err, "could not update profile")
	}
	return user.EmailVerified, nil
}

func (s *Service) lookup(ctx context.Context, caller *authdomain.Identity) (*identity.User, error) {
	if !caller.Authenticated() {
		return nil, apperrors.Unauthenticated("sign in required")
	}
	user, err := s.identities.LookupUser(ctx, caller.UID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return nil, apperrors.Unauthenticated("account no longer exists")
		}
		s.log.Error(ctx, "lookup user", err, "uid", caller.UID)
		return nil, apperrors.Internal(err, "could not load account")
	}
	if user.Email == "" {
		return nil, apperrors.FailedPrecondition("account has no email address")
	}
	return user, nil
}

func (s *Service) send(ctx context.Context, user *identity.User, tmpl, subject string) error {
	link, err := s.identities.EmailVerificationLink(ctx, user.Email)
	if err != nil {
		s.log.Error(ctx, "generate verification link", err, "uid", user.UID)
		return apperrors.Internal(err, "could not create verification link")
	}

	html, err := mail.Render(tmpl, mail.TemplateData{
		AppName:     s.appName,
		DisplayName: user.DisplayName,
		Link:        link,
	})
	if err != nil {
		return apperrors.Internal(err, "could not prepare email")
	}

	if err := s.sender.Send(ctx, mail.Message{To: user.Email, Subject: subject, HTML: html}); err != nil {
		s.log.Error(ctx, "send mail", err, "uid", user.UID, "template", tmpl)
		return apperrors.Internal(err, "could not send email, try again later")
	}
	s.log.Info(ctx, "mail sent", "uid", user.UID, "template", tmpl)
	return nil
}
