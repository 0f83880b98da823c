package middleware

import (
	"context"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	httpapi "github.com/recipeshare/recipeshare-backend/internal/api/http"
	"github.com/recipeshare/recipeshare-backend/internal/apperrors"
	authctx "github.com/recipeshare/recipeshare-backend/internal/auth"
	"github.com/recipeshare/recipeshare-backend/internal/auth/domain"
)

// TokenVerifier is satisfied by *auth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseAuthMiddleware validates Firebase ID tokens and stores the caller
// Identity. Requests without a valid token are rejected as unauthenticated.
func FirebaseAuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abortUnauthenticated(c, "missing authorization token")
			return
		}

		decoded, err := verifier.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			abortUnauthenticated(c, "invalid token")
			return
		}

		authctx.SetIdentity(c, IdentityFromToken(decoded))
		c.Next()
	}
}

// IdentityFromToken maps verified token claims onto an Identity.
func IdentityFromToken(t *auth.Token) *domain.Identity {
	id := &domain.Identity{UID: t.UID}
	if email, ok := t.Claims["email"].(string); ok {
		id.Email = email
	}
	if verified, ok := t.Claims["email_verified"].(bool); ok {
		id.EmailVerified = verified
	}
	if t.AuthTime > 0 {
		id.AuthTime = time.Unix(t.AuthTime, 0)
	}
	return id
}

func abortUnauthenticated(c *gin.Context, message string) {
	httpapi.WriteError(c, apperrors.Unauthenticated(message))
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return ""
}
