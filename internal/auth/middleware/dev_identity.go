package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	authctx "github.com/recipeshare/recipeshare-backend/internal/auth"
	"github.com/recipeshare/recipeshare-backend/internal/auth/domain"
)

// DevIdentityHeaders are the request headers DevIdentity reads.
var DevIdentityHeaders = []string{"X-User-Id", "X-User-Email", "X-User-Email-Verified"}

// DevIdentity trusts X-User-* headers as the caller identity.
// Use this ONLY with the in-memory document store for local development.
// Requests without X-User-Id stay unauthenticated.
func DevIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if uid != "" {
			authctx.SetIdentity(c, &domain.Identity{
				UID:           uid,
				Email:         strings.TrimSpace(c.GetHeader("X-User-Email")),
				EmailVerified: c.GetHeader("X-User-Email-Verified") == "true",
				AuthTime:      time.Now(),
			})
		}
		c.Next()
	}
}
