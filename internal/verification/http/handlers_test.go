package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/recipeshare/recipeshare-backend/internal/auth"
	authdomain "github.com/recipeshare/recipeshare-backend/internal/auth/domain"
	"github.com/recipeshare/recipeshare-backend/internal/auth/identity"
	"github.com/recipeshare/recipeshare-backend/internal/docstore"
	"github.com/recipeshare/recipeshare-backend/internal/mail"
	"github.com/recipeshare/recipeshare-backend/internal/verification"
)

func TestVerificationRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ids := identity.NewMemoryProvider()
	ids.Add(identity.User{UID: "u1", Email: "ana@example.com"})
	svc := verification.NewService(ids, docstore.NewMemoryStore(), mail.NewLogSender(nil), "RecipeShare", nil)

	r := gin.New()
	account := r.Group("/api/v1/account")
	account.Use(func(c *gin.Context) {
		if uid := c.GetHeader("X-Test-Caller"); uid != "" {
			auth.SetIdentity(c, &authdomain.Identity{UID: uid})
		}
		c.Next()
	})
	New(svc).Register(account)

	tests := []struct {
		path   string
		caller string
		want   int
	}{
		{path: "/api/v1/account/verification/resend", caller: "u1", want: http.StatusOK},
		{path: "/api/v1/account/verification/resend", caller: "", want: http.StatusUnauthorized},
		{path: "/api/v1/account/verification/welcome", caller: "u1", want: http.StatusOK},
		{path: "/api/v1/account/verification/sync", caller: "u1", want: http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, tt.path, nil)
		if tt.caller != "" {
			req.Header.Set("X-Test-Caller", tt.caller)
		}
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		assert.Equal(t, tt.want, rr.Code, tt.path)
	}
}
