package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipeshare/recipeshare-backend/internal/account_deletion/service"
	httpapi "github.com/recipeshare/recipeshare-backend/internal/api/http"
	"github.com/recipeshare/recipeshare-backend/internal/auth"
	authdomain "github.com/recipeshare/recipeshare-backend/internal/auth/domain"
	"github.com/recipeshare/recipeshare-backend/internal/auth/identity"
	"github.com/recipeshare/recipeshare-backend/internal/docstore"
)

func setupRouter(t *testing.T, callers map[string]*authdomain.Identity) (*gin.Engine, *docstore.MemoryStore, *identity.MemoryProvider) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := docstore.NewMemoryStore()
	ids := identity.NewMemoryProvider()
	for uid, role := range map[string]string{"admin-1": authdomain.RoleAdmin, "u1": authdomain.RoleUser, "u2": authdomain.RoleUser} {
		store.Put(authdomain.UsersCollection, uid, docstore.Document{authdomain.FieldRole: role})
		ids.Add(identity.User{UID: uid})
	}
	store.Put("recipes", "r1", docstore.Document{"createdBy": "u1"})
	store.Put("recipes", "r2", docstore.Document{"createdBy": "u2"})

	svc := service.NewCleanupService(service.Options{
		Store:             store,
		Identities:        ids,
		RecentLoginWindow: 5 * time.Minute,
	})
	h := New(svc)

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		if id, ok := callers[c.GetHeader("X-Test-Caller")]; ok {
			auth.SetIdentity(c, id)
		}
		c.Next()
	})
	h.Register(api.Group("/account"))
	h.RegisterAdmin(api.Group("/admin/users"))
	return r, store, ids
}

func do(r *gin.Engine, method, path, caller string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if caller != "" {
		req.Header.Set("X-Test-Caller", caller)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) httpapi.ErrorBody {
	t.Helper()
	var body httpapi.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Error
}

func TestDeleteOwnAccount(t *testing.T) {
	fresh := time.Now().Add(-time.Minute)
	callers := map[string]*authdomain.Identity{
		"u1":    {UID: "u1", EmailVerified: true, AuthTime: fresh},
		"stale": {UID: "u2", EmailVerified: true, AuthTime: time.Now().Add(-time.Hour)},
	}
	r, store, ids := setupRouter(t, callers)

	t.Run("anonymous", func(t *testing.T) {
		rr := do(r, http.MethodPost, "/api/v1/account/delete", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.EqualValues(t, "unauthenticated", decodeError(t, rr).Status)
	})

	t.Run("stale sign-in", func(t *testing.T) {
		rr := do(r, http.MethodPost, "/api/v1/account/delete", "stale")
		assert.Equal(t, http.StatusPreconditionFailed, rr.Code)
		body := decodeError(t, rr)
		assert.EqualValues(t, "failed-precondition", body.Status)
		assert.Equal(t, service.ReasonRequiresRecentLogin, body.Details["reason"])
		assert.True(t, ids.Exists("u2"))
	})

	t.Run("success", func(t *testing.T) {
		rr := do(r, http.MethodPost, "/api/v1/account/delete", "u1")
		require.Equal(t, http.StatusOK, rr.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "u1", body["uid"])
		assert.EqualValues(t, 2, body["documents_deleted"])
		assert.Equal(t, true, body["identity_deleted"])

		assert.False(t, ids.Exists("u1"))
		assert.Equal(t, 1, store.Count("recipes"))
	})
}

func TestDeleteUserAsAdmin(t *testing.T) {
	callers := map[string]*authdomain.Identity{
		"admin": {UID: "admin-1", EmailVerified: true},
		"u1":    {UID: "u1", EmailVerified: true},
	}
	r, store, ids := setupRouter(t, callers)

	t.Run("non-admin", func(t *testing.T) {
		rr := do(r, http.MethodPost, "/api/v1/admin/users/u2/delete", "u1")
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.EqualValues(t, "permission-denied", decodeError(t, rr).Status)
		assert.True(t, ids.Exists("u2"))
	})

	t.Run("admin", func(t *testing.T) {
		rr := do(r, http.MethodPost, "/api/v1/admin/users/u2/delete", "admin")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.False(t, ids.Exists("u2"))
		assert.Equal(t, 2, store.Count("recipes"))
	})

	t.Run("history without audit", func(t *testing.T) {
		rr := do(r, http.MethodGet, "/api/v1/admin/users/u2/deletions", "admin")
		assert.Equal(t, http.StatusPreconditionFailed, rr.Code)
	})
}
