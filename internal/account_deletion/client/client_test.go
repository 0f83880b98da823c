package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipeshare/recipeshare-backend/internal/account_deletion/domain"
	"github.com/recipeshare/recipeshare-backend/internal/apperrors"
	"github.com/recipeshare/recipeshare-backend/internal/auth/identity"
)

func TestCleanupClient_DeleteOwnAccount(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/account/delete", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"uid":"u1","scope":"full","documents_deleted":7,"batches_planned":1,"batches_committed":1,"identity_deleted":true}`))
	}))
	defer srv.Close()

	res, err := NewCleanupClient(srv.URL+"/", nil).DeleteOwnAccount(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, 7, res.DocumentsDeleted)
	assert.True(t, res.IdentityDeleted)
}

func TestCleanupClient_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		recent     bool
		stage      domain.Stage
		committed  int
		mutated    bool
		wantStatus apperrors.Kind
	}{
		{
			name:       "recent login",
			status:     http.StatusPreconditionFailed,
			body:       `{"error":{"status":"failed-precondition","message":"sign in again","details":{"reason":"requires-recent-login"}}}`,
			recent:     true,
			wantStatus: apperrors.KindFailedPrecondition,
		},
		{
			name:       "identity stage",
			status:     http.StatusInternalServerError,
			body:       `{"error":{"status":"internal","message":"retry later","details":{"stage":"identity","batches_committed":2}}}`,
			stage:      domain.StageIdentity,
			committed:  2,
			mutated:    true,
			wantStatus: apperrors.KindInternal,
		},
		{
			name:       "batch stage before any commit",
			status:     http.StatusInternalServerError,
			body:       `{"error":{"status":"internal","message":"safe to retry","details":{"stage":"batch","batches_committed":0}}}`,
			stage:      domain.StageBatch,
			wantStatus: apperrors.KindInternal,
		},
		{
			name:       "not json",
			status:     http.StatusBadGateway,
			body:       "bad gateway",
			wantStatus: apperrors.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewCleanupClient(srv.URL, nil).DeleteOwnAccount(context.Background(), "tok")
			require.Error(t, err)

			var remote *RemoteError
			require.True(t, errors.As(err, &remote))
			assert.Equal(t, tt.status, remote.HTTPStatus)
			assert.Equal(t, tt.wantStatus, remote.Status)
			assert.Equal(t, tt.recent, errors.Is(err, identity.ErrRequiresRecentLogin))
			assert.Equal(t, tt.stage, remote.Stage())
			assert.Equal(t, tt.committed, remote.BatchesCommitted())
			assert.Equal(t, tt.mutated, remote.MutationBegan())
		})
	}
}

func TestToolkitClient_DeleteAccount(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		anyErr  bool
	}{
		{name: "deleted", status: http.StatusOK, body: `{"kind":"identitytoolkit#DeleteAccountResponse"}`},
		{name: "already gone", status: http.StatusBadRequest, body: `{"error":{"code":400,"message":"USER_NOT_FOUND"}}`},
		{name: "stale credential", status: http.StatusBadRequest, body: `{"error":{"code":400,"message":"CREDENTIAL_TOO_OLD_LOGIN_AGAIN"}}`, wantErr: identity.ErrRequiresRecentLogin},
		{name: "invalid token", status: http.StatusBadRequest, body: `{"error":{"code":400,"message":"INVALID_ID_TOKEN : bad"}}`, anyErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/accounts:delete", r.URL.Path)
				assert.Equal(t, "web-key", r.URL.Query().Get("key"))

				var body map[string]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "tok", body["idToken"])

				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := NewToolkitClient(srv.URL+"/v1", "web-key", nil).DeleteAccount(context.Background(), "tok")
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.anyErr:
				require.Error(t, err)
				assert.Contains(t, err.Error(), "INVALID_ID_TOKEN")
			default:
				assert.NoError(t, err)
			}
		})
	}
}
