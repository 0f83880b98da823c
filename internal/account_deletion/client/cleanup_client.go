package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/recipeshare/recipeshare-backend/internal/account_deletion/domain"
	"github.com/recipeshare/recipeshare-backend/internal/apperrors"
	"github.com/recipeshare/recipeshare-backend/internal/auth/identity"
)

const (
	DefaultTimeout  = 30 * time.Second
	deleteOwnPath   = "/api/v1/account/delete"
	maxErrorBodyLen = 64 << 10
)

// RemoteError is a classified failure returned by the deletion endpoint.
type RemoteError struct {
	HTTPStatus int
	Status     apperrors.Kind
	Message    string
	Details    map[string]any
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s (%d): %s", e.Status, e.HTTPStatus, e.Message)
}

// Unwrap lets errors.Is match identity.ErrRequiresRecentLogin.
func (e *RemoteError) Unwrap() error {
	if e.RequiresRecentLogin() {
		return identity.ErrRequiresRecentLogin
	}
	return nil
}

func (e *RemoteError) RequiresRecentLogin() bool {
	return e.Status == apperrors.KindFailedPrecondition && e.Details["reason"] == "requires-recent-login"
}

// Stage is the pipeline stage the server reported as failing.
func (e *RemoteError) Stage() domain.Stage {
	s, _ := e.Details["stage"].(string)
	return domain.Stage(s)
}

// BatchesCommitted is how many delete batches the server committed before failing.
func (e *RemoteError) BatchesCommitted() int {
	n, _ := e.Details["batches_committed"].(float64)
	return int(n)
}

// MutationBegan reports whether the failed run already removed data.
func (e *RemoteError) MutationBegan() bool {
	return e.Stage() == domain.StageIdentity || e.BatchesCommitted() > 0
}

// CleanupClient calls the server-side cleanup procedure.
type CleanupClient struct {
	baseURL string
	http    *http.Client
}

func NewCleanupClient(baseURL string, httpClient *http.Client) *CleanupClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &CleanupClient{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type deleteResponse struct {
	Success bool `json:"success"`
	domain.Result
}

type errorEnvelope struct {
	Error struct {
		Status  apperrors.Kind `json:"status"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

// DeleteOwnAccount asks the server to delete the account behind idToken.
func (c *CleanupClient) DeleteOwnAccount(ctx context.Context, idToken string) (*domain.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+deleteOwnPath, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+idToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cleanup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, decodeRemoteError(resp)
	}

	var out deleteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode cleanup response: %w", err)
	}
	if !out.Success {
		return nil, fmt.Errorf("cleanup response reported no success")
	}
	return &out.Result, nil
}

func decodeRemoteError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Error.Status == "" {
		// not our envelope (proxy or load balancer page); never surface its body
		return &RemoteError{
			HTTPStatus: resp.StatusCode,
			Status:     apperrors.KindInternal,
			Message:    msgUnreachable,
		}
	}
	return &RemoteError{
		HTTPStatus: resp.StatusCode,
		Status:     env.Error.Status,
		Message:    env.Error.Message,
		Details:    env.Error.Details,
	}
}
