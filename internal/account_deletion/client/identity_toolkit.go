package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/recipeshare/recipeshare-backend/internal/auth/identity"
)

const DefaultToolkitEndpoint = "https://identitytoolkit.googleapis.com/v1"

// ToolkitClient deletes the signed-in user's own Authentication record with
// the Identity Toolkit REST API, the same call the web SDK makes.
type ToolkitClient struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

func NewToolkitClient(endpoint, apiKey string, httpClient *http.Client) *ToolkitClient {
	if endpoint == "" {
		endpoint = DefaultToolkitEndpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &ToolkitClient{endpoint: strings.TrimRight(endpoint, "/"), apiKey: apiKey, http: httpClient}
}

type toolkitError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// DeleteAccount deletes the account idToken belongs to. A record that no
// longer exists counts as deleted.
func (c *ToolkitClient) DeleteAccount(ctx context.Context, idToken string) error {
	payload, err := json.Marshal(map[string]string{"idToken": idToken})
	if err != nil {
		return err
	}

	reqURL := c.endpoint + "/accounts:delete?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("identity toolkit request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 400 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var te toolkitError
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
	if err := json.Unmarshal(body, &te); err != nil {
		return fmt.Errorf("identity toolkit status %d", resp.StatusCode)
	}

	// messages look like "CODE" or "CODE : detail"
	code, _, _ := strings.Cut(te.Error.Message, " ")
	switch code {
	case "USER_NOT_FOUND":
		return nil
	case "CREDENTIAL_TOO_OLD_LOGIN_AGAIN", "TOKEN_EXPIRED":
		return identity.ErrRequiresRecentLogin
	default:
		return fmt.Errorf("identity toolkit %d: %s", resp.StatusCode, te.Error.Message)
	}
}
