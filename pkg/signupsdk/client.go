package signupsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/hubsignup/pkg/jwtx"
)

// SDKClient calls the public endpoints and creates Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client with a 10 second request timeout.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewSession wraps an existing access token.
func (c *SDKClient) NewSession(accessToken string) *Session {
	return &Session{client: c, accessToken: accessToken}
}

// AuthenticateWithPassword exchanges credentials for a session. Only the
// local identity provider serves this endpoint.
func (c *SDKClient) AuthenticateWithPassword(ctx context.Context, email, password string) (*Session, error) {
	tok, err := c.Token(ctx, TokenRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return c.NewSession(tok.AccessToken), nil
}

// Token calls POST /v1/auth/token.
func (c *SDKClient) Token(ctx context.Context, req TokenRequest) (*TokenResponse, error) {
	var out TokenResponse
	if err := c.call(ctx, http.MethodPost, "/v1/auth/token", "", nil, req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmEmail redeems an email confirmation token.
func (c *SDKClient) ConfirmEmail(ctx context.Context, token string) (*ConfirmResponse, error) {
	path := "/v1/auth/confirm?" + url.Values{"token": {token}}.Encode()
	var out ConfirmResponse
	if err := c.call(ctx, http.MethodGet, path, "", nil, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup runs the invite-gated signup.
func (c *SDKClient) Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error) {
	var out SignupResponse
	if err := c.call(ctx, http.MethodPost, "/v1/signup", "", nil, req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateInvite checks an invite code without consuming it.
func (c *SDKClient) ValidateInvite(ctx context.Context, code string) (*ValidateInviteResponse, error) {
	var out ValidateInviteResponse
	err := c.call(ctx, http.MethodPost, "/v1/invite-codes/validate", "", nil,
		ValidateInviteRequest{Code: code}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Bootstrap creates the first super_admin using the operator token.
func (c *SDKClient) Bootstrap(ctx context.Context, token string, req BootstrapRequest) (*BootstrapResponse, error) {
	headers := map[string]string{"X-Bootstrap-Token": token}
	var out BootstrapResponse
	if err := c.call(ctx, http.MethodPost, "/v1/bootstrap", "", headers, req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLiveness checks if the service is alive.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.call(ctx, http.MethodGet, "/livez", "", nil, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetReadiness checks if the service is ready.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.call(ctx, http.MethodGet, "/readyz", "", nil, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetJWKS fetches the session signing keys.
func (c *SDKClient) GetJWKS(ctx context.Context) (*jwtx.JWKS, error) {
	var out jwtx.JWKS
	if err := c.call(ctx, http.MethodGet, "/.well-known/jwks.json", "", nil, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// call performs one JSON round trip. A nil out expects an empty body.
func (c *SDKClient) call(
	ctx context.Context,
	method, path, bearer string,
	headers map[string]string,
	in, out any,
	expectedStatus int,
) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
