// Package upstream is the HTTP client for the identity provider. The
// provider owns all credential state; this client only speaks its token,
// revocation and userinfo endpoints and classifies failures so the service
// layer can map them onto session outcomes.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrGrantRejected means the provider refused the presented credential:
	// wrong password, expired or revoked refresh token. Terminal for the
	// credential that was presented.
	ErrGrantRejected = errors.New("upstream rejected grant")

	// ErrUnavailable means the provider could not be reached or failed
	// internally. Transient; never a reason to end a session.
	ErrUnavailable = errors.New("upstream unavailable")
)

// TokenResponse is the provider's token endpoint payload.
// RefreshToken is empty when the provider chose not to rotate.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
}

// Profile mirrors the provider's userinfo payload, which uses the OIDC
// claim names. The gateway re-keys it for browsers in domain.Profile.
type Profile struct {
	UserID        string `json:"sub"`
	Username      string `json:"preferred_username"`
	PreferredName string `json:"name,omitempty"`
}

// Client talks to the identity provider.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a provider client with a bounded request timeout.
// Individual calls may tighten this further via context.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// PasswordGrant exchanges an identifier/secret pair for a credential pair.
func (c *Client) PasswordGrant(ctx context.Context, username, password string) (*TokenResponse, error) {
	data := url.Values{
		"grant_type": {"password"},
		"username":   {username},
		"password":   {password},
	}
	return c.requestToken(ctx, data)
}

// RefreshGrant exchanges a refresh credential for a new pair. The provider
// may or may not rotate the refresh credential; callers must handle both.
func (c *Client) RefreshGrant(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	return c.requestToken(ctx, data)
}

// Revoke invalidates a refresh credential. Best effort: logout proceeds even
// if the provider is down, so callers typically log and ignore the error.
func (c *Client) Revoke(ctx context.Context, token string) error {
	data := url.Values{"token": {token}}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.BaseURL+"/v1/revoke",
		strings.NewReader(data.Encode()),
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: revoke returned status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

// UserInfo fetches the display profile for the bearer of an access credential.
func (c *Client) UserInfo(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/userinfo", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var profile Profile
		if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
			return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
		}
		return &profile, nil
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, ErrGrantRejected
	default:
		return nil, fmt.Errorf("%w: userinfo returned status %d", ErrUnavailable, resp.StatusCode)
	}
}

// Forward replays an inbound request against the provider's resource surface,
// attaching the access credential as a bearer token when present. The caller
// owns the response body.
func (c *Client) Forward(r *http.Request, path string, accessToken string) (*http.Response, error) {
	target := c.BaseURL + path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target, r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

// Healthy reports whether the provider is reachable. Any HTTP response
// counts, a 405 from a HEAD on the token endpoint still proves the provider
// is up; only transport failures mark it unhealthy.
func (c *Client) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.BaseURL+"/v1/token", nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp.Body.Close()
	return nil
}

func (c *Client) requestToken(ctx context.Context, data url.Values) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.BaseURL+"/v1/token",
		strings.NewReader(data.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var tr TokenResponse
		if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
			return nil, fmt.Errorf("failed to decode token response: %w", err)
		}
		if tr.AccessToken == "" {
			return nil, fmt.Errorf("%w: token response missing access_token", ErrUnavailable)
		}
		return &tr, nil
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusUnauthorized:
		// Read a little of the body for the log line; the classification is
		// the same either way.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %s", ErrGrantRejected, strings.TrimSpace(string(body)))
	default:
		return nil, fmt.Errorf("%w: token endpoint returned status %d", ErrUnavailable, resp.StatusCode)
	}
}
