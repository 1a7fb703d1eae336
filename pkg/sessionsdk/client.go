package sessionsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// Client talks to a session gateway. Credentials live in the HTTP client's
// cookie jar as HttpOnly cookies; application code never handles a token.
//
// Do routes requests through the renewal Coordinator: credentials nearing
// expiry are renewed before the request goes out, and a 401 triggers one
// renew-and-retry before the failure is surfaced.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Coordinator drives proactive and reactive renewal. Set its
	// OnSessionExpired field before issuing requests to observe session death.
	Coordinator *Coordinator
}

// NewClient creates a gateway client with its own cookie jar. The
// accessLifetime should match the gateway's access cookie TTL so proactive
// renewal fires at the right time.
func NewClient(baseURL string, accessLifetime time.Duration) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}
	c.Coordinator = NewCoordinator(c.renewRoundTrip, accessLifetime)

	return c, nil
}

// Login establishes a session. On success the gateway's Set-Cookie headers
// land in the jar and the coordinator's renewal clock starts.
func (c *Client) Login(ctx context.Context, username, password string) (*Profile, error) {
	body, err := json.Marshal(LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.BaseURL+PathLogin,
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Fall through to decode the profile.
	case http.StatusUnauthorized:
		return nil, ErrInvalidCredentials
	case http.StatusUnprocessableEntity:
		return nil, decodeError(resp, "login request invalid")
	default:
		return nil, fmt.Errorf("%w: login returned %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}

	c.Coordinator.MarkRenewed()
	return &profile, nil
}

// Logout ends the session. The coordinator forgets the session before this
// returns, so a request issued afterwards never renews the dead session.
func (c *Client) Logout(ctx context.Context) error {
	c.Coordinator.Reset()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+PathLogout, nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: logout returned %d", ErrGatewayUnavailable, resp.StatusCode)
	}
	return nil
}

// WhoAmI probes the session state. ErrNoSession is the routine "not logged
// in" answer; it does not trigger a renewal.
func (c *Client) WhoAmI(ctx context.Context) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+PathWhoAmI, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, ErrNoSession
	default:
		return nil, fmt.Errorf("%w: whoami returned %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode whoami response: %w", err)
	}
	return &profile, nil
}

// Renew forces a renewal round-trip, coalescing with any renewal already in
// flight. Without an established session it returns ErrNoSession.
func (c *Client) Renew(ctx context.Context) error {
	return c.Coordinator.RenewIfStale(ctx, c.Coordinator.Stamp())
}

// Do issues a request through the renewal coordinator.
//
// Requests to the session endpoints themselves bypass coordination entirely:
// a 401 from login or whoami is an answer, not a signal to renew. For
// everything else the credential is proactively renewed when it is close to
// expiry, and a 401 response triggers exactly one renew-and-retry. A second
// 401 after a fresh credential declares the session expired.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if IsAuthPath(req.URL.Path) {
		return c.HTTPClient.Do(req)
	}

	if c.Coordinator.Expired() {
		return nil, ErrSessionExpired
	}

	stamp := c.Coordinator.Stamp()
	if c.Coordinator.NeedsRenewal(stamp) {
		// A proactive failure is not fatal: the request proceeds with the old
		// credential and the reactive path below owns the outcome.
		_ = c.Coordinator.RenewIfStale(req.Context(), stamp)
		stamp = c.Coordinator.Stamp()
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	retry, ok := rewindRequest(req)
	if !ok {
		// Body cannot be replayed; surface the 401 as-is.
		return resp, nil
	}

	if rerr := c.Coordinator.RenewIfStale(req.Context(), stamp); rerr != nil {
		// A rejection means the session is gone. Transport failures are left
		// alone so the session can recover once the gateway is back.
		if errors.Is(rerr, ErrRenewalRejected) {
			c.Coordinator.Expire()
		}
		return resp, nil
	}
	resp.Body.Close()

	resp, err = c.HTTPClient.Do(retry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		// Fresh credential, still refused. The session is gone.
		c.Coordinator.Expire()
	}
	return resp, nil
}

// Get is a convenience wrapper around Do for bodyless requests.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// renewRoundTrip is the coordinator's renewal function: one POST to the
// renewal endpoint, with the renewed credentials landing in the cookie jar.
func (c *Client) renewRoundTrip(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+PathRenew, nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return ErrRenewalRejected
	default:
		return fmt.Errorf("%w: renew returned %d", ErrGatewayUnavailable, resp.StatusCode)
	}
}

// rewindRequest clones req for a retry. Requests with a one-shot body that
// cannot be rewound are not retried.
func rewindRequest(req *http.Request) (*http.Request, bool) {
	retry := req.Clone(req.Context())

	// The transport copied the jar's cookies into the original request's
	// header before sending. Cloned as-is, the retry would present the dead
	// access credential ahead of the renewed one; drop the header and let the
	// jar supply the current cookies.
	retry.Header.Del("Cookie")

	if req.Body == nil || req.Body == http.NoBody {
		return retry, true
	}
	if req.GetBody == nil {
		return nil, false
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	retry.Body = body
	return retry, true
}

func decodeError(resp *http.Response, fallback string) error {
	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error == "" {
		return fmt.Errorf("%s (status %d)", fallback, resp.StatusCode)
	}
	return fmt.Errorf("%s: %s", fallback, body.Error)
}
