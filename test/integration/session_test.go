package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/aussiebroadwan/sessiongate/pkg/sessionsdk"
	"github.com/stretchr/testify/require"
)

func TestLoginWhoAmILogout(t *testing.T) {
	t.Parallel()

	s := startStack(t, 15*time.Minute, true)
	client := newSDKClient(t, s, 15*time.Minute)
	ctx := context.Background()

	// No session yet.
	_, err := client.WhoAmI(ctx)
	require.ErrorIs(t, err, sessionsdk.ErrNoSession)

	profile, err := client.Login(ctx, demoUsername, demoPassword)
	require.NoError(t, err)
	require.Equal(t, demoUsername, profile.Username)
	require.Equal(t, demoPreferredName, profile.PreferredName)
	require.NotEmpty(t, profile.UserID)

	whoami, err := client.WhoAmI(ctx)
	require.NoError(t, err)
	require.Equal(t, profile.UserID, whoami.UserID)

	require.NoError(t, client.Logout(ctx))

	_, err = client.WhoAmI(ctx)
	require.ErrorIs(t, err, sessionsdk.ErrNoSession)
}

func TestAnonymousResourceAccess(t *testing.T) {
	t.Parallel()

	s := startStack(t, 15*time.Minute, true)
	client := newSDKClient(t, s, 15*time.Minute)
	ctx := context.Background()

	// The gateway forwards cookieless requests; the provider owns the 401.
	// No renewal fires and the client does not declare a session expired.
	var expired int
	client.Coordinator.OnSessionExpired = func() { expired++ }

	resp, err := client.Get(ctx, "/resource/v1/echo")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.False(t, client.Coordinator.Expired())
	require.Zero(t, expired)

	// Anonymous access leaves the client able to log in normally.
	_, err = client.Login(ctx, demoUsername, demoPassword)
	require.NoError(t, err)

	resp, err = client.Get(ctx, "/resource/v1/echo")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	t.Parallel()

	s := startStack(t, 15*time.Minute, true)
	client := newSDKClient(t, s, 15*time.Minute)

	_, err := client.Login(context.Background(), demoUsername, "wrong")
	require.ErrorIs(t, err, sessionsdk.ErrInvalidCredentials)
}

func TestResourceForwarding(t *testing.T) {
	t.Parallel()

	s := startStack(t, 15*time.Minute, true)
	client := newSDKClient(t, s, 15*time.Minute)
	ctx := context.Background()

	_, err := client.Login(ctx, demoUsername, demoPassword)
	require.NoError(t, err)

	resp, err := client.Get(ctx, "/resource/v1/echo?greeting=hello")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var echo struct {
		User  string `json:"user"`
		Query string `json:"query"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&echo))
	require.Equal(t, demoUsername, echo.User)
	require.Equal(t, "greeting=hello", echo.Query)
}

func TestExpiredAccessRenewsTransparently(t *testing.T) {
	t.Parallel()

	// Access credentials die after a second; the refresh credential carries
	// the session across the gap without the caller noticing.
	s := startStack(t, time.Second, true)
	client := newSDKClient(t, s, time.Hour) // defeat proactive renewal; force the reactive path
	ctx := context.Background()

	_, err := client.Login(ctx, demoUsername, demoPassword)
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)

	resp, err := client.Get(ctx, "/resource/v1/echo")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), demoUsername)
	require.False(t, client.Coordinator.Expired())
}

func TestProactiveRenewalBeforeExpiry(t *testing.T) {
	t.Parallel()

	s := startStack(t, 2*time.Second, true)
	client := newSDKClient(t, s, 2*time.Second) // margin clamps to one second
	ctx := context.Background()

	_, err := client.Login(ctx, demoUsername, demoPassword)
	require.NoError(t, err)

	// Inside the proactive window but before expiry.
	time.Sleep(1200 * time.Millisecond)

	resp, err := client.Get(ctx, "/resource/v1/echo")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The renewal moved the clock; the session survives past the original
	// credential's expiry without a reactive retry.
	time.Sleep(1200 * time.Millisecond)

	resp, err = client.Get(ctx, "/resource/v1/echo")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRenewalSurvivesWithoutRotation(t *testing.T) {
	t.Parallel()

	// Provider that never rotates: renewals re-issue only the access
	// credential and the original refresh cookie keeps working.
	s := startStack(t, time.Second, false)
	client := newSDKClient(t, s, time.Hour)
	ctx := context.Background()

	_, err := client.Login(ctx, demoUsername, demoPassword)
	require.NoError(t, err)

	for range 2 {
		time.Sleep(1100 * time.Millisecond)

		resp, err := client.Get(ctx, "/resource/v1/echo")
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestRevokedSessionExpiresCleanly(t *testing.T) {
	t.Parallel()

	s := startStack(t, time.Second, true)
	client := newSDKClient(t, s, time.Hour)
	ctx := context.Background()

	var expired int
	client.Coordinator.OnSessionExpired = func() { expired++ }

	_, err := client.Login(ctx, demoUsername, demoPassword)
	require.NoError(t, err)

	// An administrator kills the session provider-side.
	claims, err := s.IDP.VerifyAccess(accessCookieValue(t, client, s))
	require.NoError(t, err)
	require.NoError(t, s.IDP.Store.RefreshTokens().RevokeSessionRefreshTokens(ctx, claims.SID))

	// Once the access credential dies there is nothing left to renew with.
	time.Sleep(1100 * time.Millisecond)

	resp, err := client.Get(ctx, "/resource/v1/echo")
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.True(t, client.Coordinator.Expired())
	require.Equal(t, 1, expired)

	_, err = client.Get(ctx, "/resource/v1/echo")
	require.ErrorIs(t, err, sessionsdk.ErrSessionExpired)
	require.Equal(t, 1, expired)
}

// accessCookieValue digs the access cookie out of the SDK's jar. Tests only;
// the whole point of the design is that nothing else ever needs this.
func accessCookieValue(t *testing.T, client *sessionsdk.Client, s *stack) string {
	t.Helper()

	u, err := url.Parse(s.Gateway.URL)
	require.NoError(t, err)

	for _, c := range client.HTTPClient.Jar.Cookies(u) {
		if c.Name == "sg_access" {
			return c.Value
		}
	}
	t.Fatal("access cookie not found in jar")
	return ""
}
