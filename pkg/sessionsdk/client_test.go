package sessionsdk

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeGateway is an in-memory session gateway: it issues numbered access
// cookies and only accepts the most recently issued one on resource paths.
type fakeGateway struct {
	mu            sync.Mutex
	issued        int
	validAccess   string
	renewals      int
	resourceCalls int

	// doubledAccess counts resource requests that presented more than one
	// access cookie, which happens when a retry replays a stale credential
	// alongside the renewed one.
	doubledAccess int

	rejectRenew    bool
	rejectResource bool
}

func (g *fakeGateway) issueAccess() string {
	g.issued++
	g.validAccess = "access-" + strconv.Itoa(g.issued)
	return g.validAccess
}

func (g *fakeGateway) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /session", func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		g.mu.Lock()
		access := g.issueAccess()
		g.mu.Unlock()

		http.SetCookie(w, &http.Cookie{Name: "sg_access", Value: access, Path: "/"})
		http.SetCookie(w, &http.Cookie{Name: "sg_refresh", Value: "refresh-1", Path: "/"})
		_ = json.NewEncoder(w).Encode(Profile{UserID: "user-123", Username: req.Username})
	})

	mux.HandleFunc("POST /session/renew", func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		g.renewals++
		reject := g.rejectRenew
		g.mu.Unlock()

		if _, err := r.Cookie("sg_refresh"); err != nil || reject {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "session renewal rejected"})
			return
		}

		g.mu.Lock()
		access := g.issueAccess()
		g.mu.Unlock()

		http.SetCookie(w, &http.Cookie{Name: "sg_access", Value: access, Path: "/"})
		_ = json.NewEncoder(w).Encode(RenewResponse{Success: true})
	})

	mux.HandleFunc("POST /session/end", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "sg_access", Value: "", Path: "/", MaxAge: -1})
		http.SetCookie(w, &http.Cookie{Name: "sg_refresh", Value: "", Path: "/", MaxAge: -1})
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("GET /session/whoami", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("sg_access")

		g.mu.Lock()
		valid := err == nil && cookie.Value == g.validAccess
		g.mu.Unlock()

		if !valid {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(Profile{UserID: "user-123", Username: "alice"})
	})

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("sg_access")

		var accessCookies int
		for _, c := range r.Cookies() {
			if c.Name == "sg_access" {
				accessCookies++
			}
		}

		g.mu.Lock()
		g.resourceCalls++
		if accessCookies > 1 {
			g.doubledAccess++
		}
		valid := err == nil && cookie.Value == g.validAccess && !g.rejectResource
		g.mu.Unlock()

		if !valid {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte("data"))
	})

	return mux
}

func (g *fakeGateway) counts() (renewals, resourceCalls int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.renewals, g.resourceCalls
}

// invalidate makes every issued access credential stale, as if it expired
// upstream, without touching the refresh credential.
func (g *fakeGateway) invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.validAccess = "gone"
}

func newTestClient(t *testing.T, gw *fakeGateway, accessLifetime time.Duration) *Client {
	t.Helper()

	srv := httptest.NewServer(gw.handler())
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, accessLifetime)
	require.NoError(t, err)
	return client
}

func TestClientLogin(t *testing.T) {
	t.Parallel()

	t.Run("success starts the renewal clock", func(t *testing.T) {
		client := newTestClient(t, &fakeGateway{}, time.Minute)

		profile, err := client.Login(context.Background(), "alice", "secret")
		require.NoError(t, err)
		require.Equal(t, "alice", profile.Username)
		require.False(t, client.Coordinator.Stamp().IsZero())
	})

	t.Run("bad password maps to ErrInvalidCredentials", func(t *testing.T) {
		client := newTestClient(t, &fakeGateway{}, time.Minute)

		_, err := client.Login(context.Background(), "alice", "nope")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		require.True(t, client.Coordinator.Stamp().IsZero())
	})
}

func TestClientProactiveRenewal(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	client := newTestClient(t, gw, 200*time.Millisecond)

	_, err := client.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	// Cross into the safety margin; the old credential is about to expire.
	time.Sleep(150 * time.Millisecond)
	gw.invalidate()

	resp, err := client.Get(context.Background(), "/api/data")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	renewals, resourceCalls := gw.counts()
	require.Equal(t, 1, renewals, "expected one proactive renewal")
	require.Equal(t, 1, resourceCalls, "proactive renewal should avoid the 401 round-trip")
}

func TestClientReactiveRenewal(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	client := newTestClient(t, gw, time.Hour)

	_, err := client.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	// The credential dies upstream well before the proactive window.
	gw.invalidate()

	resp, err := client.Get(context.Background(), "/api/data")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "data", string(body))

	renewals, resourceCalls := gw.counts()
	require.Equal(t, 1, renewals)
	require.Equal(t, 2, resourceCalls, "401 then exactly one retry")
	require.False(t, client.Coordinator.Expired())

	gw.mu.Lock()
	doubled := gw.doubledAccess
	gw.mu.Unlock()
	require.Zero(t, doubled, "the retry must carry only the renewed credential")
}

func TestClientRetriesAtMostOnce(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{rejectResource: true}
	client := newTestClient(t, gw, time.Hour)

	var expired int
	client.Coordinator.OnSessionExpired = func() { expired++ }

	_, err := client.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	resp, err := client.Get(context.Background(), "/api/data")
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	renewals, resourceCalls := gw.counts()
	require.Equal(t, 1, renewals)
	require.Equal(t, 2, resourceCalls, "a fresh credential gets exactly one retry, never a loop")
	require.True(t, client.Coordinator.Expired())
	require.Equal(t, 1, expired)

	// Once expired, requests fail fast without touching the gateway.
	_, err = client.Get(context.Background(), "/api/data")
	require.ErrorIs(t, err, ErrSessionExpired)
	require.Equal(t, 1, expired)

	_, resourceCalls = gw.counts()
	require.Equal(t, 2, resourceCalls)
}

func TestClientRejectedRenewalExpiresSession(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	client := newTestClient(t, gw, time.Hour)

	var expired int
	client.Coordinator.OnSessionExpired = func() { expired++ }

	_, err := client.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	gw.invalidate()
	gw.mu.Lock()
	gw.rejectRenew = true
	gw.mu.Unlock()

	resp, err := client.Get(context.Background(), "/api/data")
	require.NoError(t, err)
	resp.Body.Close()

	// The original 401 surfaces; no retry happened.
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, 1, expired)

	renewals, resourceCalls := gw.counts()
	require.Equal(t, 1, renewals)
	require.Equal(t, 1, resourceCalls)
}

func TestClientAnonymousRequestDoesNotRenew(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	client := newTestClient(t, gw, time.Hour)

	var expired int
	client.Coordinator.OnSessionExpired = func() { expired++ }

	// Never logged in: the 401 is the answer, no renewal round-trip happens
	// and nothing declares a session expired.
	resp, err := client.Get(context.Background(), "/api/data")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	renewals, resourceCalls := gw.counts()
	require.Zero(t, renewals)
	require.Equal(t, 1, resourceCalls)
	require.False(t, client.Coordinator.Expired())
	require.Zero(t, expired)

	// Later anonymous requests still reach the gateway instead of failing
	// fast on a session that never existed.
	resp, err = client.Get(context.Background(), "/api/data")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Logging in afterwards works as usual.
	_, err = client.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	resp, err = client.Get(context.Background(), "/api/data")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClientAuthPathsBypassRenewal(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	client := newTestClient(t, gw, time.Hour)

	// No login: whoami answers 401 and nothing renews.
	_, err := client.WhoAmI(context.Background())
	require.ErrorIs(t, err, ErrNoSession)

	renewals, _ := gw.counts()
	require.Zero(t, renewals)
	require.False(t, client.Coordinator.Expired())
}

func TestClientNonReplayableBodySkipsRetry(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	client := newTestClient(t, gw, time.Hour)

	_, err := client.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	gw.invalidate()

	// A raw reader has no GetBody, so the request cannot be replayed.
	req, err := http.NewRequestWithContext(
		context.Background(),
		http.MethodPost,
		client.BaseURL+"/api/data",
		io.NopCloser(strings.NewReader("payload")),
	)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	renewals, resourceCalls := gw.counts()
	require.Zero(t, renewals, "no renewal without a retry to use it")
	require.Equal(t, 1, resourceCalls)
	require.False(t, client.Coordinator.Expired())
}

func TestClientLogoutForgetsSession(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	client := newTestClient(t, gw, time.Hour)

	_, err := client.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	require.NoError(t, client.Logout(context.Background()))
	require.True(t, client.Coordinator.Stamp().IsZero())

	_, err = client.WhoAmI(context.Background())
	require.ErrorIs(t, err, ErrNoSession)
}

func TestClientConcurrentRequestsShareOneRenewal(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	client := newTestClient(t, gw, time.Hour)

	_, err := client.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	gw.invalidate()

	const n = 10
	var wg sync.WaitGroup
	codes := make([]int, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := client.Get(context.Background(), "/api/data")
			if err != nil {
				return
			}
			codes[i] = resp.StatusCode
			resp.Body.Close()
		}()
	}
	wg.Wait()

	// Some goroutines may observe the post-renewal credential and skip the
	// retry path entirely; none may start a second renewal.
	renewals, _ := gw.counts()
	require.Equal(t, 1, renewals, "concurrent 401s must coalesce into one renewal")
	for _, code := range codes {
		require.Equal(t, http.StatusOK, code)
	}
}
