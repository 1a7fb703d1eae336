package integration_test

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	gatewayhttp "github.com/aussiebroadwan/sessiongate/internal/gateway/http"
	"github.com/aussiebroadwan/sessiongate/internal/gateway/service"
	"github.com/aussiebroadwan/sessiongate/internal/gateway/upstream"
	idphttp "github.com/aussiebroadwan/sessiongate/internal/idp/http"
	idpservice "github.com/aussiebroadwan/sessiongate/internal/idp/service"
	"github.com/aussiebroadwan/sessiongate/internal/idp/store/drivers/sqlite"
	"github.com/aussiebroadwan/sessiongate/pkg/cookiex"
	"github.com/aussiebroadwan/sessiongate/pkg/cryptox"
	"github.com/aussiebroadwan/sessiongate/pkg/jwtx"
	"github.com/aussiebroadwan/sessiongate/pkg/sessionsdk"
	"github.com/stretchr/testify/require"
)

/*
 * Full-stack tests: a real identity provider (sqlite-backed, EdDSA-signed
 * tokens) behind a real gateway, both in-process, exercised through the SDK.
 */

const (
	demoUsername      = "demo"
	demoPassword      = "Demo123!"
	demoPreferredName = "Demo User"
)

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "sessiongate-integration-pepper")
	cryptox.SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

type stack struct {
	IDP     *idpservice.TokenService
	Gateway *httptest.Server
}

// startStack boots an identity provider and a gateway wired to it. The
// accessTTL applies to both the provider's tokens and the gateway's access
// cookie, which is how the two are deployed together.
func startStack(t *testing.T, accessTTL time.Duration, rotate bool) *stack {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	// Identity provider
	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "idp.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewEphemeralSigner("it-1")
	require.NoError(t, err)

	tokenService := &idpservice.TokenService{
		Store:         st,
		Signer:        signer,
		Verifier:      signer.Verifier("it-issuer"),
		Issuer:        "it-issuer",
		AccessTTL:     accessTTL,
		RefreshTTL:    time.Hour,
		RotateRefresh: rotate,
	}
	require.NoError(t, tokenService.SeedUser(
		context.Background(), demoUsername, demoPassword, demoPreferredName))

	idpRouter := idphttp.NewRouter("test", logger)
	idpRouter.TokenService = tokenService
	idpRouter.ApplyRoutes()

	idpServer := httptest.NewServer(idpRouter)
	t.Cleanup(idpServer.Close)

	// Gateway
	up := upstream.NewClient(idpServer.URL)
	codec := cookiex.New("", "", accessTTL, time.Hour)

	gwRouter := gatewayhttp.NewRouter(codec, up, "test", logger)
	gwRouter.SessionService = &service.SessionService{Upstream: up}
	gwRouter.ApplyRoutes()

	gwServer := httptest.NewServer(gwRouter)
	t.Cleanup(gwServer.Close)

	return &stack{IDP: tokenService, Gateway: gwServer}
}

func newSDKClient(t *testing.T, s *stack, accessTTL time.Duration) *sessionsdk.Client {
	t.Helper()

	client, err := sessionsdk.NewClient(s.Gateway.URL, accessTTL)
	require.NoError(t, err)
	return client
}
