// Package http wires the gateway's request surface: the four session
// endpoints, the forwarding path, health probes and swagger docs.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/sessiongate/internal/gateway/service"
	"github.com/aussiebroadwan/sessiongate/internal/gateway/upstream"
	"github.com/aussiebroadwan/sessiongate/pkg/cookiex"
	"github.com/aussiebroadwan/sessiongate/pkg/httpx"
	"github.com/aussiebroadwan/sessiongate/pkg/slogx"

	_ "github.com/aussiebroadwan/sessiongate/api/gateway" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	cookies      cookiex.Codec
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	upstream       *upstream.Client
	SessionService *service.SessionService
}

func NewRouter(
	cookies cookiex.Codec,
	up *upstream.Client,
	buildVersion string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		cookies:      cookies,
		upstream:     up,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSession()
	r.registerResource()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			SessionGate API
//	@version		0.1.0
//	@description	Browser-facing session gateway. Holds access and refresh credentials in
//	@description	HttpOnly cookies and renews them against the upstream identity provider,
//	@description	so browser scripts never see a token value.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/sessiongate
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSession() {
	loginHandler := &LoginHandler{
		SessionService: r.SessionService,
		Cookies:        r.cookies,
	}

	// POST /session - strict rate limit (authentication attempts)
	r.Mux.Handle("POST /session",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /session/renew - lenient rate limit: every active browser tab
	// funnels through here once per access lifetime
	renewHandler := &RenewHandler{
		SessionService: r.SessionService,
		Cookies:        r.cookies,
	}
	r.Mux.Handle("POST /session/renew",
		httpx.Chain(renewHandler,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// POST /session/end - lenient rate limit
	logoutHandler := &LogoutHandler{
		SessionService: r.SessionService,
		Cookies:        r.cookies,
	}
	r.Mux.Handle("POST /session/end",
		httpx.Chain(logoutHandler,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// GET /session/whoami - lenient rate limit (page loads probe this)
	whoamiHandler := &WhoAmIHandler{
		SessionService: r.SessionService,
		Cookies:        r.cookies,
	}
	r.Mux.Handle("GET /session/whoami",
		httpx.Chain(whoamiHandler,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerResource() {
	proxyHandler := &ProxyHandler{
		Upstream: r.upstream,
		Cookies:  r.cookies,
	}

	r.Mux.Handle("/resource/",
		httpx.Chain(proxyHandler,
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.upstream),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
