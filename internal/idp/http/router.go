// Package http exposes the development identity provider's token, revocation,
// userinfo and demo resource endpoints.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/sessiongate/internal/idp/service"
	"github.com/aussiebroadwan/sessiongate/pkg/httpx"
	"github.com/aussiebroadwan/sessiongate/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	TokenService *service.TokenService
}

func NewRouter(buildVersion string, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	tokenHandler := &TokenHandler{TokenService: r.TokenService}

	// Token endpoint - strict rate limit keyed by client IP and username so a
	// single noisy source cannot lock the whole endpoint.
	r.Mux.Handle("POST /v1/token",
		httpx.Chain(tokenHandler,
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "username"),
		),
	)

	// HEAD is the reachability probe; it carries no credentials.
	r.Mux.HandleFunc("HEAD /v1/token", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Mux.Handle("POST /v1/revoke",
		httpx.Chain(&RevokeHandler{TokenService: r.TokenService},
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /v1/userinfo",
		httpx.Chain(&UserInfoHandler{TokenService: r.TokenService},
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// Demo resource endpoints, bearer-protected.
	r.Mux.Handle("/v1/echo",
		httpx.Chain(&EchoHandler{TokenService: r.TokenService},
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	r.Mux.HandleFunc("GET /livez", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"uptime":  time.Since(r.startTime).String(),
			"version": r.buildVersion,
		})
	})
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}
