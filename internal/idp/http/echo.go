package http

import (
	"io"
	"net/http"

	"github.com/aussiebroadwan/sessiongate/internal/idp/service"
	"github.com/aussiebroadwan/sessiongate/pkg/httpx"
)

// EchoHandler serves /v1/echo
// A bearer-protected demo resource: it reflects the request back at the
// caller, which makes gateway forwarding behaviour easy to observe.
type EchoHandler struct {
	TokenService *service.TokenService
}

func (h *EchoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := bearerClaims(h.TokenService, w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"user":   claims.Username,
		"method": r.Method,
		"query":  r.URL.RawQuery,
		"body":   string(body),
	})
}
