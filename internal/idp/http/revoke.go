package http

import (
	"net/http"

	"github.com/aussiebroadwan/sessiongate/internal/idp/service"
	"github.com/aussiebroadwan/sessiongate/pkg/httpx"
	"github.com/aussiebroadwan/sessiongate/pkg/slogx"
)

// RevokeHandler serves POST /v1/revoke
// Always answers 200 for well-formed requests so callers cannot probe which
// tokens exist.
type RevokeHandler struct {
	TokenService *service.TokenService
}

func (h *RevokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	token := r.Form.Get("token")
	if token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	if err := h.TokenService.Revoke(ctx, token); err != nil {
		log.Error("revocation failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	w.WriteHeader(http.StatusOK)
}
