package http

import (
	"net/http"

	"github.com/aussiebroadwan/sessiongate/internal/gateway/service"
	"github.com/aussiebroadwan/sessiongate/pkg/cookiex"
	"github.com/aussiebroadwan/sessiongate/pkg/httpx"
	"github.com/aussiebroadwan/sessiongate/pkg/slogx"
)

// LogoutHandler serves POST /session/end
// Clearing the browser's cookies is the part that must succeed; upstream
// revocation is best-effort.
type LogoutHandler struct {
	SessionService *service.SessionService
	Cookies        cookiex.Codec
}

// ServeHTTP godoc
//
//	@Summary		End Session
//	@Description	Expires both session cookies and asks the upstream identity provider to
//	@Description	revoke the refresh credential. Always succeeds from the browser's point of
//	@Description	view, even when revocation fails or no session existed.
//	@Tags			Session
//	@Produce		json
//	@Success		200	{string}	string		"empty body"
//	@Header			200	{string}	Set-Cookie	"sg_access and sg_refresh expired"
//	@Router			/session/end [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if refresh, ok := h.Cookies.ReadRefresh(r); ok {
		h.SessionService.Logout(ctx, refresh)
	}

	h.Cookies.Clear(w, r)

	log.Info("session ended")
	httpx.WriteJSON(w, http.StatusOK, struct{}{})
}
