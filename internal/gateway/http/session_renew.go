package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/sessiongate/internal/gateway/service"
	"github.com/aussiebroadwan/sessiongate/pkg/cookiex"
	"github.com/aussiebroadwan/sessiongate/pkg/httpx"
	"github.com/aussiebroadwan/sessiongate/pkg/sessionsdk"
	"github.com/aussiebroadwan/sessiongate/pkg/slogx"
)

// RenewHandler serves POST /session/renew
// Trades the refresh cookie for a fresh access credential. The body carries
// nothing sensitive; renewed tokens travel only as Set-Cookie headers.
type RenewHandler struct {
	SessionService *service.SessionService
	Cookies        cookiex.Codec
}

// ServeHTTP godoc
//
//	@Summary		Renew Session
//	@Description	Redeems the HttpOnly refresh cookie against the upstream identity provider
//	@Description	and re-issues the access cookie. When the provider rotates the refresh
//	@Description	credential the refresh cookie is replaced in the same response; otherwise it
//	@Description	is left untouched.
//	@Tags			Session
//	@Produce		json
//	@Success		200	{object}	sessionsdk.RenewResponse	"success"
//	@Failure		401	{object}	sessionsdk.ErrorResponse	"error"
//	@Failure		503	{object}	sessionsdk.ErrorResponse	"error"
//	@Header			200	{string}	Set-Cookie					"sg_access, plus sg_refresh on rotation"
//	@Router			/session/renew [post].
func (h *RenewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	refresh, _ := h.Cookies.ReadRefresh(r)

	pair, err := h.SessionService.Renew(ctx, refresh)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoRenewalCredential),
			errors.Is(err, service.ErrRenewalRejected):
			// No Set-Cookie on failure: the browser keeps whatever it had.
			httpx.WriteError(w, http.StatusUnauthorized, "session renewal rejected")
		default:
			log.Error("renewal failed", "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, "identity provider unavailable")
		}
		return
	}

	// WritePair skips the refresh cookie when the provider did not rotate it.
	h.Cookies.WritePair(w, r, pair.Access, pair.Refresh)

	log.Debug("session renewed", "rotated", pair.Rotated())
	httpx.WriteJSON(w, http.StatusOK, sessionsdk.RenewResponse{Success: true})
}
