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

// WhoAmIHandler serves GET /session/whoami
// Lets the frontend probe session state on page load without triggering a renewal.
type WhoAmIHandler struct {
	SessionService *service.SessionService
	Cookies        cookiex.Codec
}

// ServeHTTP godoc
//
//	@Summary		Current Session Profile
//	@Description	Returns the display profile for the session's access credential, or 401 when
//	@Description	no valid session exists. A 401 here is a routine signal, not an error.
//	@Tags			Session
//	@Produce		json
//	@Success		200	{object}	sessionsdk.Profile			"user_id, username, preferred_name"
//	@Failure		401	{object}	sessionsdk.ErrorResponse	"error"
//	@Failure		503	{object}	sessionsdk.ErrorResponse	"error"
//	@Router			/session/whoami [get].
func (h *WhoAmIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	access, _ := h.Cookies.ReadAccess(r)

	profile, err := h.SessionService.Profile(ctx, access)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			httpx.WriteError(w, http.StatusUnauthorized, "no active session")
		default:
			log.Error("whoami failed", "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, "identity provider unavailable")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessionsdk.Profile{
		UserID:        profile.UserID,
		Username:      profile.Username,
		PreferredName: profile.PreferredName,
	})
}
