package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/sessiongate/internal/gateway/service"
	"github.com/aussiebroadwan/sessiongate/pkg/cookiex"
	"github.com/aussiebroadwan/sessiongate/pkg/httpx"
	"github.com/aussiebroadwan/sessiongate/pkg/sessionsdk"
	"github.com/aussiebroadwan/sessiongate/pkg/slogx"
)

// LoginHandler serves POST /session
// Exchanges a username/password pair for a cookie-held session.
type LoginHandler struct {
	SessionService *service.SessionService
	Cookies        cookiex.Codec
}

// ServeHTTP godoc
//
//	@Summary		Establish Session
//	@Description	Verifies the submitted credentials against the upstream identity provider and,
//	@Description	on success, sets the HttpOnly access and refresh cookies. Token values never
//	@Description	appear in the response body.
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Param			body	body		sessionsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	sessionsdk.Profile		"user_id, username, preferred_name"
//	@Failure		401		{object}	sessionsdk.ErrorResponse	"error"
//	@Failure		422		{object}	sessionsdk.ErrorResponse	"error"
//	@Failure		503		{object}	sessionsdk.ErrorResponse	"error"
//	@Header			200		{string}	Set-Cookie				"sg_access and sg_refresh"
//	@Router			/session [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req sessionsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	pair, profile, err := h.SessionService.Login(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		default:
			log.Error("login failed", "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, "identity provider unavailable")
		}
		return
	}

	// Both credentials changed, so both cookies go out together.
	h.Cookies.WritePair(w, r, pair.Access, pair.Refresh)

	log.Info("session established", "user_id", profile.UserID)
	httpx.WriteJSON(w, http.StatusOK, sessionsdk.Profile{
		UserID:        profile.UserID,
		Username:      profile.Username,
		PreferredName: profile.PreferredName,
	})
}
