package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/sessiongate/internal/idp/service"
	"github.com/aussiebroadwan/sessiongate/pkg/httpx"
	"github.com/aussiebroadwan/sessiongate/pkg/slogx"
)

// tokenResponse is the wire shape of a successful grant.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// TokenHandler serves POST /v1/token
// Accepts application/x-www-form-urlencoded with password and refresh_token grants.
type TokenHandler struct {
	TokenService *service.TokenService
}

func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 1. Ensure the right content-type
	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	// 2. Parse the form body
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	// 3. Handle the grant type
	switch r.Form.Get("grant_type") {
	case "password":
		h.handlePasswordGrant(w, r)
	case "refresh_token":
		h.handleRefreshGrant(w, r)
	default:
		httpx.WriteError(w, http.StatusBadRequest, "unsupported_grant_type")
	}
}

func (h *TokenHandler) handlePasswordGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	username := strings.TrimSpace(r.Form.Get("username"))
	password := r.Form.Get("password")
	if username == "" || password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	pair, err := h.TokenService.PasswordGrant(ctx, username, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_grant")
			return
		}
		log.Error("password grant failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeTokenResponse(w, pair)
}

func (h *TokenHandler) handleRefreshGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	refreshToken := r.Form.Get("refresh_token")
	if refreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	pair, err := h.TokenService.ExchangeRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_grant")
			return
		}
		log.Error("refresh grant failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeTokenResponse(w, pair)
}

func writeTokenResponse(w http.ResponseWriter, pair *service.TokenPair) {
	httpx.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
	})
}
