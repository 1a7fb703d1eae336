package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/sessiongate/internal/idp/service"
	"github.com/aussiebroadwan/sessiongate/pkg/httpx"
	"github.com/aussiebroadwan/sessiongate/pkg/jwtx"
)

// UserInfoHandler serves GET /v1/userinfo
// Returns the OIDC-style profile claims for the presented bearer token.
type UserInfoHandler struct {
	TokenService *service.TokenService
}

func (h *UserInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := bearerClaims(h.TokenService, w, r)
	if !ok {
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"sub":                claims.Subject,
		"preferred_username": claims.Username,
		"name":               claims.PreferredName,
	})
}

// bearerClaims extracts and verifies the Authorization bearer token, writing
// the 401 itself when the credential is missing or stale.
func bearerClaims(
	svc *service.TokenService,
	w http.ResponseWriter,
	r *http.Request,
) (*jwtx.Claims, bool) {
	auth := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found || token == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token")
		return nil, false
	}

	claims, err := svc.VerifyAccess(token)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token")
		return nil, false
	}
	return claims, true
}
