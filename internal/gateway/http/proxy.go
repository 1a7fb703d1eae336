package http

import (
	"io"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/sessiongate/internal/gateway/upstream"
	"github.com/aussiebroadwan/sessiongate/pkg/cookiex"
	"github.com/aussiebroadwan/sessiongate/pkg/httpx"
	"github.com/aussiebroadwan/sessiongate/pkg/slogx"
)

// forwardedHeaders is the allow-list of upstream response headers repeated to
// the browser. Set-Cookie is deliberately absent: only the gateway's own
// session endpoints may touch the cookie pair.
var forwardedHeaders = []string{
	"Content-Type",
	"Content-Length",
	"Cache-Control",
	"ETag",
	"Expires",
	"Last-Modified",
}

// ProxyHandler serves /resource/
// Translates the cookie-held access credential into a bearer header and relays
// the request to the upstream provider. The browser never sees the token.
type ProxyHandler struct {
	Upstream *upstream.Client
	Cookies  cookiex.Codec
}

// ServeHTTP godoc
//
//	@Summary		Forward Resource Request
//	@Description	Relays the request to the upstream provider with the session's access token
//	@Description	attached as an Authorization bearer header. The upstream status code and an
//	@Description	allow-listed set of response headers pass through unchanged; upstream
//	@Description	Set-Cookie headers never do.
//	@Tags			Resource
//	@Success		200	{string}	string						"upstream body"
//	@Failure		401	{object}	sessionsdk.ErrorResponse	"error (from upstream)"
//	@Failure		502	{object}	sessionsdk.ErrorResponse	"error"
//	@Router			/resource/{path} [get].
func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	path := strings.TrimPrefix(r.URL.Path, "/resource")

	// A missing cookie still forwards: the upstream owns the 401, and the
	// coordinator on the other side treats it like any expired session.
	access, ok := h.Cookies.ReadAccess(r)
	if !ok {
		log.Debug("forwarding without access credential", "path", path)
	}

	resp, err := h.Upstream.Forward(r, path, access)
	if err != nil {
		log.Error("upstream forward failed", "path", path, "err", err)
		httpx.WriteError(w, http.StatusBadGateway, "upstream unavailable")
		return
	}
	defer resp.Body.Close()

	for _, name := range forwardedHeaders {
		if v := resp.Header.Get(name); v != "" {
			w.Header().Set(name, v)
		}
	}

	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Warn("upstream body copy interrupted", "path", path, "err", err)
	}
}
