// Package cookiex encodes and decodes the session cookie pair.
//
// The gateway carries two cookies: a short-lived access credential and a
// longer-lived refresh credential. Both are script-inaccessible (HttpOnly),
// cross-site restricted (SameSite=Lax) and marked Secure whenever the request
// arrived over an encrypted channel. The pair is the only place these
// credentials live; the gateway itself stores nothing.
package cookiex

import (
	"net/http"
	"time"
)

// Default cookie names. Overridable via Codec fields for deployments that
// need fixed names across services.
const (
	DefaultAccessName  = "sg_access"
	DefaultRefreshName = "sg_refresh"
)

// Codec serialises the session cookie pair. The zero value is not usable;
// construct with New.
type Codec struct {
	AccessName  string
	RefreshName string

	// Cookie lifetimes. Internal config may be sub-second; the wire format
	// carries whole seconds, truncated.
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// New returns a Codec with defaults applied for any zero field.
func New(accessName, refreshName string, accessTTL, refreshTTL time.Duration) Codec {
	c := Codec{
		AccessName:  accessName,
		RefreshName: refreshName,
		AccessTTL:   accessTTL,
		RefreshTTL:  refreshTTL,
	}
	if c.AccessName == "" {
		c.AccessName = DefaultAccessName
	}
	if c.RefreshName == "" {
		c.RefreshName = DefaultRefreshName
	}
	return c
}

// WritePair emits Set-Cookie headers for a credential pair.
//
// The access cookie is always written. The refresh cookie is written only
// when refresh is non-empty: a renewal in which the provider kept the old
// refresh credential must leave the existing cookie untouched so its
// remaining Max-Age keeps counting down.
func (c Codec) WritePair(w http.ResponseWriter, r *http.Request, access, refresh string) {
	secure := RequestIsSecure(r)

	http.SetCookie(w, &http.Cookie{
		Name:     c.AccessName,
		Value:    access,
		Path:     "/",
		MaxAge:   maxAgeSeconds(c.AccessTTL),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})

	if refresh == "" {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.RefreshName,
		Value:    refresh,
		Path:     "/",
		MaxAge:   maxAgeSeconds(c.RefreshTTL),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires both cookies immediately (Max-Age=0 on the wire). Used by
// logout; always clears the pair together.
func (c Codec) Clear(w http.ResponseWriter, r *http.Request) {
	secure := RequestIsSecure(r)

	for _, name := range []string{c.AccessName, c.RefreshName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1, // serialises as Max-Age=0
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// ReadAccess returns the access credential from the request, if present.
func (c Codec) ReadAccess(r *http.Request) (string, bool) {
	return readCookie(r, c.AccessName)
}

// ReadRefresh returns the refresh credential from the request, if present.
func (c Codec) ReadRefresh(r *http.Request) (string, bool) {
	return readCookie(r, c.RefreshName)
}

func readCookie(r *http.Request, name string) (string, bool) {
	ck, err := r.Cookie(name)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}

// RequestIsSecure reports whether the request arrived over an encrypted
// channel, either directly or via a TLS-terminating proxy.
func RequestIsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return r.Header.Get("X-Forwarded-Proto") == "https"
}

// maxAgeSeconds converts a duration to whole seconds for the wire format.
// Truncation, not rounding: a 90.9s lifetime is a 90s cookie.
func maxAgeSeconds(d time.Duration) int {
	return int(d / time.Second)
}
