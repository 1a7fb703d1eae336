// Package domain holds the gateway's core types. The gateway is stateless:
// credentials exist only in transit between the identity provider and the
// browser's cookie store, so these types model wire payloads, not records.
package domain

// TokenPair is the credential pair issued by the identity provider.
//
// Refresh may be empty after a renewal: providers are free to keep the old
// refresh credential instead of rotating it, and the gateway must then leave
// the existing refresh cookie untouched.
type TokenPair struct {
	Access  string
	Refresh string
}

// Rotated reports whether the provider issued a new refresh credential.
func (p TokenPair) Rotated() bool { return p.Refresh != "" }

// Profile is display-only user information returned alongside a session.
// It is never an input to an authorization decision; the opaque access
// credential is the only thing the upstream provider trusts.
type Profile struct {
	UserID        string `json:"user_id"`
	Username      string `json:"username"`
	PreferredName string `json:"preferred_name,omitempty"`
}
