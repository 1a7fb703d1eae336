package sessionsdk

// Shared wire types for the gateway's session surface. The server handlers
// and this SDK both use these so the contract lives in exactly one place.

// LoginRequest is the POST /session body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Profile is the display-only user payload returned by login and whoami.
// Never use it for authorization decisions; the cookies are the credential.
type Profile struct {
	UserID        string `json:"user_id"`
	Username      string `json:"username"`
	PreferredName string `json:"preferred_name,omitempty"`
}

// RenewResponse is the POST /session/renew success body.
type RenewResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse is the gateway's JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthChecks reports per-dependency readiness.
type HealthChecks struct {
	Upstream string `json:"upstream"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// Gateway session paths. The coordinator treats these as renewal-exempt: a
// 401 from any of them must never trigger a renewal attempt.
const (
	PathLogin  = "/session"
	PathRenew  = "/session/renew"
	PathLogout = "/session/end"
	PathWhoAmI = "/session/whoami"
)

// IsAuthPath reports whether path is part of the session surface itself.
func IsAuthPath(path string) bool {
	switch path {
	case PathLogin, PathRenew, PathLogout, PathWhoAmI:
		return true
	}
	return false
}
