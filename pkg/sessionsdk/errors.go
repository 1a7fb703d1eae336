package sessionsdk

import "errors"

var (
	// ErrInvalidCredentials is returned by Login when the gateway rejects the
	// username/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNoSession is returned by WhoAmI when no active session exists, and by
	// the coordinator when a renewal is requested before any login. This is a
	// routine probe result, not a failure.
	ErrNoSession = errors.New("no active session")

	// ErrRenewalRejected is returned when the gateway refuses to renew the
	// session. The session is gone and the user must log in again.
	ErrRenewalRejected = errors.New("session renewal rejected")

	// ErrSessionExpired is returned once the coordinator has given up on the
	// session. Further requests fail fast with this error until the next Login.
	ErrSessionExpired = errors.New("session expired")

	// ErrGatewayUnavailable wraps transport-level failures reaching the gateway.
	ErrGatewayUnavailable = errors.New("gateway unavailable")
)
