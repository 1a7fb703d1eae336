package service

import "errors"

// Session failure taxonomy. Handlers map these onto HTTP statuses; the SDK
// maps the statuses back onto coordinator behaviour.
var (
	// ErrInvalidCredentials: login identifier/secret rejected. User-facing,
	// non-retryable.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrNoRenewalCredential: renewal requested without a refresh cookie.
	// Terminal for the session.
	ErrNoRenewalCredential = errors.New("no_renewal_credential")

	// ErrRenewalRejected: the provider refused the refresh credential
	// (expired, revoked, malformed). Terminal for the session; the caller
	// must force re-authentication.
	ErrRenewalRejected = errors.New("renewal_rejected")

	// ErrUnauthorized: the access credential was absent or refused on a
	// probe. Routine for anonymous callers, recoverable via renewal
	// everywhere else.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUpstreamUnavailable: the provider is unreachable or failing.
	// Transient; surfaces as a generic failure and never ends a session.
	ErrUpstreamUnavailable = errors.New("upstream_unavailable")
)
