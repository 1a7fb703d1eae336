// Package domain holds the identity provider's core records.
package domain

import "time"

// User is a credentialed account on the development provider.
type User struct {
	ID            string
	Username      string
	PreferredName string
	PasswordHash  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RefreshToken is the persisted half of an opaque refresh credential. Only
// the fingerprint is stored; the raw value exists solely on the wire.
type RefreshToken struct {
	ID        string
	UserID    string
	SessionID string
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}
