package jwtx

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	t.Parallel()

	signer, err := NewEphemeralSigner("dev-1")
	require.NoError(t, err)
	verifier := signer.Verifier("idp-dev")

	claims := NewAccessClaims(
		"user-123", "sess-1",
		15*time.Minute,
		"idp-dev",
		"alice", "Alice Example",
		time.Now(),
	)

	tokenStr, err := signer.Sign(claims)
	require.NoError(t, err)

	parsed, err := verifier.Verify(tokenStr)
	require.NoError(t, err)
	require.Equal(t, "user-123", parsed.Subject)
	require.Equal(t, "sess-1", parsed.SID)
	require.Equal(t, "alice", parsed.Username)
	require.Equal(t, "Alice Example", parsed.PreferredName)
	require.NotEmpty(t, parsed.ID)
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	t.Parallel()

	signer, err := NewEphemeralSigner("dev-1")
	require.NoError(t, err)

	other, err := NewEphemeralSigner("dev-1")
	require.NoError(t, err)

	claims := NewAccessClaims("u", "s", time.Minute, "idp-dev", "bob", "", time.Now())
	tokenStr, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = other.Verifier("idp-dev").Verify(tokenStr)
	require.Error(t, err)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	signer, err := NewEphemeralSigner("dev-1")
	require.NoError(t, err)

	claims := NewAccessClaims("u", "s", time.Minute, "someone-else", "bob", "", time.Now())
	tokenStr, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = signer.Verifier("idp-dev").Verify(tokenStr)
	require.ErrorIs(t, err, ErrIssuer)
}

func TestClaimsExpiry(t *testing.T) {
	t.Parallel()

	t.Run("expired token fails", func(t *testing.T) {
		c := Claims{RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		}}
		require.ErrorIs(t, c.ValidateExpiry(), ErrExpired)
	})

	t.Run("future nbf fails", func(t *testing.T) {
		c := Claims{RegisteredClaims: jwt.RegisteredClaims{
			NotBefore: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		}}
		require.ErrorIs(t, c.ValidateExpiry(), ErrNotYetValid)
	})

	t.Run("valid window passes", func(t *testing.T) {
		c := Claims{RegisteredClaims: jwt.RegisteredClaims{
			NotBefore: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		}}
		require.NoError(t, c.ValidateExpiry())
	})
}
