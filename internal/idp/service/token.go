// Package service implements the development identity provider's grant
// handling: password login, refresh rotation, revocation and userinfo.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/sessiongate/internal/idp/domain"
	"github.com/aussiebroadwan/sessiongate/internal/idp/store"
	"github.com/aussiebroadwan/sessiongate/pkg/cryptox"
	"github.com/aussiebroadwan/sessiongate/pkg/idx"
	"github.com/aussiebroadwan/sessiongate/pkg/jwtx"
	"github.com/aussiebroadwan/sessiongate/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
	ErrInvalidToken       = errors.New("invalid_token")
)

// TokenPair is the result of a successful grant. RefreshToken is empty when
// the grant did not rotate the refresh credential.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

type TokenService struct {
	Store    store.Store
	Signer   *jwtx.EdDSASigner
	Verifier *jwtx.EdDSAVerifier
	Issuer   string

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// RotateRefresh controls whether the refresh_token grant issues a new
	// refresh credential. Off, the provider re-accepts the old one until it
	// expires, which mirrors providers that do not rotate.
	RotateRefresh bool
}

// PasswordGrant verifies the username/password pair and issues a fresh
// access/refresh pair under a new session id.
func (s *TokenService) PasswordGrant(
	ctx context.Context,
	username, password string,
) (*TokenPair, error) {
	now := time.Now()
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		l.Warn("password grant rejected", "username", username)
		return nil, ErrInvalidCredentials
	}

	sid := idx.New().String()
	accessToken, err := s.signAccess(u, sid, now)
	if err != nil {
		return nil, err
	}

	refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	rt := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		SessionID: sid,
		TokenHash: cryptox.FingerprintToken(refreshOpaque),
		ExpiresAt: now.Add(s.RefreshTTL),
	}
	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
		return nil, err
	}

	l.Info("password grant issued", "user_id", u.ID, "sid", sid)
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshOpaque,
		ExpiresIn:    s.AccessTTL,
	}, nil
}

// ExchangeRefreshToken implements the refresh_token grant.
//
// A revoked token presented again is treated as replay: every credential in
// its session is revoked before the grant is refused.
func (s *TokenService) ExchangeRefreshToken(
	ctx context.Context,
	refreshOpaque string,
) (*TokenPair, error) {
	now := time.Now()
	l := slogx.FromContext(ctx)

	// 1. Lookup the persisted refresh row by token fingerprint
	fp := cryptox.FingerprintToken(refreshOpaque)
	rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	// 2. A rotated-away token coming back means someone replayed it.
	if rt.Revoked {
		l.Warn("revoked refresh token replayed, revoking session", "sid", rt.SessionID)
		if err := s.Store.RefreshTokens().RevokeSessionRefreshTokens(ctx, rt.SessionID); err != nil {
			return nil, err
		}
		return nil, ErrInvalidRefresh
	}
	if now.After(rt.ExpiresAt) {
		return nil, ErrInvalidRefresh
	}

	// 3. Load the user for fresh claims
	u, err := s.Store.Users().GetUserByID(ctx, rt.UserID)
	if err != nil {
		return nil, err
	}

	// 4. Issue new access token under the same session id
	accessToken, err := s.signAccess(u, rt.SessionID, now)
	if err != nil {
		return nil, err
	}

	if !s.RotateRefresh {
		return &TokenPair{
			AccessToken: accessToken,
			ExpiresIn:   s.AccessTTL,
		}, nil
	}

	// 5. Rotation: generate the replacement, then revoke old and create new
	// atomically so a crash can never leave the session without a credential.
	newRefreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	newRT := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		SessionID: rt.SessionID, // Preserve session ID across refresh
		TokenHash: cryptox.FingerprintToken(newRefreshOpaque),
		ExpiresAt: now.Add(s.RefreshTTL),
	}

	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, fp); err != nil {
			return err
		}
		return tx.RefreshTokens().CreateRefreshToken(ctx, newRT)
	}); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshOpaque,
		ExpiresIn:    s.AccessTTL,
	}, nil
}

// Revoke marks the refresh credential revoked. Unknown tokens succeed; the
// caller cannot learn whether a credential existed.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	return s.Store.RefreshTokens().RevokeRefreshToken(ctx, cryptox.FingerprintToken(token))
}

// VerifyAccess validates a bearer token and returns its claims.
func (s *TokenService) VerifyAccess(accessToken string) (*jwtx.Claims, error) {
	claims, err := s.Verifier.Verify(accessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SeedUser creates the given user when the store is empty. It makes a fresh
// database immediately usable without a registration flow.
func (s *TokenService) SeedUser(
	ctx context.Context,
	username, password, preferredName string,
) error {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil || !empty {
		return err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}

	return s.Store.Users().CreateUser(ctx, domain.User{
		ID:            idx.New().String(),
		Username:      username,
		PreferredName: preferredName,
		PasswordHash:  hash,
	})
}

func (s *TokenService) signAccess(u domain.User, sid string, now time.Time) (string, error) {
	claims := jwtx.NewAccessClaims(
		u.ID, sid,
		s.AccessTTL,
		s.Issuer,
		u.Username, u.PreferredName,
		now,
	)
	return s.Signer.Sign(claims)
}
