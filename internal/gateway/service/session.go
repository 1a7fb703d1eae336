// Package service implements the session issuer and renewal logic. All
// credential state lives with the identity provider; this layer translates
// between the gateway's HTTP surface and the provider's grant operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/sessiongate/internal/gateway/domain"
	"github.com/aussiebroadwan/sessiongate/internal/gateway/upstream"
	"github.com/aussiebroadwan/sessiongate/pkg/slogx"
)

type SessionService struct {
	Upstream *upstream.Client
}

// Login authenticates an identifier/secret pair against the provider and
// returns the credential pair plus a display profile.
//
// Exactly one successful call yields exactly one cookie pair emission; on any
// failure nothing is emitted. Credential values are never logged.
func (s *SessionService) Login(ctx context.Context, username, password string) (domain.TokenPair, *domain.Profile, error) {
	l := slogx.FromContext(ctx)

	tr, err := s.Upstream.PasswordGrant(ctx, username, password)
	if err != nil {
		switch {
		case errors.Is(err, upstream.ErrGrantRejected):
			l.Info("login rejected", slog.String("username", username))
			return domain.TokenPair{}, nil, ErrInvalidCredentials
		default:
			l.Error("login failed upstream", slog.Any("error", err))
			return domain.TokenPair{}, nil, ErrUpstreamUnavailable
		}
	}

	profile, err := s.Upstream.UserInfo(ctx, tr.AccessToken)
	if err != nil {
		// The pair was minted but we cannot complete the login response.
		// Fail without emitting cookies; the orphaned pair simply expires.
		l.Error("userinfo fetch failed after login", slog.Any("error", err))
		return domain.TokenPair{}, nil, ErrUpstreamUnavailable
	}

	return domain.TokenPair{
			Access:  tr.AccessToken,
			Refresh: tr.RefreshToken,
		}, &domain.Profile{
			UserID:        profile.UserID,
			Username:      profile.Username,
			PreferredName: profile.PreferredName,
		}, nil
}

// Renew exchanges a refresh credential for a new pair. The returned pair's
// Refresh field is empty when the provider kept the old credential.
func (s *SessionService) Renew(ctx context.Context, refresh string) (domain.TokenPair, error) {
	if refresh == "" {
		return domain.TokenPair{}, ErrNoRenewalCredential
	}

	tr, err := s.Upstream.RefreshGrant(ctx, refresh)
	if err != nil {
		switch {
		case errors.Is(err, upstream.ErrGrantRejected):
			return domain.TokenPair{}, ErrRenewalRejected
		default:
			return domain.TokenPair{}, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
		}
	}

	return domain.TokenPair{
		Access:  tr.AccessToken,
		Refresh: tr.RefreshToken,
	}, nil
}

// Logout revokes the refresh credential with the provider. Best effort: the
// cookies are cleared regardless, so a provider outage only delays server-side
// invalidation until the credential expires on its own.
func (s *SessionService) Logout(ctx context.Context, refresh string) {
	if refresh == "" {
		return
	}
	if err := s.Upstream.Revoke(ctx, refresh); err != nil {
		slogx.FromContext(ctx).Warn("refresh revocation failed", slog.Any("error", err))
	}
}

// Profile resolves the display profile for an access credential. Used by the
// who-am-I probe; an ErrUnauthorized result there is routine, not exceptional.
func (s *SessionService) Profile(ctx context.Context, access string) (*domain.Profile, error) {
	if access == "" {
		return nil, ErrUnauthorized
	}

	profile, err := s.Upstream.UserInfo(ctx, access)
	if err != nil {
		switch {
		case errors.Is(err, upstream.ErrGrantRejected):
			return nil, ErrUnauthorized
		default:
			return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
		}
	}

	return &domain.Profile{
		UserID:        profile.UserID,
		Username:      profile.Username,
		PreferredName: profile.PreferredName,
	}, nil
}
