// Package services contains the server's business logic: sessions, request
// authentication, the token blacklist and the ledger.
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gowallet/internal/common"
	"github.com/dmitrijs2005/gowallet/internal/dbx"
	"github.com/dmitrijs2005/gowallet/internal/logging"
	"github.com/dmitrijs2005/gowallet/internal/server/auth"
	"github.com/dmitrijs2005/gowallet/internal/server/config"
	"github.com/dmitrijs2005/gowallet/internal/server/metrics"
	"github.com/dmitrijs2005/gowallet/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SessionService handles login, refresh and logout.
//
// Only the most recent refresh token of a subject is honoured: it is stored
// on the subject's account and every login overwrites it. Refresh does not
// rotate it.
type SessionService struct {
	conn                         dbx.Conn
	repomanager                  repomanager.RepositoryManager
	verifier                     *CredentialVerifier
	codec                        *auth.Codec
	blacklist                    *TokenBlacklist
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	metrics                      metrics.Recorder
	log                          logging.Logger
	now                          func() time.Time
}

func NewSessionService(
	m repomanager.RepositoryManager,
	verifier *CredentialVerifier,
	codec *auth.Codec,
	blacklist *TokenBlacklist,
	cfg *config.Config,
	rec metrics.Recorder,
	log logging.Logger,
) *SessionService {
	return &SessionService{
		conn:                         m.Conn(),
		repomanager:                  m,
		verifier:                     verifier,
		codec:                        codec,
		blacklist:                    blacklist,
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		metrics:                      rec,
		log:                          log.With("module", "session"),
		now:                          time.Now,
	}
}

// Login verifies the credentials and issues a token pair. Storing the
// refresh token is best effort: on failure both tokens are still returned
// and the refresh token will simply not be accepted later.
func (s *SessionService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	principal, err := s.verifier.Verify(ctx, email, password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			s.metrics.RecordLogin("invalid_credentials")
		} else {
			s.metrics.RecordLogin("error")
		}
		return nil, err
	}

	pair, err := s.issuePair(principal.Subject)
	if err != nil {
		s.metrics.RecordLogin("error")
		return nil, err
	}

	if err := s.repomanager.Accounts(s.conn).SetRefreshToken(ctx, principal.Subject, pair.RefreshToken); err != nil {
		s.log.Warn(ctx, "refresh token not stored", "subject", principal.Subject, "error", err.Error())
	}

	s.metrics.RecordLogin("ok")
	return pair, nil
}

func (s *SessionService) issuePair(subject string) (*TokenPair, error) {
	access, err := s.codec.Issue(subject, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}
	refresh, err := s.codec.Issue(subject, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a refresh token for a new access token. The refresh
// token is returned unchanged.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, common.ErrMissingToken
	}

	claims, err := s.codec.Parse(refreshToken)
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	if claims.Expired(s.now()) {
		return nil, fmt.Errorf("%w: expired", common.ErrInvalidToken)
	}

	account, err := s.repomanager.Accounts(s.conn).GetBySubject(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnknownAccount
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	if account.RefreshToken == "" ||
		subtle.ConstantTimeCompare([]byte(account.RefreshToken), []byte(refreshToken)) != 1 {
		return nil, common.ErrStaleRefreshToken
	}

	access, err := s.codec.Issue(claims.Subject, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refreshToken}, nil
}

// Logout revokes accessToken and forgets the subject's refresh token.
// Only an empty token is an error: once the session is ending every
// downstream failure is logged and swallowed.
func (s *SessionService) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return common.ErrMissingToken
	}

	if _, err := s.blacklist.BlacklistToken(ctx, accessToken); err != nil {
		s.log.Error(ctx, "logout: token not blacklisted", "error", err.Error())
	}

	claims, err := s.codec.Parse(accessToken)
	if err != nil {
		return nil
	}

	if err := s.repomanager.Accounts(s.conn).SetRefreshToken(ctx, claims.Subject, ""); err != nil &&
		!errors.Is(err, common.ErrNotFound) {
		s.log.Warn(ctx, "logout: refresh token not cleared", "subject", claims.Subject, "error", err.Error())
	}

	return nil
}
