package services

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/gowallet/internal/common"
	"github.com/dmitrijs2005/gowallet/internal/logging"
	"github.com/dmitrijs2005/gowallet/internal/server/auth"
	"github.com/dmitrijs2005/gowallet/internal/server/metrics"
	"github.com/dmitrijs2005/gowallet/internal/server/models"
)

// Authenticator decides, once per request, who the caller is.
type Authenticator struct {
	codec     *auth.Codec
	blacklist *TokenBlacklist
	verifier  *CredentialVerifier
	metrics   metrics.Recorder
	log       logging.Logger
	now       func() time.Time
}

func NewAuthenticator(codec *auth.Codec, blacklist *TokenBlacklist, verifier *CredentialVerifier, rec metrics.Recorder, log logging.Logger) *Authenticator {
	return &Authenticator{
		codec:     codec,
		blacklist: blacklist,
		verifier:  verifier,
		metrics:   rec,
		log:       log.With("module", "authenticator"),
		now:       time.Now,
	}
}

// Authenticate returns the principal behind token, or false when the caller
// must be treated as anonymous. It never fails: a bad, expired or revoked
// token, or a blacklist that cannot be consulted, all mean anonymous.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*models.Principal, bool) {
	if token == "" {
		return nil, false
	}

	claims, err := a.codec.Parse(token)
	if err != nil {
		a.metrics.RecordAuth("invalid")
		return nil, false
	}
	if claims.Expired(a.now()) {
		a.metrics.RecordAuth("expired")
		return nil, false
	}

	revoked, err := a.blacklist.IsBlacklisted(ctx, token)
	if err != nil {
		a.log.Warn(ctx, "blacklist unavailable, denying", "subject", claims.Subject, "error", err.Error())
		a.metrics.RecordAuth("store_error")
		return nil, false
	}
	if revoked {
		a.metrics.RecordAuth("revoked")
		return nil, false
	}

	principal, err := a.verifier.LoadPrincipal(ctx, claims.Subject)
	if err != nil {
		a.log.Warn(ctx, "principal not loaded", "subject", claims.Subject, "error", err.Error())
		a.metrics.RecordAuth("unknown_subject")
		return nil, false
	}

	a.metrics.RecordAuth("admitted")
	return principal, true
}

// ParseBearer extracts the token from an "Authorization: Bearer <token>"
// value. Anything else yields "".
func ParseBearer(header string) string {
	if len(header) < len(common.BearerPrefix) || !strings.EqualFold(header[:len(common.BearerPrefix)], common.BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(common.BearerPrefix):])
}
