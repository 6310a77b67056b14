package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gowallet/internal/common"
	"github.com/dmitrijs2005/gowallet/internal/logging"
	"github.com/dmitrijs2005/gowallet/internal/server/auth"
	"github.com/dmitrijs2005/gowallet/internal/server/config"
	"github.com/dmitrijs2005/gowallet/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gowallet/internal/server/repositories/revokedtokens"
)

// TokenBlacklist revokes tokens before their natural expiry.
type TokenBlacklist struct {
	repo         revokedtokens.Repository
	codec        *auth.Codec
	fallbackTTL  time.Duration
	checkTimeout time.Duration
	batchSize    int
	log          logging.Logger
	now          func() time.Time
}

func NewTokenBlacklist(m repomanager.RepositoryManager, codec *auth.Codec, cfg *config.Config, log logging.Logger) *TokenBlacklist {
	return &TokenBlacklist{
		repo:         m.RevokedTokens(m.Conn()),
		codec:        codec,
		fallbackTTL:  cfg.BlacklistFallbackTTL,
		checkTimeout: cfg.BlacklistCheckTimeout,
		batchSize:    cfg.PurgeBatchSize,
		log:          log.With("module", "blacklist"),
		now:          time.Now,
	}
}

// Blacklist revokes token until expiresAt. Repeating it is a no-op.
func (b *TokenBlacklist) Blacklist(ctx context.Context, token string, expiresAt time.Time) error {
	if token == "" {
		return common.ErrMissingToken
	}
	return b.repo.Add(ctx, token, expiresAt)
}

// BlacklistToken revokes token until its own expiry. When the expiry cannot
// be read from the token it is revoked for the fallback TTL instead.
func (b *TokenBlacklist) BlacklistToken(ctx context.Context, token string) (time.Time, error) {
	expiresAt := b.now().Add(b.fallbackTTL)
	if claims, err := b.codec.Parse(token); err == nil {
		expiresAt = claims.ExpiresAt
	} else {
		b.log.Warn(ctx, "token expiry unreadable, using fallback ttl", "ttl", b.fallbackTTL.String(), "reason", err.Error())
	}
	return expiresAt, b.Blacklist(ctx, token, expiresAt)
}

// IsBlacklisted reports whether token is revoked. The lookup is bounded by
// the check timeout; any error must be treated as revoked by callers.
func (b *TokenBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	if b.checkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.checkTimeout)
		defer cancel()
	}

	ok, err := b.repo.Exists(ctx, token)
	if err != nil {
		return true, fmt.Errorf("%w: blacklist lookup: %v", common.ErrStoreUnavailable, err)
	}
	return ok, nil
}

// PurgeExpired deletes every entry with expiry <= now, one batch at a time,
// so no single statement holds locks for long. It returns how many entries
// were removed, including those removed before a failing batch.
func (b *TokenBlacklist) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	var total int64
	for {
		n, err := b.repo.DeleteExpired(ctx, now, b.batchSize)
		total += n
		if err != nil {
			return total, err
		}
		if n < int64(b.batchSize) {
			return total, nil
		}
		if err := ctx.Err(); err != nil {
			return total, err
		}
	}
}

// Size returns the number of entries currently stored.
func (b *TokenBlacklist) Size(ctx context.Context) (int64, error) {
	return b.repo.Count(ctx)
}
