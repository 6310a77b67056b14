// Package client talks to the wallet server over gRPC and keeps the
// session's tokens. An access token rejected as unauthenticated is renewed
// once with the refresh token and the call is retried.
package client

import (
	"context"

	"github.com/dmitrijs2005/gowallet/internal/api"
)

type Client interface {
	Close() error
	Ping(ctx context.Context) error
	Register(ctx context.Context, email, fullName, password string) error
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	LoggedIn() bool
	CreateAccount(ctx context.Context) (*api.Account, error)
	Balance(ctx context.Context) (*api.Account, error)
	Transfer(ctx context.Context, to, amount, idempotencyKey string) (*api.Entry, error)
	Deposit(ctx context.Context, email, amount, idempotencyKey string) (*api.Entry, error)
	History(ctx context.Context, limit, offset int) ([]*api.Entry, error)
	IsBlacklisted(ctx context.Context, token string) (bool, error)
	BlacklistStats(ctx context.Context) (int64, error)
	RevokeToken(ctx context.Context, token string) error
}
