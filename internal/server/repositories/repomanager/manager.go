// Package repomanager vends repositories bound to a database handle, so the
// same repository code runs on the plain connection or inside a transaction.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gowallet/internal/dbx"
	"github.com/dmitrijs2005/gowallet/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/gowallet/internal/server/repositories/ledgerentries"
	"github.com/dmitrijs2005/gowallet/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/gowallet/internal/server/repositories/users"
)

type RepositoryManager interface {
	// Conn is the handle to pass to the factories below, or to open a
	// transaction whose handle is passed instead.
	Conn() dbx.Conn
	RunMigrations(ctx context.Context) error
	Close() error

	Users(db dbx.DBTX) users.Repository
	Accounts(db dbx.DBTX) accounts.Repository
	RevokedTokens(db dbx.DBTX) revokedtokens.Repository
	LedgerEntries(db dbx.DBTX) ledgerentries.Repository
}

const (
	KindPostgres = "postgres"
	KindMemory   = "memory"
)

// New builds the manager for the given storage kind.
func New(ctx context.Context, kind, dsn string) (RepositoryManager, error) {
	switch kind {
	case KindPostgres:
		db, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return NewPostgresRepositoryManager(db), nil
	case KindMemory:
		return NewInMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unknown storage kind %q", kind)
	}
}
