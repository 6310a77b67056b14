package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gowallet/internal/dbx"
	"github.com/dmitrijs2005/gowallet/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/gowallet/internal/server/repositories/ledgerentries"
	"github.com/dmitrijs2005/gowallet/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/gowallet/internal/server/repositories/users"
)

// InMemoryRepositoryManager keeps everything in process memory. It backs
// the "memory" storage kind and most service tests.
type InMemoryRepositoryManager struct {
	conn          *dbx.MemConn
	users         *users.MemoryStore
	accounts      *accounts.MemoryStore
	entries       *ledgerentries.MemoryStore
	revokedTokens *revokedtokens.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		conn:          dbx.NewMemConn(),
		users:         users.NewMemoryStore(),
		accounts:      accounts.NewMemoryStore(),
		entries:       ledgerentries.NewMemoryStore(),
		revokedTokens: revokedtokens.NewMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) Conn() dbx.Conn {
	return m.conn
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error {
	return nil
}

func (m *InMemoryRepositoryManager) Close() error {
	return nil
}

func (m *InMemoryRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewMemoryRepository(db, m.users)
}

func (m *InMemoryRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewMemoryRepository(db, m.accounts)
}

// RevokedTokens ignores db: the blacklist is lock-free and never joins
// transactions.
func (m *InMemoryRepositoryManager) RevokedTokens(dbx.DBTX) revokedtokens.Repository {
	return m.revokedTokens
}

func (m *InMemoryRepositoryManager) LedgerEntries(db dbx.DBTX) ledgerentries.Repository {
	return ledgerentries.NewMemoryRepository(db, m.entries)
}
