package dbx

import (
	"context"
	"database/sql"
	"errors"
	"sync"
)

// ErrNoSQL is returned by MemConn when something tries to run SQL against
// a storage backend that has none.
var ErrNoSQL = errors.New("dbx: no sql backend")

// Conn is a database handle that repositories can use directly or inside a
// transaction.
type Conn interface {
	DBTX
	WithTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
	Ping(ctx context.Context) error
}

// SQLConn adapts *sql.DB to Conn.
type SQLConn struct {
	*sql.DB
	opts *sql.TxOptions
}

func NewSQLConn(db *sql.DB, opts *sql.TxOptions) *SQLConn {
	return &SQLConn{DB: db, opts: opts}
}

func (c *SQLConn) WithTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	return WithTx(ctx, c.DB, c.opts, fn)
}

func (c *SQLConn) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// MemConn is the Conn used by in-memory storage. It has no SQL behind it;
// WithTx holds an exclusive lock for the whole of fn so the writes of one
// transaction become visible together. In-memory repositories guard their
// own reads and writes with ReadLock and WriteLock.
type MemConn struct {
	mu sync.RWMutex
}

type memTx struct{ noSQL }

func NewMemConn() *MemConn {
	return &MemConn{}
}

func (c *MemConn) ExecContext(ctx context.Context, q string, args ...any) (sql.Result, error) {
	return noSQL{}.ExecContext(ctx, q, args...)
}

func (c *MemConn) QueryContext(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	return noSQL{}.QueryContext(ctx, q, args...)
}

func (c *MemConn) QueryRowContext(ctx context.Context, q string, args ...any) *sql.Row {
	return noSQL{}.QueryRowContext(ctx, q, args...)
}

func (c *MemConn) WithTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(ctx, memTx{})
}

func (c *MemConn) Ping(context.Context) error { return nil }

// ReadLock takes a shared lock when db is a MemConn and returns its release.
// Inside a MemConn transaction, or for any other DBTX, it does nothing.
func ReadLock(db DBTX) func() {
	if c, ok := db.(*MemConn); ok {
		c.mu.RLock()
		return c.mu.RUnlock
	}
	return func() {}
}

// WriteLock is the exclusive counterpart of ReadLock.
func WriteLock(db DBTX) func() {
	if c, ok := db.(*MemConn); ok {
		c.mu.Lock()
		return c.mu.Unlock
	}
	return func() {}
}

type noSQL struct{}

func (noSQL) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, ErrNoSQL
}

func (noSQL) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, ErrNoSQL
}

// QueryRowContext cannot carry an error in *sql.Row, so reaching it is a bug.
func (noSQL) QueryRowContext(context.Context, string, ...any) *sql.Row {
	panic(ErrNoSQL)
}
