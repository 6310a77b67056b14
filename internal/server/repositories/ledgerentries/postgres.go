package ledgerentries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gowallet/internal/common"
	"github.com/dmitrijs2005/gowallet/internal/dbx"
	"github.com/dmitrijs2005/gowallet/internal/server/models"
)

// PostgresRepository implements entry storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.LedgerEntry) (*models.LedgerEntry, error) {
	query := `
		INSERT INTO ledger_entries (from_account, to_account, amount, type, status, idempotency_key)
		VALUES (NULLIF($1, '')::uuid, NULLIF($2, '')::uuid, $3, $4, $5, NULLIF($6, ''))
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		e.FromAccount, e.ToAccount, e.Amount, string(e.Type), string(e.Status), e.IdempotencyKey).
		Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

const selectColumns = `id, COALESCE(from_account::text, ''), COALESCE(to_account::text, ''),
	amount, type, status, COALESCE(idempotency_key, ''), created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*models.LedgerEntry, error) {
	var e models.LedgerEntry
	var typ, status string
	if err := s.Scan(&e.ID, &e.FromAccount, &e.ToAccount, &e.Amount, &typ, &status, &e.IdempotencyKey, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Type = models.EntryType(typ)
	e.Status = models.EntryStatus(status)
	return &e, nil
}

func (r *PostgresRepository) GetByIdempotencyKey(ctx context.Context, accountID, key string) (*models.LedgerEntry, error) {
	query := `SELECT ` + selectColumns + ` FROM ledger_entries
		WHERE COALESCE(from_account, to_account) = $1::uuid AND idempotency_key = $2`

	e, err := scanEntry(r.db.QueryRowContext(ctx, query, accountID, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*models.LedgerEntry, error) {
	query := `SELECT ` + selectColumns + ` FROM ledger_entries
		WHERE from_account = $1 OR to_account = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []*models.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
