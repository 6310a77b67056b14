package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gowallet/internal/common"
	"github.com/dmitrijs2005/gowallet/internal/dbx"
	"github.com/dmitrijs2005/gowallet/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `id, subject, balance, currency, created_at, COALESCE(refresh_token, '')`

func scan(row *sql.Row) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(&a.ID, &a.Subject, &a.Balance, &a.Currency, &a.CreatedAt, &a.RefreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO accounts (subject, balance, currency)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, account.Subject, account.Balance, account.Currency).
		Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return account, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, subject string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE subject = $1)`, subject).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

func (r *PostgresRepository) GetBySubject(ctx context.Context, subject string) (*models.Account, error) {
	return scan(r.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM accounts WHERE subject = $1`, subject))
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id string) (*models.Account, error) {
	return scan(r.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id))
}

func (r *PostgresRepository) SetBalance(ctx context.Context, id string, balance int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET balance = $1 WHERE id = $2`, balance, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) SetRefreshToken(ctx context.Context, subject, token string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET refresh_token = NULLIF($1, '') WHERE subject = $2`, token, subject)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
