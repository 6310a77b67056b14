package accounts

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gowallet/internal/common"
	"github.com/dmitrijs2005/gowallet/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

var accountCols = []string{"id", "subject", "balance", "currency", "created_at", "refresh_token"}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Now()
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+accounts\s*\(subject,\s*balance,\s*currency\).*RETURNING\s+id,\s*created_at$`).
		WithArgs("ana@example.com", int64(0), "COP").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("acc-1", now))

	a, err := repo.Create(context.Background(), &models.Account{Subject: "ana@example.com", Currency: "COP"})
	require.NoError(t, err)
	assert.Equal(t, "acc-1", a.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+accounts`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.Account{Subject: "ana@example.com", Currency: "COP"})
	require.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestExists(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+accounts\s+WHERE\s+subject\s*=\s*\$1\)`).
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.Exists(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGetBySubject(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)SELECT\s+id,\s*subject,\s*balance,\s*currency,\s*created_at,\s*COALESCE\(refresh_token,\s*''\)\s+FROM\s+accounts\s+WHERE\s+subject\s*=\s*\$1$`).
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows(accountCols).AddRow("acc-1", "ana@example.com", int64(10000), "COP", time.Now(), "rt"))

	a, err := repo.GetBySubject(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), a.Balance)
	assert.Equal(t, "rt", a.RefreshToken)
}

func TestGetBySubject_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+accounts\s+WHERE\s+subject`).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetBySubject(context.Background(), "ghost")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetForUpdate_LocksRow(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+accounts\s+WHERE\s+id\s*=\s*\$1\s+FOR\s+UPDATE$`).
		WithArgs("acc-1").
		WillReturnRows(sqlmock.NewRows(accountCols).AddRow("acc-1", "ana@example.com", int64(6000), "COP", time.Now(), ""))

	a, err := repo.GetForUpdate(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(6000), a.Balance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetBalance(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE\s+accounts\s+SET\s+balance\s*=\s*\$1\s+WHERE\s+id\s*=\s*\$2`).
		WithArgs(int64(1000), "acc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE\s+accounts\s+SET\s+balance`).
		WithArgs(int64(1000), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE\s+accounts\s+SET\s+balance`).
		WillReturnError(errors.New("db down"))

	require.NoError(t, repo.SetBalance(context.Background(), "acc-1", 1000))
	require.ErrorIs(t, repo.SetBalance(context.Background(), "missing", 1000), common.ErrNotFound)
	require.ErrorContains(t, repo.SetBalance(context.Background(), "acc-1", 1), "db down")
}

func TestSetRefreshToken(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE\s+accounts\s+SET\s+refresh_token\s*=\s*NULLIF\(\$1,\s*''\)\s+WHERE\s+subject\s*=\s*\$2`).
		WithArgs("", "ana@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetRefreshToken(context.Background(), "ana@example.com", ""))
	require.NoError(t, mock.ExpectationsWereMet())
}
