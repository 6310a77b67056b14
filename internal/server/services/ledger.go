package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dmitrijs2005/gowallet/internal/common"
	"github.com/dmitrijs2005/gowallet/internal/dbx"
	"github.com/dmitrijs2005/gowallet/internal/lockx"
	"github.com/dmitrijs2005/gowallet/internal/logging"
	"github.com/dmitrijs2005/gowallet/internal/server/config"
	"github.com/dmitrijs2005/gowallet/internal/server/metrics"
	"github.com/dmitrijs2005/gowallet/internal/server/models"
	"github.com/dmitrijs2005/gowallet/internal/server/repositories/repomanager"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// Notifier is told about completed transfers. Errors are logged and dropped.
type Notifier interface {
	NotifyTransferSent(ctx context.Context, subject, counterpart string, amount int64) error
	NotifyTransferReceived(ctx context.Context, subject, counterpart string, amount int64) error
}

// TransferRequest moves Amount minor units from one subject to another.
// A non-empty IdempotencyKey makes retries safe: a key the source account
// already used returns the original entry and moves nothing. Keys belong to
// the paying account, so different payers never share one.
type TransferRequest struct {
	FromSubject    string
	ToSubject      string
	Amount         int64
	IdempotencyKey string
}

// LedgerService owns every balance change.
//
// Writers on an account are serialized twice: in process by a keyed lock
// taken in account-id order, and in the database by SELECT ... FOR UPDATE
// in the same order. Both orders are the same total order, so transfers in
// opposite directions cannot deadlock and disjoint transfers never wait on
// each other.
type LedgerService struct {
	conn        dbx.Conn
	repomanager repomanager.RepositoryManager
	locks       *lockx.KeyedMutex
	lockTimeout time.Duration
	currency    string
	notifier    Notifier
	metrics     metrics.Recorder
	log         logging.Logger
}

func NewLedgerService(m repomanager.RepositoryManager, notifier Notifier, cfg *config.Config, rec metrics.Recorder, log logging.Logger) *LedgerService {
	return &LedgerService{
		conn:        m.Conn(),
		repomanager: m,
		locks:       lockx.NewKeyedMutex(),
		lockTimeout: cfg.LockWaitTimeout,
		currency:    strings.ToUpper(cfg.DefaultCurrency),
		notifier:    notifier,
		metrics:     rec,
		log:         log.With("module", "ledger"),
	}
}

// CreateAccount opens a zero-balance account for subject.
func (s *LedgerService) CreateAccount(ctx context.Context, subject string) (*models.Account, error) {
	repo := s.repomanager.Accounts(s.conn)

	exists, err := repo.Exists(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}
	if exists {
		return nil, common.ErrAccountAlreadyExists
	}

	account, err := repo.Create(ctx, &models.Account{Subject: subject, Currency: s.currency})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrAccountAlreadyExists
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	s.log.Info(ctx, "account created", "subject", subject, "account", account.ID)
	return account, nil
}

// GetAccount returns the account of subject.
func (s *LedgerService) GetAccount(ctx context.Context, subject string) (*models.Account, error) {
	account, err := s.repomanager.Accounts(s.conn).GetBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}
	return account, nil
}

// Transfer moves money between two accounts as one atomic unit and records
// a SUCCESS entry with it. Notifications go out after commit.
func (s *LedgerService) Transfer(ctx context.Context, req TransferRequest) (*models.LedgerEntry, error) {
	entry, replay, err := s.transfer(ctx, req)
	s.metrics.RecordTransfer(transferResult(err, replay))
	if err != nil {
		return nil, err
	}
	if replay {
		return entry, nil
	}

	s.log.Info(ctx, "transfer committed",
		"entry", entry.ID, "from", req.FromSubject, "to", req.ToSubject, "amount", req.Amount)

	if err := s.notifier.NotifyTransferSent(ctx, req.FromSubject, req.ToSubject, req.Amount); err != nil {
		s.metrics.RecordNotificationFailure("sent")
		s.log.Warn(ctx, "notification dropped", "kind", "sent", "subject", req.FromSubject, "error", err.Error())
	}
	if err := s.notifier.NotifyTransferReceived(ctx, req.ToSubject, req.FromSubject, req.Amount); err != nil {
		s.metrics.RecordNotificationFailure("received")
		s.log.Warn(ctx, "notification dropped", "kind", "received", "subject", req.ToSubject, "error", err.Error())
	}

	return entry, nil
}

func (s *LedgerService) transfer(ctx context.Context, req TransferRequest) (*models.LedgerEntry, bool, error) {
	if req.Amount <= 0 {
		return nil, false, common.ErrInvalidAmount
	}

	from, err := s.GetAccount(ctx, req.FromSubject)
	if err != nil {
		return nil, false, fmt.Errorf("source: %w", err)
	}
	to, err := s.GetAccount(ctx, req.ToSubject)
	if err != nil {
		return nil, false, fmt.Errorf("destination: %w", err)
	}
	if from.ID == to.ID {
		return nil, false, common.ErrSameAccount
	}

	keys := []string{from.ID, to.ID}
	if req.IdempotencyKey != "" {
		keys = append(keys, idempotencyLockKey(from.ID, req.IdempotencyKey))
	}
	unlock, err := s.lock(ctx, keys...)
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	var entry *models.LedgerEntry
	var replay bool

	err = s.conn.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		entries := s.repomanager.LedgerEntries(tx)

		if req.IdempotencyKey != "" {
			prev, err := entries.GetByIdempotencyKey(ctx, from.ID, req.IdempotencyKey)
			switch {
			case err == nil:
				if !sameMovement(prev, models.EntryTransfer, from.ID, to.ID, req.Amount) {
					return common.ErrIdempotencyConflict
				}
				entry, replay = prev, true
				return nil
			case !errors.Is(err, common.ErrNotFound):
				return err
			}
		}

		accounts := s.repomanager.Accounts(tx)
		locked, err := lockRows(ctx, accounts, from.ID, to.ID)
		if err != nil {
			return err
		}
		src, dst := locked[from.ID], locked[to.ID]

		if src.Balance < req.Amount {
			return common.ErrInsufficientFunds
		}
		if dst.Balance > math.MaxInt64-req.Amount {
			return common.ErrBalanceOverflow
		}

		if err := accounts.SetBalance(ctx, src.ID, src.Balance-req.Amount); err != nil {
			return err
		}
		if err := accounts.SetBalance(ctx, dst.ID, dst.Balance+req.Amount); err != nil {
			return err
		}

		entry, err = entries.Create(ctx, &models.LedgerEntry{
			FromAccount:    src.ID,
			ToAccount:      dst.ID,
			Amount:         req.Amount,
			Type:           models.EntryTransfer,
			Status:         models.StatusSuccess,
			IdempotencyKey: req.IdempotencyKey,
		})
		return err
	})
	if err != nil {
		return nil, false, mapLedgerError(err)
	}

	return entry, replay, nil
}

// Deposit credits subject's account and records a DEPOSIT entry.
func (s *LedgerService) Deposit(ctx context.Context, subject string, amount int64, idempotencyKey string) (*models.LedgerEntry, error) {
	if amount <= 0 {
		return nil, common.ErrInvalidAmount
	}

	account, err := s.GetAccount(ctx, subject)
	if err != nil {
		return nil, err
	}

	keys := []string{account.ID}
	if idempotencyKey != "" {
		keys = append(keys, idempotencyLockKey(account.ID, idempotencyKey))
	}
	unlock, err := s.lock(ctx, keys...)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var entry *models.LedgerEntry
	err = s.conn.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		entries := s.repomanager.LedgerEntries(tx)

		if idempotencyKey != "" {
			prev, err := entries.GetByIdempotencyKey(ctx, account.ID, idempotencyKey)
			switch {
			case err == nil:
				if !sameMovement(prev, models.EntryDeposit, "", account.ID, amount) {
					return common.ErrIdempotencyConflict
				}
				entry = prev
				return nil
			case !errors.Is(err, common.ErrNotFound):
				return err
			}
		}

		accounts := s.repomanager.Accounts(tx)
		acc, err := accounts.GetForUpdate(ctx, account.ID)
		if err != nil {
			return err
		}
		if acc.Balance > math.MaxInt64-amount {
			return common.ErrBalanceOverflow
		}
		if err := accounts.SetBalance(ctx, acc.ID, acc.Balance+amount); err != nil {
			return err
		}

		entry, err = entries.Create(ctx, &models.LedgerEntry{
			ToAccount:      acc.ID,
			Amount:         amount,
			Type:           models.EntryDeposit,
			Status:         models.StatusSuccess,
			IdempotencyKey: idempotencyKey,
		})
		return err
	})
	if err != nil {
		return nil, mapLedgerError(err)
	}

	s.log.Info(ctx, "deposit committed", "entry", entry.ID, "subject", subject, "amount", amount)
	return entry, nil
}

// History lists entries touching subject's account, newest first.
func (s *LedgerService) History(ctx context.Context, subject string, limit, offset int) ([]*models.LedgerEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)
	offset = max(offset, 0)

	account, err := s.GetAccount(ctx, subject)
	if err != nil {
		return nil, err
	}

	list, err := s.repomanager.LedgerEntries(s.conn).ListByAccount(ctx, account.ID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}
	return list, nil
}

func (s *LedgerService) lock(ctx context.Context, keys ...string) (func(), error) {
	lockCtx := ctx
	if s.lockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, s.lockTimeout)
		defer cancel()
	}

	unlock, err := s.locks.LockOrdered(lockCtx, keys...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrLockTimeout, err)
	}
	return unlock, nil
}

func idempotencyLockKey(accountID, key string) string {
	return "idem:" + accountID + ":" + key
}

// sameMovement reports whether a stored entry records the same request.
func sameMovement(e *models.LedgerEntry, typ models.EntryType, from, to string, amount int64) bool {
	return e.Type == typ && e.FromAccount == from && e.ToAccount == to && e.Amount == amount
}

type rowLocker interface {
	GetForUpdate(ctx context.Context, id string) (*models.Account, error)
}

// lockRows reads the accounts with row locks, lowest id first.
func lockRows(ctx context.Context, repo rowLocker, ids ...string) (map[string]*models.Account, error) {
	ordered := append([]string(nil), ids...)
	if ordered[0] > ordered[len(ordered)-1] {
		ordered[0], ordered[len(ordered)-1] = ordered[len(ordered)-1], ordered[0]
	}

	out := make(map[string]*models.Account, len(ordered))
	for _, id := range ordered {
		a, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = a
	}
	return out, nil
}

func mapLedgerError(err error) error {
	switch {
	case errors.Is(err, common.ErrInsufficientFunds),
		errors.Is(err, common.ErrInvalidAmount),
		errors.Is(err, common.ErrSameAccount),
		errors.Is(err, common.ErrBalanceOverflow),
		errors.Is(err, common.ErrIdempotencyConflict):
		return err
	case errors.Is(err, common.ErrNotFound):
		return common.ErrAccountNotFound
	case errors.Is(err, common.ErrAlreadyExists):
		// lost a race on the idempotency key with another server instance
		return fmt.Errorf("%w: idempotency key in use", common.ErrAlreadyExists)
	default:
		return fmt.Errorf("%w: %v", common.ErrInternal, err)
	}
}

func transferResult(err error, replay bool) string {
	switch {
	case err == nil && replay:
		return "replay"
	case err == nil:
		return "success"
	case errors.Is(err, common.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, common.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, common.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, common.ErrSameAccount):
		return "same_account"
	case errors.Is(err, common.ErrLockTimeout):
		return "lock_timeout"
	case errors.Is(err, common.ErrBalanceOverflow):
		return "balance_overflow"
	case errors.Is(err, common.ErrIdempotencyConflict):
		return "idempotency_conflict"
	default:
		return "error"
	}
}
