package models

import "time"

type EntryType string

const (
	EntryDeposit    EntryType = "DEPOSIT"
	EntryWithdrawal EntryType = "WITHDRAWAL"
	EntryTransfer   EntryType = "TRANSFER"
)

type EntryStatus string

const (
	StatusPending EntryStatus = "PENDING"
	StatusSuccess EntryStatus = "SUCCESS"
	StatusFailed  EntryStatus = "FAILED"
)

// LedgerEntry records one balance movement. FromAccount is empty for
// deposits, ToAccount is empty for withdrawals.
type LedgerEntry struct {
	ID             string
	FromAccount    string
	ToAccount      string
	Amount         int64
	Type           EntryType
	Status         EntryStatus
	IdempotencyKey string
	CreatedAt      time.Time
}

// KeyAccount is the account an idempotency key belongs to: the paying
// account, or the credited one for deposits.
func (e *LedgerEntry) KeyAccount() string {
	if e.FromAccount != "" {
		return e.FromAccount
	}
	return e.ToAccount
}
