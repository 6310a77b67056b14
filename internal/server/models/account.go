package models

import "time"

// Account holds the balance of one subject in minor units. RefreshToken is
// the only refresh token currently honoured for the subject; empty means none.
type Account struct {
	ID           string
	Subject      string
	Balance      int64
	Currency     string
	CreatedAt    time.Time
	RefreshToken string
}
