package models

import "time"

// RevokedToken is a blacklist entry. It is never updated and is removed only
// after ExpiresAt has passed.
type RevokedToken struct {
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}
