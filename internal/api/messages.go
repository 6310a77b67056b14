package api

import "time"

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse answers Login and Refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// LogoutRequest carries nothing: the token to revoke is the caller's bearer
// token.
type LogoutRequest struct{}

type LogoutResponse struct {
	Message string `json:"message"`
}

type CreateAccountRequest struct{}

type GetBalanceRequest struct{}

// Account amounts are decimal strings in the account currency, e.g. "150.00".
type Account struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Balance   string    `json:"balance"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

type TransferRequest struct {
	ToEmail        string `json:"to_email"`
	Amount         string `json:"amount"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

type DepositRequest struct {
	Email          string `json:"email"`
	Amount         string `json:"amount"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

type Entry struct {
	ID             string    `json:"id"`
	FromAccount    string    `json:"from_account,omitempty"`
	ToAccount      string    `json:"to_account,omitempty"`
	Amount         string    `json:"amount"`
	Type           string    `json:"type"`
	Status         string    `json:"status"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type HistoryRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type HistoryResponse struct {
	Entries []*Entry `json:"entries"`
}

type IsBlacklistedRequest struct {
	Token string `json:"token"`
}

type IsBlacklistedResponse struct {
	Blacklisted bool `json:"blacklisted"`
}

type BlacklistStatsRequest struct{}

type BlacklistStatsResponse struct {
	Size int64 `json:"size"`
}

type RevokeTokenRequest struct {
	Token string `json:"token"`
}

type RevokeTokenResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}
