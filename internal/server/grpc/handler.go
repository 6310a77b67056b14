package grpc

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/gowallet/internal/api"
	"github.com/dmitrijs2005/gowallet/internal/common"
	"github.com/dmitrijs2005/gowallet/internal/money"
	"github.com/dmitrijs2005/gowallet/internal/server/models"
	"github.com/dmitrijs2005/gowallet/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// handler implements api.WalletServiceServer.
type handler struct {
	*GRPCServer
}

func (h *handler) requirePrincipal(ctx context.Context) (*models.Principal, error) {
	p, ok := principalFrom(ctx)
	if !ok {
		return nil, errUnauthenticated
	}
	return p, nil
}

func (h *handler) requireAdmin(ctx context.Context) (*models.Principal, error) {
	p, err := h.requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if !p.HasRole(common.RoleAdmin) {
		return nil, errPermissionDenied
	}
	return p, nil
}

func (h *handler) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {

	return &api.PingResponse{Status: "OK"}, nil

}

func (h *handler) Register(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {

	user, err := h.users.Register(ctx, req.Email, req.FullName, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}

	h.logger.Info(ctx, "Registered", "email", user.Email)
	return &api.RegisterResponse{Email: user.Email, Roles: user.Roles}, nil

}

func (h *handler) Login(ctx context.Context, req *api.LoginRequest) (*api.TokenResponse, error) {

	if !h.limiter.Allow(req.Email) {
		h.logger.Warn(ctx, "login rate limit exceeded", "email", req.Email)
		return nil, status.Error(codes.ResourceExhausted, "too many login attempts")
	}

	tokens, err := h.sessions.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}

	return tokenResponse(tokens), nil

}

func (h *handler) Refresh(ctx context.Context, req *api.RefreshRequest) (*api.TokenResponse, error) {

	tokens, err := h.sessions.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, toStatus(err)
	}

	return tokenResponse(tokens), nil

}

// Logout revokes the caller's bearer token. It does not require the token
// to be admitted: an expired or already revoked token still logs out.
func (h *handler) Logout(ctx context.Context, req *api.LogoutRequest) (*api.LogoutResponse, error) {

	if err := h.sessions.Logout(ctx, bearerToken(ctx)); err != nil {
		return nil, toStatus(err)
	}

	return &api.LogoutResponse{Message: "logged out, token revoked"}, nil

}

func (h *handler) CreateAccount(ctx context.Context, req *api.CreateAccountRequest) (*api.Account, error) {
	p, err := h.requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}

	account, err := h.ledger.CreateAccount(ctx, p.Subject)
	if err != nil {
		return nil, toStatus(err)
	}
	return toAPIAccount(account), nil
}

func (h *handler) GetBalance(ctx context.Context, req *api.GetBalanceRequest) (*api.Account, error) {
	p, err := h.requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}

	account, err := h.ledger.GetAccount(ctx, p.Subject)
	if err != nil {
		return nil, toStatus(err)
	}
	return toAPIAccount(account), nil
}

func (h *handler) Transfer(ctx context.Context, req *api.TransferRequest) (*api.Entry, error) {
	p, err := h.requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		return nil, toStatus(err)
	}

	entry, err := h.ledger.Transfer(ctx, services.TransferRequest{
		FromSubject:    p.Subject,
		ToSubject:      strings.ToLower(strings.TrimSpace(req.ToEmail)),
		Amount:         amount,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		h.logger.Info(ctx, "transfer rejected", "from", p.Subject, "reason", err.Error())
		return nil, toStatus(err)
	}
	return toAPIEntry(entry), nil
}

func (h *handler) Deposit(ctx context.Context, req *api.DepositRequest) (*api.Entry, error) {
	p, err := h.requireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		return nil, toStatus(err)
	}

	entry, err := h.ledger.Deposit(ctx, strings.ToLower(strings.TrimSpace(req.Email)), amount, req.IdempotencyKey)
	if err != nil {
		return nil, toStatus(err)
	}

	h.logger.Info(ctx, "Deposit", "admin", p.Subject, "email", req.Email, "amount", req.Amount)
	return toAPIEntry(entry), nil
}

func (h *handler) History(ctx context.Context, req *api.HistoryRequest) (*api.HistoryResponse, error) {
	p, err := h.requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := h.ledger.History(ctx, p.Subject, req.Limit, req.Offset)
	if err != nil {
		return nil, toStatus(err)
	}

	resp := &api.HistoryResponse{Entries: make([]*api.Entry, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, toAPIEntry(e))
	}
	return resp, nil
}

func (h *handler) IsBlacklisted(ctx context.Context, req *api.IsBlacklistedRequest) (*api.IsBlacklistedResponse, error) {
	if _, err := h.requirePrincipal(ctx); err != nil {
		return nil, err
	}
	if req.Token == "" {
		return nil, toStatus(common.ErrMissingToken)
	}

	revoked, err := h.blacklist.IsBlacklisted(ctx, req.Token)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.IsBlacklistedResponse{Blacklisted: revoked}, nil
}

func (h *handler) BlacklistStats(ctx context.Context, req *api.BlacklistStatsRequest) (*api.BlacklistStatsResponse, error) {
	if _, err := h.requireAdmin(ctx); err != nil {
		return nil, err
	}

	n, err := h.blacklist.Size(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.BlacklistStatsResponse{Size: n}, nil
}

func (h *handler) RevokeToken(ctx context.Context, req *api.RevokeTokenRequest) (*api.RevokeTokenResponse, error) {
	p, err := h.requireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	expiresAt, err := h.blacklist.BlacklistToken(ctx, req.Token)
	if err != nil {
		return nil, toStatus(err)
	}

	h.logger.Info(ctx, "Token revoked", "admin", p.Subject)
	return &api.RevokeTokenResponse{ExpiresAt: expiresAt}, nil
}

func tokenResponse(t *services.TokenPair) *api.TokenResponse {
	return &api.TokenResponse{AccessToken: t.AccessToken, RefreshToken: t.RefreshToken, TokenType: strings.TrimSpace(common.BearerPrefix)}
}

func toAPIAccount(a *models.Account) *api.Account {
	return &api.Account{
		ID:        a.ID,
		Owner:     a.Subject,
		Balance:   money.Format(a.Balance),
		Currency:  a.Currency,
		CreatedAt: a.CreatedAt,
	}
}

func toAPIEntry(e *models.LedgerEntry) *api.Entry {
	return &api.Entry{
		ID:             e.ID,
		FromAccount:    e.FromAccount,
		ToAccount:      e.ToAccount,
		Amount:         money.Format(e.Amount),
		Type:           string(e.Type),
		Status:         string(e.Status),
		IdempotencyKey: e.IdempotencyKey,
		CreatedAt:      e.CreatedAt,
	}
}
