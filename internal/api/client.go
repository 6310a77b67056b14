package api

import (
	"context"

	"google.golang.org/grpc"
)

// WalletServiceClient calls WalletService over cc. Every call uses the JSON
// codec.
type WalletServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewWalletServiceClient(cc grpc.ClientConnInterface) *WalletServiceClient {
	return &WalletServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *WalletServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, "Ping", in, opts)
}

func (c *WalletServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, "Register", in, opts)
}

func (c *WalletServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, "Login", in, opts)
}

func (c *WalletServiceClient) Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, "Refresh", in, opts)
}

func (c *WalletServiceClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error) {
	return invoke[LogoutResponse](ctx, c.cc, "Logout", in, opts)
}

func (c *WalletServiceClient) CreateAccount(ctx context.Context, in *CreateAccountRequest, opts ...grpc.CallOption) (*Account, error) {
	return invoke[Account](ctx, c.cc, "CreateAccount", in, opts)
}

func (c *WalletServiceClient) GetBalance(ctx context.Context, in *GetBalanceRequest, opts ...grpc.CallOption) (*Account, error) {
	return invoke[Account](ctx, c.cc, "GetBalance", in, opts)
}

func (c *WalletServiceClient) Transfer(ctx context.Context, in *TransferRequest, opts ...grpc.CallOption) (*Entry, error) {
	return invoke[Entry](ctx, c.cc, "Transfer", in, opts)
}

func (c *WalletServiceClient) Deposit(ctx context.Context, in *DepositRequest, opts ...grpc.CallOption) (*Entry, error) {
	return invoke[Entry](ctx, c.cc, "Deposit", in, opts)
}

func (c *WalletServiceClient) History(ctx context.Context, in *HistoryRequest, opts ...grpc.CallOption) (*HistoryResponse, error) {
	return invoke[HistoryResponse](ctx, c.cc, "History", in, opts)
}

func (c *WalletServiceClient) IsBlacklisted(ctx context.Context, in *IsBlacklistedRequest, opts ...grpc.CallOption) (*IsBlacklistedResponse, error) {
	return invoke[IsBlacklistedResponse](ctx, c.cc, "IsBlacklisted", in, opts)
}

func (c *WalletServiceClient) BlacklistStats(ctx context.Context, in *BlacklistStatsRequest, opts ...grpc.CallOption) (*BlacklistStatsResponse, error) {
	return invoke[BlacklistStatsResponse](ctx, c.cc, "BlacklistStats", in, opts)
}

func (c *WalletServiceClient) RevokeToken(ctx context.Context, in *RevokeTokenRequest, opts ...grpc.CallOption) (*RevokeTokenResponse, error) {
	return invoke[RevokeTokenResponse](ctx, c.cc, "RevokeToken", in, opts)
}
