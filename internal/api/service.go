package api

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "wallet.WalletService"

// WalletServiceServer is implemented by the server.
type WalletServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*TokenResponse, error)
	Refresh(context.Context, *RefreshRequest) (*TokenResponse, error)
	Logout(context.Context, *LogoutRequest) (*LogoutResponse, error)
	CreateAccount(context.Context, *CreateAccountRequest) (*Account, error)
	GetBalance(context.Context, *GetBalanceRequest) (*Account, error)
	Transfer(context.Context, *TransferRequest) (*Entry, error)
	Deposit(context.Context, *DepositRequest) (*Entry, error)
	History(context.Context, *HistoryRequest) (*HistoryResponse, error)
	IsBlacklisted(context.Context, *IsBlacklistedRequest) (*IsBlacklistedResponse, error)
	BlacklistStats(context.Context, *BlacklistStatsRequest) (*BlacklistStatsResponse, error)
	RevokeToken(context.Context, *RevokeTokenRequest) (*RevokeTokenResponse, error)
}

// FullMethod returns the gRPC method path of a WalletService method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

var WalletService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*WalletServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Ping", WalletServiceServer.Ping),
		unary("Register", WalletServiceServer.Register),
		unary("Login", WalletServiceServer.Login),
		unary("Refresh", WalletServiceServer.Refresh),
		unary("Logout", WalletServiceServer.Logout),
		unary("CreateAccount", WalletServiceServer.CreateAccount),
		unary("GetBalance", WalletServiceServer.GetBalance),
		unary("Transfer", WalletServiceServer.Transfer),
		unary("Deposit", WalletServiceServer.Deposit),
		unary("History", WalletServiceServer.History),
		unary("IsBlacklisted", WalletServiceServer.IsBlacklisted),
		unary("BlacklistStats", WalletServiceServer.BlacklistStats),
		unary("RevokeToken", WalletServiceServer.RevokeToken),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "wallet",
}

func RegisterWalletServiceServer(s grpc.ServiceRegistrar, srv WalletServiceServer) {
	s.RegisterService(&WalletService_ServiceDesc, srv)
}

func unary[Req, Resp any](name string, call func(WalletServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(WalletServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(WalletServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
