// Package grpc exposes the wallet services over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gowallet/internal/api"
	"github.com/dmitrijs2005/gowallet/internal/logging"
	"github.com/dmitrijs2005/gowallet/internal/server/services"
	"google.golang.org/grpc"
)

// Services bundles what the handlers call into.
type Services struct {
	Users         *services.UserService
	Sessions      *services.SessionService
	Authenticator *services.Authenticator
	Blacklist     *services.TokenBlacklist
	Ledger        *services.LedgerService
}

type GRPCServer struct {
	address   string
	users     *services.UserService
	sessions  *services.SessionService
	authn     *services.Authenticator
	blacklist *services.TokenBlacklist
	ledger    *services.LedgerService
	limiter   *LoginLimiter
	logger    logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, svc Services, limiter *LoginLimiter) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     svc.Users,
		sessions:  svc.Sessions,
		authn:     svc.Authenticator,
		blacklist: svc.Blacklist,
		ledger:    svc.Ledger,
		limiter:   limiter,
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.authInterceptor))

	api.RegisterWalletServiceServer(srv, &handler{s})

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
