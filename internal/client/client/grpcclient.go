package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gowallet/internal/api"
	"github.com/dmitrijs2005/gowallet/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// methods the interceptor leaves alone; Logout attaches its own token
var publicMethods = map[string]bool{
	api.FullMethod("Ping"):     true,
	api.FullMethod("Register"): true,
	api.FullMethod("Login"):    true,
	api.FullMethod("Refresh"):  true,
	api.FullMethod("Logout"):   true,
}

var _ Client = (*GRPCClient)(nil)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      *api.WalletServiceClient

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	md.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) setTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken, s.refreshToken = access, refresh
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	access, refresh := s.tokens()
	if access == "" || publicMethods[method] {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if status.Code(err) != codes.Unauthenticated || refresh == "" {
		return err
	}

	resp, rerr := s.client.Refresh(ctx, &api.RefreshRequest{RefreshToken: refresh})
	if rerr != nil {
		return err
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)

	// tokens refreshed, retry with the new access token
	return invoker(withAccessToken(ctx, resp.AccessToken), method, req, reply, cc, opts...)
}

func NewWalletClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewWalletServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) LoggedIn() bool {
	access, _ := s.tokens()
	return access != ""
}

func (s *GRPCClient) Ping(ctx context.Context) error {

	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return fmt.Errorf("unexpected ping status %q", resp.Status)
	}
	return nil
}

func (s *GRPCClient) Register(ctx context.Context, email, fullName, password string) error {

	req := &api.RegisterRequest{Email: email, FullName: fullName, Password: password}
	if _, err := s.client.Register(ctx, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) Login(ctx context.Context, email, password string) error {

	resp, err := s.client.Login(ctx, &api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return s.mapError(err)
	}

	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return nil
}

// Logout revokes the access token on the server and forgets both tokens
// locally, even if the server call fails.
func (s *GRPCClient) Logout(ctx context.Context) error {
	access, _ := s.tokens()
	if access == "" {
		return ErrNotLoggedIn
	}
	defer s.setTokens("", "")

	if _, err := s.client.Logout(withAccessToken(ctx, access), &api.LogoutRequest{}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) CreateAccount(ctx context.Context) (*api.Account, error) {
	resp, err := s.client.CreateAccount(ctx, &api.CreateAccountRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) Balance(ctx context.Context) (*api.Account, error) {
	resp, err := s.client.GetBalance(ctx, &api.GetBalanceRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) Transfer(ctx context.Context, to, amount, idempotencyKey string) (*api.Entry, error) {
	req := &api.TransferRequest{ToEmail: to, Amount: amount, IdempotencyKey: idempotencyKey}
	resp, err := s.client.Transfer(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) Deposit(ctx context.Context, email, amount, idempotencyKey string) (*api.Entry, error) {
	req := &api.DepositRequest{Email: email, Amount: amount, IdempotencyKey: idempotencyKey}
	resp, err := s.client.Deposit(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) History(ctx context.Context, limit, offset int) ([]*api.Entry, error) {
	resp, err := s.client.History(ctx, &api.HistoryRequest{Limit: limit, Offset: offset})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Entries, nil
}

func (s *GRPCClient) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	resp, err := s.client.IsBlacklisted(ctx, &api.IsBlacklistedRequest{Token: token})
	if err != nil {
		return false, s.mapError(err)
	}
	return resp.Blacklisted, nil
}

func (s *GRPCClient) BlacklistStats(ctx context.Context) (int64, error) {
	resp, err := s.client.BlacklistStats(ctx, &api.BlacklistStatsRequest{})
	if err != nil {
		return 0, s.mapError(err)
	}
	return resp.Size, nil
}

func (s *GRPCClient) RevokeToken(ctx context.Context, token string) error {
	if _, err := s.client.RevokeToken(ctx, &api.RevokeTokenRequest{Token: token}); err != nil {
		return s.mapError(err)
	}
	return nil
}

// mapError turns transport failures into client sentinels. Business errors
// keep the server's message.
func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrUnavailable
		}
		return err
	}
	switch st.Code() {
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.PermissionDenied:
		return ErrForbidden
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return errors.New(st.Message())
	}
}
