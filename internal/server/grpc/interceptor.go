package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gowallet/internal/common"
	"github.com/dmitrijs2005/gowallet/internal/server/models"
	"github.com/dmitrijs2005/gowallet/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const principalKey ctxKey = "principal"

// authInterceptor attaches the caller's principal to the context when the
// bearer token is admitted. It never rejects a call: handlers of protected
// methods check for the principal themselves.
func (s *GRPCServer) authInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if token := bearerToken(ctx); token != "" {
		if p, ok := s.authn.Authenticate(ctx, token); ok {
			ctx = context.WithValue(ctx, principalKey, p)
		}
	}
	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	args := []any{"method", info.FullMethod, "code", code.String(), "duration_ms", time.Since(start).Milliseconds()}
	if code == codes.Internal || code == codes.Unknown {
		s.logger.Error(ctx, "request failed", args...)
	} else {
		s.logger.Debug(ctx, "request", args...)
	}
	return resp, err
}

// bearerToken reads "authorization: Bearer <token>" from incoming metadata.
// A missing or malformed header yields "".
func bearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(common.AuthorizationHeaderName)
	if len(values) == 0 {
		return ""
	}
	return services.ParseBearer(values[0])
}

func principalFrom(ctx context.Context) (*models.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*models.Principal)
	return p, ok && p != nil
}
