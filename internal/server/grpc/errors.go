package grpc

import (
	"errors"

	"github.com/dmitrijs2005/gowallet/internal/common"
	"github.com/dmitrijs2005/gowallet/internal/money"
	"github.com/dmitrijs2005/gowallet/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	errUnauthenticated  = status.Error(codes.Unauthenticated, "authentication required")
	errPermissionDenied = status.Error(codes.PermissionDenied, "permission denied")
)

// toStatus maps service errors to gRPC statuses. Authentication and lookup
// failures get generic messages; business-rule failures say what went wrong.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, "invalid credentials")
	case errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrStaleRefreshToken),
		errors.Is(err, common.ErrUnknownAccount):
		return status.Error(codes.Unauthenticated, "invalid token")
	case errors.Is(err, common.ErrMissingToken):
		return status.Error(codes.InvalidArgument, "token required")
	case errors.Is(err, common.ErrAccountNotFound):
		return status.Error(codes.NotFound, "account not found")
	case errors.Is(err, common.ErrIdempotencyConflict):
		return status.Error(codes.AlreadyExists, common.ErrIdempotencyConflict.Error())
	case errors.Is(err, common.ErrAccountAlreadyExists):
		return status.Error(codes.AlreadyExists, "account already exists")
	case errors.Is(err, common.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, common.ErrInvalidAmount):
		return status.Error(codes.InvalidArgument, common.ErrInvalidAmount.Error())
	case errors.Is(err, common.ErrSameAccount):
		return status.Error(codes.InvalidArgument, common.ErrSameAccount.Error())
	case errors.Is(err, common.ErrBalanceOverflow):
		return status.Error(codes.InvalidArgument, common.ErrBalanceOverflow.Error())
	case errors.Is(err, money.ErrInvalidFormat),
		errors.Is(err, services.ErrInvalidRegistration):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrInsufficientFunds):
		return status.Error(codes.FailedPrecondition, common.ErrInsufficientFunds.Error())
	case errors.Is(err, common.ErrLockTimeout):
		return status.Error(codes.Aborted, "account busy, try again")
	case errors.Is(err, common.ErrStoreUnavailable):
		return status.Error(codes.Unavailable, "service unavailable")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
