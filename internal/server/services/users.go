package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/gowallet/internal/common"
	"github.com/dmitrijs2005/gowallet/internal/dbx"
	"github.com/dmitrijs2005/gowallet/internal/logging"
	"github.com/dmitrijs2005/gowallet/internal/server/models"
	"github.com/dmitrijs2005/gowallet/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

var ErrInvalidRegistration = errors.New("invalid registration")

// UserService registers users.
type UserService struct {
	conn        dbx.Conn
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	cost        int
}

func NewUserService(m repomanager.RepositoryManager, log logging.Logger) *UserService {
	return &UserService{
		conn:        m.Conn(),
		repomanager: m,
		log:         log.With("module", "users"),
		cost:        bcrypt.DefaultCost,
	}
}

// Register creates a user with ROLE_USER. A taken email yields
// common.ErrAlreadyExists.
func (s *UserService) Register(ctx context.Context, email, fullName, password string) (*models.User, error) {
	return s.create(ctx, email, fullName, password, []string{common.RoleUser})
}

// EnsureAdmin creates an administrator unless the email is already taken.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	_, err := s.create(ctx, email, "Administrator", password, []string{common.RoleUser, common.RoleAdmin})
	switch {
	case err == nil:
		s.log.Info(ctx, "admin user created", "email", email)
		return nil
	case errors.Is(err, common.ErrAlreadyExists):
		return nil
	default:
		return err
	}
}

func (s *UserService) create(ctx context.Context, email, fullName, password string, roles []string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, fmt.Errorf("%w: bad email", ErrInvalidRegistration)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password shorter than %d characters", ErrInvalidRegistration, minPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repomanager.Users(s.conn).Create(ctx, &models.User{
		Email:        email,
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: hash,
		Roles:        roles,
	})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}
