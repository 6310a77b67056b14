package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gowallet/internal/common"
	"github.com/dmitrijs2005/gowallet/internal/dbx"
	"github.com/dmitrijs2005/gowallet/internal/server/models"
	"github.com/dmitrijs2005/gowallet/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier checks email/password pairs against stored users.
type CredentialVerifier struct {
	conn        dbx.Conn
	repomanager repomanager.RepositoryManager
}

func NewCredentialVerifier(m repomanager.RepositoryManager) *CredentialVerifier {
	return &CredentialVerifier{conn: m.Conn(), repomanager: m}
}

// dummyHash keeps unknown-user lookups as slow as wrong-password ones.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	return h
})

// Verify returns the principal for a matching pair. Unknown email and wrong
// password both yield common.ErrInvalidCredentials.
func (v *CredentialVerifier) Verify(ctx context.Context, email, password string) (*models.Principal, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := v.repomanager.Users(v.conn).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}

	return &models.Principal{Subject: user.Email, Roles: user.Roles}, nil
}

// LoadPrincipal returns the principal for subject without a password check.
// A subject with no user yields common.ErrNotFound.
func (v *CredentialVerifier) LoadPrincipal(ctx context.Context, subject string) (*models.Principal, error) {
	user, err := v.repomanager.Users(v.conn).GetByEmail(ctx, subject)
	if err != nil {
		return nil, err
	}
	return &models.Principal{Subject: user.Email, Roles: user.Roles}, nil
}
