// Package auth issues and parses the signed bearer tokens used for both
// access and refresh. The codec knows nothing about token flavours: callers
// pick the TTL.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gowallet/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMalformed        = fmt.Errorf("%w: malformed", common.ErrInvalidToken)
	ErrInvalidSignature = fmt.Errorf("%w: bad signature", common.ErrInvalidToken)
)

// Claims is what a parsed token carries.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token is past its expiry at now.
func (c *Claims) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Codec signs tokens with HS256 under a key fixed at construction.
type Codec struct {
	key []byte
	now func() time.Time
}

func NewCodec(secret []byte) *Codec {
	return &Codec{key: append([]byte(nil), secret...), now: time.Now}
}

// Issue returns a token for subject that expires ttl from now. Every token
// gets a random ID, so two tokens issued in the same second still differ.
func (c *Codec) Issue(subject string, ttl time.Duration) (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	})

	s, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// Parse checks structure and signature and returns the claims. It does not
// reject expired tokens; use Claims.Expired.
func (c *Codec) Parse(tokenString string) (*Claims, error) {
	rc := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(tokenString, rc, func(t *jwt.Token) (any, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrInvalidSignature
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if rc.Subject == "" || rc.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing sub or exp", ErrMalformed)
	}

	claims := &Claims{Subject: rc.Subject, ExpiresAt: rc.ExpiresAt.Time}
	if rc.IssuedAt != nil {
		claims.IssuedAt = rc.IssuedAt.Time
	}
	return claims, nil
}
