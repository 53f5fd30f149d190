// Package token issues and checks the signed, time-limited links sent to
// verify an email address.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const audience = "verify-email"

var (
	// ErrExpired means the token was genuine but is too old. Verify still
	// returns the email so a fresh link can be offered.
	ErrExpired   = errors.New("token expired")
	ErrMalformed = errors.New("token malformed")
)

type Signer struct {
	secret []byte
	ttl    time.Duration
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}

	return &Signer{secret: []byte(secret), ttl: ttl}
}

func (s *Signer) Issue(email string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   strings.ToLower(strings.TrimSpace(email)),
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

// Verify returns the email the token was issued for.
func (s *Signer) Verify(raw string, now time.Time) (string, error) {
	var claims jwt.RegisteredClaims

	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return claims.Subject, ErrExpired
	default:
		return "", fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: no subject", ErrMalformed)
	}

	return claims.Subject, nil
}
