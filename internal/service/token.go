package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/atinyakov/JobTracker/internal/models"
)

// SecretSource yields the signing secret in force right now.
type SecretSource interface {
	Current() []byte
}

// TokenIssuer signs and validates HS256 session tokens. The secret is read
// from the source on every call, so rotating it invalidates outstanding
// tokens immediately.
type TokenIssuer struct {
	secret SecretSource
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer returns an issuer whose tokens live for ttl.
func NewTokenIssuer(secret SecretSource, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

// Issue returns a signed token for user and its expiry time.
func (t *TokenIssuer) Issue(user *models.User) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret.Current())
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Validate returns the user id carried by token. Expired tokens yield
// models.ErrExpiredToken; every other failure yields models.ErrInvalidSignature.
func (t *TokenIssuer) Validate(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return t.secret.Current(), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", models.ErrExpiredToken
	case err != nil:
		return "", fmt.Errorf("%w: %v", models.ErrInvalidSignature, err)
	case !parsed.Valid || claims.Subject == "":
		return "", models.ErrInvalidSignature
	}
	return claims.Subject, nil
}
