// Package token mints and verifies the bearer tokens the mock API hands
// out. Tokens are HS256 JWTs whose jti is tracked in a registry, so tests
// can revoke a single token or expire all of them between two requests.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrTokenInvalid covers every verification failure: bad signature,
// malformed claims, expired or revoked token.
var ErrTokenInvalid = errors.New("token: invalid or expired")

// Issuer mints and verifies tokens signed with one shared secret.
type Issuer struct {
	secret   []byte
	lifetime time.Duration
	registry *Registry
}

// NewIssuer returns an issuer whose tokens live for lifetime.
func NewIssuer(secret []byte, lifetime time.Duration) *Issuer {
	return &Issuer{
		secret:   secret,
		lifetime: lifetime,
		registry: NewRegistry(lifetime),
	}
}

// Issue mints a token for userID and registers it as live.
func (i *Issuer) Issue(userID int64) (string, error) {
	id := uuid.NewString()
	now := time.Now()

	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"jti": id,
		"iat": now.Unix(),
		"exp": now.Add(i.lifetime).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	i.registry.Add(id, userID)
	return signed, nil
}

// Verify checks signature, expiry and registry membership, and returns
// the user id the token was issued for.
func (i *Issuer) Verify(tokenString string) (int64, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrTokenInvalid
	}
	id, _ := claims["jti"].(string)
	if id == "" || !i.registry.Alive(id) {
		return 0, ErrTokenInvalid
	}
	subject, err := claims.GetSubject()
	if err != nil {
		return 0, ErrTokenInvalid
	}
	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return 0, ErrTokenInvalid
	}
	return userID, nil
}

// Revoke takes one previously issued token out of circulation. Unknown
// and malformed tokens are ignored.
func (i *Issuer) Revoke(tokenString string) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	})
	if err != nil || !parsed.Valid {
		return
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return
	}
	if id, _ := claims["jti"].(string); id != "" {
		i.registry.Remove(id)
	}
}

// RevokeAll expires every issued token at once.
func (i *Issuer) RevokeAll() {
	i.registry.Flush()
}
