// Package auth signs and verifies the HS256 bearer tokens that carry caller identity and
// the premium entitlement.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"contract-backend/internal/shared/config"
)

const devSecret = "dev-secret"

// DefaultTokenTTL is applied when a token is signed without an expiry.
const DefaultTokenTTL = 24 * time.Hour

// Claims represents the identity contained in a JWT.
type Claims struct {
	Sub     string
	Email   string
	Name    string
	Premium bool
	Exp     int64
	Iat     int64
}

var (
	ErrMissingSecret = errors.New("jwt secret not configured")
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token expired")
)

type tokenClaims struct {
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Premium bool   `json:"premium"`
	jwt.RegisteredClaims
}

// Keyring holds the HMAC secret used for both signing and verification.
type Keyring struct {
	secret []byte
	now    func() time.Time
}

// NewKeyring returns a keyring for secret. An empty secret falls back to a fixed
// development key only in dev-like environments.
func NewKeyring(secret, env string) (*Keyring, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		if !config.IsDevLike(env) {
			return nil, fmt.Errorf("%w: JWT_SECRET required outside dev (env %q)", ErrMissingSecret, env)
		}
		secret = devSecret
	}
	return &Keyring{secret: []byte(secret), now: time.Now}, nil
}

// WithClock returns a copy of the keyring that reads time from now.
func (k *Keyring) WithClock(now func() time.Time) *Keyring {
	return &Keyring{secret: k.secret, now: now}
}

// Sign encodes claims as an HS256 token, filling iat and exp when unset.
func (k *Keyring) Sign(claims Claims) (string, error) {
	if claims.Sub == "" {
		return "", errors.New("sub is required")
	}

	now := k.now().UTC().Unix()
	if claims.Iat == 0 {
		claims.Iat = now
	}
	if claims.Exp == 0 {
		claims.Exp = now + int64(DefaultTokenTTL/time.Second)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Email:   claims.Email,
		Name:    claims.Name,
		Premium: claims.Premium,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Sub,
			IssuedAt:  jwt.NewNumericDate(time.Unix(claims.Iat, 0)),
			ExpiresAt: jwt.NewNumericDate(time.Unix(claims.Exp, 0)),
		},
	})
	return token.SignedString(k.secret)
}

// Verify checks the signature and expiry of token and returns its claims. Only HS256 is
// accepted.
func (k *Keyring) Verify(tokenString string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(k.now),
	)

	var parsed tokenClaims
	token, err := parser.ParseWithClaims(tokenString, &parsed, func(*jwt.Token) (any, error) {
		return k.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || parsed.Subject == "" {
		return Claims{}, ErrInvalidToken
	}

	claims := Claims{
		Sub:     parsed.Subject,
		Email:   parsed.Email,
		Name:    parsed.Name,
		Premium: parsed.Premium,
	}
	if parsed.IssuedAt != nil {
		claims.Iat = parsed.IssuedAt.Unix()
	}
	if parsed.ExpiresAt != nil {
		claims.Exp = parsed.ExpiresAt.Unix()
	}
	return claims, nil
}
