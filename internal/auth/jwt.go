// Package auth issues and validates the bearer tokens that grant access to
// a splitting session. A token names exactly one session and carries no
// other identity.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer   = "tabsplit"
	tokenAudience = "tabsplit-session"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
)

// Claims are the JWT claims of a session token. The session ID is also
// the subject.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// TokenManager signs session tokens with HS256 and validates them.
type TokenManager struct {
	key    []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokenManager returns a manager whose tokens expire ttl after issue.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	m := &TokenManager{
		key: []byte(secret),
		ttl: ttl,
		now: time.Now,
	}
	m.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	)
	return m
}

// Generate issues a token for sessionID.
func (m *TokenManager) Generate(sessionID string) (string, error) {
	issuedAt := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   sessionID,
			Audience:  jwt.ClaimStrings{tokenAudience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.ttl)),
		},
	})

	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Validate checks the signature, issuer, audience and lifetime of a token
// and returns its claims. Every failure wraps ErrInvalidToken.
func (m *TokenManager) Validate(signed string) (*Claims, error) {
	claims := &Claims{}
	if _, err := m.parser.ParseWithClaims(signed, claims, m.keyFunc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.SessionID == "" || claims.SessionID != claims.Subject {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *TokenManager) keyFunc(*jwt.Token) (interface{}, error) {
	return m.key, nil
}
