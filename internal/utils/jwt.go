package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	SessionID string `json:"sessionId"`
	AccountID string `json:"accountId"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and validates session tokens. The token carries a
// session id rather than standing alone: deleting the session row on
// logout revokes the token even though its signature stays valid.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// TTL returns the lifetime tokens are issued with.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Generate creates a new signed token for the given session.
func (m *TokenManager) Generate(sessionID, accountID, role string, issuedAt time.Time) (string, error) {
	if len(m.secret) == 0 {
		return "", errors.New("token secret is not configured")
	}
	claims := &Claims{
		SessionID: sessionID,
		AccountID: accountID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Validate parses a token string and returns its claims.
func (m *TokenManager) Validate(tokenStr string) (*Claims, error) {
	if len(m.secret) == 0 {
		return nil, errors.New("token secret is not configured")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
