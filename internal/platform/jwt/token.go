// Package jwtmw issues and verifies the bearer tokens handed out at login.
package jwtmw

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/identity"
)

// ErrInvalidToken is returned for any token that fails parsing or verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the verified payload of a token.
type Claims struct {
	UserID    string
	Email     string
	Role      identity.Role
	TokenID   string
	ExpiresAt time.Time
}

type tokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs and parses HS256 tokens with a shared secret.
type Manager struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewManager creates a Manager with the provided secret and token lifetime.
func NewManager(secret string, expiration time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// Issue creates a signed token for the given user. Each token carries a fresh jti.
func (m *Manager) Issue(userID, email string, role identity.Role) (string, Claims, error) {
	now := m.now()
	c := Claims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(m.expiration).Truncate(time.Second),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Email: email,
		Role:  string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        c.TokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, c, nil
}

// Parse verifies the signature and expiry of tokenStr and returns its claims.
func (m *Manager) Parse(tokenStr string) (Claims, error) {
	var tc tokenClaims
	token, err := jwt.ParseWithClaims(tokenStr, &tc, func(t *jwt.Token) (interface{}, error) {
		// Check signing algorithm (only HMAC allowed)
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	if tc.Subject == "" || tc.ID == "" {
		return Claims{}, ErrInvalidToken
	}

	return Claims{
		UserID:    tc.Subject,
		Email:     tc.Email,
		Role:      identity.Role(tc.Role),
		TokenID:   tc.ID,
		ExpiresAt: tc.ExpiresAt.Time,
	}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}
