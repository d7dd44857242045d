package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the "type" claim. Endpoints accept exactly one of
// them, so an access token can never be replayed as a refresh token and
// vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrTokenMalformed   = errors.New("jwt: token malformed or signature invalid")
	ErrTokenTypeInvalid = errors.New("jwt: unexpected token type")
	ErrJWTExpired       = errors.New("jwt: token expired")
)

// Claims is the payload of both access and refresh tokens. FSUniquifier is
// the holder's session generation marker; tokens minted before a password
// change carry a stale value and are rejected on validation.
type Claims struct {
	TokenType    string   `json:"type"`
	FSUniquifier string   `json:"fsu"`
	Roles        []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager signs and parses HS256 access and refresh tokens.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssueAccess mints an access token for the subject. Returns the signed
// token and its jti.
func (m *TokenManager) IssueAccess(subject, fsUniquifier string, roles []string) (string, string, error) {
	return m.issue(TokenTypeAccess, subject, fsUniquifier, roles, m.accessTTL)
}

// IssueRefresh mints a refresh token for the subject. Refresh tokens carry
// no roles; role resolution happens when the access token is minted.
func (m *TokenManager) IssueRefresh(subject, fsUniquifier string) (string, string, error) {
	return m.issue(TokenTypeRefresh, subject, fsUniquifier, nil, m.refreshTTL)
}

func (m *TokenManager) issue(tokenType, subject, fsUniquifier string, roles []string, ttl time.Duration) (string, string, error) {
	now := m.now()
	jti := uuid.NewString()

	claims := Claims{
		TokenType:    tokenType,
		FSUniquifier: fsUniquifier,
		Roles:        roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", "", fmt.Errorf("jwt: sign %s token: %w", tokenType, err)
	}

	return signed, jti, nil
}

// Parse validates the signature and expiry and enforces the expected token
// type. A structurally valid token of the wrong type is rejected with
// ErrTokenTypeInvalid.
func (m *TokenManager) Parse(tokenString, expectedType string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrJWTExpired
		}
		return nil, ErrTokenMalformed
	}

	if !token.Valid {
		return nil, ErrTokenMalformed
	}

	if claims.TokenType != expectedType {
		return nil, ErrTokenTypeInvalid
	}

	return claims, nil
}

// RemainingTTL reports how long until the claims expire, for sizing the
// denylist entry on logout. Expired or unbounded tokens report zero.
func (m *TokenManager) RemainingTTL(claims *Claims) time.Duration {
	if claims.ExpiresAt == nil {
		return 0
	}
	remaining := claims.ExpiresAt.Time.Sub(m.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}
