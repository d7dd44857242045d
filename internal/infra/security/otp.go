package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTokenExpired indicates the token signature was valid but the
	// embedded issue time is older than the allowed window.
	ErrTokenExpired = errors.New("one-time token expired")
	// ErrTokenInvalid indicates the token is malformed or its signature
	// does not match.
	ErrTokenInvalid = errors.New("one-time token invalid")
)

// OTPManager issues and verifies stateless one-time tokens. The token embeds
// its payload and issue timestamp and is signed with HMAC-SHA256 under a key
// derived from the application secret and a purpose-specific salt, so two
// managers with different salts never accept each other's tokens.
type OTPManager struct {
	key    []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewOTPManager derives the signing key from secret and salt.
func NewOTPManager(secret, salt string, maxAge time.Duration) *OTPManager {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(salt))

	return &OTPManager{
		key:    mac.Sum(nil),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Issue produces a URL-safe token carrying the payload and the current time.
func (m *OTPManager) Issue(payload string) (string, error) {
	nonce := make([]byte, 8)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("otp: generate nonce: %w", err)
	}

	issuedAt := uint64(m.now().Unix())

	body := make([]byte, 0, 8+8+len(payload))
	body = binary.BigEndian.AppendUint64(body, issuedAt)
	body = append(body, nonce...)
	body = append(body, payload...)

	return base64.RawURLEncoding.EncodeToString(m.seal(body)), nil
}

// Verify checks the token signature and age and returns the embedded payload.
// A bad signature or malformed token yields ErrTokenInvalid; a valid but stale
// token yields ErrTokenExpired.
func (m *OTPManager) Verify(token string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", ErrTokenInvalid
	}

	body, err := m.open(raw)
	if err != nil {
		return "", err
	}
	if len(body) < 16 {
		return "", ErrTokenInvalid
	}

	issuedAt := time.Unix(int64(binary.BigEndian.Uint64(body[:8])), 0)
	if m.now().Sub(issuedAt) > m.maxAge {
		return "", ErrTokenExpired
	}

	return string(body[16:]), nil
}

func (m *OTPManager) seal(body []byte) []byte {
	mac := hmac.New(sha256.New, m.key)
	mac.Write(body)
	return append(mac.Sum(nil), body...)
}

func (m *OTPManager) open(raw []byte) ([]byte, error) {
	if len(raw) < sha256.Size {
		return nil, ErrTokenInvalid
	}

	sig, body := raw[:sha256.Size], raw[sha256.Size:]

	mac := hmac.New(sha256.New, m.key)
	mac.Write(body)
	if subtle.ConstantTimeCompare(sig, mac.Sum(nil)) != 1 {
		return nil, ErrTokenInvalid
	}

	return body, nil
}
