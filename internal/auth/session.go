package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

const sessionIssuer = "donorlink"

var ErrInvalidSession = errors.New("invalid session token")

type SessionClaims struct {
	AccountID string
	Email     string
	ExpiresAt time.Time
}

// SessionManager issues and verifies HS256 signed session tokens.
type SessionManager struct {
	key    jwk.Key
	maxAge time.Duration
}

func NewSessionManager(secret []byte, maxAge time.Duration) (*SessionManager, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("session signing key must be at least 32 bytes, got %d", len(secret))
	}

	key, err := jwk.Import(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to import session signing key: %w", err)
	}

	return &SessionManager{key: key, maxAge: maxAge}, nil
}

func (m *SessionManager) MaxAge() time.Duration {
	return m.maxAge
}

func (m *SessionManager) Issue(accountID, email string, now time.Time) (string, error) {
	token, err := jwt.NewBuilder().
		Issuer(sessionIssuer).
		Subject(accountID).
		IssuedAt(now).
		Expiration(now.Add(m.maxAge)).
		Claim("email", email).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build session token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), m.key))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return string(signed), nil
}

func (m *SessionManager) Parse(raw string) (*SessionClaims, error) {
	token, err := jwt.Parse(
		[]byte(raw),
		jwt.WithKey(jwa.HS256(), m.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(sessionIssuer),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}

	accountID, ok := token.Subject()
	if !ok || accountID == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidSession)
	}

	claims := &SessionClaims{AccountID: accountID}

	var email string
	if err := token.Get("email", &email); err == nil {
		claims.Email = email
	}

	if exp, ok := token.Expiration(); ok {
		claims.ExpiresAt = exp
	}

	return claims, nil
}
