package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for tokens that are malformed, badly signed or expired.
var ErrInvalidToken = errors.New("invalid session token")

// Manager creates, resolves and destroys sessions.
// Tokens are HS256 JWTs whose jti is the server-side session id.
type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
}

// NewManager creates a session manager signing tokens with secret
func NewManager(store Store, secret string, ttl time.Duration) *Manager {
	return &Manager{store: store, secret: []byte(secret), ttl: ttl}
}

// TTL is the lifetime of new sessions
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Create starts a session for userID and returns its signed token
func (m *Manager) Create(ctx context.Context, userID int64) (string, error) {
	id := uuid.New().String()
	if err := m.store.Save(ctx, id, userID, m.ttl); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		_ = m.store.Delete(ctx, id)
		return "", err
	}
	return signed, nil
}

// Resolve returns the user id bound to token.
// ErrInvalidToken and ErrSessionNotFound both mean "anonymous"; anything else is a store failure.
func (m *Manager) Resolve(ctx context.Context, token string) (int64, error) {
	id, err := m.sessionID(token)
	if err != nil {
		return 0, err
	}
	return m.store.Lookup(ctx, id)
}

// Destroy ends the session named by token. Unknown or invalid tokens are a no-op.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	id, err := m.sessionID(token)
	if err != nil {
		return nil
	}
	return m.store.Delete(ctx, id)
}

func (m *Manager) sessionID(token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid || claims.ID == "" {
		return "", ErrInvalidToken
	}

	return claims.ID, nil
}
