package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"contact-book/models"
	"contact-book/sessions"
	"contact-book/store"

	"golang.org/x/crypto/bcrypt"
)

// UserStore is the credential persistence the auth service needs
type UserStore interface {
	Create(ctx context.Context, username, passwordHash string) (int64, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// SessionManager issues and resolves session tokens
type SessionManager interface {
	Create(ctx context.Context, userID int64) (string, error)
	Resolve(ctx context.Context, token string) (int64, error)
	Destroy(ctx context.Context, token string) error
}

// AuthService registers users and manages their login sessions
type AuthService struct {
	users    UserStore
	sessions SessionManager
	cost     int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService creates an auth service hashing with the given bcrypt cost
// (bcrypt.DefaultCost when out of range)
func NewAuthService(users UserStore, sessions SessionManager, cost int) *AuthService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{users: users, sessions: sessions, cost: cost}
}

// Register creates a user with a bcrypt-hashed password and returns its id
func (s *AuthService) Register(ctx context.Context, username, password string) (int64, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	if err := requireFields(
		field{name: "username", value: username, maxLen: maxUsernameLen},
		field{name: "password", value: password},
	); err != nil {
		return 0, err
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return 0, ErrConflict
	} else if !errors.Is(err, store.ErrNotFound) {
		return 0, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return 0, fmt.Errorf("%w: password must be at most 72 bytes", ErrValidation)
		}
		return 0, fmt.Errorf("hash password: %w", err)
	}

	// The lookup above is only a fast path; concurrent registrations are settled by the UNIQUE constraint.
	id, err := s.users.Create(ctx, username, string(hash))
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return 0, ErrConflict
		}
		return 0, err
	}

	return id, nil
}

// Login verifies credentials and starts a session, returning its token.
// Unknown user and wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	user, err := s.users.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// equalise timing with the wrong-password path
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return "", ErrInvalidCredentials
	case err != nil:
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.sessions.Create(ctx, user.ID)
}

// Logout destroys the session behind token. Logging out twice, or without a session, is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Destroy(ctx, token)
}

// CurrentUser resolves token to a live user.
// It returns (nil, nil) for anonymous requests: no token, an invalid or expired one,
// or a session whose user no longer exists. Only store failures are errors.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}

	userID, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, sessions.ErrInvalidToken) || errors.Is(err, sessions.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = s.sessions.Destroy(ctx, token)
			return nil, nil
		}
		return nil, err
	}

	return user, nil
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("contact-book-dummy-password"), s.cost)
	})
	return s.dummyHash
}

// RequireUser is CurrentUser for protected operations: an anonymous token is ErrUnauthorized
func (s *AuthService) RequireUser(ctx context.Context, token string) (*models.User, error) {
	user, err := s.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}
