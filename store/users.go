package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"contact-book/models"

	"github.com/jmoiron/sqlx"
)

const (
	insertUserQuery       = `INSERT INTO users (username, password_hash) VALUES (?, ?) RETURNING id`
	selectUserByNameQuery = `SELECT id, username, password_hash FROM users WHERE username = ?`
	selectUserByIDQuery   = `SELECT id, username, password_hash FROM users WHERE id = ?`
)

// UserStore persists user credentials
type UserStore struct {
	db *sqlx.DB
}

// NewUserStore creates a user store on top of an open connection
func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a user and returns its id.
// A taken username surfaces as ErrDuplicate; the UNIQUE constraint decides, not a prior lookup.
func (s *UserStore) Create(ctx context.Context, username, passwordHash string) (int64, error) {
	var id int64
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(insertUserQuery), username, passwordHash).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return id, nil
}

// GetByUsername looks a user up by exact (case-sensitive) username
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.get(ctx, selectUserByNameQuery, username)
}

// GetByID looks a user up by id
func (s *UserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.get(ctx, selectUserByIDQuery, id)
}

func (s *UserStore) get(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := s.db.GetContext(ctx, user, s.db.Rebind(query), arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}
