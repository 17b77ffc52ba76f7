package store

import (
	"context"
	"fmt"
	"strings"

	"contact-book/models"

	"github.com/jmoiron/sqlx"
)

const (
	insertContactQuery  = `INSERT INTO contacts (name, phone) VALUES (?, ?) RETURNING id`
	selectContactsQuery = `SELECT id, name, phone FROM contacts ORDER BY id DESC`
	searchContactsQuery = `SELECT id, name, phone FROM contacts WHERE LOWER(name) LIKE LOWER(?) ESCAPE '\' ORDER BY id DESC`
	deleteContactQuery  = `DELETE FROM contacts WHERE id = ?`
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContactStore persists contacts
type ContactStore struct {
	db *sqlx.DB
}

// NewContactStore creates a contact store on top of an open connection
func NewContactStore(db *sqlx.DB) *ContactStore {
	return &ContactStore{db: db}
}

// List returns contacts newest first. A non-empty search keeps only names
// containing it, compared case-insensitively and taken literally.
func (s *ContactStore) List(ctx context.Context, search string) ([]models.Contact, error) {
	contacts := []models.Contact{}

	var err error
	if search == "" {
		err = s.db.SelectContext(ctx, &contacts, selectContactsQuery)
	} else {
		pattern := "%" + likeEscaper.Replace(search) + "%"
		err = s.db.SelectContext(ctx, &contacts, s.db.Rebind(searchContactsQuery), pattern)
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return contacts, nil
}

// Create inserts a contact and returns its id
func (s *ContactStore) Create(ctx context.Context, name, phone string) (int64, error) {
	var id int64
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(insertContactQuery), name, phone).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return id, nil
}

// Delete removes a contact permanently; ErrNotFound when nothing was removed
func (s *ContactStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(deleteContactQuery), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
