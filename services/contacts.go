package services

import (
	"context"
	"errors"
	"strings"

	"contact-book/models"
	"contact-book/store"
)

// ContactStore is the contact persistence the contact service needs
type ContactStore interface {
	List(ctx context.Context, search string) ([]models.Contact, error)
	Create(ctx context.Context, name, phone string) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// ContactService lists, creates and deletes contacts. Contacts are never updated.
type ContactService struct {
	contacts ContactStore
}

// NewContactService creates a contact service over store
func NewContactService(contacts ContactStore) *ContactService {
	return &ContactService{contacts: contacts}
}

// List returns all contacts, newest first, or only those whose name contains
// search (case-insensitive) when search is non-empty. No match is an empty slice.
func (s *ContactService) List(ctx context.Context, search string) ([]models.Contact, error) {
	contacts, err := s.contacts.List(ctx, search)
	if err != nil {
		return nil, err
	}
	if contacts == nil {
		contacts = []models.Contact{}
	}
	return contacts, nil
}

// Create adds a contact and returns its id
func (s *ContactService) Create(ctx context.Context, name, phone string) (int64, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)

	if err := requireFields(
		field{name: "name", value: name, maxLen: maxNameLen},
		field{name: "phone", value: phone, maxLen: maxPhoneLen},
	); err != nil {
		return 0, err
	}

	return s.contacts.Create(ctx, name, phone)
}

// Delete removes a contact permanently
func (s *ContactService) Delete(ctx context.Context, id int64) error {
	if err := s.contacts.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
