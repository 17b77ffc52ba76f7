package models

// Contact is an entry in the shared address book
// No owner: every authenticated user sees and may delete every contact
type Contact struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Phone string `json:"phone" db:"phone"` // Free-form, no format validation
}

// CreateContactRequest represents the POST /api/contacts body
type CreateContactRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// CreateContactResponse is returned with 201 from POST /api/contacts
type CreateContactResponse struct {
	ID int64 `json:"id"`
}
