package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"contact-book/models"
	"contact-book/services"

	"github.com/gorilla/mux"
	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
)

// ContactManager is the part of the contact service the handlers use
type ContactManager interface {
	List(ctx context.Context, search string) ([]models.Contact, error)
	Create(ctx context.Context, name, phone string) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// ContactAPIHandler serves the JSON contact API
type ContactAPIHandler struct {
	contacts ContactManager
}

// NewContactAPIHandler creates a new contact API handler
func NewContactAPIHandler(contacts ContactManager) *ContactAPIHandler {
	return &ContactAPIHandler{contacts: contacts}
}

// ListContacts handles GET /api/contacts, optionally filtered by ?q=
func (h *ContactAPIHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	logRequest(r, "info", "Listing contacts", zap.String("q", q))

	contacts, err := h.contacts.List(r.Context(), q)
	if err != nil {
		logRequest(r, "error", "Failed to list contacts", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}

	logRequest(r, "info", "Contacts retrieved successfully", zap.Int("count", len(contacts)))
	writeJSON(w, http.StatusOK, contacts)
}

// CreateContact handles POST /api/contacts
func (h *ContactAPIHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var req models.CreateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRequest(r, "error", "Invalid request body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Invalid JSON"))
		return
	}

	id, err := h.contacts.Create(r.Context(), req.Name, req.Phone)
	switch {
	case errors.Is(err, services.ErrValidation):
		logRequest(r, "info", "Invalid contact", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError(validationMessage(err)))
		return
	case err != nil:
		logRequest(r, "error", "Failed to create contact", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}

	logRequest(r, "info", "Contact created successfully", zap.Int64("contact_id", id))
	writeJSON(w, http.StatusCreated, models.CreateContactResponse{ID: id})
}

// DeleteContact handles DELETE /api/contacts/{id}
func (h *ContactAPIHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		logRequest(r, "error", "Invalid contact ID", zap.String("id", idStr))
		writeJSON(w, http.StatusNotFound, errs.NewNotFoundError("Contact not found"))
		return
	}

	err = h.contacts.Delete(r.Context(), id)
	switch {
	case errors.Is(err, services.ErrNotFound):
		logRequest(r, "info", "Contact not found", zap.Int64("contact_id", id))
		writeJSON(w, http.StatusNotFound, errs.NewNotFoundError("Contact not found"))
		return
	case err != nil:
		logRequest(r, "error", "Failed to delete contact", zap.Error(err), zap.Int64("contact_id", id))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}

	logRequest(r, "info", "Contact deleted successfully", zap.Int64("contact_id", id))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Contact deleted successfully"})
}
