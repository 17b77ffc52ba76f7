package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"contact-book/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ContactPageHandler serves the server-rendered contact pages
type ContactPageHandler struct {
	contacts ContactManager
}

// NewContactPageHandler creates a new contact page handler
func NewContactPageHandler(contacts ContactManager) *ContactPageHandler {
	return &ContactPageHandler{contacts: contacts}
}

// Index handles GET /
func (h *ContactPageHandler) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	contacts, err := h.contacts.List(r.Context(), q)
	if err != nil {
		serverError(w, r, err)
		return
	}

	render(w, r, "index", pageData{Title: "Contacts", Query: q, Contacts: contacts})
}

// NewForm handles GET /new
func (h *ContactPageHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, "form", pageData{Title: "Add contact"})
}

// Create handles POST /new
func (h *ContactPageHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, err := h.contacts.Create(r.Context(), r.PostFormValue("name"), r.PostFormValue("phone"))
	switch {
	case errors.Is(err, services.ErrValidation):
		setFlash(w, FlashDanger, validationMessage(err))
		http.Redirect(w, r, "/new", http.StatusFound)
		return
	case err != nil:
		serverError(w, r, err)
		return
	}

	logRequest(r, "info", "Contact created", zap.Int64("contact_id", id))
	setFlash(w, FlashSuccess, "Contact added.")
	http.Redirect(w, r, "/", http.StatusFound)
}

// Delete handles POST /delete/{id}
func (h *ContactPageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err == nil {
		err = h.contacts.Delete(r.Context(), id)
	} else {
		err = services.ErrNotFound
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		setFlash(w, FlashDanger, "Contact not found.")
	case err != nil:
		serverError(w, r, err)
		return
	default:
		logRequest(r, "info", "Contact deleted", zap.Int64("contact_id", id))
		setFlash(w, FlashWarning, "Contact deleted.")
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
