package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"contact-book/models"
	"contact-book/services"

	"go.uber.org/zap"
)

// Authenticator is the part of the auth service the auth pages use
type Authenticator interface {
	UserResolver
	Register(ctx context.Context, username, password string) (int64, error)
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, token string) error
}

// CookieConfig describes the session cookie
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// AuthHandler serves registration, login and logout
type AuthHandler struct {
	auth   Authenticator
	cookie CookieConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth Authenticator, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{auth: auth, cookie: cookie}
}

// RegisterPage handles GET /register
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	render(w, r, "register", pageData{Title: "Register"})
}

// Register handles POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	creds := credentialsFromForm(r)
	logRequest(r, "info", "Register request", zap.String("username", creds.Username))

	id, err := h.auth.Register(r.Context(), creds.Username, creds.Password)
	switch {
	case errors.Is(err, services.ErrValidation):
		setFlash(w, FlashDanger, validationMessage(err))
		http.Redirect(w, r, "/register", http.StatusFound)
		return
	case errors.Is(err, services.ErrConflict):
		logRequest(r, "info", "Username taken", zap.String("username", creds.Username))
		setFlash(w, FlashDanger, "Username already exists")
		http.Redirect(w, r, "/register", http.StatusFound)
		return
	case err != nil:
		serverError(w, r, err)
		return
	}

	logRequest(r, "info", "User registered", zap.Int64("user_id", id))
	setFlash(w, FlashSuccess, "Registration successful! Please log in.")
	http.Redirect(w, r, "/login", http.StatusFound)
}

// LoginPage handles GET /login
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	render(w, r, "login", pageData{Title: "Login", Next: safeNext(r.URL.Query().Get("next"))})
}

// Login handles POST /login. On success it redirects to the local path in ?next= or to /.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"))
	creds := credentialsFromForm(r)

	token, err := h.auth.Login(r.Context(), creds.Username, creds.Password)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		logRequest(r, "info", "Login failed", zap.String("username", creds.Username))
		setFlash(w, FlashDanger, "Invalid username or password")
		target := "/login"
		if next != "" {
			target += "?next=" + url.QueryEscape(next)
		}
		http.Redirect(w, r, target, http.StatusFound)
		return
	case err != nil:
		serverError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.cookie.TTL.Seconds()),
	})

	logRequest(r, "info", "Login successful", zap.String("username", creds.Username))
	setFlash(w, FlashSuccess, "Logged in successfully!")
	if next == "" {
		next = "/"
	}
	http.Redirect(w, r, next, http.StatusFound)
}

// Logout handles GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(h.cookie.Name); err == nil {
		if err := h.auth.Logout(r.Context(), c.Value); err != nil {
			serverError(w, r, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		MaxAge:   -1,
	})

	logRequest(r, "info", "Logged out")
	setFlash(w, FlashInfo, "You have been logged out.")
	http.Redirect(w, r, "/login", http.StatusFound)
}

func credentialsFromForm(r *http.Request) models.CredentialsRequest {
	return models.CredentialsRequest{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
}

// safeNext returns next if it is a local absolute path, otherwise ""
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return next
}
