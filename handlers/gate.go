package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"contact-book/models"
	"contact-book/services"

	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
)

type contextKey int

const userKey contextKey = iota

// WithUser returns a copy of ctx carrying the authenticated user
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// attachUser puts user in the request context and reports it to the access log
func attachUser(r *http.Request, user *models.User) *http.Request {
	if info := requestInfoFrom(r); info != nil {
		info.user = user
	}
	return r.WithContext(WithUser(r.Context(), user))
}

// UserFromContext returns the user attached by the session gate, or nil
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

// UserResolver resolves a session token to the logged-in user.
// Anonymous tokens fail with services.ErrUnauthorized.
type UserResolver interface {
	RequireUser(ctx context.Context, token string) (*models.User, error)
}

// SessionGate guards protected routes. Pages redirect anonymous visitors to the
// login form, API routes answer 401.
type SessionGate struct {
	users  UserResolver
	cookie string
}

// NewSessionGate creates a gate reading the session token from the named cookie
func NewSessionGate(users UserResolver, cookieName string) *SessionGate {
	return &SessionGate{users: users, cookie: cookieName}
}

func (g *SessionGate) resolve(r *http.Request) (*models.User, error) {
	c, err := r.Cookie(g.cookie)
	if err != nil {
		return nil, services.ErrUnauthorized
	}
	return g.users.RequireUser(r.Context(), c.Value)
}

// Pages is the middleware for server-rendered routes
func (g *SessionGate) Pages(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := g.resolve(r)
		switch {
		case errors.Is(err, services.ErrUnauthorized):
			logRequest(r, "debug", "Anonymous request redirected to login")
			setFlash(w, FlashInfo, "Please log in to access this page.")
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
			return
		case err != nil:
			serverError(w, r, err)
			return
		}
		next.ServeHTTP(w, attachUser(r, user))
	})
}

// API is the middleware for JSON routes
func (g *SessionGate) API(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := g.resolve(r)
		switch {
		case errors.Is(err, services.ErrUnauthorized):
			logRequest(r, "info", "Unauthorized API request")
			writeJSON(w, http.StatusUnauthorized, errs.NewAuthenticationError("Not logged in"))
			return
		case err != nil:
			logRequest(r, "error", "Session lookup failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Session error"))
			return
		}
		next.ServeHTTP(w, attachUser(r, user))
	})
}
