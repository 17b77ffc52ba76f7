package server

import (
	"net/http"

	"contact-book/handlers"

	"github.com/gorilla/mux"
)

// Dependencies are the services and settings the router is built from
type Dependencies struct {
	Auth       handlers.Authenticator
	Contacts   handlers.ContactManager
	Cookie     handlers.CookieConfig
	APIEnabled bool
}

// NewRouter registers every route. Page routes and API routes sit behind
// their own flavour of the session gate; the access log wraps the whole router.
func NewRouter(deps Dependencies) http.Handler {
	r := mux.NewRouter()
	r.Use(handlers.RouteTag)

	gate := handlers.NewSessionGate(deps.Auth, deps.Cookie.Name)
	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Cookie)
	pageHandler := handlers.NewContactPageHandler(deps.Contacts)

	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet).Name("HealthCheck")
	r.HandleFunc("/register", authHandler.RegisterPage).Methods(http.MethodGet).Name("RegisterPage")
	r.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost).Name("Register")
	r.HandleFunc("/login", authHandler.LoginPage).Methods(http.MethodGet).Name("LoginPage")
	r.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost).Name("Login")

	if deps.APIEnabled {
		apiHandler := handlers.NewContactAPIHandler(deps.Contacts)

		api := r.PathPrefix("/api").Subrouter()
		api.Use(gate.API)
		api.HandleFunc("/contacts", apiHandler.ListContacts).Methods(http.MethodGet).Name("ListContacts")
		api.HandleFunc("/contacts", apiHandler.CreateContact).Methods(http.MethodPost).Name("CreateContact")
		api.HandleFunc("/contacts/{id:[0-9]+}", apiHandler.DeleteContact).Methods(http.MethodDelete).Name("DeleteContact")
	}

	protected := r.NewRoute().Subrouter()
	protected.Use(gate.Pages)
	protected.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodGet).Name("Logout")
	protected.HandleFunc("/", pageHandler.Index).Methods(http.MethodGet).Name("Index")
	protected.HandleFunc("/new", pageHandler.NewForm).Methods(http.MethodGet).Name("NewContactForm")
	protected.HandleFunc("/new", pageHandler.Create).Methods(http.MethodPost).Name("NewContact")
	protected.HandleFunc("/delete/{id:[0-9]+}", pageHandler.Delete).Methods(http.MethodPost).Name("DeleteContactPage")

	return handlers.AccessLog(r)
}
