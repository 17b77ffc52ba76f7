package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cachepackage "contact-book/cache"
	"contact-book/config"
	"contact-book/database"
	"contact-book/handlers"
	"contact-book/services"
	"contact-book/sessions"
	"contact-book/store"

	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// InitLogger sets up the shared structured logger
func InitLogger() {
	logger.Init(logger.LoggerConfig{
		CallerKey:  "file",
		TimeKey:    "timestamp",
		CallerSkip: 1,
	})
}

// StartServer wires the stores, services and routes and serves until SIGINT or SIGTERM
func StartServer(cfg *config.Config) {
	logger.Info("Starting Contact Book...")
	for _, name := range cfg.InsecureDefaults() {
		logger.Info("WARNING: using the insecure development default, set it for production", zap.String("setting", name))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	initSignalHandler(cancel)

	// Initialize database
	dbConn := database.InitializeDatabase(ctx, cfg)
	defer dbConn.Close()

	// Initialize session storage: Redis when configured, process memory otherwise
	var sessionStore sessions.Store = sessions.NewMemoryStore()
	if client := cachepackage.InitializeCache(ctx, cfg); client != nil {
		defer client.Close()
		sessionStore = sessions.NewRedisStore(client, sessions.DefaultKeyPrefix)
	}

	sessionManager := sessions.NewManager(sessionStore, cfg.SecretKey, cfg.SessionTTL)
	authService := services.NewAuthService(store.NewUserStore(dbConn), sessionManager, cfg.BcryptCost)
	contactService := services.NewContactService(store.NewContactStore(dbConn))

	router := NewRouter(Dependencies{
		Auth:     authService,
		Contacts: contactService,
		Cookie: handlers.CookieConfig{
			Name:   cfg.SessionCookie,
			TTL:    sessionManager.TTL(),
			Secure: cfg.SecureCookies,
		},
		APIEnabled: cfg.APIEnabled,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("Contact Book started", zap.String("port", cfg.Port))
	logger.Info("Health check: GET /health")
	if cfg.APIEnabled {
		logger.Info("API endpoints: GET/POST /api/contacts, DELETE /api/contacts/{id}")
	}

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server failed to start", zap.Error(err))
		os.Exit(1)
	}
	<-stopped
	logger.Info("Contact Book stopped")
}

func initSignalHandler(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigs
		logger.Info("Shutting down", zap.String("signal", sig.String()))
		cancel()
	}()
}
