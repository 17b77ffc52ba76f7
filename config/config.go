// Package config handles runtime settings: development defaults, then
// environment variables, then command-line flags.
package config

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DialectSQLite and DialectPostgres are the goose dialect names of the supported backends.
	DialectSQLite   = "sqlite3"
	DialectPostgres = "postgres"

	DefaultDatabaseURL = "sqlite:///contacts.db"
	DefaultSecretKey   = "dev-secret"
)

var ErrUnsupportedDatabase = errors.New("unsupported database url")

// Config holds runtime settings for the contact book.
//
// Fields:
//   - DatabaseURL: sqlite:///rel/path, sqlite:////abs/path, a bare file path, or postgres:// DSN.
//   - SecretKey: HMAC key signing session cookies. The default is for development only.
//   - RedisAddr: optional; when empty sessions live in process memory.
//   - APIEnabled: registers the /api/contacts routes.
type Config struct {
	Port          string
	DatabaseURL   string
	SecretKey     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration
	SessionCookie string
	SecureCookies bool
	APIEnabled    bool
	BcryptCost    int
}

// LoadDefaults populates Config with development defaults.
// NOTE: the database and secret defaults are insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.Port = "8080"
	c.DatabaseURL = DefaultDatabaseURL
	c.SecretKey = DefaultSecretKey
	c.RedisAddr = ""
	c.RedisPassword = ""
	c.RedisDB = 0
	c.SessionTTL = 24 * time.Hour
	c.SessionCookie = "session"
	c.SecureCookies = false
	c.APIEnabled = true
	c.BcryptCost = 12
}

// LoadEnv overlays values found through lookup (os.LookupEnv in production).
// Unparseable numbers and booleans keep the current value.
func (c *Config) LoadEnv(lookup func(string) (string, bool)) {
	c.Port = getEnv(lookup, "PORT", c.Port)
	c.DatabaseURL = getEnv(lookup, "DATABASE_URL", c.DatabaseURL)
	c.SecretKey = getEnv(lookup, "SECRET_KEY", c.SecretKey)
	c.RedisAddr = getEnv(lookup, "REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv(lookup, "REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getEnvInt(lookup, "REDIS_DB", c.RedisDB)
	c.SessionTTL = getEnvDuration(lookup, "SESSION_TTL", c.SessionTTL)
	c.SessionCookie = getEnv(lookup, "SESSION_COOKIE", c.SessionCookie)
	c.SecureCookies = getEnvBool(lookup, "SECURE_COOKIES", c.SecureCookies)
	c.APIEnabled = getEnvBool(lookup, "API_ENABLED", c.APIEnabled)
	c.BcryptCost = getEnvInt(lookup, "BCRYPT_COST", c.BcryptCost)
}

// BindFlags registers flags whose defaults are the current values,
// so anything given on the command line wins over the environment.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Port, "port", c.Port, "HTTP port to listen on")
	fs.StringVar(&c.DatabaseURL, "database-url", c.DatabaseURL, "database connection string")
	fs.StringVar(&c.SecretKey, "secret-key", c.SecretKey, "session signing secret")
	fs.StringVar(&c.RedisAddr, "redis-addr", c.RedisAddr, "redis address for sessions (empty: in-memory)")
	fs.DurationVar(&c.SessionTTL, "session-ttl", c.SessionTTL, "session lifetime")
	fs.BoolVar(&c.APIEnabled, "api", c.APIEnabled, "expose the JSON API")
}

// LoadConfig builds a Config from defaults and the process environment.
// Flags are bound separately by main so the command flag set stays in one place.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.LoadEnv(os.LookupEnv)
	return cfg
}

// Dialect maps DatabaseURL to the backend it selects
func (c *Config) Dialect() (string, error) {
	u := strings.TrimSpace(c.DatabaseURL)
	switch {
	case strings.HasPrefix(u, "postgres://"), strings.HasPrefix(u, "postgresql://"):
		return DialectPostgres, nil
	case strings.HasPrefix(u, "sqlite://"), strings.HasPrefix(u, "sqlite3://"):
		return DialectSQLite, nil
	case u == "" || strings.Contains(u, "://"):
		return "", ErrUnsupportedDatabase
	default:
		// bare file path or :memory:
		return DialectSQLite, nil
	}
}

// DataSource returns the driver-level DSN: the file path for SQLite, the URL itself for Postgres.
// SQLite URLs follow the SQLAlchemy form: sqlite:///rel.db is relative, sqlite:////abs.db absolute.
func (c *Config) DataSource() string {
	u := strings.TrimSpace(c.DatabaseURL)
	for _, prefix := range []string{"sqlite3://", "sqlite://"} {
		if strings.HasPrefix(u, prefix) {
			return strings.TrimPrefix(strings.TrimPrefix(u, prefix), "/")
		}
	}
	return u
}

// InsecureDefaults lists the settings still at their development values
func (c *Config) InsecureDefaults() []string {
	var out []string
	if c.SecretKey == DefaultSecretKey {
		out = append(out, "SECRET_KEY")
	}
	if c.DatabaseURL == DefaultDatabaseURL {
		out = append(out, "DATABASE_URL")
	}
	return out
}

func getEnv(lookup func(string) (string, bool), key, fallback string) string {
	v, ok := lookup(key)
	if !ok || v == "" {
		return fallback
	}
	return v
}

func getEnvInt(lookup func(string) (string, bool), key string, fallback int) int {
	v, ok := lookup(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getEnvBool(lookup func(string) (string, bool), key string, fallback bool) bool {
	v, ok := lookup(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	v, ok := lookup(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
