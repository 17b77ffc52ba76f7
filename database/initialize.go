package database

import (
	"context"
	"embed"
	"fmt"
	"os"

	"contact-book/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	utilsdb "github.com/umakantv/go-utils/db"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationsFS embed.FS

// driverNames maps goose dialects to database/sql driver names
var driverNames = map[string]string{
	config.DialectSQLite:   "sqlite3",
	config.DialectPostgres: "pgx",
}

// InitializeDatabase opens the configured database and applies pending
// migrations. Startup cannot continue without it, so failures exit the process.
func InitializeDatabase(ctx context.Context, cfg *config.Config) *sqlx.DB {
	dbConn, dialect, err := Open(ctx, cfg)
	if err != nil {
		logger.Error("Error while connecting to database", zap.Error(err))
		os.Exit(1)
	}

	if err := Migrate(ctx, dbConn, dialect); err != nil {
		logger.Error("Error while running migration", zap.Error(err))
		dbConn.Close()
		os.Exit(1)
	}

	logger.Info("Database initialized successfully", zap.String("dialect", dialect))
	return dbConn
}

// Open connects to the backend selected by cfg.DatabaseURL and returns the
// connection together with its goose dialect.
func Open(ctx context.Context, cfg *config.Config) (*sqlx.DB, string, error) {
	dialect, err := cfg.Dialect()
	if err != nil {
		return nil, "", err
	}

	switch dialect {
	case config.DialectSQLite:
		dbConn := utilsdb.GetDBConnection(utilsdb.DatabaseConfig{
			DRIVER: driverNames[dialect],
			DB:     cfg.DataSource(),
		})
		// SQLite serialises writers; one connection avoids SQLITE_BUSY under concurrent requests.
		dbConn.SetMaxOpenConns(1)
		return dbConn, dialect, nil
	default:
		dbConn, err := sqlx.ConnectContext(ctx, driverNames[dialect], cfg.DataSource())
		if err != nil {
			return nil, "", fmt.Errorf("db open error: %w", err)
		}
		return dbConn, dialect, nil
	}
}

// Migrate applies the embedded migrations for dialect
func Migrate(ctx context.Context, dbConn *sqlx.DB, dialect string) error {
	if _, ok := driverNames[dialect]; !ok {
		return fmt.Errorf("unknown dialect %q", dialect)
	}

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, dbConn.DB, "migrations/"+dialect); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}

// CreateMigration writes a new empty SQL migration into dir
func CreateMigration(dir, name string) error {
	if name == "" {
		return fmt.Errorf("migration name is required")
	}
	goose.SetBaseFS(nil)
	return goose.Create(nil, dir, name, "sql")
}

// gooseLogger routes goose output through the service logger
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...interface{}) {
	logger.Info(fmt.Sprintf(format, v...))
}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	logger.Error(fmt.Sprintf(format, v...))
	os.Exit(1)
}
