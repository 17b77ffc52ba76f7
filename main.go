package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"contact-book/config"
	"contact-book/database"
	"contact-book/server"

	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	commandFlag := flag.String("command", "start", "Command to run: start, migrate or create-migration")
	nameFlag := flag.String("name", "", "Migration name (alphanum+underscore only)")
	dirFlag := flag.String("dir", "database/migrations/"+config.DialectSQLite, "Target directory for the new .sql file")
	cfg.BindFlags(flag.CommandLine)
	flag.Parse()

	if *commandFlag == "" {
		fmt.Println("Usage: go run main.go --command <command-name> [... other options]")
		os.Exit(1)
	}

	server.InitLogger()

	switch *commandFlag {
	case "start":
		server.StartServer(cfg)
	case "migrate":
		dbConn := database.InitializeDatabase(context.Background(), cfg)
		dbConn.Close()
	case "create-migration":
		if err := database.CreateMigration(*dirFlag, *nameFlag); err != nil {
			logger.Error("Failed to create migration", zap.Error(err))
			os.Exit(1)
		}
	default:
		fmt.Printf("Unknown command %q\n", *commandFlag)
		os.Exit(1)
	}
}
