package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/sprinkle-fairydust/site-api/internal/config"
	"github.com/sprinkle-fairydust/site-api/internal/logger"
	"github.com/sprinkle-fairydust/site-api/migrations"
	"go.uber.org/zap"
)

const usage = "usage: migrate [up|up-to VERSION|down|redo|reset|status|version|create NAME]"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Migration error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf(usage)
	}
	command, arguments := args[0], args[1:]

	// create only writes a new file into ./migrations
	if command == "create" {
		if len(arguments) == 0 {
			return fmt.Errorf("create requires a migration name")
		}
		goose.SetSequential(true)
		if err := goose.Create(nil, "migrations", arguments[0], "sql"); err != nil {
			return fmt.Errorf("failed to create migration: %w", err)
		}
		return nil
	}

	ctx := context.Background()

	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Database credentials may live in Key Vault outside development
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	log.Info("Running migration command",
		zap.String("command", command),
		zap.String("database", cfg.Database.Name),
	)

	switch command {
	case "up":
		err = goose.UpContext(ctx, db, ".")
	case "up-to":
		var version int64
		if len(arguments) == 0 {
			return fmt.Errorf("up-to requires a version")
		}
		if version, err = strconv.ParseInt(arguments[0], 10, 64); err != nil {
			return fmt.Errorf("invalid version %q: %w", arguments[0], err)
		}
		err = goose.UpToContext(ctx, db, ".", version)
	case "down":
		err = goose.DownContext(ctx, db, ".")
	case "redo":
		err = goose.RedoContext(ctx, db, ".")
	case "reset":
		err = goose.ResetContext(ctx, db, ".")
	case "status":
		err = goose.StatusContext(ctx, db, ".")
	case "version":
		err = goose.VersionContext(ctx, db, ".")
	default:
		return fmt.Errorf("unknown command: %s\n%s", command, usage)
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}

	log.Info("Migration command finished", zap.String("command", command))
	return nil
}
