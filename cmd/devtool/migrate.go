package main

import (
	"context"
	"fmt"
	"time"

	"github.com/osse101/marketsync/internal/database"
)

const (
	migrationsDir  = "internal/database/migrations"
	migrateTimeout = 2 * time.Minute
)

type MigrateCommand struct{}

func (c *MigrateCommand) Name() string {
	return "migrate"
}

func (c *MigrateCommand) Description() string {
	return "Manage journal migrations (up, down, status, create)"
}

func (c *MigrateCommand) Run(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("subcommand required: up, down, status, create")
	}
	subcmd := args[0]

	gooseArgs := []string{"run", "github.com/pressly/goose/v3/cmd/goose", "-dir", migrationsDir}

	if subcmd == "create" {
		if len(args) < 2 {
			return fmt.Errorf("migration name required for create")
		}
		migrationType := "sql"
		if len(args) > 2 {
			migrationType = args[2]
		}
		gooseArgs = append(gooseArgs, "create", args[1], migrationType)
		return runCommandVerbose("go", gooseArgs...)
	}

	dbURL, err := databaseURL()
	if err != nil {
		return err
	}

	// up runs the same embedded migrations the service applies on start.
	if subcmd == "up" {
		PrintHeader("Applying journal migrations...")
		ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
		defer cancel()

		pool, err := database.NewPool(ctx, dbURL, database.DefaultPoolOptions())
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
		PrintSuccess("Migrations applied")
		return nil
	}

	gooseArgs = append(gooseArgs, "postgres", dbURL, subcmd)
	if len(args) > 1 {
		gooseArgs = append(gooseArgs, args[1:]...)
	}
	return runCommandVerbose("go", gooseArgs...)
}

// databaseURL returns DATABASE_URL, the same variable the service reads.
func databaseURL() (string, error) {
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		return "", fmt.Errorf("DATABASE_URL is not set")
	}
	return dbURL, nil
}
