package main

import (
	"context"
	"fmt"
	"time"

	"github.com/osse101/marketsync/internal/database"
)

const (
	waitForDBRetries  = 30
	waitForDBInterval = 2 * time.Second
)

type WaitForDBCommand struct{}

func (c *WaitForDBCommand) Name() string {
	return "wait-for-db"
}

func (c *WaitForDBCommand) Description() string {
	return "Wait for the journal database to be ready (with retries)"
}

func (c *WaitForDBCommand) Run(args []string) error {
	PrintHeader("Waiting for database...")

	dbURL, err := databaseURL()
	if err != nil {
		return err
	}

	for i := 0; i < waitForDBRetries; i++ {
		if err = ping(dbURL); err == nil {
			PrintSuccess("Database is ready")
			return nil
		}
		fmt.Printf("Database not ready (%d/%d): %v\n", i+1, waitForDBRetries, err)
		time.Sleep(waitForDBInterval)
	}

	return fmt.Errorf("database failed to become ready after %d attempts", waitForDBRetries)
}

func ping(dbURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), waitForDBInterval)
	defer cancel()

	pool, err := database.NewPool(ctx, dbURL, database.DefaultPoolOptions())
	if err != nil {
		return err
	}
	defer pool.Close()
	return pool.Ping(ctx)
}
