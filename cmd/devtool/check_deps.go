package main

import (
	"fmt"
	"strings"
)

type CheckDepsCommand struct{}

func (c *CheckDepsCommand) Name() string {
	return "check-deps"
}

func (c *CheckDepsCommand) Description() string {
	return "Check for required development dependencies"
}

func (c *CheckDepsCommand) Run(args []string) error {
	PrintHeader("Checking dependencies...")

	hasError := false

	// Output: go version go1.24.0 linux/amd64
	if version, err := getCommandOutput("go", "version"); err == nil {
		PrintSuccess("Go installed: %s", field(version, 2))
	} else {
		PrintError("Go not found! Install from: https://go.dev/dl/")
		hasError = true
	}

	// Output: Docker version 27.0.3, build 7d4bcd8
	// Docker is only needed for the journal integration tests.
	if version, err := getCommandOutput("docker", "--version"); err == nil {
		PrintSuccess("Docker installed: %s", strings.TrimRight(field(version, 2), ","))
	} else {
		PrintWarning("Docker not found (needed for journal integration tests)")
	}

	// Output: goose version: v3.26.0
	if version, err := getCommandOutput("go", "run", "github.com/pressly/goose/v3/cmd/goose", "--version"); err == nil {
		fields := strings.Fields(version)
		PrintSuccess("Goose available: %s", strings.TrimPrefix(fields[len(fields)-1], "version:"))
	} else {
		PrintWarning("Goose not runnable via go run (needed for migrate status/down/create)")
	}

	if hasError {
		return fmt.Errorf("missing required dependencies")
	}

	PrintSuccess("Environment check complete!")
	return nil
}

// field returns the n-th whitespace separated field of s, or s itself.
func field(s string, n int) string {
	parts := strings.Fields(s)
	if len(parts) > n {
		return parts[n]
	}
	return s
}
