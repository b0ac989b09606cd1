package main

import (
	"fmt"
	"os"
)

const (
	cmdRun     = "run"
	cmdTUI     = "tui"
	cmdVersion = "version"
)

func main() {
	command := cmdRun
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	var err error
	switch command {
	case cmdRun:
		err = run(modeHeadless)
	case cmdTUI:
		err = run(modeTerminal)
	case cmdVersion:
		printVersion()
	case "-h", "--help", "help":
		printUsage()
	default:
		printUsage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "marketsync: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: marketsync [command]")
	fmt.Println("Commands:")
	fmt.Println("  run      Sync the feed and serve the HTTP API (default)")
	fmt.Println("  tui      Sync the feed with a status terminal")
	fmt.Println("  version  Print build information")
	fmt.Println()
	fmt.Println("Configuration is read from the environment and an optional .env file.")
}
