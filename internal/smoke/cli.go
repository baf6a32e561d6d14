package smoke

import (
	"fmt"
	"os"

	"github.com/okian/jokerank/pkg/logger"
)

// SetupLogging initializes the global logger for the smoke tool.
func SetupLogging(verbose bool) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the smoke tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`jokerank smoke test
===================

Drives a running jokerank service: refreshes the board, casts random votes
and checks after every step that the board stays consistent.

Usage:
  go run ./cmd/smoke [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -votes int
        Number of random votes to cast (default 100)
  -timeout duration
        HTTP request timeout, refresh included (default 30s)
  -seed uint
        Seed for vote selection (default: current time)
  -verbose
        Log every vote
  -help
        Show this help message

Examples:
  # Smoke test a local service
  go run ./cmd/smoke

  # More votes against another host
  go run ./cmd/smoke -url http://localhost:8080 -votes 1000 -verbose
`)
}
