package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/jokerank/internal/smoke"
)

// Default configuration constants.
const (
	defaultVotes       = 100
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		votes   = flag.Int("votes", defaultVotes, "Number of random votes to cast")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout, refresh included")
		seed    = flag.Uint64("seed", 0, "Seed for vote selection (default: current time)")
		verbose = flag.Bool("verbose", false, "Log every vote")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		smoke.ShowHelp()
		return
	}

	if err := smoke.SetupLogging(*verbose); err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	cfg := &smoke.Config{
		BaseURL: *baseURL,
		Votes:   *votes,
		Timeout: *timeout,
		Seed:    *seed,
		Verbose: *verbose,
	}

	if _, err := smoke.Run(ctx, cfg); err != nil {
		_, _ = os.Stderr.WriteString("Smoke test failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1) //nolint:gocritic // cancel called above
	}
}
