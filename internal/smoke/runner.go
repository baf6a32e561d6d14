package smoke

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/okian/jokerank/pkg/logger"
)

// ErrCheckFailed marks a board that violated an expected property.
var ErrCheckFailed = errors.New("smoke check failed")

// Run executes the complete smoke test against cfg.BaseURL.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Named("smoke")

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	log.Info(ctx, "starting jokerank smoke test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("votes", cfg.Votes),
		logger.Duration("timeout", cfg.Timeout),
		logger.Uint64("seed", seed),
	)

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if err := client.health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Refresh the board
	start := time.Now()
	board, err := client.refresh(ctx)
	if err != nil {
		return stats, fmt.Errorf("refresh failed: %w", err)
	}
	stats.RefreshTook = time.Since(start)
	stats.JokesLoaded = len(board.Jokes)

	if err := check(stats, verifyBoard(board.Jokes), checkFresh(board.Jokes)); err != nil {
		return stats, err
	}
	if board.Status.State != "ready" {
		return stats, fmt.Errorf("%w: state after refresh is %q", ErrCheckFailed, board.Status.State)
	}
	if len(board.Jokes) == 0 {
		return stats, fmt.Errorf("%w: refresh returned an empty board", ErrCheckFailed)
	}
	log.Info(ctx, "board refreshed",
		logger.Int("jokes", len(board.Jokes)),
		logger.Uint64("generation", board.Status.Generation),
		logger.Duration("took", stats.RefreshTook),
	)

	// Step 3: Random votes, tracked locally
	want := make(map[string]int, len(board.Jokes))
	jokes := board.Jokes
	for i := 0; i < cfg.Votes; i++ {
		id := jokes[rng.IntN(len(jokes))].ID
		delta := 1
		if rng.IntN(2) == 0 {
			delta = -1
		}

		start := time.Now()
		next, err := client.vote(ctx, id, delta)
		if err != nil {
			return stats, fmt.Errorf("vote %d failed: %w", i, err)
		}
		stats.MaxVoteLatency = max(stats.MaxVoteLatency, time.Since(start))
		want[id] += delta
		stats.VotesCast++
		if delta > 0 {
			stats.VotesUp++
		} else {
			stats.VotesDown++
		}

		if err := check(stats, verifyBoard(next.Jokes), checkSameIDs(jokes, next.Jokes), checkTallies(next.Jokes, want)); err != nil {
			return stats, fmt.Errorf("after vote %d (%s %+d): %w", i, id, delta, err)
		}
		if cfg.Verbose {
			log.Debug(ctx, "vote applied", logger.String("id", id), logger.Int("delta", delta), logger.String("top", next.Jokes[0].ID))
		}
		jokes = next.Jokes
	}

	// Step 4: An up/down round trip restores the board
	id := jokes[rng.IntN(len(jokes))].ID
	up, err := client.vote(ctx, id, 1)
	if err != nil {
		return stats, fmt.Errorf("round trip up vote failed: %w", err)
	}
	down, err := client.vote(ctx, id, -1)
	if err != nil {
		return stats, fmt.Errorf("round trip down vote failed: %w", err)
	}
	if err := check(stats, verifyBoard(up.Jokes), verifyBoard(down.Jokes), checkRoundTrip(jokes, down.Jokes, id)); err != nil {
		return stats, fmt.Errorf("round trip on %q: %w", id, err)
	}
	stats.RoundTrips++
	jokes = down.Jokes

	// Step 5: Votes for unknown ids and bad deltas change nothing
	unknown := "smoke-" + uuid.NewString()
	after, err := client.vote(ctx, unknown, 1)
	if err != nil {
		return stats, fmt.Errorf("unknown id vote failed: %w", err)
	}
	if err := check(stats, checkIdentical(jokes, after.Jokes)); err != nil {
		return stats, fmt.Errorf("unknown id vote: %w", err)
	}
	stats.UnknownVotes++

	code, err := client.voteStatus(ctx, id, 2)
	if err != nil {
		return stats, fmt.Errorf("invalid delta vote failed: %w", err)
	}
	if code != http.StatusBadRequest {
		return stats, fmt.Errorf("%w: delta 2 returned status %d", ErrCheckFailed, code)
	}

	// Step 6: The listed board matches what we tracked
	final, err := client.list(ctx)
	if err != nil {
		return stats, fmt.Errorf("final list failed: %w", err)
	}
	if err := check(stats, checkIdentical(jokes, final.Jokes), checkTallies(final.Jokes, want)); err != nil {
		return stats, fmt.Errorf("final board: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)
	return stats, nil
}

// check counts passing checks and returns the first failure.
func check(stats *Stats, errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCheckFailed, err)
		}
		stats.ChecksPassed++
	}
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var votesPerSecond float64
	if stats.Duration > 0 {
		votesPerSecond = float64(stats.VotesCast) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("jokesLoaded", stats.JokesLoaded),
		logger.Int("votesCast", stats.VotesCast),
		logger.Int("votesUp", stats.VotesUp),
		logger.Int("votesDown", stats.VotesDown),
		logger.Int("checksPassed", stats.ChecksPassed),
		logger.Int("roundTrips", stats.RoundTrips),
		logger.Int("unknownVotes", stats.UnknownVotes),
		logger.Duration("refreshTook", stats.RefreshTook),
		logger.Duration("maxVoteLatency", stats.MaxVoteLatency),
		logger.Duration("duration", stats.Duration),
		logger.Float64("votesPerSecond", votesPerSecond),
	)
}
