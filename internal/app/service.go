// Package service holds the joke board and implements the dependencies
// required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okian/jokerank/internal/domain/model"
	"github.com/okian/jokerank/internal/domain/ranking"
	"github.com/okian/jokerank/pkg/logger"
	"github.com/okian/jokerank/pkg/metrics"
)

const defaultJokeCount = 5

// Fetcher acquires a list of distinct jokes. *acquire.Acquirer implements it.
type Fetcher interface {
	FetchJokes(ctx context.Context, targetCount int) ([]model.Joke, error)
}

// State is the coarse board state shown to the view layer.
type State string

const (
	StateEmpty   State = "empty"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed" // the view offers a retry
)

// Status describes the latest refresh.
type Status struct {
	State      State     `json:"state"`
	Generation uint64    `json:"generation"`
	LastError  string    `json:"last_error,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Service owns the current board. The lock is never held across a fetch.
type Service struct {
	mu sync.RWMutex

	board      ranking.State
	status     Status
	generation uint64

	// Configuration
	jokeCount    int
	fetchOnStart bool
	fetcher      Fetcher
	clock        clockwork.Clock

	// Lifecycle
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithJokeCount sets how many jokes a refresh collects.
func WithJokeCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.jokeCount = n
		}
	}
}

// WithFetcher sets the joke acquirer.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) {
		s.fetcher = f
	}
}

// WithFetchOnStart makes Start trigger an initial refresh in the background.
func WithFetchOnStart(enabled bool) Option {
	return func(s *Service) {
		s.fetchOnStart = enabled
	}
}

// WithClock sets the clock used for status timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service holding an empty board.
func New(opts ...Option) *Service {
	s := &Service{
		jokeCount: defaultJokeCount,
		clock:     clockwork.NewRealClock(),
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.board = ranking.Reduce(ranking.State{}, ranking.Cleared{})
	s.status = Status{State: StateEmpty, UpdatedAt: s.clock.Now()}
	return s
}

// Start marks the service as running and, if configured, kicks off the
// first refresh. Start does not wait for it.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.started = true

	s.logger.Info(ctx, "joke board started",
		logger.Int("jokeCount", s.jokeCount),
		logger.Bool("fetchOnStart", s.fetchOnStart),
	)

	if s.fetchOnStart {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.Refresh(runCtx); err != nil {
				s.logger.Warn(runCtx, "initial refresh failed", logger.Error(err))
			}
		}()
	}
	return nil
}

// Stop cancels background refreshes and waits for them to return.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.logger.Info(context.Background(), "joke board stopped")
}

// Refresh clears the board and replaces it with a new acquisition. If another
// Refresh starts while this one is fetching, this result is dropped and
// ErrSuperseded is returned. On failure the board stays empty.
func (s *Service) Refresh(ctx context.Context) error {
	const op = "service.Refresh"

	if s.fetcher == nil {
		return fmt.Errorf("%s: %w", op, ErrNoFetcher)
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.board = ranking.Reduce(s.board, ranking.Cleared{})
	s.status = Status{State: StateLoading, Generation: gen, UpdatedAt: s.clock.Now()}
	s.mu.Unlock()

	metrics.UpdateGeneration(gen)
	metrics.UpdateListSize(0)
	metrics.RefreshStarted()
	defer metrics.RefreshFinished()

	s.logger.Debug(ctx, "refresh started", logger.Uint64("generation", gen))
	jokes, err := s.fetcher.FetchJokes(ctx, s.jokeCount)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		metrics.RecordStaleRefresh()
		s.logger.Info(ctx, "dropping stale refresh result",
			logger.Uint64("generation", gen),
			logger.Uint64("current", s.generation),
			logger.Bool("failed", err != nil),
		)
		return fmt.Errorf("%s: generation %d: %w", op, gen, ErrSuperseded)
	}

	if err != nil {
		s.status = Status{State: StateFailed, Generation: gen, LastError: err.Error(), UpdatedAt: s.clock.Now()}
		metrics.RecordErrorByComponent("service", "refresh")
		s.logger.Error(ctx, "refresh failed", logger.Uint64("generation", gen), logger.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.board = ranking.Reduce(s.board, ranking.Loaded{Jokes: jokes})
	s.status = Status{State: StateReady, Generation: gen, UpdatedAt: s.clock.Now()}
	metrics.UpdateListSize(len(s.board.Jokes))
	s.logger.Info(ctx, "board refreshed",
		logger.Uint64("generation", gen),
		logger.Int("jokes", len(s.board.Jokes)),
	)
	return nil
}

// Vote applies one vote and returns the re-sorted board. An unknown id leaves
// the board unchanged and is not an error.
func (s *Service) Vote(ctx context.Context, id string, delta model.Delta) ([]model.Joke, error) {
	if !delta.Valid() {
		return nil, fmt.Errorf("service.Vote: %d: %w", delta, ErrInvalidDelta)
	}

	s.mu.Lock()
	s.board = ranking.Reduce(s.board, ranking.Voted{ID: id, Delta: delta})
	matched := s.board.LastVoteMatched
	out := slices.Clone(s.board.Jokes)
	s.mu.Unlock()

	metrics.RecordVote(int(delta), matched)
	if !matched {
		s.logger.Debug(ctx, "vote for unknown joke ignored", logger.String("id", id))
	}
	return out, nil
}

// Jokes returns a copy of the current board, best first.
func (s *Service) Jokes(_ context.Context) []model.Joke {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Joke, len(s.board.Jokes))
	copy(out, s.board.Jokes)
	return out
}

// Status returns the state of the latest refresh.
func (s *Service) Status(_ context.Context) Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, j := range s.board.Jokes {
		total += j.Votes
	}

	return map[string]interface{}{
		"started":    s.started,
		"jokeCount":  s.jokeCount,
		"generation": s.generation,
		"state":      string(s.status.State),
		"listSize":   len(s.board.Jokes),
		"totalVotes": total,
		"updatedAt":  s.status.UpdatedAt,
	}
}
