// Package acquire collects a fixed number of distinct jokes from a source.
package acquire

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/okian/jokerank/internal/adapters/source"
	"github.com/okian/jokerank/internal/domain/dedupe"
	"github.com/okian/jokerank/internal/domain/model"
	"github.com/okian/jokerank/pkg/logger"
	"github.com/okian/jokerank/pkg/metrics"
)

// DefaultAttemptFactor bounds attempts per joke when no explicit cap is set.
const DefaultAttemptFactor = 10

// Acquirer runs acquisition cycles against one source. It is safe for
// concurrent use; every call owns its own seen set and output.
type Acquirer struct {
	src         source.Source
	maxAttempts int
	logger      logger.Logger
}

// Option configures an Acquirer.
type Option func(*Acquirer)

// WithMaxAttempts caps source requests per cycle. Values below the target
// count are raised to it; 0 means targetCount*DefaultAttemptFactor.
func WithMaxAttempts(n int) Option {
	return func(a *Acquirer) {
		if n >= 0 {
			a.maxAttempts = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Acquirer) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Acquirer reading from src.
func New(src source.Source, opts ...Option) *Acquirer {
	a := &Acquirer{
		src:    src,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Acquirer) limit(target int) int {
	if a.maxAttempts == 0 {
		return target * DefaultAttemptFactor
	}
	return max(a.maxAttempts, target)
}

// FetchJokes requests single jokes one after another until targetCount
// distinct ids are collected. Repeated ids are skipped without delay. The
// first failed request aborts the cycle and nothing collected so far is
// returned. All jokes come back with zero votes, in acquisition order.
func (a *Acquirer) FetchJokes(ctx context.Context, targetCount int) ([]model.Joke, error) {
	if targetCount < 1 {
		return nil, &AcquisitionError{Target: targetCount, Err: ErrInvalidCount}
	}

	start := time.Now()
	log := a.logger.With(logger.String("cycle", uuid.NewString()), logger.Int("target", targetCount))
	limit := a.limit(targetCount)

	seen := dedupe.NewInMemoryDeduper(dedupe.WithCapacityHint(targetCount))
	out := make([]model.Joke, 0, targetCount)
	attempts := 0

	fail := func(err error) ([]model.Joke, error) {
		aerr := &AcquisitionError{Target: targetCount, Attempts: attempts, Collected: len(out), Err: err}
		metrics.RecordAcquisition(outcomeOf(err), attempts, time.Since(start))
		log.Warn(ctx, "acquisition failed", logger.Int("attempts", attempts), logger.Int("collected", len(out)), logger.Error(err))
		return nil, aerr
	}

	for len(out) < targetCount {
		if attempts >= limit {
			return fail(ErrExhausted)
		}
		if err := ctx.Err(); err != nil {
			return fail(&source.NetworkError{Err: err})
		}

		attempts++
		j, err := a.src.Fetch(ctx)
		if err != nil {
			return fail(err)
		}

		if seen.SeenAndRecord(ctx, j.ID) {
			metrics.RecordDuplicateSkipped()
			log.Debug(ctx, "duplicate joke skipped", logger.String("id", j.ID))
			continue
		}

		out = append(out, model.Joke{ID: j.ID, Text: j.Text})
		metrics.RecordJokeCollected()
	}

	metrics.RecordAcquisition(metrics.OutcomeSuccess, attempts, time.Since(start))
	log.Info(ctx, "jokes acquired",
		logger.Int("attempts", attempts),
		logger.Int("duplicates", attempts-len(out)),
		logger.Duration("took", time.Since(start)),
	)
	return out, nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrExhausted):
		return metrics.OutcomeExhausted
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCanceled
	case errors.Is(err, ErrMalformed):
		return metrics.OutcomeMalformed
	default:
		return metrics.OutcomeNetwork
	}
}
