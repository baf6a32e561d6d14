package acquire

import (
	"errors"
	"fmt"

	"github.com/okian/jokerank/internal/adapters/source"
)

// Failure kinds. An *AcquisitionError always unwraps to exactly one of them.
var (
	ErrNetwork      = source.ErrNetwork
	ErrMalformed    = source.ErrMalformed
	ErrExhausted    = errors.New("attempt limit reached before enough distinct jokes were collected")
	ErrInvalidCount = errors.New("target count must be at least 1")
)

// AcquisitionError is the single failure value of FetchJokes. Jokes collected
// before the failure are discarded; Collected only reports how many there were.
type AcquisitionError struct {
	Target    int
	Attempts  int
	Collected int
	Err       error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquire %d jokes: %d attempts, %d collected: %v", e.Target, e.Attempts, e.Collected, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }
