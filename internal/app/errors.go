package service

import "errors"

var (
	// ErrNoFetcher is returned by Refresh when the service has no acquirer.
	ErrNoFetcher = errors.New("no joke fetcher configured")
	// ErrSuperseded is returned by a Refresh whose result was dropped because a
	// newer refresh started while it was running.
	ErrSuperseded = errors.New("refresh superseded by a newer one")
	// ErrInvalidDelta rejects votes other than +1 and -1.
	ErrInvalidDelta = errors.New("vote delta must be +1 or -1")
)
