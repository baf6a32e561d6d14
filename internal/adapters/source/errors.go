package source

import (
	"errors"
	"fmt"
)

// Sentinel kinds for source failures. Typed errors below unwrap to them.
var (
	ErrNetwork   = errors.New("joke source unreachable")
	ErrMalformed = errors.New("malformed joke response")
)

// NetworkError is a transport failure or a non-2xx response.
type NetworkError struct {
	URL        string
	StatusCode int // 0 for transport failures
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: GET %s: status %d", ErrNetwork, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: GET %s: %v", ErrNetwork, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrNetwork}
	}
	return []error{ErrNetwork, e.Err}
}

// MalformedResponseError is a 2xx response that does not carry a joke.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrMalformed, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrMalformed, e.Reason)
}

func (e *MalformedResponseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformed}
	}
	return []error{ErrMalformed, e.Err}
}
