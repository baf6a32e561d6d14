// Package config defines service configuration and its layered loader.
package config

import (
	"context"
	"time"
)

// Defaults.
const (
	DefaultAddr             = ":9080"
	DefaultEndpointURL      = "https://icanhazdadjoke.com/"
	DefaultUserAgent        = "jokerank (https://github.com/okian/jokerank)"
	DefaultJokeCount        = 5
	DefaultMaxAttemptFactor = 10
	DefaultRequestTimeoutMS = 5000
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// EndpointURL is the remote source returning one JSON joke per GET.
	EndpointURL string `koanf:"endpoint_url"`

	// UserAgent is sent with every source request.
	UserAgent string `koanf:"user_agent"`

	// JokeCount is the number of distinct jokes per acquisition cycle.
	JokeCount int `koanf:"joke_count"`

	// MaxAttempts caps source requests per cycle, duplicates included.
	MaxAttempts int `koanf:"max_attempts"`

	// RequestTimeoutMS bounds a single source request.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// FetchOnStart runs one acquisition when the service starts.
	FetchOnStart bool `koanf:"fetch_on_start"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             DefaultAddr,
		EndpointURL:      DefaultEndpointURL,
		UserAgent:        DefaultUserAgent,
		JokeCount:        DefaultJokeCount,
		MaxAttempts:      DefaultJokeCount * DefaultMaxAttemptFactor,
		RequestTimeoutMS: DefaultRequestTimeoutMS,
		FetchOnStart:     true,
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// Validate reports the first invalid setting, wrapped with ErrInvalidConfig.
func (c *Config) Validate(_ context.Context) error {
	switch {
	case c.Addr == "":
		return invalid("addr must not be empty")
	case c.EndpointURL == "":
		return invalid("endpoint_url must not be empty")
	case c.JokeCount < 1:
		return invalid("joke_count must be at least 1")
	case c.MaxAttempts < c.JokeCount:
		return invalid("max_attempts must be at least joke_count")
	case c.RequestTimeoutMS <= 0:
		return invalid("request_timeout_ms must be positive")
	}
	return nil
}
