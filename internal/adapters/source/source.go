// Package source fetches single jokes from the remote joke API.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/okian/jokerank/internal/domain/model"
	"github.com/okian/jokerank/pkg/logger"
	"github.com/okian/jokerank/pkg/metrics"
)

const (
	defaultTimeout   = 5 * time.Second
	defaultUserAgent = "jokerank"
	maxBodyBytes     = 64 << 10
)

// Source returns one random joke per call. Votes on the result are always 0.
type Source interface {
	Fetch(ctx context.Context) (model.Joke, error)
}

// HTTPSource requests jokes from a JSON endpoint such as icanhazdadjoke.com.
type HTTPSource struct {
	url       string
	userAgent string
	client    *http.Client
	logger    logger.Logger
}

// Option configures an HTTPSource.
type Option func(*HTTPSource)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *HTTPSource) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithTimeout bounds each request. Ignored when WithHTTPClient is also used.
func WithTimeout(d time.Duration) Option {
	return func(s *HTTPSource) {
		if d > 0 {
			s.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *HTTPSource) {
		if c != nil {
			s.client = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *HTTPSource) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewHTTPSource creates a source for endpoint.
func NewHTTPSource(endpoint string, opts ...Option) *HTTPSource {
	s := &HTTPSource{
		url:       endpoint,
		userAgent: defaultUserAgent,
		client:    &http.Client{Timeout: defaultTimeout},
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// wire shape of a single joke, e.g. {"id":"R7UfaahVfFd","joke":"...","status":200}
type remoteJoke struct {
	ID   string `json:"id"`
	Joke string `json:"joke"`
}

// Fetch performs one GET and decodes the joke.
func (s *HTTPSource) Fetch(ctx context.Context) (model.Joke, error) {
	start := time.Now()
	j, err := s.fetch(ctx)
	metrics.RecordSourceRequest(outcome(err), time.Since(start))
	if err != nil {
		metrics.RecordErrorByComponent("source", outcome(err))
		s.logger.Debug(ctx, "joke request failed", logger.String("url", s.url), logger.Error(err))
		return model.Joke{}, err
	}
	return j, nil
}

func (s *HTTPSource) fetch(ctx context.Context) (model.Joke, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return model.Joke{}, &NetworkError{URL: s.url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return model.Joke{}, &NetworkError{URL: s.url, Err: err}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.Joke{}, &NetworkError{URL: s.url, StatusCode: resp.StatusCode}
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "" && !strings.Contains(strings.ToLower(ct), "json") {
		return model.Joke{}, &MalformedResponseError{Reason: "unexpected content type " + ct}
	}

	// Decode to UTF-8 according to the declared charset.
	body, err := charset.NewReader(io.LimitReader(resp.Body, maxBodyBytes), ct)
	if err != nil {
		return model.Joke{}, &MalformedResponseError{Reason: "unsupported charset", Err: err}
	}

	var rj remoteJoke
	if err := json.NewDecoder(body).Decode(&rj); err != nil {
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return model.Joke{}, &NetworkError{URL: s.url, Err: err}
		}
		return model.Joke{}, &MalformedResponseError{Reason: "invalid json", Err: err}
	}
	switch {
	case strings.TrimSpace(rj.ID) == "":
		return model.Joke{}, &MalformedResponseError{Reason: "missing id"}
	case strings.TrimSpace(rj.Joke) == "":
		return model.Joke{}, &MalformedResponseError{Reason: "missing joke"}
	}
	return model.Joke{ID: rj.ID, Text: rj.Joke}, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCanceled
	case errors.Is(err, ErrMalformed):
		return metrics.OutcomeMalformed
	default:
		return metrics.OutcomeNetwork
	}
}
