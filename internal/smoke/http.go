package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var r io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	return resp.StatusCode, data, nil
}

// board performs a request expected to return a Board with 200.
func (c *HTTPClient) board(ctx context.Context, method, path string, body any) (Board, error) {
	status, data, err := c.do(ctx, method, path, body)
	if err != nil {
		return Board{}, err
	}
	if status != http.StatusOK {
		return Board{}, fmt.Errorf("%s %s: status %d: %s", method, path, status, bytes.TrimSpace(data))
	}
	var b Board
	if err := json.Unmarshal(data, &b); err != nil {
		return Board{}, fmt.Errorf("%s %s: decode board: %w", method, path, err)
	}
	return b, nil
}

func (c *HTTPClient) health(ctx context.Context) error {
	status, _, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("health check returned status %d", status)
	}
	return nil
}

func (c *HTTPClient) refresh(ctx context.Context) (Board, error) {
	return c.board(ctx, http.MethodPost, "/jokes/refresh", nil)
}

func (c *HTTPClient) list(ctx context.Context) (Board, error) {
	return c.board(ctx, http.MethodGet, "/jokes", nil)
}

func (c *HTTPClient) vote(ctx context.Context, id string, delta int) (Board, error) {
	return c.board(ctx, http.MethodPost, "/jokes/"+id+"/vote", map[string]int{"delta": delta})
}

// voteStatus returns only the HTTP status of a vote, for negative checks.
func (c *HTTPClient) voteStatus(ctx context.Context, id string, delta int) (int, error) {
	status, _, err := c.do(ctx, http.MethodPost, "/jokes/"+id+"/vote", map[string]int{"delta": delta})
	return status, err
}
