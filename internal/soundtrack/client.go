package soundtrack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultConcurrency = 3
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 10 * time.Second
)

// ErrorPolicy controls how structured errors in a 2xx response are treated.
type ErrorPolicy string

const (
	// ErrorPolicyNone treats any structured error as fatal for the call.
	ErrorPolicyNone ErrorPolicy = "none"
	// ErrorPolicyAll returns partial data alongside the errors for the
	// caller to interpret.
	ErrorPolicyAll ErrorPolicy = "all"
)

type RequestOptions struct {
	ErrorPolicy ErrorPolicy
}

// TokenSource supplies a user-mode bearer token for each request. The
// returned token is already refreshed if necessary.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type ClientConfig struct {
	URL string

	// APIToken enables token mode (Basic auth). Mutually exclusive with
	// Tokens.
	APIToken string

	// Tokens enables user mode (Bearer auth).
	Tokens TokenSource

	Concurrency int
	MaxAttempts int
	RetryDelay  time.Duration
	HTTPClient  *http.Client
}

// Client executes GraphQL operations against the Soundtrack API. A single
// weighted semaphore bounds in-flight requests process-wide; callers above
// the ceiling block in FIFO order until a slot frees. Transient transport
// failures are retried with a fixed backoff; authentication failures abort
// immediately.
type Client struct {
	url         string
	apiToken    string
	tokens      TokenSource
	http        *http.Client
	sem         *semaphore.Weighted
	maxAttempts int
	retryDelay  time.Duration
}

type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		url:         cfg.URL,
		apiToken:    cfg.APIToken,
		tokens:      cfg.Tokens,
		http:        cfg.HTTPClient,
		sem:         semaphore.NewWeighted(int64(cfg.Concurrency)),
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryDelay,
	}
}

// UserMode reports whether the client authenticates with caller-refreshed
// bearer tokens rather than a fixed shared token.
func (c *Client) UserMode() bool {
	return c.tokens != nil
}

// Query runs a GraphQL query document.
func (c *Client) Query(ctx context.Context, document string, variables any, opts *RequestOptions) (*Response, error) {
	return c.run(ctx, document, variables, opts)
}

// Mutate runs a GraphQL mutation document.
func (c *Client) Mutate(ctx context.Context, document string, variables any, opts *RequestOptions) (*Response, error) {
	return c.run(ctx, document, variables, opts)
}

func (c *Client) run(ctx context.Context, document string, variables any, opts *RequestOptions) (*Response, error) {
	if opts == nil {
		opts = &RequestOptions{ErrorPolicy: ErrorPolicyNone}
	}

	body, err := json.Marshal(map[string]any{
		"query":     document,
		"variables": variables,
	})
	if err != nil {
		return nil, fmt.Errorf("soundtrack: failed to marshal request: %w", err)
	}

	// The slot is held across retries so a call waiting out its backoff
	// still counts against the remote API's per-key budget.
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.sem.Release(1)

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err := c.doOnce(ctx, body)
		if err == nil {
			if len(resp.Errors) > 0 && opts.ErrorPolicy != ErrorPolicyAll {
				for i, gqlErr := range resp.Errors {
					log.Error().
						Int("index", i+1).
						Int("total", len(resp.Errors)).
						Str("error", gqlErr.Error()).
						Msg("GraphQL request returned error")
				}
				return nil, &ResponseError{Errors: resp.Errors}
			}
			return resp, nil
		}

		// Credential problems are not transient: a rejected or missing
		// credential fails the same way on every attempt.
		var authErr *AuthError
		if errors.As(err, &authErr) || errors.Is(err, ErrNotAuthenticated) {
			return nil, err
		}

		lastErr = err
		if attempt == c.maxAttempts {
			break
		}

		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", c.maxAttempts).
			Dur("retry_delay", c.retryDelay).
			Msg("Soundtrack request failed, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}

	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, body []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("soundtrack: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	logRateLimit(resp)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &AuthError{StatusCode: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	var parsed Response
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("soundtrack: failed to parse response: %w", err)
	}
	return &parsed, nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return err
		}
		if token == "" {
			return ErrNotAuthenticated
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return nil
	}
	req.Header.Set("Authorization", "Basic "+c.apiToken)
	return nil
}

// Rate-limit telemetry is logged for operators but never enforced locally;
// enforcement is the concurrency ceiling.
func logRateLimit(resp *http.Response) {
	cost := resp.Header.Get("X-Ratelimiting-Cost")
	remaining := resp.Header.Get("X-Ratelimiting-Tokens-Available")
	if cost == "" && remaining == "" {
		return
	}
	log.Debug().
		Str("cost", cost).
		Str("tokens_available", remaining).
		Msg("Soundtrack rate limit")
}
