package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TransportError covers everything that prevented a usable response: network
// failures, an open circuit breaker, unreadable or malformed bodies.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a non-2xx answer. Body is kept so callers can pull the
// provider's own message out of it.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d", e.Provider, e.StatusCode)
}

type BaseClient struct {
	name           string
	client         HTTPClient
	logger         *zap.Logger
	circuitBreaker *gobreaker.CircuitBreaker
}

type ClientConfig struct {
	Timeout          time.Duration
	BreakerThreshold uint32
	BreakerInterval  time.Duration
	BreakerTimeout   time.Duration
	// HTTPClient overrides the default client built from Timeout.
	HTTPClient HTTPClient
}

func NewBaseClient(name string, config ClientConfig, logger *zap.Logger) *BaseClient {
	var httpClient HTTPClient = &http.Client{
		Timeout: config.Timeout,
	}
	if config.HTTPClient != nil {
		httpClient = config.HTTPClient
	}

	threshold := config.BreakerThreshold
	if threshold == 0 {
		threshold = 5
	}

	breakerSettings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    config.BreakerInterval,
		Timeout:     config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// A 4xx is the caller's problem, not the provider's.
		IsSuccessful: func(err error) bool {
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return statusErr.StatusCode < 500
			}
			return err == nil
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				zap.String("client", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &BaseClient{
		name:           name,
		client:         httpClient,
		logger:         logger,
		circuitBreaker: gobreaker.NewCircuitBreaker(breakerSettings),
	}
}

func (c *BaseClient) Name() string {
	return c.name
}

// GetJSON issues a single GET and decodes the 2xx body into out.
func (c *BaseClient) GetJSON(ctx context.Context, rawURL string, out interface{}) error {
	_, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return nil, c.doGet(ctx, rawURL, out)
	})
	if err == nil {
		return nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &TransportError{Provider: c.name, Err: err}
	}
	return err
}

func (c *BaseClient) doGet(ctx context.Context, rawURL string, out interface{}) error {
	start := time.Now()
	target := redact(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &TransportError{Provider: c.name, Err: fmt.Errorf("creating request failed: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("HTTP request failed",
			zap.String("client", c.name),
			zap.String("url", target),
			zap.Error(err))
		return &TransportError{Provider: c.name, Err: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Debug("Failed to close response body",
				zap.String("client", c.name),
				zap.Error(cerr))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Provider: c.name, Err: fmt.Errorf("reading body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Provider returned error status",
			zap.String("client", c.name),
			zap.String("url", target),
			zap.Int("status", resp.StatusCode))
		return &StatusError{Provider: c.name, StatusCode: resp.StatusCode, Body: body}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &TransportError{Provider: c.name, Err: fmt.Errorf("failed to parse response: %w", err)}
	}

	c.logger.Debug("Request successful",
		zap.String("client", c.name),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Int("body_size", len(body)),
		zap.Duration("duration", time.Since(start)))

	return nil
}

// redact drops the query string so API keys never reach the logs.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	return u.String()
}
