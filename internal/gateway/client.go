package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// client wraps vendor HTTP calls in a circuit breaker so a degraded vendor
// fails fast instead of tying up request handlers for the full HTTP timeout.
type client struct {
	name    string
	baseURL string
	apiKey  string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func newClient(name, baseURL, apiKey string, logger *zap.Logger) *client {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("payment gateway breaker state changed",
				zap.String("gateway", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &client{
		name:    name,
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// post sends a vendor API call through the breaker. Transport errors and 5xx
// responses count as breaker failures; a 4xx is the vendor healthily
// rejecting this request and must not trip the breaker.
func (c *client) post(ctx context.Context, path string, body interface{}, dest interface{}) error {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		rejection, callErr := c.doPost(ctx, path, body, dest)
		if callErr != nil {
			return nil, callErr
		}
		return rejection, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return fmt.Errorf("%s gateway unavailable: %w", c.name, err)
		}
		return err
	}
	if result != nil {
		return result.(error)
	}
	return nil
}

// doPost returns the vendor's rejection (4xx) separately from transport and
// server failures so the breaker only counts the latter.
func (c *client) doPost(ctx context.Context, path string, body interface{}, dest interface{}) (error, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", c.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", c.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s unreachable: %w", c.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", c.name, err)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%s server error: %s", c.name, resp.Status)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%s rejected request: %s: %s", c.name, resp.Status, respBody), nil
	}

	if dest != nil {
		if err := json.Unmarshal(respBody, dest); err != nil {
			return nil, fmt.Errorf("%s response malformed: %w", c.name, err)
		}
	}
	return nil, nil
}
