package mondialrelay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sony/gobreaker"
	"github.com/tournevent/mondialrelay/pkg/shipper"
)

const (
	// maxAttempts allows one retry for transient network failures.
	maxAttempts      = 2
	maxResponseBytes = 10 << 20
	maxErrorBody     = 512
)

// HTTPAPIClient is the production implementation of APIClient using HTTP/XML.
type HTTPAPIClient struct {
	baseURL    string
	httpClient *http.Client
	retryDelay time.Duration
	breaker    *gobreaker.CircuitBreaker
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	RetryDelay time.Duration
	// BreakerFailures is the number of consecutive transport failures that
	// opens the circuit. Zero uses the default of 5.
	BreakerFailures uint32
	// BreakerTimeout is how long the circuit stays open.
	BreakerTimeout time.Duration
	// OnBreakerStateChange is called when the circuit changes state.
	OnBreakerStateChange func(from, to string)
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	retryDelay := cfg.RetryDelay
	if retryDelay == 0 {
		retryDelay = 250 * time.Millisecond
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	breakerTimeout := cfg.BreakerTimeout
	if breakerTimeout == 0 {
		breakerTimeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        carrierName,
		MaxRequests: 1,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: carrierReachable,
	}
	if cfg.OnBreakerStateChange != nil {
		settings.OnStateChange = func(_ string, from, to gobreaker.State) {
			cfg.OnBreakerStateChange(from.String(), to.String())
		}
	}

	return &HTTPAPIClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retryDelay: retryDelay,
		breaker:    gobreaker.NewCircuitBreaker(settings),
	}
}

// CreateShipment posts a shipment creation request and decodes the response.
func (c *HTTPAPIClient) CreateShipment(ctx context.Context, req *ShipmentRequest) (*ShipmentResponse, error) {
	body, err := EncodeShipmentRequest(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shipper.ErrInvalidRequest, err)
	}

	respBody, err := c.send(ctx, body)
	if err != nil {
		return nil, err
	}

	return DecodeShipmentResponse(respBody)
}

// ============================================================================
// HTTP Helpers
// ============================================================================

func (c *HTTPAPIClient) send(ctx context.Context, body []byte) ([]byte, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return backoff.Retry(ctx,
			func() ([]byte, error) { return c.doRequest(ctx, body) },
			backoff.WithBackOff(backoff.NewConstantBackOff(c.retryDelay)),
			backoff.WithMaxTries(maxAttempts),
		)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, transportError("carrier temporarily unavailable", err)
		}
		var shipperErr *shipper.ShipperError
		if errors.As(err, &shipperErr) {
			return nil, err
		}
		return nil, transportError("request failed", err)
	}
	return out.([]byte), nil
}

// doRequest performs one POST. Errors that must not be retried are wrapped
// with backoff.Permanent.
func (c *HTTPAPIClient) doRequest(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(transportError("failed to create request", err))
	}
	req.Header.Set("Content-Type", "text/xml")
	req.Header.Set("Accept", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.classifyNetworkError(ctx, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, backoff.Permanent(httpStatusError(resp.StatusCode, string(snippet)))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, c.classifyNetworkError(ctx, "failed to read response", err)
	}
	return data, nil
}

func (c *HTTPAPIClient) classifyNetworkError(ctx context.Context, message string, err error) error {
	if ctx.Err() == nil && isTransient(err) {
		return transportError(message, err).WithRetryable(true)
	}
	return backoff.Permanent(transportError(message, err))
}

// carrierReachable reports whether a send outcome says nothing against the
// carrier's availability: caller cancellations and 4xx answers don't count
// as breaker failures.
func carrierReachable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var shipperErr *shipper.ShipperError
	if errors.As(err, &shipperErr) {
		return shipperErr.StatusCode >= 400 && shipperErr.StatusCode < 500
	}
	return false
}

// isTransient reports connection resets, timeouts and truncated reads.
func isTransient(err error) bool {
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

var _ APIClient = (*HTTPAPIClient)(nil)
