// Package client provides the rate-limited Terraform Cloud HTTP executor
// with request budgeting, Retry-After handling, and error classification.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/obsidianops/tfc-collector/pkg/logging"
	"github.com/obsidianops/tfc-collector/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for Terraform Cloud client operations.
var (
	tfcRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tfc_requests_total",
		Help: "Total Terraform Cloud requests by endpoint and status",
	}, []string{"endpoint", "status"})

	tfcRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tfc_request_duration_seconds",
		Help:    "Terraform Cloud request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"endpoint"})

	tfcRateLimitWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tfc_rate_limit_waits_total",
		Help: "Total number of rate-limit waits",
	})

	tfcRateLimitWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tfc_rate_limit_wait_seconds",
		Help:    "Advertised Retry-After wait durations",
		Buckets: []float64{1, 2, 5, 10, 30, 60},
	})
)

// DefaultBaseURL is the Terraform Cloud API root.
const DefaultBaseURL = "https://app.terraform.io/api/v2"

// mediaType is the JSON:API document media type the API speaks.
const mediaType = "application/vnd.api+json"

// Config holds the client configuration.
type Config struct {
	// Token is the Terraform Cloud API token, sent as a bearer credential.
	Token string

	// BaseURL is the API root without a trailing slash.
	// Defaults to DefaultBaseURL.
	BaseURL string

	// MaxConcurrentRequests bounds how many requests may be in flight at
	// once across all callers of this client.
	MaxConcurrentRequests int

	// Timeout is the overall per-request timeout. A timed-out request is a
	// transport fault and is not retried.
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(token string) Config {
	return Config{
		Token:                 token,
		BaseURL:               DefaultBaseURL,
		MaxConcurrentRequests: 10,
		Timeout:               30 * time.Second,
	}
}

// Client is the rate-limited Terraform Cloud API client. A rate-limited
// response is retried transparently after the server's advertised wait, with
// no retry ceiling: the advertised wait is trusted to be bounded.
type Client struct {
	httpClient *http.Client
	budget     *ratelimit.Budget
	config     Config
	logger     zerolog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// New creates a new Terraform Cloud client.
func New(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("api token is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if cfg.MaxConcurrentRequests <= 0 {
		return nil, fmt.Errorf("max concurrent requests must be > 0 (got %d)", cfg.MaxConcurrentRequests)
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %s)", cfg.Timeout)
	}

	logger := logging.NewLogger(logging.ComponentClient)

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		budget: ratelimit.NewBudget(cfg.MaxConcurrentRequests),
		config: cfg,
		logger: logger,
		sleep:  sleepContext,
	}, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Get fetches one page from the API. One request budget permit is held for
// the duration of each outbound attempt and returned before any rate-limit
// sleep, so waiting requests never starve the budget.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) (*Page, error) {
	endpoint := endpointLabel(rawURL)

	startTime := time.Now()
	defer func() {
		tfcRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	for {
		page, retryAfter, err := c.doOnce(ctx, rawURL, params, endpoint)
		if err != nil {
			return nil, err
		}
		if page != nil {
			return page, nil
		}

		// Rate limited. The permit has already been returned; wait out the
		// advertised window, then retry the same request.
		tfcRateLimitWaitsTotal.Inc()
		tfcRateLimitWaitSeconds.Observe(retryAfter.Seconds())

		c.logger.Warn().
			Str("url", rawURL).
			Dur("retry_after", retryAfter).
			Msg("Rate limited, waiting before retry")

		if err := c.sleep(ctx, retryAfter); err != nil {
			return nil, &RequestFailedError{URL: rawURL, Err: err}
		}
	}
}

// doOnce issues a single attempt under one budget permit. Exactly one of the
// results is meaningful: a non-nil page on success, a positive retryAfter on
// a rate-limit response, or an error.
func (c *Client) doOnce(ctx context.Context, rawURL string, params url.Values, endpoint string) (*Page, time.Duration, error) {
	if err := c.budget.Acquire(ctx); err != nil {
		return nil, 0, &RequestFailedError{URL: rawURL, Err: err}
	}
	defer c.budget.Release()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, &RequestFailedError{URL: rawURL, Err: err}
	}
	if len(params) > 0 {
		req.URL.RawQuery = params.Encode()
	}

	req.Header.Set("Authorization", "Bearer "+c.config.Token)
	req.Header.Set("Content-Type", mediaType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		tfcRequestsTotal.WithLabelValues(endpoint, "transport_error").Inc()
		c.logger.Error().Err(err).Str("url", rawURL).Msg("HTTP request failed")
		return nil, 0, &RequestFailedError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		tfcRequestsTotal.WithLabelValues(endpoint, "200").Inc()

		var page Page
		if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
			c.logger.Error().Err(err).Str("url", rawURL).Msg("Failed to decode response body")
			return nil, 0, &MalformedResponseError{URL: rawURL, Err: err}
		}
		return &page, 0, nil

	case http.StatusTooManyRequests:
		tfcRequestsTotal.WithLabelValues(endpoint, "429").Inc()
		return nil, ratelimit.RetryAfter(resp.Header), nil

	default:
		tfcRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error().
			Str("url", rawURL).
			Int("status", resp.StatusCode).
			Str("body", string(body)).
			Msg("Terraform Cloud request failed")

		return nil, 0, &RequestFailedError{URL: rawURL, StatusCode: resp.StatusCode, Status: resp.Status}
	}
}

// sleepContext sleeps for d or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// endpointLabel reduces a request URL to its path for metric labels.
func endpointLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "invalid"
	}
	return u.Path
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// SetSleep sets a custom rate-limit sleep function (for testing with a fake
// clock).
func (c *Client) SetSleep(sleep func(ctx context.Context, d time.Duration) error) {
	c.sleep = sleep
}
