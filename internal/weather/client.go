package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/salmonumbrella/simpleweather/internal/debug"
	ctxerrors "github.com/salmonumbrella/simpleweather/internal/errors"
)

const (
	// DefaultBaseURL is the OpenWeatherMap API root.
	DefaultBaseURL = "https://api.openweathermap.org"
	defaultTimeout = 30 * time.Second
	maxRetries     = 3
	userAgent      = "simpleweather"
)

// baseDelay is the first backoff step; tests shrink it.
var baseDelay = 1 * time.Second

// Client is the OpenWeatherMap API client
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	maxRetries int
}

// NewClient creates a new client that authenticates with apiKey
func NewClient(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		maxRetries: maxRetries,
	}
}

// WithHTTPClient sets a custom HTTP client
func (c *Client) WithHTTPClient(client *http.Client) *Client {
	c.httpClient = client
	return c
}

// WithBaseURL sets a custom base URL (useful for testing)
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// WithMaxRetries sets the maximum number of retries for transient errors.
func (c *Client) WithMaxRetries(n int) *Client {
	if n < 0 {
		n = 0
	}
	c.maxRetries = n
	return c
}

// WithDebug enables HTTP request/response logging to stderr
func (c *Client) WithDebug() *Client {
	return c.WithDebugOutput(os.Stderr)
}

// WithDebugOutput enables HTTP request/response logging to the provided writer.
func (c *Client) WithDebugOutput(w io.Writer) *Client {
	baseTransport := c.httpClient.Transport
	if baseTransport == nil {
		baseTransport = http.DefaultTransport
	}

	c.httpClient.Transport = debug.NewDebugTransport(baseTransport, w)
	return c
}

// doGet performs a GET with retries and decodes the JSON body into result.
func (c *Client) doGet(ctx context.Context, path string, query url.Values, result interface{}) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", c.baseURL, err)
	}
	// Errors carry this form of the URL, so it never holds the key.
	displayURL := u.String() + "?" + query.Encode()

	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("appid", c.apiKey)
	u.RawQuery = q.Encode()

	resp, err := c.doRequest(ctx, http.MethodGet, u.String(), displayURL)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return ctxerrors.WrapContext(http.MethodGet, displayURL, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
		}
	}
	return nil
}

// doRequest performs an HTTP request with retry logic for rate limits and transient errors
func (c *Client) doRequest(ctx context.Context, method, requestURL, displayURL string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.calculateRetryDelay(attempt, lastErr)

			var apiErr *APIError
			if errors.As(lastErr, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
				slog.Debug("rate limited, waiting before retry",
					"method", method,
					"url", displayURL,
					"attempt", attempt,
					"delay", delay.String(),
					"retry_after", apiErr.RetryAfter.String())
			} else {
				slog.Debug("retrying request",
					"method", method,
					"url", displayURL,
					"attempt", attempt,
					"delay", delay.String())
			}

			select {
			case <-ctx.Done():
				return nil, ctxerrors.WrapContext(method, displayURL, 0, ctx.Err())
			case <-time.After(delay):
			}
		}

		resp, err := c.doRequestOnce(ctx, method, requestURL)
		if err != nil {
			lastErr = err

			var apiErr *APIError
			if errors.As(err, &apiErr) && isRetryable(apiErr.StatusCode) {
				continue
			}
			return nil, ctxerrors.WrapContext(method, displayURL, getStatusCode(err), err)
		}
		return resp, nil
	}

	return nil, ctxerrors.WrapContext(method, displayURL, getStatusCode(lastErr), lastErr)
}

// doRequestOnce performs a single HTTP request attempt and decodes API errors.
func (c *Client) doRequestOnce(ctx context.Context, method, requestURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error embeds the full URL including the key.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return nil, fmt.Errorf("request failed: %w", uerr.Err)
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode >= 400 {
		defer func() { _ = resp.Body.Close() }()
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
		var errResp ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
			apiErr.Response = &errResp
		}
		return nil, apiErr
	}

	return resp, nil
}

// calculateRetryDelay calculates the delay before the next retry attempt
func (c *Client) calculateRetryDelay(attempt int, lastErr error) time.Duration {
	var apiErr *APIError
	if errors.As(lastErr, &apiErr) && apiErr.RetryAfter > 0 {
		return apiErr.RetryAfter
	}

	// Exponential backoff: 1s, 2s, 4s
	delay := baseDelay * time.Duration(1<<(attempt-1))

	// Add jitter (0-25% of delay)
	if quarter := int64(delay / 4); quarter > 0 {
		delay += time.Duration(rand.Int63n(quarter))
	}

	return delay
}

// isRetryable returns true if the HTTP status code indicates a retryable error
func isRetryable(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

// parseRetryAfter parses the Retry-After header value
// Returns the duration to wait, or 0 if not parseable
func parseRetryAfter(retryAfter string) time.Duration {
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(retryAfter); err == nil {
		delay := time.Until(t)
		if delay > 0 {
			return delay
		}
	}

	return 0
}

// getStatusCode extracts the HTTP status code from an error if it's an APIError
func getStatusCode(err error) int {
	return statusOf(err)
}
