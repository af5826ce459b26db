package weather

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Code is the "cod" field of a provider response. OpenWeatherMap sends it
// as a number on some endpoints and as a string on others.
type Code string

// UnmarshalJSON accepts both 404 and "404".
func (c *Code) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Code(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid cod %s: %w", data, err)
	}
	*c = Code(n.String())
	return nil
}

// Int returns the numeric value of c, or 0.
func (c Code) Int() int {
	n, err := strconv.Atoi(string(c))
	if err != nil {
		return 0
	}
	return n
}

// ErrorResponse represents an OpenWeatherMap error body.
type ErrorResponse struct {
	Code    Code   `json:"cod"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("openweathermap error %s: %s", e.Code, e.Message)
}

// APIError wraps an ErrorResponse with the HTTP status.
type APIError struct {
	StatusCode int
	Response   *ErrorResponse
	RetryAfter time.Duration
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Response != nil && e.Response.Message != "" {
		return fmt.Sprintf("openweathermap API error %d: %s", e.StatusCode, e.Response.Message)
	}
	return fmt.Sprintf("openweathermap API error %d", e.StatusCode)
}

// IsNotFound reports whether err is a provider 404 (unknown city).
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsUnauthorized reports whether the provider rejected the API key.
func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}

// IsRateLimited reports whether the provider answered 429.
func IsRateLimited(err error) bool {
	return statusOf(err) == http.StatusTooManyRequests
}

// RetryAfterOf returns the Retry-After delay carried by err, if any.
func RetryAfterOf(err error) time.Duration {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.RetryAfter
	}
	return 0
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
