// Package errors defines the error types the CLI surfaces to users and maps
// to exit codes.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ValidationError represents an input validation failure
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// UserError represents an error caused by user input or configuration.
// Suggestion can provide a concrete fix for the user.
type UserError struct {
	Message    string
	Suggestion string
	Err        error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a UserError with a message and optional suggestion.
func NewUserError(message, suggestion string) *UserError {
	return &UserError{Message: message, Suggestion: suggestion}
}

// WrapUserError wraps an underlying error with a user-facing message and suggestion.
func WrapUserError(err error, message, suggestion string) *UserError {
	return &UserError{Message: message, Suggestion: suggestion, Err: err}
}

// RateLimitError represents a 429 response that outlived all retries.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter <= 0 {
		return "rate limited by weather provider"
	}
	return fmt.Sprintf("rate limited, retry after %v", e.RetryAfter)
}

// AuthError represents a missing or rejected API key.
type AuthError struct {
	Reason     string
	Suggestion string
	Err        error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("authentication error: %s", e.Reason)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// AuthRequiredError is returned when no API key could be found.
func AuthRequiredError(err error) error {
	return &AuthError{
		Reason:     "missing API key",
		Suggestion: "Run 'simpleweather login <api key>' or set OPENWEATHER_API_KEY",
		Err:        err,
	}
}

// InvalidKeyError is returned when the provider rejects the stored API key.
func InvalidKeyError(err error) error {
	return &AuthError{
		Reason:     "API key rejected by OpenWeatherMap",
		Suggestion: "Check the key at https://home.openweathermap.org/api_keys, then run 'simpleweather login <api key>'. New keys can take a couple of hours to activate.",
		Err:        err,
	}
}

// CityNotFoundError creates a user-facing error for an unknown city.
func CityNotFoundError(city string, err error) error {
	return WrapUserError(err,
		fmt.Sprintf("city %q not found", city),
		"Check the spelling, or qualify the name with a country code, e.g. 'London,GB'")
}

// Type checkers
func IsRateLimitError(err error) bool {
	var e *RateLimitError
	return errors.As(err, &e)
}

func IsAuthError(err error) bool {
	var e *AuthError
	return errors.As(err, &e)
}

func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsUserError(err error) bool {
	var e *UserError
	return errors.As(err, &e)
}

// UserSuggestion returns a suggestion string if err is a UserError or AuthError.
func UserSuggestion(err error) string {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Suggestion
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Suggestion
	}
	return ""
}

// ContextualError wraps an error with HTTP request context for debugging.
type ContextualError struct {
	Method     string
	URL        string
	StatusCode int
	Err        error
}

// WrapContext wraps an error with HTTP request context.
// StatusCode can be 0 if the request never completed.
// Returns nil if err is nil.
func WrapContext(method, url string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return &ContextualError{
		Method:     method,
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}

func (e *ContextualError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s (%d): %s", e.Method, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Err)
}

func (e *ContextualError) Unwrap() error {
	return e.Err
}

// IsContextualError checks if an error is a ContextualError.
func IsContextualError(err error) bool {
	var ce *ContextualError
	return errors.As(err, &ce)
}
