package cmd

import (
	"context"
	"errors"
	"net/http"

	clierrors "github.com/salmonumbrella/simpleweather/internal/errors"
	"github.com/salmonumbrella/simpleweather/internal/table"
	"github.com/salmonumbrella/simpleweather/internal/weather"
)

const (
	ExitOK        = 0
	ExitSystem    = 1
	ExitUser      = 2
	ExitAuth      = 3
	ExitNotFound  = 4
	ExitRateLimit = 5
	ExitCanceled  = 130
)

// ExitCode maps a command error to a stable process exit code for automation.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) {
		return ExitCanceled
	}
	if table.IsContractViolation(err) {
		return ExitSystem
	}

	var apiErr *weather.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusNotFound:
			return ExitNotFound
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return ExitRateLimit
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			return ExitAuth
		case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
			return ExitUser
		default:
			return ExitSystem
		}
	}

	if clierrors.IsRateLimitError(err) {
		return ExitRateLimit
	}
	if clierrors.IsAuthError(err) {
		return ExitAuth
	}
	if clierrors.IsValidationError(err) || clierrors.IsUserError(err) {
		return ExitUser
	}

	return ExitSystem
}
