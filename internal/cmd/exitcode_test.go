package cmd

import (
	"context"
	"fmt"
	"testing"

	clierrors "github.com/salmonumbrella/simpleweather/internal/errors"
	"github.com/salmonumbrella/simpleweather/internal/table"
	"github.com/salmonumbrella/simpleweather/internal/weather"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"canceled", context.Canceled, ExitCanceled},
		{"wrapped canceled", fmt.Errorf("get: %w", context.Canceled), ExitCanceled},
		{"user", clierrors.NewUserError("bad", "hint"), ExitUser},
		{"validation", &clierrors.ValidationError{Field: "x", Message: "bad"}, ExitUser},
		{"auth", &clierrors.AuthError{Reason: "no key"}, ExitAuth},
		{"auth_required", clierrors.AuthRequiredError(nil), ExitAuth},
		{"rate_limit", &clierrors.RateLimitError{}, ExitRateLimit},
		{"api_404", &weather.APIError{StatusCode: 404}, ExitNotFound},
		{"city_not_found", clierrors.CityNotFoundError("X", &weather.APIError{StatusCode: 404}), ExitNotFound},
		{"api_429", &weather.APIError{StatusCode: 429}, ExitRateLimit},
		{"api_401", &weather.APIError{StatusCode: 401}, ExitAuth},
		{"api_403", &weather.APIError{StatusCode: 403}, ExitAuth},
		{"api_400", &weather.APIError{StatusCode: 400}, ExitUser},
		{"api_500", &weather.APIError{StatusCode: 500}, ExitSystem},
		{"contextual api", clierrors.WrapContext("GET", "/data/2.5/weather", 404, &weather.APIError{StatusCode: 404}), ExitNotFound},
		{"table contract", &table.ContractViolation{Reason: "ragged", Row: 1, Column: -1}, ExitSystem},
		{"plain", fmt.Errorf("boom"), ExitSystem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Fatalf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
