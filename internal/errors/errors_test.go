package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestValidationError(t *testing.T) {
	err := &ValidationError{
		Field:   "units",
		Message: "must be one of metric, imperial, standard",
	}

	expected := "validation error for units: must be one of metric, imperial, standard"
	if err.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, err.Error())
	}

	if !IsValidationError(err) {
		t.Error("IsValidationError should return true for ValidationError")
	}
}

func TestRateLimitError(t *testing.T) {
	tests := []struct {
		name string
		err  *RateLimitError
		want string
	}{
		{name: "with retry after", err: &RateLimitError{RetryAfter: 30 * time.Second}, want: "rate limited, retry after 30s"},
		{name: "without retry after", err: &RateLimitError{}, want: "rate limited by weather provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if !IsRateLimitError(tt.err) {
				t.Error("IsRateLimitError should return true for RateLimitError")
			}
		})
	}
}

func TestAuthRequiredError(t *testing.T) {
	cause := errors.New("no key in keyring")
	err := AuthRequiredError(cause)

	if !IsAuthError(err) {
		t.Fatal("AuthRequiredError should produce an AuthError")
	}
	if !errors.Is(err, cause) {
		t.Error("AuthRequiredError should wrap the cause")
	}
	if !strings.Contains(err.Error(), "missing API key") {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if s := UserSuggestion(err); !strings.Contains(s, "simpleweather login") {
		t.Errorf("suggestion should mention login, got %q", s)
	}
}

func TestInvalidKeyError(t *testing.T) {
	err := InvalidKeyError(errors.New("401"))
	if !IsAuthError(err) {
		t.Fatal("InvalidKeyError should produce an AuthError")
	}
	if UserSuggestion(err) == "" {
		t.Error("InvalidKeyError should carry a suggestion")
	}
}

func TestCityNotFoundError(t *testing.T) {
	cause := errors.New("city not found")
	err := CityNotFoundError("Atlantis", cause)

	if !IsUserError(err) {
		t.Fatal("CityNotFoundError should produce a UserError")
	}
	if !errors.Is(err, cause) {
		t.Error("CityNotFoundError should wrap the cause")
	}
	if !strings.Contains(err.Error(), `city "Atlantis" not found`) {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if !strings.Contains(UserSuggestion(err), "country code") {
		t.Errorf("unexpected suggestion: %q", UserSuggestion(err))
	}
}

func TestTypeCheckers(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		checker func(error) bool
		want    bool
	}{
		{name: "generic error", err: errors.New("generic"), checker: IsValidationError, want: false},
		{name: "wrapped user error", err: fmt.Errorf("outer: %w", NewUserError("bad", "")), checker: IsUserError, want: true},
		{name: "wrapped auth error", err: fmt.Errorf("outer: %w", AuthRequiredError(nil)), checker: IsAuthError, want: true},
		{name: "user error is not auth", err: NewUserError("bad", ""), checker: IsAuthError, want: false},
		{name: "contextual", err: WrapContext("GET", "http://x", 500, errors.New("boom")), checker: IsContextualError, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.checker(tt.err); got != tt.want {
				t.Errorf("checker() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrapContext(t *testing.T) {
	if WrapContext("GET", "http://x", 0, nil) != nil {
		t.Error("WrapContext(nil) should return nil")
	}

	cause := errors.New("boom")
	err := WrapContext("GET", "https://api.openweathermap.org/data/2.5/weather", 502, cause)
	want := "GET https://api.openweathermap.org/data/2.5/weather (502): boom"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("ContextualError should unwrap to the cause")
	}

	noStatus := WrapContext("GET", "http://x", 0, cause)
	if noStatus.Error() != "GET http://x: boom" {
		t.Errorf("unexpected message without status: %q", noStatus.Error())
	}
}

func TestUserErrorMessage(t *testing.T) {
	plain := NewUserError("bad input", "try again")
	if plain.Error() != "bad input" {
		t.Errorf("Error() = %q", plain.Error())
	}

	wrapped := WrapUserError(errors.New("cause"), "bad input", "try again")
	if wrapped.Error() != "bad input: cause" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
	if UserSuggestion(wrapped) != "try again" {
		t.Errorf("UserSuggestion() = %q", UserSuggestion(wrapped))
	}
}
