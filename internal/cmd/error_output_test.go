package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	ctxerrors "github.com/salmonumbrella/simpleweather/internal/errors"
	"github.com/salmonumbrella/simpleweather/internal/output"
	"github.com/salmonumbrella/simpleweather/internal/table"
	"github.com/salmonumbrella/simpleweather/internal/weather"
)

func envelopePayload(t *testing.T, err error) map[string]interface{} {
	t.Helper()
	env := buildErrorEnvelope(err)
	payload, ok := env["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error map, got %T", env["error"])
	}
	return payload
}

func TestBuildErrorEnvelope_UserError(t *testing.T) {
	payload := envelopePayload(t, ctxerrors.NewUserError("invalid flag", "Use --help to see valid flags"))

	if payload["category"] != "user" {
		t.Errorf("category = %v, want user", payload["category"])
	}
	if payload["suggestion"] != "Use --help to see valid flags" {
		t.Errorf("suggestion = %v", payload["suggestion"])
	}
	if payload["exit_code"] != ExitUser {
		t.Errorf("exit_code = %v, want %d", payload["exit_code"], ExitUser)
	}
}

func TestBuildErrorEnvelope_ValidationError(t *testing.T) {
	payload := envelopePayload(t, &ctxerrors.ValidationError{Field: "city", Message: "required"})

	if payload["type"] != "validation" || payload["field"] != "city" {
		t.Errorf("payload = %v", payload)
	}
}

func TestBuildErrorEnvelope_SystemError(t *testing.T) {
	payload := envelopePayload(t, errors.New("boom"))

	if payload["category"] != "system" {
		t.Errorf("category = %v, want system", payload["category"])
	}
	if _, ok := payload["suggestion"]; ok {
		t.Errorf("expected no suggestion for system error")
	}
}

func TestBuildErrorEnvelope_APIError(t *testing.T) {
	apiErr := &weather.APIError{
		StatusCode: 404,
		Response:   &weather.ErrorResponse{Code: "404", Message: "city not found"},
	}
	err := ctxerrors.CityNotFoundError("Atlantis", ctxerrors.WrapContext("GET", "https://api.example.invalid/data/2.5/weather?q=Atlantis", 404, apiErr))
	payload := envelopePayload(t, err)

	if payload["type"] != "openweathermap_api" {
		t.Errorf("type = %v", payload["type"])
	}
	if payload["code"] != "404" || payload["api_message"] != "city not found" {
		t.Errorf("payload = %v", payload)
	}
	if payload["method"] != "GET" || payload["status"] != 404 {
		t.Errorf("payload = %v", payload)
	}
	if payload["exit_code"] != ExitNotFound {
		t.Errorf("exit_code = %v", payload["exit_code"])
	}
}

func TestBuildErrorEnvelope_RateLimit(t *testing.T) {
	payload := envelopePayload(t, &ctxerrors.RateLimitError{RetryAfter: 30 * time.Second})

	if payload["type"] != "rate_limit" || payload["retry_after_seconds"] != 30 {
		t.Errorf("payload = %v", payload)
	}
}

func TestBuildErrorEnvelope_Auth(t *testing.T) {
	payload := envelopePayload(t, ctxerrors.AuthRequiredError(nil))

	if payload["type"] != "auth" || payload["category"] != "user" {
		t.Errorf("payload = %v", payload)
	}
}

func TestBuildErrorEnvelope_TableContract(t *testing.T) {
	payload := envelopePayload(t, &table.ContractViolation{Reason: "cell wider than column", Row: 0, Column: 1})

	if payload["type"] != "table_contract" || payload["category"] != "system" {
		t.Errorf("payload = %v", payload)
	}
}

func TestEffectiveErrorFormat(t *testing.T) {
	tests := []struct {
		name        string
		errorFormat string
		format      output.Format
		want        string
	}{
		{"auto text", "auto", output.FormatText, "text"},
		{"auto table", "", output.FormatTable, "text"},
		{"auto json", "auto", output.FormatJSON, "json"},
		{"auto ndjson", "auto", output.FormatNDJSON, "json"},
		{"auto yaml", "auto", output.FormatYAML, "yaml"},
		{"explicit", "json", output.FormatText, "json"},
		{"explicit case", "YAML", output.FormatJSON, "yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := WithErrorFormat(context.Background(), tt.errorFormat)
			ctx = output.WithFormat(ctx, tt.format)
			if got := effectiveErrorFormat(ctx); got != tt.want {
				t.Errorf("effectiveErrorFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrintCommandError(t *testing.T) {
	err := ctxerrors.NewUserError("bad city", "Try again")

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := WithIO(context.Background(), nil, nil, &buf)
		printCommandError(ctx, err)
		if buf.String() != "bad city\nHint: Try again\n" {
			t.Errorf("stderr = %q", buf.String())
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := WithIO(context.Background(), nil, nil, &buf)
		ctx = WithErrorFormat(ctx, "json")
		printCommandError(ctx, err)

		var decoded map[string]map[string]interface{}
		if jerr := json.Unmarshal(buf.Bytes(), &decoded); jerr != nil {
			t.Fatalf("invalid JSON: %v\n%s", jerr, buf.String())
		}
		if decoded["error"]["message"] != "bad city" {
			t.Errorf("decoded = %v", decoded)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := WithIO(context.Background(), nil, nil, &buf)
		ctx = WithErrorFormat(ctx, "yaml")
		printCommandError(ctx, err)

		var decoded map[string]map[string]interface{}
		if yerr := yaml.Unmarshal(buf.Bytes(), &decoded); yerr != nil {
			t.Fatalf("invalid YAML: %v\n%s", yerr, buf.String())
		}
		if decoded["error"]["suggestion"] != "Try again" {
			t.Errorf("decoded = %v", decoded)
		}
		if !strings.HasPrefix(buf.String(), "error:\n") {
			t.Errorf("yaml = %q", buf.String())
		}
	})

	t.Run("nil", func(t *testing.T) {
		var buf bytes.Buffer
		printCommandError(WithIO(context.Background(), nil, nil, &buf), nil)
		if buf.Len() != 0 {
			t.Errorf("stderr = %q", buf.String())
		}
	})
}
