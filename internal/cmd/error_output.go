package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	ctxerrors "github.com/salmonumbrella/simpleweather/internal/errors"
	"github.com/salmonumbrella/simpleweather/internal/output"
	"github.com/salmonumbrella/simpleweather/internal/table"
	"github.com/salmonumbrella/simpleweather/internal/weather"
)

func validateErrorFormat(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "auto", "text", "json", "yaml":
		return nil
	default:
		return ctxerrors.NewUserError(
			fmt.Sprintf("invalid --error-format %q", format),
			"Use one of: auto, text, json, yaml",
		)
	}
}

// effectiveErrorFormat follows --error-format, or the output format when
// it is auto.
func effectiveErrorFormat(ctx context.Context) string {
	format := strings.ToLower(strings.TrimSpace(ErrorFormatFromContext(ctx)))
	if format == "" || format == "auto" {
		switch output.FormatFromContext(ctx) {
		case output.FormatJSON, output.FormatNDJSON:
			return "json"
		case output.FormatYAML:
			return "yaml"
		default:
			return "text"
		}
	}
	return format
}

func printCommandError(ctx context.Context, err error) {
	if err == nil {
		return
	}

	switch effectiveErrorFormat(ctx) {
	case "json":
		enc := json.NewEncoder(stderrFromContext(ctx))
		enc.SetEscapeHTML(false)
		_ = enc.Encode(buildErrorEnvelope(err))
		return
	case "yaml":
		enc := yaml.NewEncoder(stderrFromContext(ctx))
		enc.SetIndent(2)
		_ = enc.Encode(buildErrorEnvelope(err))
		_ = enc.Close()
		return
	}

	_, _ = fmt.Fprintln(stderrFromContext(ctx), err)
	if suggestion := ctxerrors.UserSuggestion(err); suggestion != "" {
		_, _ = fmt.Fprintf(stderrFromContext(ctx), "Hint: %s\n", suggestion)
	}
}

func buildErrorEnvelope(err error) map[string]interface{} {
	errMap := map[string]interface{}{
		"message":   err.Error(),
		"exit_code": ExitCode(err),
	}

	category := "system"
	if ctxerrors.IsUserError(err) || ctxerrors.IsValidationError(err) || ctxerrors.IsAuthError(err) {
		category = "user"
	}
	errMap["category"] = category

	if suggestion := ctxerrors.UserSuggestion(err); suggestion != "" {
		errMap["suggestion"] = suggestion
	}

	var contextual *ctxerrors.ContextualError
	if errors.As(err, &contextual) {
		errMap["method"] = contextual.Method
		errMap["url"] = contextual.URL
		if contextual.StatusCode > 0 {
			errMap["status"] = contextual.StatusCode
		}
	}

	var apiErr *weather.APIError
	if errors.As(err, &apiErr) {
		errMap["type"] = "openweathermap_api"
		if apiErr.StatusCode > 0 {
			errMap["status"] = apiErr.StatusCode
		}
		if apiErr.Response != nil {
			if apiErr.Response.Code != "" {
				errMap["code"] = string(apiErr.Response.Code)
			}
			if apiErr.Response.Message != "" {
				errMap["api_message"] = apiErr.Response.Message
			}
		}
		if apiErr.RetryAfter > 0 {
			errMap["retry_after_seconds"] = int(apiErr.RetryAfter.Seconds())
		}
	}

	var rlErr *ctxerrors.RateLimitError
	if errors.As(err, &rlErr) {
		errMap["type"] = "rate_limit"
		errMap["retry_after_seconds"] = int(rlErr.RetryAfter.Seconds())
	}

	var authErr *ctxerrors.AuthError
	if errors.As(err, &authErr) {
		errMap["type"] = "auth"
	}

	var validationErr *ctxerrors.ValidationError
	if errors.As(err, &validationErr) {
		errMap["type"] = "validation"
		errMap["field"] = validationErr.Field
	}

	var violation *table.ContractViolation
	if errors.As(err, &violation) {
		errMap["type"] = "table_contract"
	}

	return map[string]interface{}{"error": errMap}
}
