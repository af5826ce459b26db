package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	clierrors "github.com/salmonumbrella/simpleweather/internal/errors"
)

const jsonPathExample = "Example: --jsonpath '$[0].temperature'"

func normalizeToInterface(data interface{}) (interface{}, error) {
	switch data.(type) {
	case map[string]interface{}, []interface{}:
		return data, nil
	}
	buf, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode data: %w", err)
	}
	var out interface{}
	if err := json.Unmarshal(buf, &out); err != nil {
		return nil, fmt.Errorf("failed to decode data: %w", err)
	}
	return out, nil
}

func applyJSONPath(data interface{}, raw string) (interface{}, error) {
	normalized := normalizeJSONPath(raw)
	if normalized == "" {
		return nil, clierrors.NewUserError("invalid --jsonpath value", jsonPathExample)
	}
	normalizedData, err := normalizeToInterface(data)
	if err != nil {
		return nil, err
	}
	value, err := jsonpath.Get(normalized, normalizedData)
	if err != nil {
		return nil, clierrors.WrapUserError(err, "invalid --jsonpath value", jsonPathExample)
	}
	return value, nil
}

func normalizeJSONPath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	switch {
	case strings.HasPrefix(trimmed, "$"), strings.HasPrefix(trimmed, "@"):
	case strings.HasPrefix(trimmed, "."), strings.HasPrefix(trimmed, "["):
		trimmed = "$" + trimmed
	default:
		trimmed = "$." + trimmed
	}
	return trimmed
}
