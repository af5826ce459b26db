package output

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format represents the output format type.
type Format string

const (
	// FormatText is human-readable output (default).
	FormatText Format = "text"
	// FormatJSON is pretty-printed JSON format.
	FormatJSON Format = "json"
	// FormatNDJSON is newline-delimited JSON format.
	FormatNDJSON Format = "ndjson"
	// FormatTable draws bordered tables.
	FormatTable Format = "table"
	// FormatYAML is YAML format.
	FormatYAML Format = "yaml"
)

// ParseFormat converts a string to a Format type.
// Empty string defaults to FormatText.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatNDJSON, "jsonl":
		return FormatNDJSON, nil
	case FormatTable:
		return FormatTable, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", errors.New("invalid --output format (expected text|table|json|ndjson|yaml)")
	}
}

// Structured reports whether f is a machine-readable format.
func (f Format) Structured() bool {
	return f == FormatJSON || f == FormatNDJSON || f == FormatYAML
}

// Printer handles output formatting across different formats.
type Printer struct {
	w      io.Writer
	format Format
}

// NewPrinter creates a new Printer that writes to w in the given format.
func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{
		w:      w,
		format: format,
	}
}

// Format returns the printer's output format.
func (p *Printer) Format() Format {
	return p.format
}

// Print outputs data in the configured format, applying --jsonpath and
// --query from ctx first. A Table is drawn as-is in text and table formats
// and becomes a list of header-keyed records otherwise.
func (p *Printer) Print(ctx context.Context, data interface{}) error {
	if data == nil {
		return nil
	}

	if t, ok := asTable(data); ok && (p.format.Structured() || Transformed(ctx)) {
		data = t.Records()
	}

	if path := strings.TrimSpace(JSONPathFromContext(ctx)); path != "" {
		extracted, err := applyJSONPath(data, path)
		if err != nil {
			return err
		}
		data = extracted
	}

	switch p.format {
	case FormatJSON:
		return p.printJSON(ctx, data)
	case FormatNDJSON:
		return p.printNDJSON(ctx, data)
	case FormatYAML:
		return p.printYAML(ctx, data)
	case FormatTable:
		return p.printTable(ctx, data)
	case FormatText:
		return p.printText(ctx, data)
	default:
		return fmt.Errorf("unsupported format: %s", p.format)
	}
}

// printYAML outputs data as YAML.
func (p *Printer) printYAML(ctx context.Context, data interface{}) error {
	data, err := applyQuery(ctx, data)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()
	return enc.Encode(data)
}

// printText renders lists of objects as bordered tables, objects as
// sorted key-value lines, and scalars as-is.
func (p *Printer) printText(ctx context.Context, data interface{}) error {
	data, err := applyQuery(ctx, data)
	if err != nil {
		return err
	}
	if t, ok := asTable(data); ok {
		return t.render(p.w)
	}

	normalized, err := normalizeToInterface(data)
	if err != nil {
		return err
	}

	switch v := normalized.(type) {
	case nil:
		return nil
	case map[string]interface{}:
		for _, key := range sortedKeys(v) {
			if _, err := fmt.Fprintf(p.w, "%s: %s\n", key, cellString(v[key])); err != nil {
				return err
			}
		}
		return nil
	case []interface{}:
		if t, ok := tableFromRecords(v); ok {
			return t.render(p.w)
		}
		for _, item := range v {
			if _, err := fmt.Fprintln(p.w, cellString(item)); err != nil {
				return err
			}
		}
		return nil
	default:
		_, err := fmt.Fprintln(p.w, cellString(v))
		return err
	}
}

// printTable draws data as a bordered table. Objects become KEY/VALUE
// tables; lists must hold objects.
func (p *Printer) printTable(ctx context.Context, data interface{}) error {
	data, err := applyQuery(ctx, data)
	if err != nil {
		return err
	}
	if t, ok := asTable(data); ok {
		return t.render(p.w)
	}

	normalized, err := normalizeToInterface(data)
	if err != nil {
		return err
	}

	switch v := normalized.(type) {
	case nil:
		return nil
	case map[string]interface{}:
		t := Table{Headers: []string{"KEY", "VALUE"}}
		for _, key := range sortedKeys(v) {
			t.Rows = append(t.Rows, []string{key, cellString(v[key])})
		}
		return t.render(p.w)
	case []interface{}:
		if len(v) == 0 {
			return nil
		}
		if t, ok := tableFromRecords(v); ok {
			return t.render(p.w)
		}
		return errors.New("table format requires a list of objects")
	default:
		return errors.New("table format requires a list or an object")
	}
}

func asTable(data interface{}) (Table, bool) {
	switch v := data.(type) {
	case Table:
		return v, true
	case *Table:
		if v != nil {
			return *v, true
		}
	}
	return Table{}, false
}

// tableFromRecords builds a table from a non-empty list of objects. Columns
// are the union of keys, sorted; missing values show as "-".
func tableFromRecords(items []interface{}) (Table, bool) {
	if len(items) == 0 {
		return Table{}, false
	}
	seen := make(map[string]bool)
	var keys []string
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			return Table{}, false
		}
		for k := range m {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	if len(keys) == 0 {
		return Table{}, false
	}
	sort.Strings(keys)

	t := Table{Headers: make([]string, len(keys))}
	for i, k := range keys {
		t.Headers[i] = strings.ToUpper(k)
	}
	for _, item := range items {
		m := item.(map[string]interface{})
		row := make([]string, len(keys))
		for i, k := range keys {
			if val, ok := m[k]; ok {
				row[i] = cellString(val)
			} else {
				row[i] = "-"
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, true
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// cellString formats a normalized JSON value for a single table cell or line.
func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	default:
		buf, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(buf)
	}
}
