package debug

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"
)

const maxBodyDump = 1000

// secretParams are query parameters whose values never reach debug output.
var secretParams = []string{"appid", "APPID", "api_key"}

type contextKey struct{}

// WithDebug injects the debug flag into the context
func WithDebug(ctx context.Context, debug bool) context.Context {
	return context.WithValue(ctx, contextKey{}, debug)
}

// IsDebug returns true if debug mode is enabled in the context
func IsDebug(ctx context.Context) bool {
	if v, ok := ctx.Value(contextKey{}).(bool); ok {
		return v
	}
	return false
}

// DebugTransport wraps http.RoundTripper to dump requests and responses.
type DebugTransport struct {
	Transport http.RoundTripper
	Output    io.Writer
}

// NewDebugTransport creates a new DebugTransport with the given base transport
// If output is nil, it defaults to os.Stderr
func NewDebugTransport(base http.RoundTripper, output io.Writer) *DebugTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if output == nil {
		output = os.Stderr
	}
	return &DebugTransport{
		Transport: base,
		Output:    output,
	}
}

// RoundTrip implements http.RoundTripper
func (t *DebugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	_, _ = fmt.Fprintf(t.Output, "\n--> %s %s\n", req.Method, RedactURL(req.URL))
	t.dumpHeaders(req.Header)

	resp, err := t.Transport.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		_, _ = fmt.Fprintf(t.Output, "<-- ERROR: %v (%s)\n\n", err, duration)
		return resp, err
	}

	_, _ = fmt.Fprintf(t.Output, "<-- %s (%s)\n", resp.Status, duration)
	t.dumpHeaders(resp.Header)

	if resp.Body != nil {
		bodyBytes, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			_, _ = fmt.Fprintf(t.Output, "    [ERROR reading response body: %v]\n\n", readErr)
			resp.Body = io.NopCloser(bytes.NewReader(nil))
			return resp, nil
		}
		resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		if len(bodyBytes) > 0 {
			bodyStr := string(bodyBytes)
			if len(bodyStr) > maxBodyDump {
				bodyStr = bodyStr[:maxBodyDump] + "... [truncated]"
			}
			_, _ = fmt.Fprintf(t.Output, "    Body: %s\n", bodyStr)
		}
	}

	_, _ = fmt.Fprintln(t.Output)
	return resp, nil
}

// dumpHeaders writes headers in sorted order so dumps are stable.
func (t *DebugTransport) dumpHeaders(h http.Header) {
	keys := make([]string, 0, len(h))
	for key := range h {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		_, _ = fmt.Fprintf(t.Output, "    %s: %s\n", key, strings.Join(h[key], ", "))
	}
}

// RedactURL returns u as a string with API key parameters masked. Keys
// longer than eight characters keep their last four characters.
func RedactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	redacted := *u
	query := redacted.Query()
	changed := false
	for _, name := range secretParams {
		value := query.Get(name)
		if value == "" {
			continue
		}
		query.Set(name, redactSecret(value))
		changed = true
	}
	if changed {
		redacted.RawQuery = query.Encode()
	}
	return redacted.String()
}

func redactSecret(s string) string {
	if len(s) > 8 {
		return "..." + s[len(s)-4:]
	}
	return "***"
}
