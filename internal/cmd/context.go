package cmd

import (
	"context"
	"io"
	"os"

	"github.com/salmonumbrella/simpleweather/internal/config"
	"github.com/salmonumbrella/simpleweather/internal/output"
)

type (
	stdoutKey      struct{}
	stderrKey      struct{}
	stdinKey       struct{}
	errorFormatKey struct{}
	configKey      struct{}
)

// WithIO stores the process streams in the context so commands never
// touch os.Stdout directly.
func WithIO(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) context.Context {
	if stdin != nil {
		ctx = context.WithValue(ctx, stdinKey{}, stdin)
	}
	if stdout != nil {
		ctx = context.WithValue(ctx, stdoutKey{}, stdout)
	}
	if stderr != nil {
		ctx = context.WithValue(ctx, stderrKey{}, stderr)
	}
	return ctx
}

func stdoutFromContext(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(stdoutKey{}).(io.Writer); ok && w != nil {
		return w
	}
	return os.Stdout
}

func stderrFromContext(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(stderrKey{}).(io.Writer); ok && w != nil {
		return w
	}
	return os.Stderr
}

func stdinFromContext(ctx context.Context) io.Reader {
	if r, ok := ctx.Value(stdinKey{}).(io.Reader); ok && r != nil {
		return r
	}
	return os.Stdin
}

func printerForContext(ctx context.Context) *output.Printer {
	return output.NewPrinter(stdoutFromContext(ctx), output.FormatFromContext(ctx))
}

// WithErrorFormat stores the error format in the context.
func WithErrorFormat(ctx context.Context, format string) context.Context {
	return context.WithValue(ctx, errorFormatKey{}, format)
}

// ErrorFormatFromContext retrieves the error format from context.
func ErrorFormatFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(errorFormatKey{}).(string); ok {
		return v
	}
	return ""
}

// WithConfig stores loaded CLI config in context for downstream helpers.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// ConfigFromContext retrieves CLI config from context.
func ConfigFromContext(ctx context.Context) *config.Config {
	if v, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return v
	}
	return nil
}
