// Package ui prints colored status messages to the terminal.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
)

// ColorMode determines when to use colored output.
type ColorMode int

const (
	// ColorAuto colors output when the writer is a capable terminal.
	ColorAuto ColorMode = iota
	// ColorAlways forces colored output.
	ColorAlways
	// ColorNever disables colored output.
	ColorNever
)

// ParseColorMode converts "auto", "always" or "never" (empty means auto).
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q (expected auto|always|never)", s)
	}
}

type contextKey struct{}

// UI writes status messages. Data belongs on stdout; UI messages go to the
// writer given to New, normally stderr.
type UI struct {
	out   *termenv.Output
	color ColorMode
}

// New creates a UI writing to w (os.Stderr when nil). NO_COLOR in the
// environment disables color regardless of mode.
func New(mode ColorMode, w io.Writer) *UI {
	if w == nil {
		w = os.Stderr
	}
	if os.Getenv("NO_COLOR") != "" {
		mode = ColorNever
	}

	var opts []termenv.OutputOption
	switch mode {
	case ColorNever:
		opts = append(opts, termenv.WithProfile(termenv.Ascii))
	case ColorAlways:
		opts = append(opts, termenv.WithProfile(termenv.ANSI256))
	}

	return &UI{
		out:   termenv.NewOutput(w, opts...),
		color: mode,
	}
}

// WithUI returns a new context with the UI attached.
func WithUI(ctx context.Context, u *UI) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// FromContext returns the UI stored in ctx, or an auto-color UI on stderr.
func FromContext(ctx context.Context) *UI {
	if u, ok := ctx.Value(contextKey{}).(*UI); ok {
		return u
	}
	return New(ColorAuto, nil)
}

// Success prints a green message.
func (u *UI) Success(format string, args ...any) {
	u.print(termenv.ANSIGreen, "✓ ", format, args...)
}

// Warning prints a yellow message.
func (u *UI) Warning(format string, args ...any) {
	u.print(termenv.ANSIYellow, "⚠ ", format, args...)
}

// Error prints a red message.
func (u *UI) Error(format string, args ...any) {
	u.print(termenv.ANSIRed, "✗ ", format, args...)
}

// Info prints a blue message.
func (u *UI) Info(format string, args ...any) {
	u.print(termenv.ANSIBlue, "ℹ ", format, args...)
}

func (u *UI) print(color termenv.ANSIColor, prefix, format string, args ...any) {
	msg := prefix + fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintln(u.out, u.out.String(msg).Foreground(color))
}

// Writer returns the underlying writer.
func (u *UI) Writer() io.Writer {
	return u.out
}
