package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/salmonumbrella/simpleweather/internal/config"
	"github.com/salmonumbrella/simpleweather/internal/debug"
	"github.com/salmonumbrella/simpleweather/internal/errors"
	"github.com/salmonumbrella/simpleweather/internal/output"
	"github.com/salmonumbrella/simpleweather/internal/ui"
)

// OutputEnvVar sets the default output format when --output is not given.
const OutputEnvVar = "SIMPLEWEATHER_OUTPUT"

type globalFlagInput struct {
	output      string
	query       string
	jq          string
	jsonPath    string
	debug       bool
	quiet       bool
	color       string
	errorFormat string
	compactJSON bool
	logFormat   string
}

func registerGlobalFlags(fs *pflag.FlagSet, flags *globalFlagInput) {
	fs.StringVarP(&flags.output, "output", "o", "text", "Output format: text|table|json|ndjson|yaml")
	fs.StringVarP(&flags.query, "query", "q", "", "JQ expression to filter structured output")
	fs.StringVar(&flags.jq, "jq", "", "Alias for --query")
	_ = fs.MarkHidden("jq")
	fs.StringVar(&flags.jsonPath, "jsonpath", "", "Extract a value using JSONPath (e.g. $[0].temperature)")
	fs.BoolVar(&flags.debug, "debug", false, "Enable debug output (shows HTTP requests/responses)")
	fs.BoolVar(&flags.quiet, "quiet", false, "Suppress non-essential output")
	fs.StringVar(&flags.color, "color", "", "Color mode for status messages: auto|always|never")
	fs.StringVar(&flags.errorFormat, "error-format", "auto", "Error output format (auto|text|json|yaml)")
	fs.BoolVar(&flags.compactJSON, "compact-json", false, "Output compact JSON (single-line) instead of pretty JSON")
	fs.StringVar(&flags.logFormat, "log-format", "text", "Log format for --debug output: text|json")
}

type globalOptions struct {
	format          output.Format
	query           string
	queryNormalized bool
	jsonPath        string
	quiet           bool
	compactJSON     bool
	color           ui.ColorMode
	errorFormat     string

	queryFlagSet bool
	jqFlagSet    bool
}

func parseGlobalOptions(cmd *cobra.Command, cfg *config.Config, stdout io.Writer, flags globalFlagInput) (globalOptions, error) {
	opts := globalOptions{
		quiet:        flags.quiet,
		compactJSON:  flags.compactJSON,
		errorFormat:  flags.errorFormat,
		queryFlagSet: strings.TrimSpace(flags.query) != "",
		jqFlagSet:    strings.TrimSpace(flags.jq) != "",
	}

	// Precedence: --output, SIMPLEWEATHER_OUTPUT, config.yaml, text.
	formatStr := flags.output
	if !commandFlagChanged(cmd, "output") {
		if env := strings.TrimSpace(os.Getenv(OutputEnvVar)); env != "" {
			formatStr = env
		} else if cfg.Output != "" {
			formatStr = cfg.Output
		}
	}
	format, err := output.ParseFormat(formatStr)
	if err != nil {
		return globalOptions{}, errors.NewUserError(err.Error(), "Use one of: text, table, json, ndjson, yaml")
	}
	opts.format = format

	// Pipes get clean structured output.
	if !commandFlagChanged(cmd, "quiet") && !isTerminal(stdout) && opts.format.Structured() {
		opts.quiet = true
	}

	colorStr := flags.color
	if !commandFlagChanged(cmd, "color") {
		colorStr = cfg.Color
	}
	opts.color, err = ui.ParseColorMode(colorStr)
	if err != nil {
		return globalOptions{}, errors.NewUserError(err.Error(), "Use one of: auto, always, never")
	}

	opts.query = flags.query
	if opts.query == "" {
		opts.query = flags.jq
	}
	opts.query, opts.queryNormalized = output.NormalizeQuery(opts.query)
	opts.jsonPath = strings.TrimSpace(flags.jsonPath)

	return opts, nil
}

func validateGlobalOptions(opts *globalOptions) error {
	if opts.jqFlagSet && opts.queryFlagSet {
		return errOnlyOne("--query", "--jq")
	}
	if opts.query != "" && opts.jsonPath != "" {
		return errOnlyOne("--query/--jq", "--jsonpath")
	}
	return validateErrorFormat(opts.errorFormat)
}

func buildRootContext(ctx context.Context, cfg *config.Config, debugMode bool, opts globalOptions) context.Context {
	ctx = output.WithFormat(ctx, opts.format)
	ctx = output.WithQuery(ctx, opts.query)
	ctx = output.WithJSONPath(ctx, opts.jsonPath)
	ctx = output.WithQuiet(ctx, opts.quiet)
	ctx = output.WithCompactJSON(ctx, opts.compactJSON)
	ctx = debug.WithDebug(ctx, debugMode)
	ctx = WithConfig(ctx, cfg)
	ctx = WithErrorFormat(ctx, opts.errorFormat)
	ctx = ui.WithUI(ctx, ui.New(opts.color, stderrFromContext(ctx)))
	return ctx
}

func errOnlyOne(left, right string) error {
	return errors.NewUserError(fmt.Sprintf("use only one of %s or %s", left, right), "")
}

func commandFlagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}

	for current := cmd; current != nil; current = current.Parent() {
		if flag := current.Flags().Lookup(name); flag != nil && flag.Changed {
			return true
		}
		if flag := current.PersistentFlags().Lookup(name); flag != nil && flag.Changed {
			return true
		}
	}
	return false
}
