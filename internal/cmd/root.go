package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/salmonumbrella/simpleweather/internal/auth"
	"github.com/salmonumbrella/simpleweather/internal/config"
	"github.com/salmonumbrella/simpleweather/internal/debug"
	"github.com/salmonumbrella/simpleweather/internal/errors"
	"github.com/salmonumbrella/simpleweather/internal/logging"
	"github.com/salmonumbrella/simpleweather/internal/ui"
	"github.com/salmonumbrella/simpleweather/internal/weather"
)

// APIURLEnvVar overrides the OpenWeatherMap base URL (tests, proxies).
const APIURLEnvVar = "SIMPLEWEATHER_API_URL"

func newRootCmd(app *App) *cobra.Command {
	var flags globalFlagInput

	rootCmd := &cobra.Command{
		Use:   "simpleweather",
		Short: "Current weather for one or more cities",
		Long: `Look up the current weather on OpenWeatherMap and print it as a table.

Store an API key once with 'simpleweather login <api key>', then run
'simpleweather get London Tokyo'.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logFormat, err := logging.ParseFormat(flags.logFormat)
			if err != nil {
				return errors.NewUserError(err.Error(), "Use --log-format text or --log-format json")
			}
			logging.Setup(logging.Options{
				Debug:  flags.debug,
				Format: logFormat,
				Writer: stderrFromContext(cmd.Context()),
			})

			cfg, err := config.Load()
			if err != nil {
				// A broken file must not lock the user out of the commands that fix it.
				if !isConfigCommand(cmd) {
					return fmt.Errorf("failed to load config: %w", err)
				}
				slog.Debug("ignoring unreadable config", "error", err)
				cfg = &config.Config{}
			}

			opts, err := parseGlobalOptions(cmd, cfg, stdoutFromContext(cmd.Context()), flags)
			if err != nil {
				return err
			}
			if err := validateGlobalOptions(&opts); err != nil {
				return err
			}

			ctx := buildRootContext(cmd.Context(), cfg, flags.debug, opts)
			if opts.queryNormalized && !opts.quiet {
				ui.FromContext(ctx).Warning("Normalized --query by removing \\! (shell escape); use ! without backslash.")
			}
			cmd.SetContext(ctx)
			return nil
		},
	}

	rootCmd.Version = app.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("simpleweather %s (commit: %s, built: %s)\n", app.Version, app.Commit, app.BuildTime))

	registerGlobalFlags(rootCmd.PersistentFlags(), &flags)

	rootCmd.AddCommand(newWeatherCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newMCPCmd())

	return rootCmd
}

func isConfigCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" {
			return true
		}
	}
	return false
}

// resolveAPIKey finds the API key for the current invocation, mapping a
// miss to an AuthError that tells the user how to log in.
func resolveAPIKey(ctx context.Context) (string, error) {
	cfg := ConfigFromContext(ctx)
	if cfg == nil {
		cfg = &config.Config{}
	}
	key, source, err := auth.Resolve(cfg)
	if err != nil {
		return "", errors.AuthRequiredError(err)
	}
	slog.Debug("resolved API key", "source", source)
	return key, nil
}

// newWeatherClient creates an OpenWeatherMap client. The base URL comes
// from SIMPLEWEATHER_API_URL, then api_url in config.yaml.
func newWeatherClient(ctx context.Context, apiKey string) *weather.Client {
	client := weather.NewClient(apiKey)

	if baseURL := strings.TrimSpace(os.Getenv(APIURLEnvVar)); baseURL != "" {
		client.WithBaseURL(baseURL)
	} else if cfg := ConfigFromContext(ctx); cfg != nil && strings.TrimSpace(cfg.APIURL) != "" {
		client.WithBaseURL(cfg.APIURL)
	}
	if debug.IsDebug(ctx) {
		client.WithDebugOutput(stderrFromContext(ctx))
	}
	return client
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
