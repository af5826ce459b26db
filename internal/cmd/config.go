package cmd

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/simpleweather/internal/config"
	"github.com/salmonumbrella/simpleweather/internal/errors"
	"github.com/salmonumbrella/simpleweather/internal/output"
	"github.com/salmonumbrella/simpleweather/internal/ui"
	"github.com/salmonumbrella/simpleweather/internal/weather"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "Manage CLI configuration",
		Long:    `Manage the simpleweather configuration file at ~/.config/simpleweather/config.yaml`,
	}
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigUnsetCmd())
	cmd.AddCommand(newConfigPathCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long:  `Display the current configuration. A stored API key is masked.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := stdoutFromContext(cmd.Context())
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if cfg.IsEmpty() {
				path, _ := config.DefaultConfigPath()
				_, _ = fmt.Fprintf(out, "No configuration file found at %s\n", path)
				_, _ = fmt.Fprintln(out, "\nTo create a config file, use:")
				_, _ = fmt.Fprintln(out, "  simpleweather config set units imperial")
				return nil
			}

			data, err := yaml.Marshal(cfg.Redacted())
			if err != nil {
				return fmt.Errorf("failed to format config: %w", err)
			}
			_, _ = fmt.Fprint(out, string(data))
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value in ~/.config/simpleweather/config.yaml

Supported keys:
  output  - Default output format (text, table, json, ndjson, yaml)
  color   - Default color mode (auto, always, never)
  units   - Temperature units (metric, imperial, standard)
  lang    - Language for condition descriptions (e.g. en, de)
  api_url - OpenWeatherMap base URL (for a proxy or tests)

Examples:
  simpleweather config set units imperial
  simpleweather config set output json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := stdoutFromContext(cmd.Context())
			key := args[0]
			value, err := normalizeConfigValue(key, args[1])
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.Set(key, value); err != nil {
				return errors.NewUserError(err.Error(), "")
			}
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			path, _ := config.DefaultConfigPath()
			_, _ = fmt.Fprintf(out, "Set %s = %s in %s\n", key, value, path)
			return nil
		},
	}
}

// normalizeConfigValue validates value for key and returns its canonical
// form. Keys without a fixed vocabulary pass through trimmed.
func normalizeConfigValue(key, value string) (string, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "output":
		format, err := output.ParseFormat(value)
		if err != nil {
			return "", errors.NewUserError(err.Error(), "Use one of: text, table, json, ndjson, yaml")
		}
		return string(format), nil
	case "color":
		if _, err := ui.ParseColorMode(value); err != nil {
			return "", errors.NewUserError(err.Error(), "Use one of: auto, always, never")
		}
		return strings.ToLower(value), nil
	case "units":
		units, err := weather.ParseUnits(value)
		if err != nil {
			return "", errors.NewUserError(err.Error(), "Use one of: metric, imperial, standard")
		}
		return string(units), nil
	case "api_url":
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return "", &errors.ValidationError{Field: "api_url", Message: fmt.Sprintf("%q is not an http(s) URL", value)}
		}
		return strings.TrimRight(value, "/"), nil
	default:
		return value, nil
	}
}

func newConfigUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := stdoutFromContext(cmd.Context())
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.Unset(args[0]); err != nil {
				return errors.NewUserError(err.Error(), "")
			}
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			_, _ = fmt.Fprintf(out, "Unset %s\n", args[0])
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Long:  `Display the path to the configuration file`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := stdoutFromContext(cmd.Context())
			path, err := config.DefaultConfigPath()
			if err != nil {
				return fmt.Errorf("failed to determine config path: %w", err)
			}

			_, _ = fmt.Fprintln(out, path)

			if _, err := os.Stat(path); err == nil {
				_, _ = fmt.Fprintln(out, "(file exists)")
			} else if os.IsNotExist(err) {
				_, _ = fmt.Fprintln(out, "(file does not exist)")
			}

			return nil
		},
	}
}
