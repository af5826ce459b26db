package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/salmonumbrella/simpleweather/internal/auth"
	"github.com/salmonumbrella/simpleweather/internal/config"
	"github.com/salmonumbrella/simpleweather/internal/errors"
	"github.com/salmonumbrella/simpleweather/internal/output"
	"github.com/salmonumbrella/simpleweather/internal/ui"
	"github.com/salmonumbrella/simpleweather/internal/weather"
)

const (
	storeKeyring = "keyring"
	storeConfig  = "config"

	// verifyCity is queried by 'login --verify' to test a key.
	verifyCity = "London"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the OpenWeatherMap API key",
		Long: `Manage the OpenWeatherMap API key.

The key is looked up in this order:
  1. OPENWEATHER_API_KEY environment variable
  2. system keyring
  3. api_key in config.yaml`,
	}

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newLogoutCmd())

	return cmd
}

func newLoginCmd() *cobra.Command {
	var (
		store  string
		verify bool
	)

	cmd := &cobra.Command{
		Use:   "login [api-key]",
		Short: "Save an OpenWeatherMap API key",
		Long: `Save an OpenWeatherMap API key for later 'get' calls.

The key is stored in the system keyring by default:
  - macOS: Keychain
  - Linux: Secret Service (GNOME Keyring, KWallet), with encrypted file fallback
  - Windows: Credential Manager

Use --store config to write it to config.yaml instead. Without an argument
the key is read from stdin (hidden when stdin is a terminal).

Get a key from: https://home.openweathermap.org/api_keys`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var key string
			if len(args) == 1 {
				key = strings.TrimSpace(args[0])
			} else {
				read, err := readAPIKey(ctx)
				if err != nil {
					return err
				}
				key = read
			}
			if key == "" {
				return &errors.ValidationError{Field: "api-key", Message: "cannot be empty"}
			}
			if !auth.LooksLikeAPIKey(key) && !output.QuietFromContext(ctx) {
				ui.FromContext(ctx).Warning("This does not look like an OpenWeatherMap key (32 hex characters); saving it anyway.")
			}

			if verify {
				if err := verifyAPIKey(ctx, key); err != nil {
					return err
				}
			}

			var location string
			switch strings.ToLower(strings.TrimSpace(store)) {
			case storeKeyring, "":
				if err := auth.StoreAPIKey(key); err != nil {
					return errors.WrapUserError(err, "failed to store API key in keyring",
						"Use 'simpleweather login --store config <api key>' to save it in config.yaml instead")
				}
				location = "system keyring"
			case storeConfig:
				path, err := saveKeyToConfig(ctx, key)
				if err != nil {
					return err
				}
				location = path
			default:
				return errors.NewUserError(fmt.Sprintf("invalid --store %q", store), "Use one of: keyring, config")
			}

			result := map[string]interface{}{
				"status":   "success",
				"message":  "Successfully saved login information",
				"stored":   location,
				"api_key":  auth.MaskKey(key),
				"verified": verify,
			}
			return printerForContext(ctx).Print(ctx, result)
		},
	}

	cmd.Flags().StringVar(&store, "store", storeKeyring, "Where to save the key: keyring|config")
	cmd.Flags().BoolVar(&verify, "verify", false, "Check the key against the API before saving it")
	return cmd
}

// readAPIKey prompts on a terminal with hidden input, or reads the first
// line of piped stdin.
func readAPIKey(ctx context.Context) (string, error) {
	in := stdinFromContext(ctx)
	if f, ok := in.(*os.File); ok && isTerminal(f) {
		_, _ = fmt.Fprint(stderrFromContext(ctx), "Enter your OpenWeatherMap API key: ")
		keyBytes, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(stderrFromContext(ctx))
		if err != nil {
			return "", fmt.Errorf("failed to read API key: %w", err)
		}
		return strings.TrimSpace(string(keyBytes)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func verifyAPIKey(ctx context.Context, key string) error {
	_, err := newWeatherClient(ctx, key).Current(ctx, verifyCity, nil)
	if err != nil {
		if weather.IsUnauthorized(err) {
			return errors.InvalidKeyError(err)
		}
		return fmt.Errorf("failed to verify API key: %w", err)
	}
	return nil
}

func saveKeyToConfig(ctx context.Context, key string) (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	cfg.APIKey = key
	if err := cfg.Save(); err != nil {
		return "", fmt.Errorf("failed to save config: %w", err)
	}
	if cur := ConfigFromContext(ctx); cur != nil {
		cur.APIKey = key
	}
	path, _ := config.DefaultConfigPath()
	return path, nil
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		Long: `Display whether an API key is configured and where it comes from.

Only the last four characters of the key are shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := ConfigFromContext(ctx)
			if cfg == nil {
				cfg = &config.Config{}
			}

			key, source, err := auth.Resolve(cfg)
			result := map[string]interface{}{
				"authenticated": err == nil,
				"source":        string(source),
			}
			if err == nil {
				result["api_key"] = auth.MaskKey(key)
			}
			if source == auth.SourceKeyring {
				if metadata, mErr := auth.GetKeyMetadata(); mErr == nil && metadata != nil && !metadata.CreatedAt.IsZero() {
					result["created_at"] = metadata.CreatedAt.Format("2006-01-02")
					result["age"] = auth.FormatKeyAge(metadata.CreatedAt)
				}
			}

			return printerForContext(ctx).Print(ctx, result)
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API key",
		Long: `Remove the API key from the system keyring and from config.yaml.

Note: If you have set the OPENWEATHER_API_KEY environment variable,
you will need to unset it separately.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := auth.DeleteAPIKey(); err != nil {
				return fmt.Errorf("failed to remove API key: %w", err)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.APIKey != "" {
				cfg.APIKey = ""
				if err := cfg.Save(); err != nil {
					return fmt.Errorf("failed to save config: %w", err)
				}
			}

			if os.Getenv(auth.EnvVarName) != "" && !output.QuietFromContext(ctx) {
				ui.FromContext(ctx).Warning("%s is still set in the environment; unset it to finish logging out.", auth.EnvVarName)
			}

			return printerForContext(ctx).Print(ctx, map[string]interface{}{
				"status":  "success",
				"message": "Logged out successfully",
			})
		},
	}
}
