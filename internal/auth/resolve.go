package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/salmonumbrella/simpleweather/internal/config"
)

// Source tells where a resolved API key came from.
type Source string

const (
	SourceNone        Source = "none"
	SourceEnvironment Source = "environment"
	SourceKeyring     Source = "keyring"
	SourceConfig      Source = "config"
)

// Resolve returns the API key to use and where it was found: the
// environment variable first, then the keyring, then cfg.APIKey.
// cfg may be nil. Returns ErrNoKey when nothing is configured.
func Resolve(cfg *config.Config) (string, Source, error) {
	if key := strings.TrimSpace(os.Getenv(EnvVarName)); key != "" {
		return key, SourceEnvironment, nil
	}

	key, err := GetKeyringAPIKey()
	switch {
	case err == nil:
		return key, SourceKeyring, nil
	case !errors.Is(err, ErrNoKey):
		// An unavailable keyring is normal in containers; keep looking.
		slog.Debug("keyring lookup failed", "error", err)
	}

	if cfg != nil {
		if key := strings.TrimSpace(cfg.APIKey); key != "" {
			return key, SourceConfig, nil
		}
	}

	return "", SourceNone, fmt.Errorf("%w in %s, keyring or config file", ErrNoKey, EnvVarName)
}

// HasAPIKey reports whether Resolve would find a key.
func HasAPIKey(cfg *config.Config) bool {
	_, _, err := Resolve(cfg)
	return err == nil
}
