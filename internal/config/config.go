package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// AppName names the directory under the user config root.
	AppName = "simpleweather"
	// FileName is the config file inside the app directory.
	FileName = "config.yaml"
	// XDGConfigHomeEnv overrides the config root when set.
	XDGConfigHomeEnv = "XDG_CONFIG_HOME"
)

// Config represents the CLI configuration
type Config struct {
	// Default output format (text, table, json, yaml)
	Output string `yaml:"output,omitempty"`

	// Default color mode (auto, always, never)
	Color string `yaml:"color,omitempty"`

	// Temperature units (metric, imperial, standard)
	Units string `yaml:"units,omitempty"`

	// Language code for condition descriptions (e.g. "en", "de")
	Lang string `yaml:"lang,omitempty"`

	// Optional custom API URL (for testing or a proxy)
	APIURL string `yaml:"api_url,omitempty"`

	// API key stored in plain text. Only set by 'login --store config';
	// the keyring is preferred.
	APIKey string `yaml:"api_key,omitempty"`
}

// SettableKeys lists the keys accepted by Set, in display order.
var SettableKeys = []string{"output", "color", "units", "lang", "api_url"}

// configPathFunc is the function used to get the default config path
// It can be overridden for testing
var configPathFunc = defaultConfigPath

// SetConfigPathFunc sets the config path function for testing.
// Returns the original function so it can be restored.
func SetConfigPathFunc(fn func() (string, error)) func() (string, error) {
	orig := configPathFunc
	configPathFunc = fn
	return orig
}

// defaultConfigPath returns $XDG_CONFIG_HOME/simpleweather/config.yaml,
// falling back to ~/.config/simpleweather/config.yaml.
func defaultConfigPath() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(XDGConfigHomeEnv)); dir != "" {
		return filepath.Join(dir, AppName, FileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, FileName), nil
}

// DefaultConfigPath returns the path Load and Save use.
func DefaultConfigPath() (string, error) {
	return configPathFunc()
}

// Load loads config from the default path, returns empty config if not found
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return &Config{}, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}
	return &cfg, nil
}

// Save saves config to the default path
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveToPath(path)
}

// SaveToPath saves config to a specific path. The file may hold an API key,
// so it is written 0600 inside a 0700 directory.
func (c *Config) SaveToPath(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Get returns the value stored for a settable key.
func (c *Config) Get(key string) (string, error) {
	field, err := c.field(key)
	if err != nil {
		return "", err
	}
	return *field, nil
}

// Set stores value under a settable key. Values are not validated here.
func (c *Config) Set(key, value string) error {
	field, err := c.field(key)
	if err != nil {
		return err
	}
	*field = strings.TrimSpace(value)
	return nil
}

// Unset clears a settable key.
func (c *Config) Unset(key string) error {
	return c.Set(key, "")
}

func (c *Config) field(key string) (*string, error) {
	switch key {
	case "output":
		return &c.Output, nil
	case "color":
		return &c.Color, nil
	case "units":
		return &c.Units, nil
	case "lang":
		return &c.Lang, nil
	case "api_url":
		return &c.APIURL, nil
	default:
		return nil, fmt.Errorf("unknown config key %q (supported: %s)", key, strings.Join(SettableKeys, ", "))
	}
}

// IsEmpty reports whether no field is set.
func (c *Config) IsEmpty() bool {
	return *c == Config{}
}

// Redacted returns a copy safe to print: a stored API key is masked.
func (c *Config) Redacted() *Config {
	cp := *c
	if cp.APIKey != "" {
		cp.APIKey = "********"
	}
	return &cp
}
