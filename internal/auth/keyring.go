package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/99designs/keyring"
)

const (
	// ServiceName is the keyring service name
	ServiceName = "simpleweather"
	// KeyName is the keyring item holding the raw API key
	KeyName = "openweather-api-key"
	// MetadataKey is the keyring item holding KeyMetadata as JSON
	MetadataKey = "openweather-api-key-metadata"
	// EnvVarName is the environment variable that overrides stored keys
	EnvVarName = "OPENWEATHER_API_KEY"
	// CredentialsDirEnvVarName moves the file keyring to <dir>/simpleweather/keyring
	CredentialsDirEnvVarName = "SIMPLEWEATHER_CREDENTIALS_DIR"
	// KeyringPasswordEnvVarName sets the file keyring passphrase for non-interactive setups
	KeyringPasswordEnvVarName = "SIMPLEWEATHER_KEYRING_PASSWORD"
	// DBUSSessionAddressEnvVarName is used to detect Linux headless mode
	DBUSSessionAddressEnvVarName = "DBUS_SESSION_BUS_ADDRESS"
)

// ErrNoKey is returned when no API key is stored anywhere.
var ErrNoKey = errors.New("no OpenWeatherMap API key found")

// apiKeyPattern matches the 32 hex character keys OpenWeatherMap issues.
var apiKeyPattern = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)

// KeyMetadata describes the key stored in the keyring.
type KeyMetadata struct {
	CreatedAt time.Time `json:"created_at"`
	// Last4 holds the last four characters, for display.
	Last4 string `json:"last4"`
}

// KeyringProvider defines an interface for keyring operations
type KeyringProvider interface {
	Get(key string) (keyring.Item, error)
	Set(item keyring.Item) error
	Remove(key string) error
}

// osKeyring wraps the actual OS keyring implementation
type osKeyring struct {
	ring keyring.Keyring
}

func keyringFileDir() string {
	if dir := strings.TrimSpace(os.Getenv(CredentialsDirEnvVarName)); dir != "" {
		return filepath.Join(dir, ServiceName, "keyring")
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = os.Getenv("HOME")
	}

	configDir = strings.TrimSpace(configDir)
	if configDir == "" {
		return string(os.PathSeparator) + filepath.Join(ServiceName, "keyring")
	}
	return filepath.Join(configDir, ServiceName, "keyring")
}

func keyringFilePassword() string {
	if password := strings.TrimSpace(os.Getenv(KeyringPasswordEnvVarName)); password != "" {
		return password
	}
	return ServiceName
}

func shouldForceFileBackend(goos string, dbusAddr string) bool {
	return goos == "linux" && strings.TrimSpace(dbusAddr) == ""
}

// newOSKeyring creates a new OS keyring provider
func newOSKeyring() (KeyringProvider, error) {
	cfg := keyring.Config{
		ServiceName: ServiceName,
		// macOS Keychain settings
		KeychainTrustApplication:       true,
		KeychainSynchronizable:         false,
		KeychainAccessibleWhenUnlocked: true,
		// File-based fallback (for environments without GUI keyring)
		FileDir:          keyringFileDir(),
		FilePasswordFunc: func(_ string) (string, error) { return keyringFilePassword(), nil },
	}

	if shouldForceFileBackend(runtime.GOOS, os.Getenv(DBUSSessionAddressEnvVarName)) {
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, err
	}
	return &osKeyring{ring: ring}, nil
}

func (k *osKeyring) Get(key string) (keyring.Item, error) {
	return k.ring.Get(key)
}

func (k *osKeyring) Set(item keyring.Item) error {
	return k.ring.Set(item)
}

func (k *osKeyring) Remove(key string) error {
	return k.ring.Remove(key)
}

// defaultProvider is the keyring provider used by the package
// Can be overridden for testing using SetProviderFunc
var defaultProvider func() (KeyringProvider, error) = newOSKeyring

// now is replaced in tests.
var now = time.Now

// StoreAPIKey stores key in the keyring together with its metadata.
// Re-storing the same key keeps the original CreatedAt.
func StoreAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key cannot be empty")
	}

	provider, err := defaultProvider()
	if err != nil {
		return fmt.Errorf("failed to open keyring: %w", err)
	}

	createdAt := now()
	if existing, err := provider.Get(KeyName); err == nil && string(existing.Data) == key {
		if meta, err := GetKeyMetadata(); err == nil && !meta.CreatedAt.IsZero() {
			createdAt = meta.CreatedAt
		}
	}

	err = provider.Set(keyring.Item{
		Key:   KeyName,
		Label: "simpleweather OpenWeatherMap API key",
		Data:  []byte(key),
	})
	if err != nil {
		return fmt.Errorf("failed to store API key in keyring: %w", err)
	}

	data, err := json.Marshal(KeyMetadata{CreatedAt: createdAt, Last4: last4(key)})
	if err != nil {
		return fmt.Errorf("failed to marshal key metadata: %w", err)
	}
	err = provider.Set(keyring.Item{
		Key:   MetadataKey,
		Label: "simpleweather API key metadata",
		Data:  data,
	})
	if err != nil {
		return fmt.Errorf("failed to store key metadata in keyring: %w", err)
	}

	return nil
}

// GetKeyringAPIKey returns the key stored in the keyring, ignoring the
// environment and config file.
func GetKeyringAPIKey() (string, error) {
	provider, err := defaultProvider()
	if err != nil {
		return "", fmt.Errorf("failed to open keyring: %w", err)
	}
	item, err := provider.Get(KeyName)
	if errors.Is(err, keyring.ErrKeyNotFound) || (err == nil && len(item.Data) == 0) {
		return "", ErrNoKey
	}
	if err != nil {
		return "", fmt.Errorf("failed to read keyring: %w", err)
	}
	return string(item.Data), nil
}

// GetKeyMetadata retrieves key metadata from the keyring.
func GetKeyMetadata() (*KeyMetadata, error) {
	provider, err := defaultProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}

	item, err := provider.Get(MetadataKey)
	if err != nil {
		return nil, err
	}

	var meta KeyMetadata
	if err := json.Unmarshal(item.Data, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal key metadata: %w", err)
	}
	return &meta, nil
}

// DeleteAPIKey removes the key and its metadata from the keyring.
// A missing key or an unavailable keyring is not an error.
func DeleteAPIKey() error {
	provider, err := defaultProvider()
	if err != nil {
		return nil
	}

	err = provider.Remove(KeyName)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete API key from keyring: %w", err)
	}
	_ = provider.Remove(MetadataKey)
	return nil
}

// LooksLikeAPIKey reports whether key has the shape of an OpenWeatherMap
// key. Other shapes may still work against proxies, so callers warn rather
// than reject.
func LooksLikeAPIKey(key string) bool {
	return apiKeyPattern.MatchString(key)
}

// MaskKey hides all but the last four characters of key.
func MaskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + last4(key)
}

// FormatKeyAge renders how long ago the key was stored.
// Returns empty string if createdAt is zero.
func FormatKeyAge(createdAt time.Time) string {
	if createdAt.IsZero() {
		return ""
	}
	days := int(now().Sub(createdAt).Hours() / 24)
	dateStr := createdAt.Format("2006-01-02")
	switch days {
	case 0:
		return fmt.Sprintf("stored today (%s)", dateStr)
	case 1:
		return fmt.Sprintf("stored 1 day ago (%s)", dateStr)
	default:
		return fmt.Sprintf("stored %d days ago (%s)", days, dateStr)
	}
}

func last4(key string) string {
	if len(key) <= 4 {
		return key
	}
	return key[len(key)-4:]
}
