package cmd

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/salmonumbrella/simpleweather/internal/auth"
	"github.com/salmonumbrella/simpleweather/internal/config"
	"github.com/salmonumbrella/simpleweather/internal/testutil"
)

const testKey = "0123456789abcdef0123456789abcdef"

// testEnv isolates a CLI run: mock API, mock keyring and a temp config file.
type testEnv struct {
	server     *testutil.MockServer
	keyring    *auth.MockKeyring
	configPath string
	stdin      io.Reader
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ms := testutil.NewMockServer()
	t.Cleanup(ms.Close)

	mk := auth.NewMockKeyringProvider()
	auth.SetProviderFunc(func() (auth.KeyringProvider, error) { return mk, nil })
	t.Cleanup(func() { auth.SetProviderFunc(nil) })

	configPath := filepath.Join(t.TempDir(), "simpleweather", "config.yaml")
	orig := config.SetConfigPathFunc(func() (string, error) { return configPath, nil })
	t.Cleanup(func() { config.SetConfigPathFunc(orig) })

	t.Setenv(auth.EnvVarName, "")
	t.Setenv(OutputEnvVar, "")
	t.Setenv(APIURLEnvVar, ms.URL())
	t.Setenv("NO_COLOR", "1")

	return &testEnv{server: ms, keyring: mk, configPath: configPath}
}

// withKey stores the test key in the mock keyring.
func (e *testEnv) withKey() *testEnv {
	e.keyring.SetAPIKey(testKey)
	return e
}

func (e *testEnv) writeConfig(t *testing.T, cfg *config.Config) {
	t.Helper()
	if err := cfg.SaveToPath(e.configPath); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (e *testEnv) loadConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFromPath(e.configPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

// run executes the CLI and returns stdout, stderr and the command error.
func (e *testEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	stdin := e.stdin
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	var stdout, stderr bytes.Buffer
	app := &App{
		Stdin:     stdin,
		Stdout:    &stdout,
		Stderr:    &stderr,
		Version:   "1.2.3",
		Commit:    "abc1234",
		BuildTime: "2026-01-01",
	}
	err := app.Execute(context.Background(), args)
	return stdout.String(), stderr.String(), err
}

// oslo is 5 °C with a 3..7 °C range.
var oslo = testutil.City{
	Name:        "Oslo",
	Country:     "NO",
	Condition:   "Clouds",
	Description: "overcast clouds",
	Temp:        278.15,
	TempMin:     276.15,
	TempMax:     280.15,
	FeelsLike:   275.15,
	Humidity:    81,
}

var tokyo = testutil.City{
	Name:      "Tokyo",
	Country:   "JP",
	Condition: "Clear",
	Temp:      296.15,
	TempMin:   294.15,
	TempMax:   297.15,
	FeelsLike: 295.15,
	Humidity:  40,
}
