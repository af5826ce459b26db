package cmd

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	clierrors "github.com/salmonumbrella/simpleweather/internal/errors"
	"github.com/salmonumbrella/simpleweather/internal/config"
	"github.com/salmonumbrella/simpleweather/internal/testutil"
	"github.com/salmonumbrella/simpleweather/internal/weather"
)

const osloTable = "+------+-----------+-------------+------------+------------+\n" +
	"| City | Condition | Temperature | Min. temp. | Max. temp. |\n" +
	"+------+-----------+-------------+------------+------------+\n" +
	"| Oslo |  Clouds   |    5 °C     |    3 °C    |    7 °C    |\n" +
	"+------+-----------+-------------+------------+------------+\n"

func TestGet_TextTable(t *testing.T) {
	env := newTestEnv(t).withKey()
	env.server.HandleCity(oslo)

	stdout, stderr, err := env.run(t, "get", "Oslo")
	if err != nil {
		t.Fatalf("get failed: %v\nstderr=%s", err, stderr)
	}
	if stdout != osloTable {
		t.Errorf("stdout =\n%s\nwant\n%s", stdout, osloTable)
	}
}

func TestGet_WeatherAlias(t *testing.T) {
	env := newTestEnv(t).withKey()
	env.server.HandleCity(oslo)

	stdout, _, err := env.run(t, "weather", "oslo")
	if err != nil {
		t.Fatalf("weather failed: %v", err)
	}
	if stdout != osloTable {
		t.Errorf("stdout =\n%s", stdout)
	}
}

func TestGet_MultipleCitiesInOrder(t *testing.T) {
	env := newTestEnv(t).withKey()
	env.server.HandleCity(oslo)
	env.server.HandleCity(tokyo)

	stdout, _, err := env.run(t, "get", "Tokyo", "Oslo")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want 7 (3 content + 4 delimiters):\n%s", len(lines), stdout)
	}
	if !strings.Contains(lines[3], "Tokyo") || !strings.Contains(lines[5], "Oslo") {
		t.Errorf("rows out of order:\n%s", stdout)
	}
	for _, i := range []int{0, 2, 4, 6} {
		if lines[i] != lines[0] {
			t.Errorf("delimiter %d = %q, want %q", i, lines[i], lines[0])
		}
	}

	reqs := env.server.Requests()
	if len(reqs) != 2 || reqs[0].Get("q") != "Tokyo" || reqs[1].Get("q") != "Oslo" {
		t.Errorf("requests = %v", reqs)
	}
	for _, q := range reqs {
		if q.Get("appid") != testKey {
			t.Errorf("appid = %q, want test key", q.Get("appid"))
		}
		if q.Get("units") != "standard" {
			t.Errorf("units = %q, want standard", q.Get("units"))
		}
	}
}

func TestGet_NoCondition(t *testing.T) {
	env := newTestEnv(t).withKey()
	city := oslo
	city.Condition = ""
	env.server.HandleCity(city)

	stdout, _, err := env.run(t, "get", "Oslo")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !strings.Contains(stdout, "| Oslo |   None    |") {
		t.Errorf("expected None condition:\n%s", stdout)
	}
}

func TestGet_Units(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		config *config.Config
		want   string
	}{
		{name: "flag imperial", args: []string{"--units", "imperial"}, want: "41 °F"},
		{name: "flag standard", args: []string{"-u", "standard"}, want: "278 K"},
		{name: "config imperial", config: &config.Config{Units: "imperial"}, want: "41 °F"},
		{name: "flag beats config", args: []string{"--units", "metric"}, config: &config.Config{Units: "imperial"}, want: "5 °C"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t).withKey()
			env.server.HandleCity(oslo)
			if tt.config != nil {
				env.writeConfig(t, tt.config)
			}

			stdout, _, err := env.run(t, append([]string{"get", "Oslo"}, tt.args...)...)
			if err != nil {
				t.Fatalf("get failed: %v", err)
			}
			if !strings.Contains(stdout, tt.want) {
				t.Errorf("expected %q in:\n%s", tt.want, stdout)
			}
		})
	}
}

func TestGet_InvalidUnits(t *testing.T) {
	env := newTestEnv(t).withKey()

	_, stderr, err := env.run(t, "get", "Oslo", "--units", "rankine")
	if got := ExitCode(err); got != ExitUser {
		t.Fatalf("exit code = %d, want %d (err=%v)", got, ExitUser, err)
	}
	if !strings.Contains(stderr, "Hint: Use one of: metric, imperial, standard") {
		t.Errorf("stderr = %q", stderr)
	}
	if n := len(env.server.Requests()); n != 0 {
		t.Errorf("made %d requests, want 0", n)
	}
}

func TestGet_LangFromConfigAndFlag(t *testing.T) {
	env := newTestEnv(t).withKey()
	env.server.HandleCity(oslo)
	env.writeConfig(t, &config.Config{Lang: "de"})

	if _, _, err := env.run(t, "get", "Oslo"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := env.run(t, "get", "Oslo", "--lang", "fr"); err != nil {
		t.Fatal(err)
	}

	reqs := env.server.Requests()
	if len(reqs) != 2 {
		t.Fatalf("requests = %d, want 2", len(reqs))
	}
	if reqs[0].Get("lang") != "de" || reqs[1].Get("lang") != "fr" {
		t.Errorf("lang = %q, %q; want de, fr", reqs[0].Get("lang"), reqs[1].Get("lang"))
	}
}

func TestGet_JSON(t *testing.T) {
	env := newTestEnv(t).withKey()
	env.server.HandleCity(oslo)

	stdout, _, err := env.run(t, "get", "Oslo", "-o", "json")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	var readings []weather.Reading
	if err := json.Unmarshal([]byte(stdout), &readings); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	if len(readings) != 1 {
		t.Fatalf("got %d readings, want 1", len(readings))
	}
	r := readings[0]
	if r.City != "Oslo" || r.Country != "NO" || r.Condition != "Clouds" {
		t.Errorf("reading = %+v", r)
	}
	if r.Temperature != 5 || r.TempMin != 3 || r.TempMax != 7 || r.FeelsLike != 2 {
		t.Errorf("temperatures = %+v", r)
	}
	if r.Units != weather.Metric {
		t.Errorf("units = %q", r.Units)
	}
}

func TestGet_OutputFromEnv(t *testing.T) {
	env := newTestEnv(t).withKey()
	env.server.HandleCity(oslo)
	t.Setenv(OutputEnvVar, "ndjson")

	stdout, _, err := env.run(t, "get", "Oslo")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !strings.HasPrefix(stdout, `{"city":"Oslo"`) || strings.Count(stdout, "\n") != 1 {
		t.Errorf("stdout = %q, want one NDJSON record", stdout)
	}
}

func TestGet_Query(t *testing.T) {
	env := newTestEnv(t).withKey()
	env.server.HandleCity(oslo)
	env.server.HandleCity(tokyo)

	stdout, _, err := env.run(t, "get", "Oslo", "Tokyo", "-o", "json", "-q", "[.[] | .temperature]", "--compact-json")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if strings.TrimSpace(stdout) != "[5,23]" {
		t.Errorf("stdout = %q, want [5,23]", stdout)
	}
}

func TestGet_JSONPathOnText(t *testing.T) {
	env := newTestEnv(t).withKey()
	env.server.HandleCity(oslo)

	stdout, _, err := env.run(t, "get", "Oslo", "--jsonpath", "$[0].condition")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if strings.TrimSpace(stdout) != "Clouds" {
		t.Errorf("stdout = %q, want Clouds", stdout)
	}
}

func TestGet_CityNotFound(t *testing.T) {
	env := newTestEnv(t).withKey()

	stdout, stderr, err := env.run(t, "get", "Atlantis")
	if got := ExitCode(err); got != ExitNotFound {
		t.Fatalf("exit code = %d, want %d (err=%v)", got, ExitNotFound, err)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want empty", stdout)
	}
	if !strings.Contains(stderr, `city "Atlantis" not found`) || !strings.Contains(stderr, "Hint:") {
		t.Errorf("stderr = %q", stderr)
	}
	if strings.Contains(stderr, testKey) {
		t.Error("stderr leaks the API key")
	}
}

func TestGet_StopsAtFirstFailure(t *testing.T) {
	env := newTestEnv(t).withKey()
	env.server.HandleCity(oslo)

	stdout, _, err := env.run(t, "get", "Atlantis", "Oslo")
	if err == nil {
		t.Fatal("expected error")
	}
	if stdout != "" {
		t.Errorf("partial table printed: %q", stdout)
	}
	if n := len(env.server.Requests()); n != 1 {
		t.Errorf("made %d requests, want 1", n)
	}
}

func TestGet_CityNotFoundJSONEnvelope(t *testing.T) {
	env := newTestEnv(t).withKey()

	_, stderr, err := env.run(t, "get", "Atlantis", "-o", "json")
	if err == nil {
		t.Fatal("expected error")
	}

	var env2 map[string]map[string]interface{}
	if err := json.Unmarshal([]byte(stderr), &env2); err != nil {
		t.Fatalf("stderr is not JSON: %v\n%s", err, stderr)
	}
	payload := env2["error"]
	if payload["type"] != "openweathermap_api" {
		t.Errorf("type = %v", payload["type"])
	}
	if payload["code"] != "404" {
		t.Errorf("code = %v, want \"404\"", payload["code"])
	}
	if payload["category"] != "user" {
		t.Errorf("category = %v, want user", payload["category"])
	}
	if payload["exit_code"] != float64(ExitNotFound) {
		t.Errorf("exit_code = %v", payload["exit_code"])
	}
}

func TestGet_MissingKey(t *testing.T) {
	env := newTestEnv(t)

	_, stderr, err := env.run(t, "get", "Oslo")
	if got := ExitCode(err); got != ExitAuth {
		t.Fatalf("exit code = %d, want %d (err=%v)", got, ExitAuth, err)
	}
	if !strings.Contains(stderr, "simpleweather login <api key>") {
		t.Errorf("stderr = %q, want login hint", stderr)
	}
	if n := len(env.server.Requests()); n != 0 {
		t.Errorf("made %d requests, want 0", n)
	}
}

func TestGet_KeySources(t *testing.T) {
	const envKey = "ffffffffffffffffffffffffffffffff"

	t.Run("environment beats keyring", func(t *testing.T) {
		env := newTestEnv(t).withKey()
		env.server.HandleCity(oslo)
		t.Setenv("OPENWEATHER_API_KEY", envKey)

		if _, _, err := env.run(t, "get", "Oslo"); err != nil {
			t.Fatal(err)
		}
		if got := env.server.Requests()[0].Get("appid"); got != envKey {
			t.Errorf("appid = %q, want env key", got)
		}
	})

	t.Run("config file fallback", func(t *testing.T) {
		env := newTestEnv(t)
		env.server.HandleCity(oslo)
		env.writeConfig(t, &config.Config{APIKey: testKey})

		if _, _, err := env.run(t, "get", "Oslo"); err != nil {
			t.Fatal(err)
		}
		if got := env.server.Requests()[0].Get("appid"); got != testKey {
			t.Errorf("appid = %q, want config key", got)
		}
	})
}

func TestGet_InvalidKey(t *testing.T) {
	env := newTestEnv(t).withKey()
	env.server.HandleError(http.StatusUnauthorized, "Invalid API key. Please see https://openweathermap.org/faq#error401 for more info.")

	_, stderr, err := env.run(t, "get", "Oslo")
	if got := ExitCode(err); got != ExitAuth {
		t.Fatalf("exit code = %d, want %d", got, ExitAuth)
	}
	if !strings.Contains(stderr, "API key rejected") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestGet_APIURLFromConfig(t *testing.T) {
	env := newTestEnv(t).withKey()
	env.server.HandleCity(oslo)
	t.Setenv(APIURLEnvVar, "")
	env.writeConfig(t, &config.Config{APIURL: env.server.URL()})

	stdout, _, err := env.run(t, "get", "Oslo")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stdout != osloTable {
		t.Errorf("stdout =\n%s", stdout)
	}
}

func TestGet_DebugRedactsKey(t *testing.T) {
	env := newTestEnv(t).withKey()
	env.server.HandleCity(oslo)

	_, stderr, err := env.run(t, "get", "Oslo", "--debug")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !strings.Contains(stderr, testutil.WeatherPath) {
		t.Errorf("debug output missing request line: %q", stderr)
	}
	if strings.Contains(stderr, testKey) {
		t.Error("debug output leaks the API key")
	}
}

func TestGet_RequiresCity(t *testing.T) {
	env := newTestEnv(t).withKey()
	if _, _, err := env.run(t, "get"); err == nil {
		t.Fatal("expected error without a city")
	}
}

func TestMapWeatherError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"401", &weather.APIError{StatusCode: 401}, clierrors.IsAuthError},
		{"404", &weather.APIError{StatusCode: 404}, clierrors.IsUserError},
		{"429", &weather.APIError{StatusCode: 429, RetryAfter: 2 * time.Second}, clierrors.IsRateLimitError},
		{"500 passes through", &weather.APIError{StatusCode: 500}, func(err error) bool {
			_, ok := err.(*weather.APIError)
			return ok
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapWeatherError("Oslo", tt.err)
			if !tt.check(got) {
				t.Errorf("mapWeatherError() = %T %v", got, got)
			}
		})
	}

	rl := mapWeatherError("Oslo", &weather.APIError{StatusCode: 429, RetryAfter: 2 * time.Second})
	if e, ok := rl.(*clierrors.RateLimitError); !ok || e.RetryAfter != 2*time.Second {
		t.Errorf("rate limit error = %#v", rl)
	}
}

func TestWeatherTable(t *testing.T) {
	list := []*weather.CityWeather{
		{Name: "Oslo", Condition: "Clouds", Temp: 278.15, TempMin: 276.15, TempMax: 280.15},
	}
	got := weatherTable(list, weather.Metric)
	if len(got.Headers) != 5 || got.Headers[2] != "Temperature" {
		t.Errorf("headers = %v", got.Headers)
	}
	want := []string{"Oslo", "Clouds", "5 °C", "3 °C", "7 °C"}
	if len(got.Rows) != 1 || strings.Join(got.Rows[0], "|") != strings.Join(want, "|") {
		t.Errorf("rows = %v, want %v", got.Rows, want)
	}
}
