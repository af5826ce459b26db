// Package update tells interactive users when a newer simpleweather
// release exists. Checks are cached for a day and never fail a command.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// CheckInterval is the minimum time between release lookups.
	CheckInterval = 24 * time.Hour
	// Repo is the GitHub repository releases are published to.
	Repo = "salmonumbrella/simpleweather"
	// DisableEnvVar turns the check off when set to any value.
	DisableEnvVar = "SIMPLEWEATHER_NO_UPDATE_CHECK"

	defaultAPIURL = "https://api.github.com"
	cacheFileName = "update-check.json"
	fetchTimeout  = 3 * time.Second
)

// Notice describes an available upgrade.
type Notice struct {
	Current string
	Latest  string
}

func (n *Notice) String() string {
	return fmt.Sprintf("simpleweather %s is available (you have %s)\nRun: go install github.com/%s/cmd/simpleweather@latest",
		n.Latest, n.Current, Repo)
}

type cacheEntry struct {
	CheckedAt time.Time `json:"checked_at"`
	Latest    string    `json:"latest"`
}

// HTTPDoer abstracts an HTTP client for testability.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Checker looks up the latest release, caching the answer on disk.
type Checker struct {
	httpClient HTTPDoer
	apiURL     string
	cachePath  string
	interval   time.Duration
	now        func() time.Time
}

// Option configures a Checker.
type Option func(*Checker)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Checker) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithAPIURL points release lookups at another GitHub API host.
func WithAPIURL(u string) Option {
	return func(c *Checker) {
		if strings.TrimSpace(u) != "" {
			c.apiURL = strings.TrimRight(u, "/")
		}
	}
}

// WithCachePath overrides where the last answer is stored.
func WithCachePath(path string) Option {
	return func(c *Checker) { c.cachePath = path }
}

// WithNow overrides the clock.
func WithNow(fn func() time.Time) Option {
	return func(c *Checker) {
		if fn != nil {
			c.now = fn
		}
	}
}

// NewChecker creates a Checker with defaults and applies options.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		httpClient: http.DefaultClient,
		apiURL:     defaultAPIURL,
		interval:   CheckInterval,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check returns a Notice when a release newer than current exists, or nil.
// Development builds never get a notice.
func (c *Checker) Check(ctx context.Context, current string) (*Notice, error) {
	if !isRelease(current) {
		return nil, nil
	}

	path, err := c.resolveCachePath()
	if err != nil {
		return nil, fmt.Errorf("update check: cache path: %w", err)
	}

	entry := readCache(path)
	if entry.Latest == "" || c.now().Sub(entry.CheckedAt) > c.interval {
		latest, err := c.fetchLatest(ctx)
		if err != nil {
			return nil, fmt.Errorf("update check: %w", err)
		}
		entry = cacheEntry{CheckedAt: c.now(), Latest: latest}
		if err := writeCache(path, entry); err != nil {
			slog.Debug("update check: could not save cache", "path", path, "error", err)
		}
	}

	if newer(entry.Latest, current) {
		return &Notice{Current: trimV(current), Latest: entry.Latest}, nil
	}
	return nil, nil
}

// Notify runs a check and returns the notice text, or "" on any failure.
// It is a no-op when DisableEnvVar is set.
func Notify(ctx context.Context, current string, opts ...Option) string {
	if os.Getenv(DisableEnvVar) != "" {
		return ""
	}
	notice, err := NewChecker(opts...).Check(ctx, current)
	if err != nil {
		slog.Debug("update check failed", "error", err)
		return ""
	}
	if notice == nil {
		return ""
	}
	return notice.String()
}

func (c *Checker) resolveCachePath() (string, error) {
	if c.cachePath != "" {
		return c.cachePath, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "simpleweather", cacheFileName), nil
}

func readCache(path string) cacheEntry {
	var entry cacheEntry
	data, err := os.ReadFile(path)
	if err != nil {
		return entry
	}
	if err := json.Unmarshal(data, &entry); err != nil {
		return cacheEntry{}
	}
	return entry
}

func writeCache(path string, entry cacheEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Checker) fetchLatest(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/repos/%s/releases/latest", c.apiURL, Repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GitHub releases returned status %d", resp.StatusCode)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", fmt.Errorf("decode release: %w", err)
	}
	if release.TagName == "" {
		return "", fmt.Errorf("release has no tag")
	}
	return trimV(release.TagName), nil
}

func trimV(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}

func isRelease(v string) bool {
	v = trimV(v)
	if v == "" || v == "dev" || v == "unknown" {
		return false
	}
	_, ok := versionParts(v)
	return ok
}

// newer reports whether latest is a higher MAJOR.MINOR.PATCH than current.
// Pre-release and build suffixes are ignored.
func newer(latest, current string) bool {
	l, ok := versionParts(trimV(latest))
	if !ok {
		return false
	}
	c, ok := versionParts(trimV(current))
	if !ok {
		return false
	}
	for i := range l {
		if l[i] != c[i] {
			return l[i] > c[i]
		}
	}
	return false
}

func versionParts(v string) ([3]int, bool) {
	var parts [3]int
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	fields := strings.Split(v, ".")
	if len(fields) == 0 || len(fields) > 3 {
		return parts, false
	}
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return parts, false
		}
		parts[i] = n
	}
	return parts, true
}
