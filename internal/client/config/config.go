// Package config loads the client's runtime settings. Sources are layered
// the same way across the project: compiled-in defaults, then an optional
// JSON file (-c/-config), then command-line flags, later sources winning.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the InkPad client.
//
// The two debounce windows drive the editor's change detector: a field's
// value is considered settled once it has been quiescent for its window.
type Config struct {
	// APIBaseURL is the root of the knowledge-base REST API.
	APIBaseURL string

	// TokenFile is where the bearer token is stored between sessions.
	TokenFile string

	// TitleDebounce is the quiescence window for title edits.
	TitleDebounce time.Duration

	// ContentDebounce is the quiescence window for content edits.
	ContentDebounce time.Duration

	// UserSearchDebounce delays user-search requests in the sharing dialog.
	UserSearchDebounce time.Duration

	// OnlineCheckInterval is how often the client probes server health.
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8080"
	c.TokenFile = defaultTokenFile()
	c.TitleDebounce = 1000 * time.Millisecond
	c.ContentDebounce = 2000 * time.Millisecond
	c.UserSearchDebounce = 300 * time.Millisecond
	c.OnlineCheckInterval = 15 * time.Second
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".inkpad-token"
	}
	return filepath.Join(home, ".inkpad", "token")
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if a config file was given) and command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
