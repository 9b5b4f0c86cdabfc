package config

import (
	"encoding/json"
	"os"

	"github.com/smolyakovd/inkpad/internal/flagx"
	"github.com/smolyakovd/inkpad/internal/timex"
)

// jsonConfig is the DTO for the JSON config file. Durations may be written
// either as strings ("300ms") or as integer nanoseconds. Zero values are
// treated as "not set" and leave the defaults alone.
type jsonConfig struct {
	APIBaseURL          string         `json:"api_base_url"`
	TokenFile           string         `json:"token_file"`
	TitleDebounce       timex.Duration `json:"title_debounce"`
	ContentDebounce     timex.Duration `json:"content_debounce"`
	UserSearchDebounce  timex.Duration `json:"user_search_debounce"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
}

// parseJSON overlays cfg with values from the file named by -c/-config.
// No flag, no file, no overlay. Read or decode errors panic; the process
// has no useful way to continue with a half-read config.
func parseJSON(cfg *Config) {
	path := flagx.JSONConfigPath()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.TokenFile != "" {
		cfg.TokenFile = jc.TokenFile
	}
	if jc.TitleDebounce.Duration > 0 {
		cfg.TitleDebounce = jc.TitleDebounce.Duration
	}
	if jc.ContentDebounce.Duration > 0 {
		cfg.ContentDebounce = jc.ContentDebounce.Duration
	}
	if jc.UserSearchDebounce.Duration > 0 {
		cfg.UserSearchDebounce = jc.UserSearchDebounce.Duration
	}
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
}
