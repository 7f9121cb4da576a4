package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// ServerURL is the base URL of the persistence service
	ServerURL string `json:"server_url"`

	// UserContext identifies the session to the persistence service.
	// The service scopes projects and staged assets by this value.
	UserContext string `json:"user_context,omitempty"`

	// PageWindow is the initial (and incremental) size of the rendered
	// window. The view reveals PageWindow more items per disclosure step.
	PageWindow int `json:"page_window,omitempty"`

	// NotifyDelayMS is the coalescing delay for view-change notifications,
	// in milliseconds. Timing only; the settled state is delay-independent.
	NotifyDelayMS int `json:"notify_delay_ms,omitempty"`

	// ThumbnailSize is the pixel edge of staged thumbnails produced by the
	// reference server.
	ThumbnailSize int `json:"thumbnail_size,omitempty"`

	// DataDir overrides the reference server's storage directory.
	DataDir string `json:"data_dir,omitempty"`

	// AllowedExportPaths is an allowlist of directories for card export and
	// import. Relative entries are ignored.
	AllowedExportPaths []string `json:"allowed_export_paths,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ServerURL:     "http://127.0.0.1:8490",
		UserContext:   "default",
		PageWindow:    24,
		NotifyDelayMS: 16,
		ThumbnailSize: 96,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.roster.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.ServerURL = overlay.ServerURL
	if result.ServerURL == "" {
		result.ServerURL = base.ServerURL
	}

	result.UserContext = overlay.UserContext
	if result.UserContext == "" {
		result.UserContext = base.UserContext
	}

	result.PageWindow = overlay.PageWindow
	if result.PageWindow == 0 {
		result.PageWindow = base.PageWindow
	}

	result.NotifyDelayMS = overlay.NotifyDelayMS
	if result.NotifyDelayMS == 0 {
		result.NotifyDelayMS = base.NotifyDelayMS
	}

	result.ThumbnailSize = overlay.ThumbnailSize
	if result.ThumbnailSize == 0 {
		result.ThumbnailSize = base.ThumbnailSize
	}

	result.DataDir = overlay.DataDir
	if result.DataDir == "" {
		result.DataDir = base.DataDir
	}

	result.AllowedExportPaths = mergeStringSlice(base.AllowedExportPaths, overlay.AllowedExportPaths)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
