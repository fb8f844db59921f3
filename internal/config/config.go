/*
Package config handles loading and saving tulz configuration.

Configuration is stored in ~/.tulz.json. Every setting is optional; missing
values fall back to the defaults below, and TULZ_LOG_LEVEL / TULZ_LISTEN_ADDR
override the file.

Schema:
  {
    "settings": {
      "debounceMs": 300,
      "recentLimit": 5,
      "searchLimit": 10,
      "threshold": 0.3,
      "minMatchCharLength": 2,
      "backend": "bleve",
      "weights": {"title": 0.5, "description": 0.3, "category": 0.1, "tags": 0.1, "content": 0.05},
      "indexPath": "",
      "articlesDir": "",
      "listenAddr": "127.0.0.1:8080",
      "logLevel": "info",
      "dataDir": "~/.tulz"
    }
  }
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tulznet/tulz/internal/search"
)

// Default setting values.
const (
	DefaultDebounceMs  = 300
	DefaultRecentLimit = 5
	DefaultListenAddr  = "127.0.0.1:8080"
	DefaultLogLevel    = "info"
)

// Config represents the root configuration structure.
type Config struct {
	// Settings contains global configuration options.
	Settings *Settings `json:"settings"`
}

// Settings contains global configuration options.
type Settings struct {
	// DebounceMs is the quiet period before typed input is searched.
	DebounceMs int `json:"debounceMs,omitempty"`

	// RecentLimit caps the recent-search list.
	RecentLimit int `json:"recentLimit,omitempty"`

	// SearchLimit caps query engine hits.
	SearchLimit int `json:"searchLimit,omitempty"`

	// Threshold controls match permissiveness, 0 (exact) to 1.
	Threshold *float64 `json:"threshold,omitempty"`

	// MinMatchCharLength drops shorter query terms.
	MinMatchCharLength int `json:"minMatchCharLength,omitempty"`

	// Backend selects the search index implementation.
	Backend string `json:"backend,omitempty"`

	// Weights overrides per-field search weights.
	Weights *search.FieldWeights `json:"weights,omitempty"`

	// IndexPath is a prebuilt search index artifact. Empty builds the index
	// from the embedded catalog and ArticlesDir.
	IndexPath string `json:"indexPath,omitempty"`

	// ArticlesDir holds Markdown blog articles.
	ArticlesDir string `json:"articlesDir,omitempty"`

	// ListenAddr is the preview API address.
	ListenAddr string `json:"listenAddr,omitempty"`

	// LogLevel is a zerolog level name.
	LogLevel string `json:"logLevel,omitempty"`

	// DataDir holds history.db. Empty means ~/.tulz.
	DataDir string `json:"dataDir,omitempty"`
}

// NewConfig creates a configuration populated with defaults.
func NewConfig() *Config {
	threshold := search.DefaultThreshold
	weights := search.DefaultFieldWeights
	return &Config{
		Settings: &Settings{
			DebounceMs:         DefaultDebounceMs,
			RecentLimit:        DefaultRecentLimit,
			SearchLimit:        search.DefaultLimit,
			Threshold:          &threshold,
			MinMatchCharLength: search.DefaultMinMatchCharLength,
			Backend:            search.BackendBleve,
			Weights:            &weights,
			ListenAddr:         DefaultListenAddr,
			LogLevel:           DefaultLogLevel,
		},
	}
}

// GetDefaultConfigPath returns the path to ~/.tulz.json
func GetDefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".tulz.json"), nil
}

// Load reads the configuration from the default path.
func Load() (*Config, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// applyDefaults fills unset settings in place.
func (c *Config) applyDefaults() {
	if c.Settings == nil {
		c.Settings = &Settings{}
	}
	d := NewConfig().Settings
	s := c.Settings

	if s.DebounceMs == 0 {
		s.DebounceMs = d.DebounceMs
	}
	if s.RecentLimit == 0 {
		s.RecentLimit = d.RecentLimit
	}
	if s.SearchLimit == 0 {
		s.SearchLimit = d.SearchLimit
	}
	if s.Threshold == nil {
		s.Threshold = d.Threshold
	}
	if s.MinMatchCharLength == 0 {
		s.MinMatchCharLength = d.MinMatchCharLength
	}
	if s.Backend == "" {
		s.Backend = d.Backend
	}
	if s.Weights == nil {
		s.Weights = d.Weights
	}
	if s.ListenAddr == "" {
		s.ListenAddr = d.ListenAddr
	}
	if s.LogLevel == "" {
		s.LogLevel = d.LogLevel
	}
}

// ApplyEnv applies environment overrides using getenv (os.Getenv in
// production).
func (c *Config) ApplyEnv(getenv func(string) string) {
	if c.Settings == nil {
		c.applyDefaults()
	}
	if v := strings.TrimSpace(getenv("TULZ_LOG_LEVEL")); v != "" {
		c.Settings.LogLevel = v
	}
	if v := strings.TrimSpace(getenv("TULZ_LISTEN_ADDR")); v != "" {
		c.Settings.ListenAddr = v
	}
}

// SearchConfig returns the index configuration.
func (c *Config) SearchConfig() search.Config {
	cfg := search.DefaultConfig()
	if c == nil || c.Settings == nil {
		return cfg
	}
	s := c.Settings
	if s.Threshold != nil {
		cfg.Threshold = *s.Threshold
	}
	if s.MinMatchCharLength > 0 {
		cfg.MinMatchCharLength = s.MinMatchCharLength
	}
	if s.SearchLimit > 0 {
		cfg.DefaultLimit = s.SearchLimit
	}
	if s.Backend != "" {
		cfg.Backend = s.Backend
	}
	if s.Weights != nil {
		cfg.Weights = *s.Weights
	}
	return cfg
}

// Debounce returns the debounce window.
func (c *Config) Debounce() time.Duration {
	if c == nil || c.Settings == nil || c.Settings.DebounceMs <= 0 {
		return DefaultDebounceMs * time.Millisecond
	}
	return time.Duration(c.Settings.DebounceMs) * time.Millisecond
}

// HistoryPath returns the history database path.
func (c *Config) HistoryPath() (string, error) {
	dir := ""
	if c != nil && c.Settings != nil {
		dir = c.Settings.DataDir
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".tulz")
	}
	return filepath.Join(expandHome(dir), "history.db"), nil
}

// expandHome replaces a leading ~/ with the home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ArticlesPath returns the articles directory with ~ expanded, or "" when
// no articles are configured.
func (c *Config) ArticlesPath() string {
	if c == nil || c.Settings == nil || c.Settings.ArticlesDir == "" {
		return ""
	}
	return expandHome(c.Settings.ArticlesDir)
}

// IndexArtifactPath returns the prebuilt index path with ~ expanded, or ""
// when the index is built from the catalog.
func (c *Config) IndexArtifactPath() string {
	if c == nil || c.Settings == nil || c.Settings.IndexPath == "" {
		return ""
	}
	return expandHome(c.Settings.IndexPath)
}
