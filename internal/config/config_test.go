package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tulznet/tulz/internal/search"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.Settings == nil {
		t.Fatal("NewConfig().Settings should not be nil")
	}
	if cfg.Settings.DebounceMs != 300 {
		t.Errorf("Default DebounceMs should be 300, got %d", cfg.Settings.DebounceMs)
	}
	if cfg.Settings.RecentLimit != 5 {
		t.Errorf("Default RecentLimit should be 5, got %d", cfg.Settings.RecentLimit)
	}
	if cfg.Settings.Backend != search.BackendBleve {
		t.Errorf("Default Backend should be bleve, got %s", cfg.Settings.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "test-config.json")

	cfg := NewConfig()
	cfg.Settings.DebounceMs = 150
	cfg.Settings.Backend = search.BackendSubsequence
	cfg.Settings.ArticlesDir = "/srv/blog"

	if err := Save(cfg, configPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if loaded.Settings.DebounceMs != 150 {
		t.Errorf("expected DebounceMs 150, got %d", loaded.Settings.DebounceMs)
	}
	if loaded.Settings.Backend != search.BackendSubsequence {
		t.Errorf("expected subsequence backend, got %s", loaded.Settings.Backend)
	}
	if loaded.Settings.ArticlesDir != "/srv/blog" {
		t.Errorf("expected ArticlesDir to round-trip, got %s", loaded.Settings.ArticlesDir)
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "partial.json")
	if err := os.WriteFile(configPath, []byte(`{"settings": {"recentLimit": 8}}`), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Settings.RecentLimit != 8 {
		t.Errorf("expected RecentLimit 8, got %d", cfg.Settings.RecentLimit)
	}
	if cfg.Settings.DebounceMs != DefaultDebounceMs {
		t.Errorf("expected default DebounceMs, got %d", cfg.Settings.DebounceMs)
	}
	if cfg.Settings.Threshold == nil || *cfg.Settings.Threshold != search.DefaultThreshold {
		t.Error("expected default threshold")
	}

	empty := filepath.Join(t.TempDir(), "empty.json")
	os.WriteFile(empty, []byte(`{}`), 0644)
	if _, err := LoadFrom(empty); err != nil {
		t.Errorf("empty object should load with defaults: %v", err)
	}
}

func TestExplicitZeroThreshold(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "exact.json")
	os.WriteFile(configPath, []byte(`{"settings": {"threshold": 0}}`), 0644)

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if got := cfg.SearchConfig().Threshold; got != 0 {
		t.Errorf("expected explicit 0 threshold to be kept, got %v", got)
	}
}

func TestSearchConfig(t *testing.T) {
	cfg := NewConfig()
	cfg.Settings.SearchLimit = 25
	cfg.Settings.MinMatchCharLength = 3
	cfg.Settings.Weights = &search.FieldWeights{Title: 1}

	sc := cfg.SearchConfig()
	if sc.DefaultLimit != 25 || sc.MinMatchCharLength != 3 || sc.Weights.Title != 1 || sc.Weights.Description != 0 {
		t.Errorf("unexpected search config: %+v", sc)
	}

	var nilCfg *Config
	if nilCfg.SearchConfig() != search.DefaultConfig() {
		t.Error("nil config should yield search defaults")
	}
}

func TestDebounce(t *testing.T) {
	cfg := NewConfig()
	if cfg.Debounce() != 300*time.Millisecond {
		t.Errorf("expected 300ms, got %v", cfg.Debounce())
	}
	cfg.Settings.DebounceMs = 50
	if cfg.Debounce() != 50*time.Millisecond {
		t.Errorf("expected 50ms, got %v", cfg.Debounce())
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := NewConfig()
	env := map[string]string{
		"TULZ_LOG_LEVEL":   "debug",
		"TULZ_LISTEN_ADDR": ":9999",
	}
	cfg.ApplyEnv(func(k string) string { return env[k] })

	if cfg.Settings.LogLevel != "debug" {
		t.Errorf("expected debug, got %s", cfg.Settings.LogLevel)
	}
	if cfg.Settings.ListenAddr != ":9999" {
		t.Errorf("expected :9999, got %s", cfg.Settings.ListenAddr)
	}

	cfg.ApplyEnv(func(string) string { return "" })
	if cfg.Settings.LogLevel != "debug" {
		t.Error("empty env should not override")
	}
}

func TestHistoryPath(t *testing.T) {
	cfg := NewConfig()
	cfg.Settings.DataDir = "/var/lib/tulz"

	path, err := cfg.HistoryPath()
	if err != nil {
		t.Fatalf("HistoryPath failed: %v", err)
	}
	if path != "/var/lib/tulz/history.db" {
		t.Errorf("unexpected path %s", path)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	cfg.Settings.DataDir = "~/data"
	path, _ = cfg.HistoryPath()
	if path != filepath.Join(home, "data", "history.db") {
		t.Errorf("expected ~ to expand, got %s", path)
	}

	cfg.Settings.DataDir = ""
	path, _ = cfg.HistoryPath()
	if !strings.HasSuffix(path, filepath.Join(".tulz", "history.db")) {
		t.Errorf("unexpected default path %s", path)
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	path, err := GetDefaultConfigPath()
	if err != nil {
		t.Fatalf("GetDefaultConfigPath failed: %v", err)
	}

	if filepath.Base(path) != ".tulz.json" {
		t.Errorf("Expected path to end with .tulz.json, got %s", path)
	}
}

func TestArtifactPaths(t *testing.T) {
	cfg := NewConfig()
	if cfg.ArticlesPath() != "" || cfg.IndexArtifactPath() != "" {
		t.Error("unset paths should be empty")
	}

	cfg.Settings.ArticlesDir = "/srv/blog"
	cfg.Settings.IndexPath = "/srv/index.jsonl"
	if cfg.ArticlesPath() != "/srv/blog" {
		t.Errorf("unexpected articles path %s", cfg.ArticlesPath())
	}
	if cfg.IndexArtifactPath() != "/srv/index.jsonl" {
		t.Errorf("unexpected index path %s", cfg.IndexArtifactPath())
	}

	var nilCfg *Config
	if nilCfg.ArticlesPath() != "" {
		t.Error("nil config should have no articles path")
	}
}
