package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.APIBaseURL != "http://localhost:5000" {
		t.Errorf("expected default api_base_url %q, got %q", "http://localhost:5000", cfg.APIBaseURL)
	}
	if cfg.DataDir != ".sharai" {
		t.Errorf("expected default data_dir %q, got %q", ".sharai", cfg.DataDir)
	}
	if cfg.RequestTimeoutSeconds != 0 {
		t.Errorf("expected no default timeout, got %d", cfg.RequestTimeoutSeconds)
	}
	if cfg.Dashboard.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Dashboard.Port)
	}
	if got := cfg.DatabasePath(); got != filepath.Join(".sharai", "sharai.db") {
		t.Errorf("DatabasePath() = %q", got)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.sharai.yml")

	original := DefaultConfig()
	original.APIBaseURL = "https://contracts.example.com"
	original.Language = "ar"
	original.DataDir = filepath.Join(dir, "data")
	original.RequestTimeoutSeconds = 30
	original.Dashboard.Port = 9090

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.APIBaseURL != original.APIBaseURL {
		t.Errorf("api_base_url: got %q, want %q", loaded.APIBaseURL, original.APIBaseURL)
	}
	if loaded.Language != original.Language {
		t.Errorf("language: got %q, want %q", loaded.Language, original.Language)
	}
	if loaded.DataDir != original.DataDir {
		t.Errorf("data_dir: got %q, want %q", loaded.DataDir, original.DataDir)
	}
	if loaded.RequestTimeoutSeconds != 30 {
		t.Errorf("request_timeout: got %d, want 30", loaded.RequestTimeoutSeconds)
	}
	if loaded.Dashboard.Port != 9090 {
		t.Errorf("dashboard.port: got %d, want 9090", loaded.Dashboard.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.APIBaseURL != DefaultAPIBaseURL {
		t.Errorf("expected default api_base_url, got %q", cfg.APIBaseURL)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	if err := DefaultConfig().Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("SHARAI_API_BASE_URL", "https://override.example.com/")
	t.Setenv("SHARAI_DASHBOARD__PORT", "7000")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.APIBaseURL != "https://override.example.com" {
		t.Errorf("env override failed: got %q", loaded.APIBaseURL)
	}
	if loaded.Dashboard.Port != 7000 {
		t.Errorf("nested env override failed: got %d", loaded.Dashboard.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty url", func(c *Config) { c.APIBaseURL = "" }, true},
		{"relative url", func(c *Config) { c.APIBaseURL = "localhost:5000" }, true},
		{"ftp url", func(c *Config) { c.APIBaseURL = "ftp://example.com" }, true},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, true},
		{"arabic", func(c *Config) { c.Language = "ar" }, false},
		{"unknown language", func(c *Config) { c.Language = "fr" }, true},
		{"negative timeout", func(c *Config) { c.RequestTimeoutSeconds = -1 }, true},
		{"bad log mode", func(c *Config) { c.LogMode = "verbose" }, true},
		{"port out of range", func(c *Config) { c.Dashboard.Port = 70000 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
