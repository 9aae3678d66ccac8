package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (SHARAI_*). Nested keys use a double
// underscore, e.g. SHARAI_DASHBOARD__PORT.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// SHARAI_API_BASE_URL -> api_base_url, SHARAI_DASHBOARD__PORT -> dashboard.port
	if err := k.Load(env.Provider("SHARAI_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "SHARAI_"))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validLogModes = map[LogMode]bool{
	LogModeDev:  true,
	LogModeProd: true,
}

var validLanguages = map[string]bool{
	"":   true,
	"en": true,
	"ar": true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api_base_url is required")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api_base_url %q: must be an absolute http(s) URL", c.APIBaseURL)
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if !validLanguages[c.Language] {
		return fmt.Errorf("invalid language %q: must be one of en, ar", c.Language)
	}

	if c.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("request_timeout must be non-negative")
	}

	if c.LogMode != "" && !validLogModes[c.LogMode] {
		return fmt.Errorf("invalid log_mode %q: must be one of dev, prod", c.LogMode)
	}

	if c.Dashboard.Port < 0 || c.Dashboard.Port > 65535 {
		return fmt.Errorf("dashboard.port %d out of range", c.Dashboard.Port)
	}

	return nil
}
