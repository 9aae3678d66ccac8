package config

import "path/filepath"

// DefaultConfigFile is the config path used when --config is not given.
const DefaultConfigFile = ".sharai.yml"

// DefaultAPIBaseURL is the backend address used when nothing else is configured.
const DefaultAPIBaseURL = "http://localhost:5000"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL:            DefaultAPIBaseURL,
		DataDir:               ".sharai",
		RequestTimeoutSeconds: 0,
		LogMode:               LogModeDev,
		Dashboard: DashboardConfig{
			Port:         8080,
			CORSAllowAll: false,
		},
	}
}

// DatabasePath returns the location of the local preferences database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "sharai.db")
}
