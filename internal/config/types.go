package config

// LogMode selects the logger encoding.
type LogMode string

const (
	LogModeDev  LogMode = "dev"
	LogModeProd LogMode = "prod"
)

// Config is the top-level sharai configuration, corresponding to .sharai.yml.
type Config struct {
	APIBaseURL string `yaml:"api_base_url" koanf:"api_base_url"`
	DataDir    string `yaml:"data_dir" koanf:"data_dir"`

	// Language is the default UI language used when none has been stored.
	// Empty means negotiate from the environment.
	Language string `yaml:"language" koanf:"language"`

	// RequestTimeoutSeconds bounds each backend request. Zero disables it.
	RequestTimeoutSeconds int             `yaml:"request_timeout" koanf:"request_timeout"`
	LogMode               LogMode         `yaml:"log_mode" koanf:"log_mode"`
	Dashboard             DashboardConfig `yaml:"dashboard" koanf:"dashboard"`
}

// DashboardConfig holds settings for the local web dashboard.
type DashboardConfig struct {
	Port         int  `yaml:"port" koanf:"port"`
	CORSAllowAll bool `yaml:"cors_allow_all" koanf:"cors_allow_all"`
}
