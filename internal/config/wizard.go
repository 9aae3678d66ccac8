package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and saves the result
// to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to sharai! Let's connect to your contract analysis backend.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Backend URL.
	urlPrompt := promptui.Prompt{
		Label:   "Analysis backend URL",
		Default: DefaultAPIBaseURL,
		Validate: func(s string) error {
			probe := *cfg
			probe.APIBaseURL = s
			return probe.Validate()
		},
	}
	baseURL, err := urlPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("backend url: %w", err)
	}
	cfg.APIBaseURL = baseURL

	// 2. Default language.
	langPrompt := promptui.Select{
		Label: "Default interface language",
		Items: []string{
			"auto    (detect from environment)",
			"en      English",
			"ar      العربية",
		},
	}
	langIdx, _, err := langPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("language selection: %w", err)
	}
	cfg.Language = []string{"", "en", "ar"}[langIdx]

	// 3. Local data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Directory for local preferences",
		Default: cfg.DataDir,
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	cfg.DataDir = dataDir

	// 4. Dashboard port.
	portPrompt := promptui.Prompt{
		Label:   "Dashboard port",
		Default: strconv.Itoa(cfg.Dashboard.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("port must be between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("dashboard port: %w", err)
	}
	cfg.Dashboard.Port, _ = strconv.Atoi(portStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
