package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
)

// DefaultConfigFile is looked up in the working directory.
const DefaultConfigFile = "gosugar.json"

// Config represents the gosugar configuration file
type Config struct {
	Verbose     bool     `json:"verbose"`
	Debug       bool     `json:"debug"`
	WorkDir     string   `json:"work_dir"`
	Extension   string   `json:"extension"`
	Disabled    []string `json:"disabled,omitempty"`
	SugarImport string   `json:"sugar_import,omitempty"`
	TruthImport string   `json:"truth_import,omitempty"`
	MaxDepth    int      `json:"max_depth"`
	Header      bool     `json:"header"`
	Concurrency int      `json:"concurrency"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		WorkDir:     ".",
		Extension:   ".sgo",
		MaxDepth:    64,
		Concurrency: runtime.GOMAXPROCS(0),
	}
}

// LoadConfig loads configuration from file. A missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return config, nil
}

// Validate rejects values the expander cannot work with.
func (c *Config) Validate() error {
	if c.Extension == "" || c.Extension[0] != '.' {
		return fmt.Errorf("extension %q must start with a dot", c.Extension)
	}
	if c.Extension == ".go" {
		return fmt.Errorf("extension must differ from .go")
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	return nil
}

// SaveConfig saves configuration to file
func (c *Config) SaveConfig(configPath string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
