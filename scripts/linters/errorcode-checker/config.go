package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the error code checker configuration
type Config struct {
	ExcludePaths      []string `yaml:"exclude_paths"`
	ForbiddenPatterns []string `yaml:"forbidden_patterns"`
	CheckForbidden    bool     `yaml:"check_forbidden"`
	ExitOnUnused      bool     `yaml:"exit_on_unused"`
	ExitOnDuplicate   bool     `yaml:"exit_on_duplicate"`
	ExitOnForbidden   bool     `yaml:"exit_on_forbidden"`
	Verbose           bool     `yaml:"verbose"`
}

// loadConfig loads configuration from file or uses defaults
func loadConfig(configPath string) (*Config, error) {
	config := &Config{
		ExcludePaths:      []string{"scripts/", "testdata/", "vendor/"},
		ForbiddenPatterns: []string{`fmt\.Errorf`},
		CheckForbidden:    true,
		ExitOnUnused:      false,
		ExitOnDuplicate:   true,
		ExitOnForbidden:   false,
		Verbose:           false,
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return config, nil
}
