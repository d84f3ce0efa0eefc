package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML overlay. Only the fields operators
// actually tune per-deployment live here; everything else stays env-only.
type fileConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	Scanner        struct {
		Interval            string `yaml:"interval"`
		InactivityThreshold string `yaml:"inactivity_threshold"`
	} `yaml:"scanner"`
}

// applyFile merges the overlay file into cfg. File values win over env
// values because the file is the more deliberate of the two.
func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config yaml: %w", err)
	}

	if len(fc.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = fc.AllowedOrigins
	}
	if fc.Scanner.Interval != "" {
		d, err := time.ParseDuration(fc.Scanner.Interval)
		if err != nil {
			return fmt.Errorf("invalid scanner.interval: %w", err)
		}
		cfg.ScanInterval = d
	}
	if fc.Scanner.InactivityThreshold != "" {
		d, err := time.ParseDuration(fc.Scanner.InactivityThreshold)
		if err != nil {
			return fmt.Errorf("invalid scanner.inactivity_threshold: %w", err)
		}
		cfg.InactivityThreshold = d
	}

	return nil
}
