// Package config loads the Weft tooling configuration from weft.yml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the Weft tooling configuration.
type Config struct {
	Projects []ProjectConfig `mapstructure:"projects"`
	Watch    WatchConfig     `mapstructure:"watch"`
	Log      LogConfig       `mapstructure:"log"`
}

// ProjectConfig describes one project in the workspace.
type ProjectConfig struct {
	Name         string             `mapstructure:"name"`
	Module       string             `mapstructure:"module"`
	Root         string             `mapstructure:"root"`
	Dependencies []DependencyConfig `mapstructure:"dependencies"`
}

// DependencyConfig maps a dependency module onto its source directory.
type DependencyConfig struct {
	Module string `mapstructure:"module"`
	Root   string `mapstructure:"root"`
}

// WatchConfig controls the dialect file watcher.
type WatchConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	DebounceMS int  `mapstructure:"debounce_ms"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads the configuration from weft.yml or weft.yaml in the current
// directory, falling back to defaults when no file exists.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("watch.enabled", true)
	v.SetDefault("watch.debounce_ms", 100)
	v.SetDefault("log.level", "info")

	v.SetConfigName("weft")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("WEFT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	// No projects configured: treat the working directory as a single
	// anonymous project so the tooling still works out of the box.
	if len(config.Projects) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		config.Projects = []ProjectConfig{{
			Name: filepath.Base(wd),
			Root: wd,
		}}
	}

	return &config, nil
}

// validateConfig checks the loaded configuration for mistakes worth
// failing fast on.
func validateConfig(config *Config) error {
	seen := make(map[string]struct{}, len(config.Projects))
	for _, p := range config.Projects {
		if p.Name == "" {
			return fmt.Errorf("project with root %q has no name", p.Root)
		}
		if _, ok := seen[p.Name]; ok {
			return fmt.Errorf("duplicate project name %q", p.Name)
		}
		seen[p.Name] = struct{}{}
		if p.Root == "" {
			return fmt.Errorf("project %q has no root", p.Name)
		}
		for _, d := range p.Dependencies {
			if d.Root == "" {
				return fmt.Errorf("dependency %q of project %q has no root", d.Module, p.Name)
			}
		}
	}

	if config.Watch.DebounceMS < 0 {
		return fmt.Errorf("watch.debounce_ms must not be negative")
	}
	return nil
}
