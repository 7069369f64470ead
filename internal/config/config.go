// Package config loads the persisted defaults a generator run falls back
// to when a flag isn't given explicitly: which directory migrations live
// in, whether to color CLI output, and which app name to stamp onto new
// migrations. It follows the teacher's Setup-struct load/save pattern
// (internal/config/config_manager.go), adapted from a multi-backend LLM
// setup file to this tool's narrower set of fields.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// fileName is the config file looked for in a project's source root.
const fileName = ".makemigrations.yaml"

// Config holds the defaults a generate/list invocation can fall back to.
type Config struct {
	MigrationsDir  string `yaml:"migrations_dir,omitempty"`
	Color          *bool  `yaml:"color,omitempty"`
	DefaultAppName string `yaml:"default_app_name,omitempty"`
}

// defaults returns the configuration used when no config file is found
// anywhere.
func defaults() *Config {
	return &Config{MigrationsDir: "migrations"}
}

// Load reads the project config at root/.makemigrations.yaml, falling
// back to ~/.makemigrations/config.yaml, and finally to built-in defaults
// if neither exists. A malformed (present but unparsable) file is an
// error; a missing one is not.
func Load(root string) (*Config, error) {
	for _, path := range []string{
		filepath.Join(root, fileName),
		homeConfigPath(),
	} {
		if path == "" {
			continue
		}
		cfg, ok, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		if ok {
			return cfg, nil
		}
	}
	return defaults(), nil
}

func loadFile(path string) (*Config, bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, false, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, true, nil
}

// Save writes cfg to root/.makemigrations.yaml.
func Save(root string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	path := filepath.Join(root, fileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".makemigrations", "config.yaml")
}

// ColorEnabled reports whether CLI output should be colored: an explicit
// config value wins, otherwise color is on by default.
func (c *Config) ColorEnabled() bool {
	if c.Color == nil {
		return true
	}
	return *c.Color
}
