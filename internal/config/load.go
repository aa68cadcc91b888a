package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

const (
	fileName = "assetdeck.yaml"
	envPath  = "ASSETDECK_CONFIG"
)

// Load loads configuration with priority: defaults < file < flags.
// The file is, in order: -config, $ASSETDECK_CONFIG, ./assetdeck.yaml, then
// assetdeck.yaml in ConfigDir.
func Load() (*Config, error) {
	cfg := Default()

	path, err := configFile()
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// configFile returns the file to load, or "" to run on defaults. An explicit
// path that does not exist is an error; discovered paths are optional.
func configFile() (string, error) {
	for _, explicit := range []string{ConfigPath(), os.Getenv(envPath)} {
		if explicit == "" {
			continue
		}
		path, err := homedir.Expand(explicit)
		if err != nil {
			return "", fmt.Errorf("expanding %s: %w", explicit, err)
		}
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return path, nil
	}

	for _, path := range []string{fileName, filepath.Join(ConfigDir(), fileName)} {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	home, _ := homedir.Dir()
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "AssetDeck")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "AssetDeck")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "assetdeck")
	}
	return filepath.Join(home, ".config", "assetdeck")
}

// loadFromFile merges a YAML file over the values already in cfg. Keys the
// file does not mention keep their current values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
