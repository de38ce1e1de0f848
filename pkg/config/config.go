// pkg/config/config.go - configuration settings for appman.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Configuration holds the configurable options for appman in YAML format.
// Every path defaults to its XDG-derived location and may be overridden
// from the config file.
type Configuration struct {
	// StoragePath is the single managed directory that installed
	// package copies live in.
	StoragePath string `yaml:"StoragePath"`

	// RegistryPath is the JSON file tracking installed packages.
	RegistryPath string `yaml:"RegistryPath"`

	// ApplicationsPath is where generated .desktop entries go.
	ApplicationsPath string `yaml:"ApplicationsPath"`

	// IconsPath is the root of the hicolor icon theme tree that
	// extracted icons are installed into.
	IconsPath string `yaml:"IconsPath"`

	// DesktopPath is the user's desktop directory for optional
	// shortcuts. Shortcuts are skipped when it does not exist.
	DesktopPath string `yaml:"DesktopPath"`

	// LogPath is the base directory for session logs.
	LogPath string `yaml:"LogPath"`

	LogLevel string `yaml:"LogLevel"`
	Debug    bool   `yaml:"Debug"`
	Verbose  bool   `yaml:"Verbose"`

	// ExtractTimeoutSeconds bounds the deep metadata extraction
	// subprocess. Zero means the built-in default.
	ExtractTimeoutSeconds int `yaml:"ExtractTimeoutSeconds"`
}

// ConfigPath returns the location of the appman config file.
func ConfigPath() string {
	return filepath.Join(configDir(), "appman", "config.yaml")
}

// configDir resolves the XDG config directory.
func configDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

// dataDir resolves the XDG data directory.
func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share")
}

// stateDir resolves the XDG state directory.
func stateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state")
}

// GetDefaultConfig provides default configuration values.
func GetDefaultConfig() *Configuration {
	home, _ := os.UserHomeDir()
	return &Configuration{
		StoragePath:           filepath.Join(home, "Applications"),
		RegistryPath:          filepath.Join(configDir(), "appman", "registry.json"),
		ApplicationsPath:      filepath.Join(dataDir(), "applications"),
		IconsPath:             filepath.Join(dataDir(), "icons", "hicolor"),
		DesktopPath:           filepath.Join(home, "Desktop"),
		LogPath:               filepath.Join(stateDir(), "appman", "logs"),
		LogLevel:              "INFO",
		Debug:                 false,
		Verbose:               false,
		ExtractTimeoutSeconds: 30,
	}
}

// LoadConfig loads the configuration from the YAML config file. A
// missing file is not an error: defaults are used. Directories the
// installer depends on are created here.
func LoadConfig() (*Configuration, error) {
	cfg := GetDefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", ConfigPath(), err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", ConfigPath(), err)
	}

	if cfg.ExtractTimeoutSeconds <= 0 {
		cfg.ExtractTimeoutSeconds = 30
	}

	for _, dir := range []string{
		cfg.StoragePath,
		cfg.ApplicationsPath,
		filepath.Dir(cfg.RegistryPath),
		cfg.LogPath,
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	return cfg, nil
}

// SaveConfig saves the current configuration to the YAML config file.
func SaveConfig(cfg *Configuration) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("serializing configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(ConfigPath()), 0755); err != nil {
		return fmt.Errorf("creating configuration directory: %w", err)
	}

	if err := os.WriteFile(ConfigPath(), data, 0644); err != nil {
		return fmt.Errorf("writing configuration file: %w", err)
	}
	return nil
}
