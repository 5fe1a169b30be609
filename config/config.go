// Package config handles application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/language"
)

const (
	appName        = "voicetype"
	configFileName = "config.json"
)

// Defaults applied to unset settings.
const (
	DefaultModel       = "whisper-1"
	DefaultTemperature = 0.0
)

// Settings holds the user-facing transcription settings consumed by the
// workflow. The API key is never logged.
type Settings struct {
	APIKey       string  `json:"api_key"`
	BaseURL      string  `json:"base_url,omitempty"`
	Model        string  `json:"model"`
	Language     string  `json:"language,omitempty"`
	CustomPrompt string  `json:"custom_prompt,omitempty"`
	Temperature  float64 `json:"temperature"`
}

// Config represents the application configuration.
type Config struct {
	Settings Settings `json:"settings"`

	// Capture tool overrides; empty values use the platform defaults.
	RecorderCommand string `json:"recorder_command,omitempty"`
	TyperCommand    string `json:"typer_command,omitempty"`
}

// Load loads configuration from the config file.
// Returns default config if the file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return fmt.Errorf("get config path: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Settings.Model == "" {
		c.Settings.Model = DefaultModel
	}
}

func (c *Config) validate() error {
	if err := ValidateLanguage(c.Settings.Language); err != nil {
		return err
	}
	if t := c.Settings.Temperature; t < 0 || t > 1 {
		return fmt.Errorf("temperature out of range: %v", t)
	}
	return nil
}

// ValidateLanguage checks a configured language code. Empty and "auto" mean
// auto-detect and are always valid.
func ValidateLanguage(code string) error {
	if code == "" || code == "auto" {
		return nil
	}
	if _, err := language.Parse(code); err != nil {
		return fmt.Errorf("invalid language %q: %w", code, err)
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Settings: Settings{
			Model:       DefaultModel,
			Temperature: DefaultTemperature,
		},
	}
}

func configPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, configFileName), nil
}

// DataDir returns the directory used for the history database and recordings.
func DataDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(configDir, appName), nil
}
