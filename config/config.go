package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ByteMirror/gitscrub/log"

	"github.com/google/renameio/v2"
)

const ConfigFileName = "config.json"

// GetConfigDir returns the path to the application's configuration directory
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config home directory: %w", err)
	}
	return filepath.Join(homeDir, ".gitscrub"), nil
}

// Config represents the application configuration
type Config struct {
	// IdentityEmail overrides the identity email installed after the scrub.
	IdentityEmail string `json:"identity_email"`
	// IdentityName overrides the identity name installed after the scrub.
	IdentityName string `json:"identity_name"`
	// ExtraKeys are additional global keys to unset after the built-in list.
	ExtraKeys []string `json:"extra_keys"`
	// DefaultStore selects the backend: "exec" (git binary) or "file".
	DefaultStore string `json:"default_store"`
	// GitconfigPath overrides the gitconfig file used by the file backend and
	// watched by guard mode. Empty means ~/.gitconfig.
	GitconfigPath string `json:"gitconfig_path"`
	// GuardPollInterval is the interval (ms) at which guard mode re-checks the
	// store when no file events arrive.
	GuardPollInterval int `json:"guard_poll_interval"`
	// ConfirmBeforeRun opens the interactive review instead of applying
	// immediately when running in a terminal.
	ConfirmBeforeRun bool `json:"confirm_before_run"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		IdentityEmail:     "",
		IdentityName:      "",
		ExtraKeys:         nil,
		DefaultStore:      "exec",
		GitconfigPath:     "",
		GuardPollInterval: 60000,
		ConfirmBeforeRun:  false,
	}
}

// LoadConfig loads the configuration from disk. If it cannot be done, we return the default configuration.
func LoadConfig() *Config {
	configDir, err := GetConfigDir()
	if err != nil {
		log.ErrorLog.Printf("failed to get config directory: %v", err)
		return DefaultConfig()
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Create and save default config if file doesn't exist
			defaultCfg := DefaultConfig()
			if saveErr := saveConfig(defaultCfg); saveErr != nil {
				log.WarningLog.Printf("failed to save default config: %v", saveErr)
			}
			return defaultCfg
		}

		log.WarningLog.Printf("failed to get config file: %v", err)
		return DefaultConfig()
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		log.ErrorLog.Printf("failed to parse config file: %v", err)
		return DefaultConfig()
	}

	return &config
}

// saveConfig saves the configuration to disk
func saveConfig(config *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return renameio.WriteFile(configPath, data, 0644)
}

// SaveConfig exports the saveConfig function for use by other packages
func SaveConfig(config *Config) error {
	return saveConfig(config)
}
