package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - Q2STAGE_CONFIG_PATH: config file location (default: ~/.config/q2stage.toml)
//   - Q2STAGE_HOME: base directory for logs and history (default: ~/.local/share/q2stage)
func GetDefaults() (map[string]string, error) {
	configPath, err := envOrHome("Q2STAGE_CONFIG_PATH", ".config", "q2stage.toml")
	if err != nil {
		return nil, err
	}

	baseDir, err := envOrHome("Q2STAGE_HOME", ".local", "share", "q2stage")
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// envOrHome returns the value of env if set, otherwise the home directory joined with elem.
func envOrHome(env string, elem ...string) (string, error) {
	if path := os.Getenv(env); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(append([]string{homeDir}, elem...)...), nil
}
