package util

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	AppConfigDir    = ".config/huddle"
	ConfigDirEnv    = "HUDDLE_CONFIG_DIR"
	hostKeySubdir   = ".ssh"
	hostKeyFileName = "hostkey"
)

// GetConfigDir returns the directory huddle keeps its state in and creates
// it. HUDDLE_CONFIG_DIR wins over ~/.config/huddle.
func GetConfigDir() (string, error) {
	configDir := os.Getenv(ConfigDirEnv)
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, AppConfigDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory %s: %w", configDir, err)
	}
	return configDir, nil
}

// ResolveFilePath picks where a state file lives: absolute paths as given, a
// file already in the working directory, otherwise the config directory,
// whether or not the file exists there yet.
func ResolveFilePath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return resolveIn("", filename, 0755)
}

// HostKeyPath is where the SSH host key is read from, or generated into.
func HostKeyPath() string {
	return resolveIn(hostKeySubdir, hostKeyFileName, 0700)
}

func resolveIn(subdir, filename string, perm os.FileMode) string {
	local := filepath.Join(subdir, filename)
	if _, err := os.Stat(local); err == nil {
		return local
	}

	configDir, err := GetConfigDir()
	if err != nil {
		return local
	}
	dir := filepath.Join(configDir, subdir)
	if err := os.MkdirAll(dir, perm); err != nil {
		return local
	}
	return filepath.Join(dir, filename)
}
