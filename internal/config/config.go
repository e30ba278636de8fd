// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "unipack"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "yaml"
	// EnvPrefix is the prefix for environment variable overrides
	// (e.g. UNIPACK_JOBS).
	EnvPrefix = "UNIPACK"
)

// Config holds release pipeline settings. Every field has a working default;
// the config file and UNIPACK_* environment variables override them.
type Config struct {
	// DerivedData is the toolchain derived-data path.
	DerivedData string `mapstructure:"derived_data"`
	// ArchiveRoot holds intermediate archive trees during a run.
	ArchiveRoot string `mapstructure:"archive_root"`
	// StagingRoot is the staging tree promoted to the release directory.
	StagingRoot string `mapstructure:"staging_root"`
	// ReleaseDir is the published output location.
	ReleaseDir string `mapstructure:"release_dir"`
	// ManifestPath is the package manifest file.
	ManifestPath string `mapstructure:"manifest_path"`
	// Jobs bounds concurrent archive builds.
	Jobs int `mapstructure:"jobs"`
	// Bitcode toggles bitcode generation overrides.
	Bitcode bool `mapstructure:"bitcode"`
	// Xcodebuild and Swift override the toolchain binaries.
	Xcodebuild string `mapstructure:"xcodebuild"`
	Swift      string `mapstructure:"swift"`
	// Verbose enables debug logging.
	Verbose bool `mapstructure:"verbose"`
}

// configDirOverride allows tests to override the config directory.
var configDirOverride string

// configFileOverride holds an explicit --config flag value.
var configFileOverride string

// Reset clears overrides. Call from test cleanup to restore defaults.
func Reset() {
	configDirOverride = ""
	configFileOverride = ""
}

// SetConfigDirOverride sets a custom config directory path, primarily for
// tests that must not touch the user's real configuration.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// SetConfigFilePathOverride forces loading from a specific config file.
func SetConfigFilePathOverride(path string) {
	configFileOverride = path
}

// ConfigDir returns the unipack configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// Load reads the configuration file (if present) and environment overrides,
// returning defaults when no file exists. A malformed config file is an
// error; a missing one is not.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("derived_data", ".derivedData")
	v.SetDefault("archive_root", ".archives")
	v.SetDefault("staging_root", ".staging")
	v.SetDefault("release_dir", "release")
	v.SetDefault("manifest_path", "Package.swift")
	v.SetDefault("jobs", 1)
	v.SetDefault("bitcode", true)
	v.SetDefault("xcodebuild", "xcodebuild")
	v.SetDefault("swift", "swift")
	v.SetDefault("verbose", false)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if configFileOverride != "" {
		v.SetConfigFile(configFileOverride)
	} else {
		dir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileExt)
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Jobs < 1 {
		return nil, fmt.Errorf("jobs must be at least 1, got %d", cfg.Jobs)
	}

	return &cfg, nil
}
