// Package config provides configuration types, defaults, and loading for incompat.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration options for incompat.
type Config struct {
	Specs    string `mapstructure:"specs"`     // Directory or file with CUE record definitions
	DB       string `mapstructure:"db"`        // SQLite database path
	Format   string `mapstructure:"format"`    // "text" (default) or "json"
	LogLevel string `mapstructure:"log_level"` // debug, info, warn, error
}

// EnvPrefix is the prefix for environment overrides (INCOMPAT_DB, ...).
const EnvPrefix = "INCOMPAT"

// LocalConfigFile is checked in the working directory before the user config.
const LocalConfigFile = ".incompat.yaml"

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Specs:    ".",
		DB:       "incompat.db",
		Format:   "text",
		LogLevel: "warn",
	}
}

// UserConfigDir returns ~/.config/incompat, or "" if home is unknown.
func UserConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "incompat")
}

// Load reads configuration into v and returns the merged result.
//
// Lookup order when cfgFile is empty:
//  1. .incompat.yaml (current directory)
//  2. ~/.config/incompat/config.yaml (user config)
//
// A missing config file is not an error; defaults and INCOMPAT_* variables
// still apply. Flags bound to v by the caller take precedence over both.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	defaults := Defaults()
	v.SetDefault("specs", defaults.Specs)
	v.SetDefault("db", defaults.DB)
	v.SetDefault("format", defaults.Format)
	v.SetDefault("log_level", defaults.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if _, err := os.Stat(LocalConfigFile); err == nil {
		v.SetConfigFile(LocalConfigFile)
	} else if dir := UserConfigDir(); dir != "" {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit --config that does not exist is an error; searched paths are optional.
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that enumerated options hold known values.
func Validate(cfg Config) error {
	switch cfg.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid format %q: must be text or json", cfg.Format)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", cfg.LogLevel)
	}
	return nil
}
