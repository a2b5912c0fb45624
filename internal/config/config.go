// Package config loads registry configuration from config files,
// environment variables, and .env files via Viper.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/playerregistry/pkg/errors"
)

// Config holds the application configuration loaded from various sources.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool

	// Config file
	ConfigFile string

	// Store configuration
	DatabasePath string

	// Reconciliation thresholds
	StalenessDays            int
	LookbackSeasons          int
	UnresolvedAlertThreshold int
	WeightsFile              string

	// Logging configuration
	LogLevel  string
	LogFormat string
}

// Load loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (~/.playerregistry.yaml)
// 5. Defaults
func Load() (*Config, error) {
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("REGISTRY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName(".playerregistry")
		}
	}

	// Config file is optional.
	_ = viper.ReadInConfig()

	viper.SetDefault("database_path", "playerregistry.db")
	viper.SetDefault("staleness_days", 3)
	viper.SetDefault("lookback_seasons", 3)
	viper.SetDefault("unresolved_alert_threshold", 25)

	config := &Config{
		Verbose:    viper.GetBool("verbose"),
		Quiet:      viper.GetBool("quiet"),
		ConfigFile: viper.ConfigFileUsed(),

		DatabasePath: viper.GetString("database_path"),

		StalenessDays:            viper.GetInt("staleness_days"),
		LookbackSeasons:          viper.GetInt("lookback_seasons"),
		UnresolvedAlertThreshold: viper.GetInt("unresolved_alert_threshold"),
		WeightsFile:              viper.GetString("weights_file"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return &errors.ConfigError{Component: "store", Message: "database_path cannot be empty"}
	}
	if c.StalenessDays < 1 {
		return &errors.ConfigError{Component: "guards", Message: "staleness_days must be at least 1"}
	}
	if c.LookbackSeasons < 1 {
		return &errors.ConfigError{Component: "investigator", Message: "lookback_seasons must be at least 1"}
	}
	if c.UnresolvedAlertThreshold < 1 {
		return &errors.ConfigError{Component: "alerts", Message: "unresolved_alert_threshold must be at least 1"}
	}
	return nil
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns an environment variable or a default.
func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
