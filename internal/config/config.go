package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Providers
	AudibleLocale string // Audible marketplace locale (default: us)

	// Progress updates
	SeasonUpdateConcurrency int // Max parallel episode writes for a whole-season update (default: 4)

	// Server
	ServerPort string

	// Paths
	DatabaseFile string // $CONFIG_DIR/ryot.db

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Setup viper FIRST to load .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("AUDIBLE_LOCALE", "us")
	viper.SetDefault("SEASON_UPDATE_CONCURRENCY", 4)
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")

	// NOW read CONFIG_DIR from viper (which has loaded .env file)
	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "ryot")
	} else {
		// Convert relative path to absolute path
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		// Providers
		AudibleLocale: viper.GetString("AUDIBLE_LOCALE"),

		// Progress updates
		SeasonUpdateConcurrency: viper.GetInt("SEASON_UPDATE_CONCURRENCY"),

		// Server
		ServerPort: viper.GetString("SERVER_PORT"),

		// Paths
		DatabaseFile: filepath.Join(configDir, "ryot.db"),

		// Logging
		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	// Validate
	if config.SeasonUpdateConcurrency < 1 {
		return nil, fmt.Errorf("SEASON_UPDATE_CONCURRENCY must be at least 1")
	}

	return config, nil
}
