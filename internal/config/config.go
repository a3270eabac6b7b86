package config

import (
	"os"
	"strconv"

	apperrors "schedrisk/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Simulation SimulationConfig
	Database   DatabaseConfig
	Report     ReportConfig
}

// SimulationConfig holds engine defaults applied when a scenario leaves the
// corresponding field unset.
type SimulationConfig struct {
	DefaultTrials int
	DefaultSeed   int64
	// Tolerance is the criticality-comparison tolerance; zero keeps the
	// engine default.
	Tolerance float64
	// Concurrency bounds how many scenarios a portfolio sweep runs at once.
	Concurrency int
}

// DatabaseConfig holds result-store settings. An empty URL disables
// persistence entirely.
type DatabaseConfig struct {
	URL string
}

// ReportConfig holds report-writer settings.
type ReportConfig struct {
	OutputDir string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Simulation: SimulationConfig{
			DefaultTrials: getEnvIntOrDefault("SIM_TRIALS", 1000),
			DefaultSeed:   getEnvInt64OrDefault("SIM_SEED", 0),
			Tolerance:     getEnvFloatOrDefault("SIM_TOLERANCE", 0),
			Concurrency:   getEnvIntOrDefault("SIM_CONCURRENCY", 0),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Report: ReportConfig{
			OutputDir: getEnvOrDefault("REPORT_DIR", "."),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, apperrors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Simulation.DefaultTrials <= 0 {
		return apperrors.ConfigInvalid("SIM_TRIALS must be positive")
	}
	if config.Simulation.Tolerance < 0 {
		return apperrors.ConfigInvalid("SIM_TOLERANCE cannot be negative")
	}
	if config.Simulation.Concurrency < 0 {
		return apperrors.ConfigInvalid("SIM_CONCURRENCY cannot be negative")
	}
	if config.Report.OutputDir == "" {
		return apperrors.ConfigInvalid("REPORT_DIR cannot be empty")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
