package config

import (
	"os"
	"strings"
)

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// GetEnv returns the value of an environment variable or a default value if not set.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvironment returns the current environment, read before viper is initialised.
// Defaults to development if not set.
func GetEnvironment() string {
	return strings.ToLower(GetEnv("SHIFTCLOCK_SERVER_ENVIRONMENT", EnvDevelopment))
}

// IsProductionLike reports whether configuration must be validated strictly.
func IsProductionLike() bool {
	env := GetEnvironment()
	return env == EnvStaging || env == EnvProduction
}
