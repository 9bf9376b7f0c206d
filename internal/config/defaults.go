package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func validate(config *Config) error {
	if err := validateServerConfig(config.Server); err != nil {
		return err
	}
	if err := validateCORSConfig(config.CORS); err != nil {
		return err
	}
	if err := validateGameConfig(config.Game); err != nil {
		return err
	}
	if err := validateLoggingConfig(config.Logging); err != nil {
		return err
	}
	if err := validateSentryConfig(config.Sentry); err != nil {
		return err
	}
	return nil
}

func validateServerConfig(config ServerConfig) error {
	if config.Port == "" {
		return errors.New("server port cannot be empty")
	}

	if portNum, err := strconv.Atoi(config.Port); err != nil || portNum < 1 || portNum > 65535 {
		return errors.New("server port must be a valid number between 1 and 65535")
	}

	if config.Host == "" {
		return errors.New("server host cannot be empty")
	}

	if config.ReadTimeout <= 0 {
		return errors.New("read timeout must be positive")
	}

	if config.WriteTimeout <= 0 {
		return errors.New("write timeout must be positive")
	}

	if config.IdleTimeout <= 0 {
		return errors.New("idle timeout must be positive")
	}

	if config.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}

	return nil
}

func validateCORSConfig(config CORSConfig) error {
	if len(config.AllowedOrigins) == 0 {
		return errors.New("at least one allowed origin must be specified")
	}

	if len(config.AllowedMethods) == 0 {
		return errors.New("at least one allowed method must be specified")
	}

	return nil
}

func validateGameConfig(config GameConfig) error {
	if config.MaxAttempts <= 0 {
		return errors.New("max attempts must be positive")
	}

	if config.MaxAttempts > 20 {
		return errors.New("max attempts cannot exceed 20")
	}

	if config.WordLength < 4 || config.WordLength > 8 {
		return errors.New("word length must be between 4 and 8")
	}

	return nil
}

func validateLoggingConfig(config LoggingConfig) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	valid := false
	for _, validLevel := range validLevels {
		if config.Level == validLevel {
			valid = true
			break
		}
	}
	if !valid {
		return errors.New("log level must be one of: debug, info, warn, error")
	}

	if config.Service == "" {
		return errors.New("service name cannot be empty")
	}

	if config.Environment == "" {
		return errors.New("environment cannot be empty")
	}

	return nil
}

func validateSentryConfig(config SentryConfig) error {
	if config.TracesSampleRate < 0 || config.TracesSampleRate > 1.0 {
		return errors.New("Sentry traces sample rate must be between 0 and 1.0")
	}

	if config.Environment == "" {
		return errors.New("Sentry environment cannot be empty")
	}

	if config.Release == "" {
		return errors.New("Sentry release cannot be empty")
	}

	return nil
}
