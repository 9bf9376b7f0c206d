package config

import (
	"fmt"
	"time"
)

// Config is the fully-resolved configuration for the solver engine
// process: the game defaults, the HTTP/WS transport, and the logging
// and error-reporting sections the ambient stack needs.
type Config struct {
	Server   ServerConfig
	CORS     CORSConfig
	Game     GameConfig
	Logging  LoggingConfig
	Sentry   SentryConfig
	Registry RegistryConfig
	Dev      DevConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// CORSConfig configures allowed cross-origin callers of internal/api.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
}

// GameConfig configures spec §6's enumerated game options.
type GameConfig struct {
	MaxAttempts int
	WordLength  int
}

// LoggingConfig configures internal/logging.
type LoggingConfig struct {
	Level       string
	Service     string
	Environment string
	AddSource   bool
}

// SentryConfig configures error reporting.
type SentryConfig struct {
	DSN              string
	Environment      string
	Release          string
	TracesSampleRate float64
	Debug            bool
}

// RegistryConfig holds the path of the dictionary manifest that
// LoadManifest reads. Nothing loads the manifest at startup.
type RegistryConfig struct {
	ManifestPath string
}

// DevConfig toggles developer-facing behavior.
type DevConfig struct {
	DebugMode  bool
	VerboseLog bool
}

// Load reads configuration from the environment, applying the defaults
// below, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnvString("HOST", "0.0.0.0"),
			Port:            getEnvString("PORT", "8080"),
			ReadTimeout:     getEnvDuration("READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getEnvDuration("IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvStringSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			AllowedMethods: getEnvStringSlice("ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
		},
		Game: GameConfig{
			MaxAttempts: getEnvInt("GAME_MAX_ATTEMPTS", 6),
			WordLength:  getEnvInt("GAME_WORD_LENGTH", 5),
		},
		Logging: LoggingConfig{
			Level:       getEnvString("LOG_LEVEL", "info"),
			Service:     getEnvString("LOG_SERVICE", "wordle-solver-engine"),
			Environment: getEnvString("APP_ENV", "development"),
			AddSource:   getEnvBool("LOG_ADD_SOURCE", false),
		},
		Sentry: SentryConfig{
			DSN:              getEnvString("SENTRY_DSN", ""),
			Environment:      getEnvString("SENTRY_ENVIRONMENT", "development"),
			Release:          getEnvString("SENTRY_RELEASE", "dev"),
			TracesSampleRate: getEnvFloat64("SENTRY_TRACES_SAMPLE_RATE", 0.0),
			Debug:            getEnvBool("SENTRY_DEBUG", false),
		},
		Registry: RegistryConfig{
			ManifestPath: getEnvString("DICTIONARY_MANIFEST", ""),
		},
		Dev: DevConfig{
			DebugMode:  getEnvBool("DEBUG_MODE", false),
			VerboseLog: getEnvBool("VERBOSE_LOG", false),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
