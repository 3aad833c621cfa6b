// Package config loads service configuration from environment variables.
// A local .env file is honoured in development via godotenv; real
// deployments set the variables directly.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the full service configuration.
type Config struct {
	Service   ServiceConfig
	Logging   LoggingConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Tracing   TracingConfig
	Profiling ProfilingConfig
	Shutdown  ShutdownConfig
}

type ServiceConfig struct {
	Name    string
	Version string
	Env     string
	Port    string
}

type LoggingConfig struct {
	Level string
}

type DatabaseConfig struct {
	URL      string
	MaxConns int32
}

type AuthConfig struct {
	// BootstrapEnabled controls whether the seeded admin account is
	// created on startup when it does not exist yet.
	BootstrapEnabled  bool
	BootstrapEmail    string
	BootstrapPassword string
}

type TracingConfig struct {
	Enabled    bool
	Endpoint   string
	SampleRate float64
}

type ProfilingConfig struct {
	Enabled  bool
	Endpoint string
}

type ShutdownConfig struct {
	TimeoutSec             int
	ReadinessDrainDelaySec int
}

// Load reads configuration from the environment, applying defaults.
func Load() *Config {
	// Best effort; absence of a .env file is the normal production case.
	_ = godotenv.Load()

	return &Config{
		Service: ServiceConfig{
			Name:    getEnv("SERVICE_NAME", "tpahr-auth-service"),
			Version: getEnv("SERVICE_VERSION", "dev"),
			Env:     getEnv("SERVICE_ENV", "development"),
			Port:    getEnv("SERVICE_PORT", "8080"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			MaxConns: int32(getEnvInt("DATABASE_MAX_CONNS", 10)),
		},
		Auth: AuthConfig{
			BootstrapEnabled:  getEnvBool("AUTH_BOOTSTRAP_ENABLED", true),
			BootstrapEmail:    getEnv("AUTH_BOOTSTRAP_EMAIL", "admin@tpa.com"),
			BootstrapPassword: getEnv("AUTH_BOOTSTRAP_PASSWORD", "admin123"),
		},
		Tracing: TracingConfig{
			Enabled:    getEnvBool("TRACING_ENABLED", false),
			Endpoint:   getEnv("TRACING_ENDPOINT", "localhost:4318"),
			SampleRate: getEnvFloat("TRACING_SAMPLE_RATE", 1.0),
		},
		Profiling: ProfilingConfig{
			Enabled:  getEnvBool("PROFILING_ENABLED", false),
			Endpoint: getEnv("PROFILING_ENDPOINT", "http://localhost:4040"),
		},
		Shutdown: ShutdownConfig{
			TimeoutSec:             getEnvInt("SHUTDOWN_TIMEOUT_SEC", 20),
			ReadinessDrainDelaySec: getEnvInt("READINESS_DRAIN_DELAY_SEC", 0),
		},
	}
}

// Validate checks that required configuration is present and sane.
func (c *Config) Validate() error {
	if c.Service.Port == "" {
		return fmt.Errorf("SERVICE_PORT must not be empty")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Database.MaxConns <= 0 {
		return fmt.Errorf("DATABASE_MAX_CONNS must be > 0")
	}
	if c.Auth.BootstrapEnabled {
		if c.Auth.BootstrapEmail == "" {
			return fmt.Errorf("AUTH_BOOTSTRAP_EMAIL must not be empty when bootstrap is enabled")
		}
		if c.Auth.BootstrapPassword == "" {
			return fmt.Errorf("AUTH_BOOTSTRAP_PASSWORD must not be empty when bootstrap is enabled")
		}
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATE must be within [0, 1]")
	}
	if c.Shutdown.TimeoutSec <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT_SEC must be > 0")
	}
	if c.Shutdown.ReadinessDrainDelaySec < 0 {
		return fmt.Errorf("READINESS_DRAIN_DELAY_SEC must be >= 0")
	}
	return nil
}

// GetShutdownTimeoutDuration returns the graceful-shutdown timeout.
func (c *Config) GetShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.Shutdown.TimeoutSec) * time.Second
}

// GetReadinessDrainDelayDuration returns the delay between failing the
// readiness probe and starting the HTTP shutdown.
func (c *Config) GetReadinessDrainDelayDuration() time.Duration {
	return time.Duration(c.Shutdown.ReadinessDrainDelaySec) * time.Second
}

func getEnv(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	return val
}

func getEnvInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvFloat(key string, fallback float64) float64 {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return f
}
