package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Dispatch DispatchConfig
	Tools    ToolsConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// DatabaseConfig holds record store connection values.
type DatabaseConfig struct {
	Driver        string
	DSN           string
	MaxOpenConns  int
	BusyTimeoutMS int
	ResetOnStart  bool
}

// RedisConfig holds Redis connection values. An empty Addr disables event fan-out.
type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	EventsChannel string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines optional protection of the call endpoint.
type AuthConfig struct {
	JWTSecret       string
	APIKeyHashes    []string
	TokenTTLMinutes int
}

// Enabled reports whether any credential check is configured.
func (a AuthConfig) Enabled() bool {
	return a.JWTSecret != "" || len(a.APIKeyHashes) > 0
}

// DispatchConfig bounds operation execution.
type DispatchConfig struct {
	MaxConcurrent int
}

// ToolsConfig configures the agent-facing tool adapter.
type ToolsConfig struct {
	ServiceURL     string
	TimeoutSeconds int
	AuthToken      string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	driver := strings.ToLower(getEnv("DB_DRIVER", DriverSQLite))
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("invalid DB_DRIVER %q: expected %s or %s", driver, DriverSQLite, DriverPostgres)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "customer-data-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "127.0.0.1"),
			Port:                  getEnv("APP_PORT", "8000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Database: DatabaseConfig{
			Driver:        driver,
			DSN:           getEnv("DB_DSN", "service_db.sqlite"),
			MaxOpenConns:  getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			BusyTimeoutMS: getEnvAsInt("DB_BUSY_TIMEOUT_MS", 5000),
			ResetOnStart:  getEnvAsBool("DB_RESET_ON_START", true),
		},
		Redis: RedisConfig{
			Addr:          os.Getenv("REDIS_ADDR"),
			Password:      os.Getenv("REDIS_PASSWORD"),
			DB:            redisDB,
			EventsChannel: getEnv("REDIS_EVENTS_CHANNEL", "data-service.events"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:       os.Getenv("AUTH_JWT_SECRET"),
			APIKeyHashes:    getEnvAsList("AUTH_API_KEY_HASHES"),
			TokenTTLMinutes: getEnvAsInt("AUTH_TOKEN_TTL_MINUTES", 60),
		},
		Dispatch: DispatchConfig{
			MaxConcurrent: getEnvAsInt("DISPATCH_MAX_CONCURRENT", 0),
		},
		Tools: ToolsConfig{
			ServiceURL:     strings.TrimRight(getEnv("TOOL_SERVICE_URL", "http://127.0.0.1:8000"), "/"),
			TimeoutSeconds: getEnvAsInt("TOOL_TIMEOUT_SECONDS", 120),
			AuthToken:      os.Getenv("TOOL_AUTH_TOKEN"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the adapter HTTP timeout.
func (t ToolsConfig) Timeout() time.Duration {
	if t.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(t.TimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
