package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Session storage drivers.
const (
	SessionDriverMemory   = "memory"
	SessionDriverFile     = "file"
	SessionDriverRedis    = "redis"
	SessionDriverPostgres = "postgres"
)

// Config aggregates runtime configuration for the dashboard.
type Config struct {
	App      AppConfig
	Backend  BackendConfig
	Session  SessionConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Tickets  TicketsConfig
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

// BackendConfig locates the REST backend.
type BackendConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// SessionConfig selects where the session token and role are persisted.
type SessionConfig struct {
	Driver    string
	FilePath  string
	KeyPrefix string
	TokenKey  string
	RoleKey   string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// TicketsConfig toggles the stricter ticket collection behaviors.
type TicketsConfig struct {
	RevertOnFailure bool
	DedupeByID      bool
}

// Load reads configuration from the given env files (default ".env") and
// environment variables, applying defaults where possible.
func Load(files ...string) (*Config, error) {
	_ = godotenv.Load(files...)

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "ticket-dashboard"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "127.0.0.1"),
			Port:                  getEnv("APP_PORT", "3000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Backend: BackendConfig{
			BaseURL:        getEnv("BACKEND_BASE_URL", "http://127.0.0.1:8000"),
			TimeoutSeconds: getEnvAsInt("BACKEND_TIMEOUT_SECONDS", 15),
		},
		Session: SessionConfig{
			Driver:    getEnv("SESSION_DRIVER", SessionDriverFile),
			FilePath:  getEnv("SESSION_FILE_PATH", "dashboard-session.yaml"),
			KeyPrefix: getEnv("SESSION_KEY_PREFIX", "ticket-dashboard:"),
			TokenKey:  getEnv("SESSION_TOKEN_KEY", "token"),
			RoleKey:   getEnv("SESSION_ROLE_KEY", "userRole"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 4)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Tickets: TicketsConfig{
			RevertOnFailure: getEnvAsBool("TICKETS_REVERT_ON_FAILURE", false),
			DedupeByID:      getEnvAsBool("TICKETS_DEDUPE_BY_ID", false),
		},
	}

	switch cfg.Session.Driver {
	case SessionDriverMemory, SessionDriverFile, SessionDriverRedis, SessionDriverPostgres:
	default:
		return nil, fmt.Errorf("invalid SESSION_DRIVER %q", cfg.Session.Driver)
	}
	if cfg.Session.TokenKey == cfg.Session.RoleKey {
		return nil, fmt.Errorf("SESSION_TOKEN_KEY and SESSION_ROLE_KEY must differ")
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

// Timeout returns the per-call backend timeout; zero disables it.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
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
