package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Config struct {
	// Servers
	HTTPPort string
	GRPCPort string
	APIToken string

	// Backend selection
	DataBackend string

	// Postgres
	DBConnStr  string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// SQLite
	SQLiteDBPath string

	// CSV loaded into an empty store at startup
	SeedCSVPath string

	// Price cache
	CacheTTL             time.Duration
	CacheMaxEntries      int
	CacheCleanupSchedule string

	// Annualized percentage used when a request has no predicted return
	DefaultPredictedReturn float64

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads an optional .env file and then the environment
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPPort: getEnv("HTTP_PORT", "8000"),
		GRPCPort: getEnv("GRPC_PORT", "8080"),
		APIToken: getEnv("API_TOKEN", ""),

		DataBackend: getEnv("DATA_BACKEND", BackendPostgres),

		DBConnStr:  getEnv("DB_CONN_STR", ""),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "ifyouinvest"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/prices.db"),
		SeedCSVPath:  getEnv("SEED_CSV_PATH", ""),

		CacheTTL:             getEnvDuration("CACHE_TTL", time.Hour),
		CacheMaxEntries:      getEnvInt("CACHE_MAX_ENTRIES", 128),
		CacheCleanupSchedule: getEnv("CACHE_CLEANUP_SCHEDULE", "@every 10m"),

		DefaultPredictedReturn: getEnvFloat("DEFAULT_PREDICTED_RETURN", 10),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

// PostgresDSN returns DB_CONN_STR, or a DSN built from the individual
// DB_* variables when it is unset.
func (c *Config) PostgresDSN() string {
	if c.DBConnStr != "" {
		return c.DBConnStr
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	for name, value := range map[string]string{"HTTP_PORT": c.HTTPPort, "GRPC_PORT": c.GRPCPort} {
		if port, err := strconv.Atoi(value); err != nil {
			errors = append(errors, fmt.Sprintf("invalid %s '%s': must be a number", name, value))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("invalid %s %d: must be between 1 and 65535", name, port))
		}
	}
	if c.HTTPPort == c.GRPCPort {
		errors = append(errors, fmt.Sprintf("HTTP_PORT and GRPC_PORT must differ, both are %s", c.HTTPPort))
	}

	validBackends := []string{BackendPostgres, BackendSQLite}
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}
	if c.DataBackend == BackendSQLite && c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
	}

	if c.SeedCSVPath != "" {
		if _, err := os.Stat(c.SeedCSVPath); err != nil {
			errors = append(errors, fmt.Sprintf("seed CSV file is not readable: %v", err))
		}
	}

	if c.CacheTTL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be positive", c.CacheTTL))
	}
	if c.CacheMaxEntries < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheMaxEntries))
	}
	if _, err := cron.ParseStandard(c.CacheCleanupSchedule); err != nil {
		errors = append(errors, fmt.Sprintf("invalid cache cleanup schedule '%s': %v", c.CacheCleanupSchedule, err))
	}

	if c.DefaultPredictedReturn <= -100 {
		errors = append(errors, fmt.Sprintf("invalid default predicted return %v: must be greater than -100", c.DefaultPredictedReturn))
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be json or text", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
// Unknown values fall back to info and JSON.
func (c *Config) NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if c.LogFormat == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	return log
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
