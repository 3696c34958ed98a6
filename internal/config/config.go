package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"smsguard/internal/auth"
)

// Supported database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string

	DBDriver          string
	MySQLDSN          string
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	ResetDB           bool

	RedisAddr    string
	RedisDB      int
	RedisPass    string
	UserCacheTTL time.Duration

	JWTSecret string
	TokenTTL  time.Duration

	ClassifierURL         string
	ClassifierTimeout     time.Duration
	ExposeUpstreamDetails bool

	CORSOrigins []string
	SwaggerHost string

	LogLevel  string
	LogFormat string
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		DBDriver:          strings.ToLower(getEnv("DB_DRIVER", DriverMySQL)),
		MySQLDSN:          getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/app?charset=utf8mb4&parseTime=True&loc=Local"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DBMaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		ResetDB:           getEnvBool("RESET_DB", false),

		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:      getEnvInt("REDIS_DB", 0),
		RedisPass:    os.Getenv("REDIS_PASSWORD"),
		UserCacheTTL: getEnvDuration("USER_CACHE_TTL", 5*time.Minute),

		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  getEnvDuration("TOKEN_TTL", auth.DefaultTokenTTL),

		ClassifierURL:         strings.TrimRight(getEnv("CLASSIFIER_URL", "http://127.0.0.1:5000"), "/"),
		ClassifierTimeout:     getEnvDuration("CLASSIFIER_TIMEOUT", 10*time.Second),
		ExposeUpstreamDetails: getEnvBool("EXPOSE_UPSTREAM_DETAILS", true),

		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"*"}),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

// Validate reports configuration that the server cannot start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	switch c.DBDriver {
	case DriverMySQL:
		if c.MySQLDSN == "" {
			return fmt.Errorf("MYSQL_DSN must be set for driver %q", c.DBDriver)
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set for driver %q", c.DBDriver)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.ClassifierURL == "" {
		return fmt.Errorf("CLASSIFIER_URL must not be empty")
	}
	if c.ClassifierTimeout <= 0 {
		return fmt.Errorf("CLASSIFIER_TIMEOUT must be positive")
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == DriverPostgres {
		return c.DatabaseURL
	}
	return c.MySQLDSN
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
