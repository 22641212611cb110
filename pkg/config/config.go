package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Port   string
	AppEnv string

	DBDriver    string // postgres | sqlite
	DatabaseURL string
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPort      string

	JWTSecret        string
	JWTExpiresIn     time.Duration
	JWTRefreshExpiry time.Duration

	CORSOrigin      string
	RateLimitMax    int
	RateLimitWindow time.Duration

	LogLevel string
}

// Load reads .env (if present) and the process environment
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warn("Warning: .env file not found, relying on system env")
	}

	return &Config{
		Port:   getEnv("PORT", "3000"),
		AppEnv: getEnv("APP_ENV", "development"),

		DBDriver:    getEnv("DB_DRIVER", "postgres"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      getEnv("DB_NAME", "inventario"),
		DBPort:      getEnv("DB_PORT", "5432"),

		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTExpiresIn:     getDuration("JWT_EXPIRES_IN", 24*time.Hour),
		JWTRefreshExpiry: getDuration("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour),

		CORSOrigin:      getEnv("CORS_ORIGIN", "*"),
		RateLimitMax:    getInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow: getDuration("RATE_LIMIT_WINDOW", 15*time.Minute),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// DSN returns DATABASE_URL, or builds one from the DB_* parts. For sqlite
// DB_NAME is the file path.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	if c.DBDriver == "sqlite" {
		return c.DBName + ".db"
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.WithField("key", key).Warn("invalid integer, using default")
		return fallback
	}
	return n
}

// getDuration accepts Go durations ("15m") plus the "24h"/"7d" style used
// by existing deployments
func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := ParseDuration(v)
	if err != nil {
		log.WithField("key", key).Warn("invalid duration, using default")
		return fallback
	}
	return d
}

// ParseDuration extends time.ParseDuration with a day suffix ("7d")
func ParseDuration(v string) (time.Duration, error) {
	if n := len(v); n > 1 && v[n-1] == 'd' {
		days, err := strconv.Atoi(v[:n-1])
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", v, err)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(v)
}
