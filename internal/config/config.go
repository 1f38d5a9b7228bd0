package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var requiredVars = []string{"PG_HOST", "PG_PORT", "PG_USER", "PG_PASSWORD", "PG_DATABASE"}

type Config struct {
	PGHost     string
	PGPort     string
	PGUser     string
	PGPassword string
	PGDatabase string
	PGSSLMode  string

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	ServerPort         string
	GinMode            string
	LogLevel           string
	LogFormat          string
	ServiceName        string
	CORSAllowedOrigins []string

	RedisURL  string
	IDLockTTL time.Duration

	KafkaBrokers []string
}

// Load reads the environment (and a .env file when present). Every missing
// required variable is reported in a single error.
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	var missing []string
	for _, key := range requiredVars {
		if _, ok := os.LookupEnv(key); !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return &Config{
		PGHost:     os.Getenv("PG_HOST"),
		PGPort:     os.Getenv("PG_PORT"),
		PGUser:     os.Getenv("PG_USER"),
		PGPassword: os.Getenv("PG_PASSWORD"),
		PGDatabase: os.Getenv("PG_DATABASE"),
		PGSSLMode:  getEnv("PG_SSLMODE", "disable"),

		DBMaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: time.Duration(getEnvAsInt("DB_CONN_MAX_LIFETIME", 300)) * time.Second,

		ServerPort:         getEnv("SERVER_PORT", "8000"),
		GinMode:            getEnv("GIN_MODE", "release"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		ServiceName:        getEnv("SERVICE_NAME", "cheflink-orders"),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		RedisURL:  getEnv("REDIS_URL", ""),
		IDLockTTL: time.Duration(getEnvAsInt("ID_LOCK_TTL", 5)) * time.Second,

		KafkaBrokers: splitCSV(getEnv("KAFKA_BROKERS", "")),
	}, nil
}

// DatabaseURL assembles the postgres connection string.
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PGUser, c.PGPassword),
		Host:     c.PGHost + ":" + c.PGPort,
		Path:     "/" + c.PGDatabase,
		RawQuery: "sslmode=" + url.QueryEscape(c.PGSSLMode),
	}
	return u.String()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
