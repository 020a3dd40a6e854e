package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	RecordsBackendRedis    = "redis"
	RecordsBackendPostgres = "postgres"
	RecordsBackendFile     = "file"
)

type AppConfig struct {
	// Server
	HTTPAddr    string
	CORSOrigins []string

	// Fleet API
	UpstreamURL     string
	UpstreamTimeout time.Duration

	// Redis
	RedisAddr string
	RedisPass string
	RedisDB   int

	// Sessions
	SessionTTL    time.Duration
	SessionCookie string
	CookieSecure  bool
	// JWTSecret verifies fleet API tokens when set; otherwise only expiry is read.
	JWTSecret string
	// MasterPhone may administer users whatever its role, as the fleet API allows.
	MasterPhone string

	// Local records
	RecordsBackend string
	PostgresDSN    string
	RecordsTable   string
	RecordsDir     string
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"http://localhost:3000"}),

		UpstreamURL:     strings.TrimRight(getEnv("UPSTREAM_URL", "http://localhost:5000/api"), "/"),
		UpstreamTimeout: getEnvDuration("UPSTREAM_TIMEOUT", 15*time.Second),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass: getEnv("REDIS_PASS", ""),
		RedisDB:   getEnvInt("REDIS_DB", 0),

		SessionTTL:    getEnvDuration("SESSION_TTL", 24*time.Hour),
		SessionCookie: getEnv("SESSION_COOKIE", "fleet_session"),
		CookieSecure:  getEnvBool("COOKIE_SECURE", false),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		MasterPhone:   getEnv("MASTER_PHONE", ""),

		RecordsBackend: strings.ToLower(getEnv("RECORDS_BACKEND", RecordsBackendRedis)),
		PostgresDSN:    getEnv("POSTGRES_DSN", ""),
		RecordsTable:   getEnv("RECORDS_TABLE", "fleet_records"),
		RecordsDir:     getEnv("RECORDS_DIR", "./data/records"),
	}
}

// Validate reports settings that cannot work together.
func (c AppConfig) Validate() error {
	if c.UpstreamURL == "" {
		return fmt.Errorf("UPSTREAM_URL must not be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	switch c.RecordsBackend {
	case RecordsBackendRedis, RecordsBackendFile:
	case RecordsBackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when RECORDS_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("unknown RECORDS_BACKEND %q", c.RecordsBackend)
	}
	return nil
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
