package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	JWTSecret      string   // Required: shared secret of the identity provider (HS256)
	Issuer         string   // Optional: expected iss claim (empty skips the check)
	Audience       []string // Optional: accepted aud values (default: authenticated)
	BootstrapToken string   // Optional: token required to perform bootstrap; empty disables it

	DatabaseFile       string        // Optional: path to SQLite database file (default: ./avaliatec.db)
	CacheBackend       string        // Optional: memory or redis (default: memory)
	RedisAddr          string        // Required when CacheBackend is redis
	RedisPassword      string        // Optional
	RedisDB            int           // Optional (default: 0)
	PermissionCacheTTL time.Duration // Optional: resolved permission TTL (default: 5m)

	EvolutionAPIURL        string // Optional: Evolution API base URL
	EvolutionAPIKey        string // Optional: Evolution API global key
	EvolutionWebhookSecret string // Optional: enables webhook signature checks

	PublicBaseURL  string   // Optional: externally reachable URL of this service, used for webhooks
	AppBaseURL     string   // Optional: front end URL used in invite links
	AllowedOrigins []string // Optional: websocket origins; empty accepts any

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1m)
}

// LoadConfig reads the environment. A .env file in the working directory is
// loaded first when present; real environment variables win over it.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		JWTSecret:      os.Getenv("AUTH_JWT_SECRET"),
		Issuer:         os.Getenv("AUTH_ISSUER"),
		Audience:       getEnvListOrDefault("AUTH_AUDIENCE", []string{"authenticated"}),
		BootstrapToken: os.Getenv("BOOTSTRAP_TOKEN"),

		DatabaseFile:       getEnvOrDefault("DATABASE_FILE", "avaliatec.db"),
		CacheBackend:       strings.ToLower(getEnvOrDefault("CACHE_BACKEND", "memory")),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            getEnvIntOrDefault("REDIS_DB", 0),
		PermissionCacheTTL: getEnvDurationOrDefault("PERMISSION_CACHE_TTL", 5*time.Minute),

		EvolutionAPIURL:        os.Getenv("EVOLUTION_API_URL"),
		EvolutionAPIKey:        os.Getenv("EVOLUTION_API_KEY"),
		EvolutionWebhookSecret: os.Getenv("EVOLUTION_WEBHOOK_SECRET"),

		PublicBaseURL:  strings.TrimSuffix(os.Getenv("PUBLIC_BASE_URL"), "/"),
		AppBaseURL:     getEnvOrDefault("APP_BASE_URL", "http://localhost:3000"),
		AllowedOrigins: getEnvListOrDefault("ALLOWED_ORIGINS", nil),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Minute),
	}
}

var (
	ErrMissingJWTSecret = errors.New("AUTH_JWT_SECRET is required")
	ErrMissingRedisAddr = errors.New("REDIS_ADDR is required when CACHE_BACKEND=redis")
)

// Validate reports configuration that would prevent the service from starting.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	switch c.CacheBackend {
	case "memory":
	case "redis":
		if c.RedisAddr == "" {
			return ErrMissingRedisAddr
		}
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q (want memory or redis)", c.CacheBackend)
	}
	return nil
}

// WebhookURL is the address the gateway posts events to, or empty when the
// service has no public URL.
func (c Config) WebhookURL() string {
	if c.PublicBaseURL == "" {
		return ""
	}
	return c.PublicBaseURL + "/v1/webhooks/evolution"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}

// getEnvListOrDefault splits a comma separated variable, dropping blanks.
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for part := range strings.SplitSeq(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
