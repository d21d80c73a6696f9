package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr     string
	Upstream UpstreamConfig
	Auth     AuthConfig
	HTTP     HTTPConfig
	Redis    RedisConfig
	Session  SessionConfig
	Journal  JournalConfig
	Listing  ListingConfig
}

type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type HTTPConfig struct {
	RateLimit   string
	CORSOrigins []string
}

type SessionConfig struct {
	Backend string
	TTL     time.Duration
}

type JournalConfig struct {
	DSN string
}

type ListingConfig struct {
	PageSize      int
	ResetOnFilter bool
}

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	return Config{
		Addr: getEnv("ADDR", ":8080"),
		Upstream: UpstreamConfig{
			BaseURL: getEnv("UPSTREAM_BASE_URL", "https://api.aquakart.co.in/v1"),
			Timeout: getDuration("UPSTREAM_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "change-me"),
			TokenTTL:  getDuration("TOKEN_TTL", 24*time.Hour),
		},
		HTTP: HTTPConfig{
			RateLimit:   getEnv("RATE_LIMIT", "100-M"),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Session: SessionConfig{
			Backend: getEnv("SESSION_BACKEND", SessionBackendMemory),
			TTL:     getDuration("SESSION_TTL", 2*time.Hour),
		},
		Journal: JournalConfig{
			DSN: getEnv("JOURNAL_DSN", ""),
		},
		Listing: ListingConfig{
			PageSize:      getInt("DEFAULT_PAGE_SIZE", 10),
			ResetOnFilter: getBool("RESET_PAGE_ON_FILTER", true),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return b
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Invalid duration for %s (%q), using %s", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
