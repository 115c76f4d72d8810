package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr       string
	DSN        string
	PageSize   int
	CacheTTL   time.Duration
	RedisURL   string
	SessionAge time.Duration
}

// Load reads configuration from the environment, consulting a .env file
// first when one is present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Addr:       ":" + getenv("PORT", "8080"),
		DSN:        getenv("DSN", "./data/blog.db"),
		PageSize:   getenvInt("PAGE_SIZE", 10),
		CacheTTL:   time.Duration(getenvInt("CACHE_TTL_SECONDS", 20)) * time.Second,
		RedisURL:   getenv("REDIS_URL", ""),
		SessionAge: time.Duration(getenvInt("SESSION_HOURS", 24)) * time.Hour,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
