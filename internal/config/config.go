package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// API
	Port string
	// Engine
	Currency        string
	MinAgreement    int
	Tolerance       string
	Aggregate       string
	FanoutBudget    time.Duration
	FreshnessWindow time.Duration
	// Sources
	Sources       string
	SourceTimeout time.Duration
	SourceRPS     float64
	SourceBurst   int
	// Cache backend
	CacheBackend string
	MaxEntries   int
	DatabaseURL  string
	// Redis (verdict cache backend)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func fltDef(s string, def float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

func durMS(key string, defMS int) time.Duration {
	return time.Duration(atoiDef(getEnv(key, strconv.Itoa(defMS)), defMS)) * time.Millisecond
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:             getEnv("ENV", "local"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Port:            getEnv("PORT", "8080"),
		Currency:        getEnv("CURRENCY", "EUR"),
		MinAgreement:    atoiDef(getEnv("MIN_AGREEMENT", "2"), 2),
		Tolerance:       getEnv("VARIANCE_TOLERANCE", "0.05"),
		Aggregate:       getEnv("AGGREGATE", "median"),
		FanoutBudget:    durMS("FANOUT_BUDGET_MS", 3000),
		FreshnessWindow: durMS("FRESHNESS_WINDOW_MS", 60000),
		Sources:         getEnv("SOURCES", ""),
		SourceTimeout:   durMS("SOURCE_TIMEOUT_MS", 2500),
		SourceRPS:       fltDef(getEnv("SOURCE_RATE_LIMIT", "0"), 0),
		SourceBurst:     atoiDef(getEnv("SOURCE_RATE_BURST", "1"), 1),
		CacheBackend:    getEnv("CACHE_BACKEND", "memory"),
		MaxEntries:      atoiDef(getEnv("CACHE_MAX_ENTRIES", "10000"), 10000),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         atoiDef(getEnv("REDIS_DB", "0"), 0),
		RedisTTL:        durMS("VERDICT_TTL_MS", 86400000),
	}
}
