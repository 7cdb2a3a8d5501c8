package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	JWTSecret   string

	GatewayBaseURL    string
	GatewayTimeout    time.Duration
	GatewayRetries    int
	GatewaySendPerSec float64

	DefaultPaceSeconds int
	DefaultCountryCode string
	ExpiringWindowDays int
	ListJobsLimit      int

	SweepCronSpec        string
	RecoveryPollInterval time.Duration
	RecoveryStaleAfter   time.Duration

	GeoIPDBPath   string
	DefaultLocale string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	AllowedOrigins   []string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		GatewayBaseURL:    os.Getenv("GATEWAY_BASE_URL"),
		GatewayTimeout:    time.Second * time.Duration(getEnvInt("GATEWAY_TIMEOUT_SECONDS", 15)),
		GatewayRetries:    getEnvInt("GATEWAY_RETRIES", 2),
		GatewaySendPerSec: getEnvFloat("GATEWAY_SENDS_PER_SECOND", 1),

		DefaultPaceSeconds: getEnvInt("DEFAULT_PACE_SECONDS", 15),
		DefaultCountryCode: getEnv("DEFAULT_COUNTRY_CODE", "55"),
		ExpiringWindowDays: getEnvInt("EXPIRING_WINDOW_DAYS", 3),
		ListJobsLimit:      getEnvInt("LIST_JOBS_LIMIT", 20),

		SweepCronSpec:        getEnv("SWEEP_CRON", "0 9 * * *"),
		RecoveryPollInterval: time.Second * time.Duration(getEnvInt("RECOVERY_POLL_SECONDS", 30)),
		RecoveryStaleAfter:   time.Second * time.Duration(getEnvInt("RECOVERY_STALE_SECONDS", 120)),

		GeoIPDBPath:   os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale: getEnv("DEFAULT_LOCALE", "pt-BR"),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		AllowedOrigins:   splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.GatewayBaseURL == "" {
		return nil, fmt.Errorf("GATEWAY_BASE_URL is required")
	}

	if cfg.GatewayRetries < 0 {
		cfg.GatewayRetries = 0
	}
	if cfg.DefaultPaceSeconds < 0 {
		cfg.DefaultPaceSeconds = 0
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
