package config

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	RunAddress        string
	BackendBaseURL    string
	JWTSecret         string
	AdminPasswordHash string

	SessionRefreshInterval time.Duration
	QuoteDebounce          time.Duration
}

func New() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using system environment variables")
	}

	cfg := &Config{}

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "server address and port")
	flag.StringVar(&cfg.BackendBaseURL, "b", "http://localhost:5000", "aggregator backend base URL")
	flag.StringVar(&cfg.JWTSecret, "s", "super-secret-jwt-key", "jwt signing key")
	flag.StringVar(&cfg.AdminPasswordHash, "p", "", "bcrypt hash of the admin password")
	flag.DurationVar(&cfg.SessionRefreshInterval, "i", 5*time.Minute, "session re-validation interval")
	flag.DurationVar(&cfg.QuoteDebounce, "q", 500*time.Millisecond, "rate quote debounce")
	flag.Parse()

	cfg.RunAddress = getEnv("RUN_ADDRESS", cfg.RunAddress)
	cfg.BackendBaseURL = getEnv("BACKEND_BASE_URL", cfg.BackendBaseURL)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.AdminPasswordHash = getEnv("ADMIN_PASSWORD_HASH", cfg.AdminPasswordHash)

	if v, ok := os.LookupEnv("SESSION_REFRESH_INTERVAL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SessionRefreshInterval = d
		}
	}
	if v, ok := os.LookupEnv("QUOTE_DEBOUNCE"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.QuoteDebounce = d
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
