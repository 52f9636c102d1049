package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port          string
	DatabaseURL   string
	JWTSecret     string
	JWTIssuer     string
	JWTTTL        time.Duration
	ResetTokenTTL time.Duration
	InitBalance   int64
	CORSOrigins   []string
	KafkaBrokers  []string
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:         fallback(os.Getenv("PORT"), "8080"),
		DatabaseURL:  strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:    strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:    fallback(os.Getenv("JWT_ISSUER"), "rupayana-backend"),
		CORSOrigins:  parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		KafkaBrokers: parseList(os.Getenv("KAFKA_BROKERS")),
	}

	cfg.JWTTTL = minutesOrDefault(os.Getenv("JWT_TTL_MINUTES"), 60)
	cfg.ResetTokenTTL = minutesOrDefault(os.Getenv("RESET_TOKEN_TTL_MINUTES"), 60)

	if raw := strings.TrimSpace(os.Getenv("INITIAL_BALANCE")); raw != "" {
		bal, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || bal < 0 {
			return Config{}, fmt.Errorf("invalid INITIAL_BALANCE value: %q", raw)
		}
		cfg.InitBalance = bal
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func minutesOrDefault(raw string, def int) time.Duration {
	if minutes, err := strconv.Atoi(fallback(raw, strconv.Itoa(def))); err == nil && minutes > 0 {
		return time.Duration(minutes) * time.Minute
	}
	return time.Duration(def) * time.Minute
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	out := parseList(input)
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func parseList(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
