package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	HTTPAddr string
	Store    string

	Postgres PostgresConfig

	JWTSecret      string
	ClientIDCookie string
	CORSOrigins    []string

	// Optional side channels, disabled when empty.
	RedisURL      string
	StatsCacheTTL time.Duration
	KafkaBrokers  []string
	KafkaTopic    string
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DB       string
}

func (c PostgresConfig) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.User, c.Password, c.Host, c.Port, c.DB)
}

// Load reads the environment, after loading a .env file if there is one.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found")
	}

	ttl, err := time.ParseDuration(getEnv("STATS_CACHE_TTL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid STATS_CACHE_TTL: %w", err)
	}

	cfg := &Config{
		HTTPAddr: getEnv("HTTP_ADDR", "0.0.0.0:8080"),
		Store:    getEnv("STORE", StorePostgres),
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			DB:       getEnv("POSTGRES_DB", "quickpolls"),
		},
		JWTSecret:      os.Getenv("JWT_SECRET"),
		ClientIDCookie: getEnv("CLIENT_ID_COOKIE", "quickpollscid"),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "*")),
		RedisURL:       os.Getenv("REDIS_URL"),
		StatsCacheTTL:  ttl,
		KafkaBrokers:   splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "votes"),
	}

	if cfg.Store != StorePostgres && cfg.Store != StoreMemory {
		return nil, fmt.Errorf("invalid STORE %q: must be %q or %q", cfg.Store, StorePostgres, StoreMemory)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
