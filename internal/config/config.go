package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Store backend selection for cart persistence.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type Config struct {
	App struct {
		Port string
	}
	Backend struct {
		BaseURL string
	}
	Store struct {
		Backend string
	}
	Postgres struct {
		Host           string
		Port           string
		User           string
		Password       string
		DBName         string
		SSLMode        string
		MigrationsPath string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
}

func Load(path string) (*Config, error) {
	if path != "" {
		err := godotenv.Load(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := &Config{}
	cfg.App.Port = getenv("APP_PORT", "8080")

	cfg.Backend.BaseURL = os.Getenv("BACKEND_BASE_URL")
	if cfg.Backend.BaseURL == "" {
		return nil, fmt.Errorf("BACKEND_BASE_URL is required")
	}

	cfg.Store.Backend = getenv("CART_STORE", StoreMemory)
	switch cfg.Store.Backend {
	case StoreMemory:
	case StorePostgres:
		cfg.Postgres.Host = os.Getenv("DB_HOST")
		if cfg.Postgres.Host == "" {
			return nil, fmt.Errorf("DB_HOST is required when CART_STORE=postgres")
		}
		cfg.Postgres.Port = getenv("DB_PORT", "5432")
		cfg.Postgres.User = os.Getenv("DB_USER")
		if cfg.Postgres.User == "" {
			return nil, fmt.Errorf("DB_USER is required when CART_STORE=postgres")
		}
		cfg.Postgres.Password = os.Getenv("DB_PASSWORD")
		cfg.Postgres.DBName = os.Getenv("DB_NAME")
		if cfg.Postgres.DBName == "" {
			return nil, fmt.Errorf("DB_NAME is required when CART_STORE=postgres")
		}
		cfg.Postgres.SSLMode = getenv("DB_SSLMODE", "disable")
		cfg.Postgres.MigrationsPath = getenv("DB_MIGRATIONS_PATH", "migrations")
	case StoreRedis:
		cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
		if cfg.Redis.Addr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required when CART_STORE=redis")
		}
		cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	default:
		return nil, fmt.Errorf("unknown CART_STORE %q", cfg.Store.Backend)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
