package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const (
	defaultAppEnv        = "development"
	defaultDBPath        = "./dev.db"
	defaultPort          = "8080"
	defaultMigrationsDir = "migrations"
	defaultLogLevel      = "info"
	defaultLogFormat     = "json"
	defaultNamespace     = "primaauto"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	DBPath           string
	MigrationsDir    string
	LogLevel         string
	LogFormat        string
	MetricsNamespace string
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	return LoadFrom(".env")
}

// LoadFrom is Load with explicit dotenv files. Missing files are ignored and
// variables already set in the environment are never overwritten.
func LoadFrom(dotenvFiles ...string) (Config, error) {
	for _, path := range dotenvFiles {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	cfg := Config{
		AppEnv:           valueOrDefault(k.String("APP_ENV"), defaultAppEnv),
		Port:             valueOrDefault(k.String("PORT"), defaultPort),
		DBPath:           valueOrDefault(k.String("DB_PATH"), defaultDBPath),
		MigrationsDir:    valueOrDefault(k.String("MIGRATIONS_DIR"), defaultMigrationsDir),
		LogLevel:         valueOrDefault(k.String("LOG_LEVEL"), defaultLogLevel),
		LogFormat:        valueOrDefault(k.String("LOG_FORMAT"), defaultLogFormat),
		MetricsNamespace: valueOrDefault(k.String("METRICS_NAMESPACE"), defaultNamespace),
	}

	return cfg, nil
}

// IsDev reports whether the process runs in a local development environment,
// where migrations and rate seeding run automatically on startup.
func (c Config) IsDev() bool {
	switch strings.ToLower(strings.TrimSpace(c.AppEnv)) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}
