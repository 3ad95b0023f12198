package config

import (
	"fmt"
	"os"
	"time"

	"attendance-tracker/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	DBPath     string
	ServerPort string

	// Timezone is the fixed zone every day and month boundary is computed
	// in, regardless of the machine locale.
	Timezone string
	Location *time.Location

	// RootSecret signs the attendance-marking mutation.
	RootSecret string

	LookupTimeout time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:        getEnv("DB_PATH", "attendance.db"),
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		Timezone:      getEnv("TIMEZONE", constants.DefaultTimezone),
		RootSecret:    getEnv("ROOT_SECRET", ""),
		LookupTimeout: constants.ExternalAPITimeout,
	}

	if cfg.RootSecret == "" {
		return nil, fmt.Errorf("ROOT_SECRET is required")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("timezone", cfg.Timezone).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
