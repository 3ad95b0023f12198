package logger

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func New() zerolog.Logger {
	// the logger is built before config, so pull in .env here for LOG_LEVEL;
	// godotenv never overrides variables already set in the process
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Logger()

	if level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && level != zerolog.NoLevel {
		return logger.Level(level)
	}
	return logger.Level(zerolog.InfoLevel)
}

var Module = fx.Provide(New)
