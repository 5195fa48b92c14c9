package logger

import (
	"os"

	"padel-league/internal/config"

	"github.com/rs/zerolog"
)

// New builds the root logger at the configured level. Unknown levels fall
// back to info rather than failing startup.
func New(cfg *config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Logger().
		Level(level)

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", level.String()).
		Msg("configuration loaded")

	return logger
}
