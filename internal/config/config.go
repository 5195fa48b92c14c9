package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath     string
	ServerPort string
	LogLevel   string
}

// Load reads the optional .env file and resolves the configuration from
// the environment. It runs before the logger exists; the logger is built
// from this config and reports it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		DBPath:     getEnv("DB_PATH", "league.db"),
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
