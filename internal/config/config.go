package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration, read from the environment.
type Config struct {
	DBPath         string
	Addr           string
	LogFile        string
	AllowedOrigins []string // CORS origins for the browser frontend
	StartingPoints int      // point balance granted on registration
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBPath:         getEnv("REWEAR_DB", "rewear.sqlite3"),
		Addr:           getEnv("REWEAR_ADDR", ":8080"),
		LogFile:        getEnv("REWEAR_LOG_FILE", ""),
		AllowedOrigins: splitOrigins(getEnv("REWEAR_ALLOWED_ORIGINS", "http://localhost:3000")),
		StartingPoints: getEnvInt("REWEAR_STARTING_POINTS", 100),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
