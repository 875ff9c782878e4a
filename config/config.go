package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
)

const DefaultHost = "https://portal.genomescan.nl"

type Config struct {
	Host       string
	CookieFile string
	Workers    int

	// S3 settings for the export command.
	ApiURL     string
	AccessKey  string
	SecretKey  string
	BucketName string
	Region     string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env file not found, using environment variables only", "error", err)
	}

	workers, err := getEnvInt("GSPORT_WORKERS", runtime.NumCPU())
	if err != nil {
		return nil, err
	}
	if workers < 1 {
		return nil, fmt.Errorf("GSPORT_WORKERS must be at least 1, got %d", workers)
	}

	config := &Config{
		Host:       getEnv("GSPORT_HOST", DefaultHost),
		CookieFile: getEnv("GSPORT_COOKIE_FILE", defaultCookieFile()),
		Workers:    workers,
		ApiURL:     getEnv("API_URL", ""),
		AccessKey:  getEnv("ACCESS_KEY", ""),
		SecretKey:  getEnv("SECRET_KEY", ""),
		BucketName: getEnv("BUCKET_NAME", ""),
		Region:     getEnv("REGION", ""),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return n, nil
}

func defaultCookieFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gsport_cookies.json"
	}
	return filepath.Join(home, ".gsport_cookies.json")
}
