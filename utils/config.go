package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings read from the environment.
type Config struct {
	Port           string
	Store          string // "memory" or "mongo"
	MongoURI       string
	MongoDB        string
	AssetDir       string
	AssetBaseURL   string
	CommissionRate float64
	SettleInterval time.Duration
}

// LoadConfig reads .env if present, then the environment, applying defaults.
func LoadConfig() (Config, error) {
	// .env is optional; a missing file is not an error
	_ = godotenv.Load()

	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		Store:          getEnv("STORE", "memory"),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getEnv("MONGO_DB", "auction_house"),
		AssetDir:       getEnv("ASSET_DIR", "./assets"),
		AssetBaseURL:   getEnv("ASSET_BASE_URL", "http://localhost:8080/assets"),
		CommissionRate: 0.05,
		SettleInterval: time.Minute,
	}

	if v := os.Getenv("COMMISSION_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil || rate < 0 || rate >= 1 {
			return Config{}, fmt.Errorf("config: invalid COMMISSION_RATE %q", v)
		}
		cfg.CommissionRate = rate
	}

	if v := os.Getenv("SETTLE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("config: invalid SETTLE_INTERVAL %q", v)
		}
		cfg.SettleInterval = d
	}

	if cfg.Store != "memory" && cfg.Store != "mongo" {
		return Config{}, fmt.Errorf("config: unknown STORE %q", cfg.Store)
	}

	return cfg, nil
}

// getEnv returns the environment value for key or a fallback default
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
