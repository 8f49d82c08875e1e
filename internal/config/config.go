package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const defaultPenaltyPerDay = "5.00"

type Config struct {
	DatabaseURL   string
	HTTPAddr      string
	JWTSecret     string
	PenaltyPerDay decimal.Decimal
}

// Load reads configuration from the environment, with a .env file as
// fallback for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: getenv("DATABASE_URL", "file:locamat.db?cache=shared"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
	}

	raw := getenv("PENALTY_PER_DAY", defaultPenaltyPerDay)
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid PENALTY_PER_DAY %q: %w", raw, err)
	}
	if rate.IsNegative() {
		return nil, fmt.Errorf("PENALTY_PER_DAY must not be negative, got %s", rate)
	}
	cfg.PenaltyPerDay = rate

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
