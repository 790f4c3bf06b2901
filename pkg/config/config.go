package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool
	JWTSecret    string

	// SettlementDelay is the simulated confirmation latency before a pending
	// withdrawal settles.
	SettlementDelay time.Duration
	// SweepInterval is how often the recovery sweep scans for pending
	// withdrawals past their due time.
	SweepInterval time.Duration

	// RateLimit is a ulule/limiter formatted rate, e.g. "100-M".
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if
// present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("SETTLEMENT_DELAY", "3s")
	viper.SetDefault("SETTLEMENT_SWEEP_INTERVAL", "5s")
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	settlementDelayStr := viper.GetString("SETTLEMENT_DELAY")
	settlementDelay, err := time.ParseDuration(settlementDelayStr)
	if err != nil {
		settlementDelay = 3 * time.Second
		log.Printf("Warning: Invalid value for SETTLEMENT_DELAY ('%s'). Defaulting to %s.\n", settlementDelayStr, settlementDelay)
	}
	cfg.SettlementDelay = settlementDelay

	sweepIntervalStr := viper.GetString("SETTLEMENT_SWEEP_INTERVAL")
	sweepInterval, err := time.ParseDuration(sweepIntervalStr)
	if err != nil {
		sweepInterval = 5 * time.Second
		log.Printf("Warning: Invalid value for SETTLEMENT_SWEEP_INTERVAL ('%s'). Defaulting to %s.\n", sweepIntervalStr, sweepInterval)
	}
	cfg.SweepInterval = sweepInterval

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}
