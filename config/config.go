// Package config loads the platform's configuration from the
// environment, with optional .env support for local development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/stellar-connect/platform-rpc-go/errors"
)

// Environment variable names.
const (
	EnvHorizonURL        = "PLATFORM_HORIZON_URL"
	EnvNetworkPassphrase = "PLATFORM_NETWORK_PASSPHRASE"
	EnvBatchSizeLimit    = "PLATFORM_RPC_BATCH_SIZE_LIMIT"
	EnvCustodyEnabled    = "PLATFORM_CUSTODY_ENABLED"
	EnvCustodyBaseURL    = "PLATFORM_CUSTODY_BASE_URL"
	EnvRedisAddr         = "PLATFORM_REDIS_ADDR"
	EnvLogLevel          = "PLATFORM_LOG_LEVEL"
)

// Defaults.
const (
	DefaultHorizonURL     = "https://horizon-testnet.stellar.org"
	DefaultBatchSizeLimit = 100
	DefaultLogLevel       = "info"
)

// Config carries the platform's runtime settings.
type Config struct {
	HorizonURL        string
	NetworkPassphrase string
	BatchSizeLimit    int
	CustodyEnabled    bool
	CustodyBaseURL    string
	RedisAddr         string
	LogLevel          string
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in first when present; real environment
// variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HorizonURL:        getenv(EnvHorizonURL, DefaultHorizonURL),
		NetworkPassphrase: os.Getenv(EnvNetworkPassphrase),
		BatchSizeLimit:    DefaultBatchSizeLimit,
		CustodyBaseURL:    os.Getenv(EnvCustodyBaseURL),
		RedisAddr:         os.Getenv(EnvRedisAddr),
		LogLevel:          getenv(EnvLogLevel, DefaultLogLevel),
	}

	if raw := os.Getenv(EnvBatchSizeLimit); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return nil, errors.NewConfigInvalid("%s must be a positive integer, got %q", EnvBatchSizeLimit, raw)
		}
		cfg.BatchSizeLimit = limit
	}

	if raw := os.Getenv(EnvCustodyEnabled); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.NewConfigInvalid("%s must be a boolean, got %q", EnvCustodyEnabled, raw)
		}
		cfg.CustodyEnabled = enabled
	}

	if cfg.CustodyEnabled && cfg.CustodyBaseURL == "" {
		return nil, errors.NewConfigInvalid("%s is required when custody integration is enabled", EnvCustodyBaseURL)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
