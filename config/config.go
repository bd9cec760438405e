package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// HTTP server configuration
	HTTPAddr  string
	JWTSecret string

	// Round configuration
	RoundDuration time.Duration // Total lifetime of a round
	LockWindow    time.Duration // Final stretch during which wagers are rejected

	// Wagering configuration
	MinBetAmount     decimal.Decimal
	MaxBetAmount     decimal.Decimal
	NumberMultiplier decimal.Decimal
	ColorMultiplier  decimal.Decimal
	SizeMultiplier   decimal.Decimal

	// Account configuration
	InitialBalance decimal.Decimal

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// HTTP server
		HTTPAddr:  os.Getenv("HTTP_ADDR"),
		JWTSecret: os.Getenv("JWT_SECRET"),

		// Round settings with defaults
		RoundDuration: 60 * time.Second,
		LockWindow:    10 * time.Second,

		// Wagering settings with defaults
		MinBetAmount:     decimal.NewFromFloat(1.00),
		MaxBetAmount:     decimal.NewFromFloat(1000.00),
		NumberMultiplier: decimal.NewFromInt(9),
		ColorMultiplier:  decimal.NewFromInt(2),
		SizeMultiplier:   decimal.NewFromInt(2),

		// Account settings with defaults
		InitialBalance: decimal.NewFromFloat(1000.00),

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if d := os.Getenv("ROUND_DURATION_SECONDS"); d != "" {
		if seconds, err := strconv.Atoi(d); err == nil && seconds > 0 {
			config.RoundDuration = time.Duration(seconds) * time.Second
		}
	}
	if w := os.Getenv("LOCK_WINDOW_SECONDS"); w != "" {
		if seconds, err := strconv.Atoi(w); err == nil && seconds >= 0 {
			config.LockWindow = time.Duration(seconds) * time.Second
		}
	}
	if v := os.Getenv("MIN_BET_AMOUNT"); v != "" {
		if amount, err := decimal.NewFromString(v); err == nil {
			config.MinBetAmount = amount
		}
	}
	if v := os.Getenv("MAX_BET_AMOUNT"); v != "" {
		if amount, err := decimal.NewFromString(v); err == nil {
			config.MaxBetAmount = amount
		}
	}
	if v := os.Getenv("NUMBER_MULTIPLIER"); v != "" {
		if m, err := decimal.NewFromString(v); err == nil && m.IsPositive() {
			config.NumberMultiplier = m
		}
	}
	if v := os.Getenv("COLOR_MULTIPLIER"); v != "" {
		if m, err := decimal.NewFromString(v); err == nil && m.IsPositive() {
			config.ColorMultiplier = m
		}
	}
	if v := os.Getenv("SIZE_MULTIPLIER"); v != "" {
		if m, err := decimal.NewFromString(v); err == nil && m.IsPositive() {
			config.SizeMultiplier = m
		}
	}
	if v := os.Getenv("INITIAL_BALANCE"); v != "" {
		if amount, err := decimal.NewFromString(v); err == nil {
			config.InitialBalance = amount
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}
	if config.HTTPAddr == "" {
		config.HTTPAddr = ":8080"
	}

	if config.LockWindow >= config.RoundDuration {
		return nil, fmt.Errorf("LOCK_WINDOW_SECONDS must be shorter than ROUND_DURATION_SECONDS")
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required")
		}
	}

	return config, nil
}
