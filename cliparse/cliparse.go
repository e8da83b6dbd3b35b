// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port          int    `env:"PORT" envDefault:"3318"`
	DatabaseURL   string `env:"DATABASE_URL"`
	DatabaseType  string `env:"DATABASE_TYPE" envDefault:"sqlite"`
	ReviewKeySalt string `env:"REVIEW_KEY_SALT"`

	// Simulation defaults; POST /runs may override them per run.
	TotalSteps    int           `env:"TOTAL_STEPS" envDefault:"100"`
	SelectedSteps int           `env:"SELECTED_STEPS" envDefault:"10"`
	Seats         int           `env:"SEATS"`
	Seed          int64         `env:"SEED"`
	ClampOverhang bool          `env:"CLAMP_OVERHANG"`
	Byelection    bool          `env:"BYELECTION"`
	ReviewTimeout time.Duration `env:"REVIEW_TIMEOUT"`
	MaxAttempts   int           `env:"MAX_ATTEMPTS"`

	// InputFile runs one headless simulation instead of serving HTTP.
	InputFile string `env:"INPUT_FILE"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
}

// Headless reports whether the binary should run a batch simulation.
func (c Config) Headless() bool {
	return c.InputFile != ""
}

// SlogLevel parses LogLevel, falling back to info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseFlags loads .env, then the environment, then CLI flags, each
// overriding the one before.
func ParseFlags(args []string) (Config, error) {
	// A missing .env is fine; existing variables are never overwritten.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("election-night", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.ReviewKeySalt, "review-salt", cfg.ReviewKeySalt, "Review key salt (prefer env)")

	// Simulation
	fs.StringVar(&cfg.InputFile, "i", cfg.InputFile, "Election input JSON; runs headless when set")
	fs.IntVar(&cfg.Seats, "seats", cfg.Seats, "Total seats in the legislature")
	fs.IntVar(&cfg.TotalSteps, "steps", cfg.TotalSteps, "Progression steps per riding")
	fs.IntVar(&cfg.SelectedSteps, "selected", cfg.SelectedSteps, "Steps rendered per riding")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed (0 picks one)")
	fs.BoolVar(&cfg.ClampOverhang, "clamp-overhang", cfg.ClampOverhang, "Never report negative list seats")
	fs.BoolVar(&cfg.Byelection, "byelection", cfg.Byelection, "By-election mode (no seat projection)")
	fs.DurationVar(&cfg.ReviewTimeout, "review-timeout", cfg.ReviewTimeout, "Skip a riding after waiting this long for review (0 waits forever)")
	fs.IntVar(&cfg.MaxAttempts, "max-attempts", cfg.MaxAttempts, "Attempts per riding before skipping (0 is unlimited)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	switch c.DatabaseType {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database type %q (use sqlite or postgres)", c.DatabaseType)
	}

	if c.TotalSteps < 2 {
		return errors.New("TOTAL_STEPS must be at least 2")
	}
	if c.SelectedSteps < 2 {
		return errors.New("SELECTED_STEPS must be at least 2")
	}
	if c.Seats < 0 || c.MaxAttempts < 0 || c.ReviewTimeout < 0 {
		return errors.New("SEATS, MAX_ATTEMPTS and REVIEW_TIMEOUT must not be negative")
	}

	// The batch run needs a seat count up front; the server takes one per run.
	if c.Headless() {
		if c.Seats == 0 {
			return errors.New("SEATS required for a headless run (use -seats or SEATS env)")
		}
		return nil
	}

	// Secrets - MUST be provided
	if c.ReviewKeySalt == "" {
		return errors.New("REVIEW_KEY_SALT required")
	}
	return nil
}
