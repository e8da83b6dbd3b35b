// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Values are layered: a .env file in the working directory (optional, loaded
with godotenv), then environment variables (parsed with caarlos0/env), then
CLI flags. Each layer overrides the one before.

# Environment Variables and Flags

	PORT             -p                Server port (default 3318)
	DATABASE_URL     -d                Database URL (required)
	DATABASE_TYPE    -t                sqlite (default) or postgres
	REVIEW_KEY_SALT  -review-salt      Secret for review key HMAC
	INPUT_FILE       -i                Election input; runs headless
	SEATS            -seats            Total seats in the legislature
	TOTAL_STEPS      -steps            Progression steps (default 100)
	SELECTED_STEPS   -selected         Rendered steps (default 10)
	SEED             -seed             Random seed, 0 picks one
	CLAMP_OVERHANG   -clamp-overhang   Clamp negative list seats to 0
	BYELECTION       -byelection       Skip the seat projection
	REVIEW_TIMEOUT   -review-timeout   e.g. 5m; 0 waits forever
	MAX_ATTEMPTS     -max-attempts     0 is unlimited
	LOG_LEVEL        -log-level        debug, info, warn or error

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - REVIEW_KEY_SALT must be provided when serving HTTP
  - SEATS must be provided for a headless run
*/
package cliparse
