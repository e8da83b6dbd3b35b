// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the election-night simulator.

election-night replays an election count riding by riding: each riding's
final results are revealed through a randomized progression of partial
counts, the national tally and a mixed-member proportional (MMP) seat
projection update at every rendered step, and an operator may accept or
reroll each riding before it is committed.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=election.db REVIEW_KEY_SALT=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

# Headless Runs

Passing an input file runs one simulation without review and exits:

	go run . -d election.db -i election.json -seats 338 -seed 42

# Configuration

Settings are read from .env, then the environment, then flags:

  - DATABASE_URL (-d): Database connection string (required)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - REVIEW_KEY_SALT (--review-salt): Secret for review key HMAC (server only)
  - PORT (-p): Server port (default: 3318)
  - SEATS (--seats): Legislature size (required headless)
  - TOTAL_STEPS, SELECTED_STEPS: Progression length and rendered steps
  - SEED, CLAMP_OVERHANG, BYELECTION, REVIEW_TIMEOUT, MAX_ATTEMPTS
  - LOG_LEVEL: debug, info, warn or error

# Architecture

  - tally: Vote progression, running tally, snapshots, D'Hondt allocation
  - sim: The riding-by-riding driver and its review gate
  - handlers: HTTP request handlers and the run manager
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, metrics, JSON helpers
  - models: Domain and request/response types
  - auth: Run IDs and review keys
  - db: Schema and persistence for SQLite or PostgreSQL
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
