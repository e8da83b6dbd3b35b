// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The schema sticks to types and syntax shared by SQLite and PostgreSQL.
const schema = `
-- Runs
CREATE TABLE IF NOT EXISTS run (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'running' CHECK (status IN ('running', 'done', 'failed', 'cancelled')),
    seats INTEGER NOT NULL,
    total_steps INTEGER NOT NULL,
    selected_steps INTEGER NOT NULL,
    ridings_total INTEGER NOT NULL,
    interactive BOOLEAN NOT NULL DEFAULT FALSE,
    seed BIGINT NOT NULL DEFAULT 0,
    input TEXT NOT NULL,
    error TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_run_status ON run(status);

-- Rendered steps, dropped again when a riding is rolled back
CREATE TABLE IF NOT EXISTS step_result (
    run_id TEXT NOT NULL REFERENCES run(id) ON DELETE CASCADE,
    riding_index INTEGER NOT NULL,
    attempt INTEGER NOT NULL,
    step INTEGER NOT NULL,
    payload TEXT NOT NULL,
    PRIMARY KEY (run_id, riding_index, attempt, step)
);

-- Map coloring per finalized riding
CREATE TABLE IF NOT EXISTS riding_color (
    run_id TEXT NOT NULL REFERENCES run(id) ON DELETE CASCADE,
    riding_index INTEGER NOT NULL,
    riding TEXT NOT NULL,
    fill_color TEXT NOT NULL,
    shares TEXT NOT NULL,
    PRIMARY KEY (run_id, riding_index)
);

-- Accepted and skipped ridings
CREATE TABLE IF NOT EXISTS riding_result (
    run_id TEXT NOT NULL REFERENCES run(id) ON DELETE CASCADE,
    riding_index INTEGER NOT NULL,
    riding TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('accepted', 'skipped')),
    winner_party TEXT NOT NULL DEFAULT '',
    payload TEXT NOT NULL,
    recorded_at TIMESTAMP NOT NULL,
    PRIMARY KEY (run_id, riding_index)
);

CREATE INDEX IF NOT EXISTS idx_riding_result_party ON riding_result(run_id, winner_party);

-- Committed party standings as of the latest accepted riding
CREATE TABLE IF NOT EXISTS party_standing (
    run_id TEXT NOT NULL REFERENCES run(id) ON DELETE CASCADE,
    party TEXT NOT NULL,
    position INTEGER NOT NULL,
    short_name TEXT NOT NULL DEFAULT '',
    color TEXT NOT NULL DEFAULT '',
    starting_votes DOUBLE PRECISION NOT NULL DEFAULT 0,
    direct_seats INTEGER NOT NULL DEFAULT 0,
    list_seats INTEGER NOT NULL DEFAULT 0,
    cumulative_votes DOUBLE PRECISION NOT NULL DEFAULT 0,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (run_id, party)
);
`
