// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db persists simulation runs.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The same schema runs on SQLite (modernc.org/sqlite, the default) and
PostgreSQL (lib/pq).

# Tables

  - run: Run parameters, lifecycle state and the original JSON input
  - step_result: Rendered steps of the current attempt of each riding
  - riding_color: Fill color and vote shares of finalized ridings
  - riding_result: Accepted and skipped ridings
  - party_standing: Committed standings after the latest acceptance

# Relationships

	run 1──* step_result
	run 1──* riding_color
	run 1──* riding_result
	run 1──* party_standing

# Store

Store is the simulation's write side. It satisfies sim.Renderer,
sim.MapColorer and sim.Recorder, and serves the read queries used by the
HTTP handlers. Snapshots never reach the database; only results do.
*/
package db
