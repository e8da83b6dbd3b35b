// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the election-night API.

# Handler Types

Each handler is a struct with store and config dependencies:

  - RunHandler: Run creation, status and cancellation
  - ReviewHandler: Operator decisions for interactive runs
  - ResultsHandler: Riding outcomes, rendered steps, map and lists

Handlers are created via constructor functions:

	runHandler := handlers.NewRunHandler(store, manager, cfg)

# Run Manager

RunManager owns every simulation in flight. Start persists a run and
drives it on its own goroutine; RunSync does the same on the caller's
goroutine for headless use:

	manager := handlers.NewRunManager(store, cfg)
	run, err := manager.Start(ctx, req)

Runs finish as done, cancelled or failed. Shutdown cancels every active
run and waits for its open riding to roll back.

# Review Flow

Interactive runs pause after each riding finishes rendering:

	GET  /runs/{id}/review → GetReview (204 while rendering)
	POST /runs/{id}/review → SubmitReview (accept, reroll, retry, skip)

Decisions and cancellation require the X-Review-Key header returned by
POST /runs. A decision naming riding_index is rejected with 409 once that
riding is no longer under review.
*/
package handlers
