// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the election-night API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(store, manager, cfg)

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Runs:

	POST /runs              - Create and start a simulation
	GET  /runs/{id}         - Run status and standings
	POST /runs/{id}/cancel  - Cancel an active run (X-Review-Key)

Review (interactive runs only):

	GET  /runs/{id}/review  - Riding awaiting a decision
	POST /runs/{id}/review  - Accept or reroll it (X-Review-Key)

Results (public):

	GET /runs/{id}/ridings                - Recorded riding outcomes
	GET /runs/{id}/ridings/{index}/steps  - Rendered steps for one riding
	GET /runs/{id}/lists                  - Party list seat assignments
	GET /runs/{id}/map                    - Riding fill colors

# Handler Initialization

All handlers share the store and configuration; the run and review
handlers also reach the RunManager that owns in-flight simulations.
*/
package router
