// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

Inputs and accumulators shared by the engine and the API:

  - Party: national accumulator (cumulative/provisional votes, direct and list seats)
  - Riding: parallel candidate, party and final result slices
  - PartyList: ordered list candidates for top-up seats
  - ElectionInput: parties, ridings and party lists as loaded from JSON

# Result Types

Produced by the simulation driver:

  - StepResult: one rendered step of a riding count
  - SeatProjection: live seat projection per party
  - RidingOutcome: accepted or skipped riding with winner and vote shares
  - ListEntry: list-seat assignment for a party list candidate
  - Run: run metadata and lifecycle state

# Request Types

  - CreateRunRequest: run settings plus an embedded ElectionInput
  - ReviewRequest: decision (accept, reroll, retry, skip), optionally
    pinned to a riding_index and attempt

# Response Types

  - CreateRunResponse: run_id, review_key
  - RunStatusResponse: run, ridings_done, standings
  - PendingReview: riding awaiting a decision
  - ListsResponse: party list entries
  - MapEntry: fill color and shares of one riding
  - ReviewResponse, ErrorResponse

# Constants

Run status values:

	RunStatusRunning   = "running"
	RunStatusDone      = "done"
	RunStatusFailed    = "failed"
	RunStatusCancelled = "cancelled"

Riding outcomes:

	RidingAccepted = "accepted"
	RidingSkipped  = "skipped"

Parties named IndependentParty ("Independent") win direct seats but never
take part in proportional allocation.
*/
package models
