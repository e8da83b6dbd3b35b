// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Run status constants
const (
	RunStatusRunning   = "running"
	RunStatusDone      = "done"
	RunStatusFailed    = "failed"
	RunStatusCancelled = "cancelled"
)

// Riding outcome constants
const (
	RidingAccepted = "accepted"
	RidingSkipped  = "skipped"
)

// Review decisions accepted by POST /runs/{id}/review
const (
	DecisionAccept = "accept"
	DecisionReroll = "reroll"
	// For a riding whose attempt failed
	DecisionRetry = "retry"
	DecisionSkip  = "skip"
)

// List seat statuses
const (
	ListStatusElected     = "elected"
	ListStatusListSeat    = "list_seat"
	ListStatusNotElected  = "not_elected"
	ListStatusPlaceholder = "placeholder"
)

// IndependentParty is excluded from proportional allocation.
const IndependentParty = "Independent"

// Domain types

// Party is the national accumulator for one party. CumulativeVotes only
// grows across accepted ridings; ProvisionalVotes adds the open riding on top.
type Party struct {
	Name             string  `json:"name"`
	ShortName        string  `json:"short_name"`
	Color            string  `json:"color"`
	StartingVotes    float64 `json:"starting_votes,omitempty"`
	DirectSeats      int     `json:"direct_seats"`
	ListSeats        int     `json:"list_seats"`
	CumulativeVotes  float64 `json:"cumulative_votes"`
	ProvisionalVotes float64 `json:"provisional_votes"`
}

func (p Party) IsIndependent() bool {
	return p.Name == IndependentParty
}

// Riding is one electoral district. The three slices are parallel.
type Riding struct {
	Name           string    `json:"name"`
	CandidateNames []string  `json:"candidate_names"`
	PartyNames     []string  `json:"party_names"`
	FinalResults   []float64 `json:"final_results"`
}

// PartyList is a party's ordered list of candidates for list seats.
type PartyList struct {
	Party      string   `json:"party"`
	Candidates []string `json:"candidates"`
}

// ElectionInput is the JSON document consumed by the CLI and POST /runs.
type ElectionInput struct {
	Parties    []Party     `json:"parties"`
	Ridings    []Riding    `json:"ridings"`
	PartyLists []PartyList `json:"party_lists,omitempty"`
}

// Simulation result types

type SeatProjection struct {
	Party       string  `json:"party"`
	ShortName   string  `json:"short_name"`
	DirectSeats int     `json:"direct_seats"`
	ListSeats   int     `json:"list_seats"`
	TotalSeats  int     `json:"total_seats"`
	Votes       float64 `json:"votes"`
	VoteShare   float64 `json:"vote_share"`
}

// StepResult is handed to the renderer for every selected step.
// LeadMargins is indexed by rank, i.e. parallel to SortedOrder.
type StepResult struct {
	RunID            string           `json:"run_id"`
	RidingIndex      int              `json:"riding_index"`
	Riding           string           `json:"riding"`
	Attempt          int              `json:"attempt"`
	Step             int              `json:"step"`
	TotalSteps       int              `json:"total_steps"`
	CandidateNames   []string         `json:"candidate_names"`
	PartyNames       []string         `json:"party_names"`
	VotesByCandidate []float64        `json:"votes_by_candidate"`
	SortedOrder      []int            `json:"sorted_order"`
	LeadMargins      []float64        `json:"lead_margins"`
	RemainingVotes   float64          `json:"remaining_votes"`
	IsWinnerDecided  bool             `json:"is_winner_decided"`
	SeatProjection   []SeatProjection `json:"seat_projection,omitempty"`
}

type CandidateShare struct {
	Candidate string  `json:"candidate"`
	ShortName string  `json:"short_name"`
	Votes     float64 `json:"votes"`
	Share     float64 `json:"share"`
}

// RidingOutcome describes a riding once it has been accepted or skipped.
type RidingOutcome struct {
	RunID           string           `json:"run_id"`
	RidingIndex     int              `json:"riding_index"`
	Riding          string           `json:"riding"`
	Status          string           `json:"status"`
	Attempts        int              `json:"attempts"`
	CandidateNames  []string         `json:"candidate_names"`
	PartyNames      []string         `json:"party_names"`
	ShortNames      []string         `json:"short_names"`
	FinalVotes      []float64        `json:"final_votes"`
	WinnerCandidate string           `json:"winner_candidate,omitempty"`
	WinnerParty     string           `json:"winner_party,omitempty"`
	DecidedStep     int              `json:"decided_step"`
	Shares          []CandidateShare `json:"shares,omitempty"`
	FillColor       string           `json:"fill_color,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// MapEntry is the coloring data for one finalized riding.
type MapEntry struct {
	RidingIndex int              `json:"riding_index"`
	Riding      string           `json:"riding"`
	FillColor   string           `json:"fill_color"`
	Shares      []CandidateShare `json:"shares"`
}

// ElectedCandidate records where a riding winner was elected.
type ElectedCandidate struct {
	Party  string `json:"party"`
	Riding string `json:"riding"`
}

type ListEntry struct {
	Party     string `json:"party"`
	Position  int    `json:"position"` // 0 for elected candidates not on the list
	Candidate string `json:"candidate"`
	Status    string `json:"status"`
	Riding    string `json:"riding,omitempty"`
}

type Run struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Status        string     `json:"status"`
	Seats         int        `json:"seats"`
	TotalSteps    int        `json:"total_steps"`
	SelectedSteps int        `json:"selected_steps"`
	RidingsTotal  int        `json:"ridings_total"`
	Interactive   bool       `json:"interactive"`
	Seed          int64      `json:"seed"`
	Error         string     `json:"error,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}

// Request types

type CreateRunRequest struct {
	Name          string `json:"name"`
	Seats         int    `json:"seats"`
	TotalSteps    int    `json:"total_steps"`
	SelectedSteps int    `json:"selected_steps"`
	Seed          int64  `json:"seed"`
	Interactive   bool   `json:"interactive"`
	Byelection    bool   `json:"byelection"`
	ClampOverhang bool   `json:"clamp_overhang"`
	ElectionInput
}

// ReviewRequest may name the riding (and attempt) it decides on; a
// decision for anything else is rejected as stale.
type ReviewRequest struct {
	Decision    string `json:"decision"`
	RidingIndex *int   `json:"riding_index,omitempty"`
	Attempt     int    `json:"attempt,omitempty"`
}

// Response types

type CreateRunResponse struct {
	RunID     string `json:"run_id"`
	ReviewKey string `json:"review_key,omitempty"`
}

type RunStatusResponse struct {
	Run         Run     `json:"run"`
	RidingsDone int     `json:"ridings_done"`
	Standings   []Party `json:"standings"`
}

type ListsResponse struct {
	RunID   string      `json:"run_id"`
	Entries []ListEntry `json:"entries"`
}

type PendingReview struct {
	RunID       string `json:"run_id"`
	RidingIndex int    `json:"riding_index"`
	Riding      string `json:"riding"`
	Attempt     int    `json:"attempt"`
	Steps       int    `json:"steps"`
	Error       string `json:"error,omitempty"`
}

type ReviewResponse struct {
	Decision string `json:"decision"`
	Message  string `json:"message"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
