// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sim

import (
	"context"

	"github.com/danielhkuo/election-night/models"
)

// Renderer consumes step results. It has no access to tally state.
type Renderer interface {
	RenderStep(ctx context.Context, step models.StepResult) error
	// DiscardRiding drops everything rendered for a rolled back attempt.
	DiscardRiding(ctx context.Context, runID string, ridingIndex int) error
}

// MapColorer receives finalized ridings only.
type MapColorer interface {
	ColorRiding(ctx context.Context, outcome models.RidingOutcome) error
}

// Recorder is told about every accepted or skipped riding and about the
// standings committed at each checkpoint. Failures are logged, not fatal.
type Recorder interface {
	RecordOutcome(ctx context.Context, outcome models.RidingOutcome) error
	RecordStandings(ctx context.Context, runID string, parties []models.Party) error
}

type Decision int

const (
	DecisionAccept Decision = iota
	DecisionReroll
)

func (d Decision) String() string {
	switch d {
	case DecisionAccept:
		return models.DecisionAccept
	case DecisionReroll:
		return models.DecisionReroll
	default:
		return "unknown"
	}
}

// ParseDecision maps the API spelling of a decision. Retry and skip are the
// same decisions phrased for a failed attempt.
func ParseDecision(s string) (Decision, bool) {
	switch s {
	case models.DecisionAccept, models.DecisionSkip:
		return DecisionAccept, true
	case models.DecisionReroll, models.DecisionRetry:
		return DecisionReroll, true
	default:
		return 0, false
	}
}

// Review is what a ReviewGate sees for one riding attempt.
//
// When Err is set the attempt failed: DecisionReroll retries the riding and
// DecisionAccept accepts the failure, skipping the riding.
type Review struct {
	RunID       string
	RidingIndex int
	Riding      models.Riding
	Attempt     int
	Steps       []models.StepResult
	Err         error
}

// ReviewGate decides whether a riding is accepted or rerolled. It may block
// until ctx is done.
type ReviewGate interface {
	Review(ctx context.Context, review Review) (Decision, error)
}
