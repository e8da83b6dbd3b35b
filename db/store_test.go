// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/danielhkuo/election-night/db"
	"github.com/danielhkuo/election-night/models"
	"github.com/danielhkuo/election-night/testutil"
)

func TestDriverName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "sqlite", false},
		{"sqlite", "sqlite", false},
		{"postgres", "postgres", false},
		{"postgresql", "postgres", false},
		{"mysql", "", true},
	}

	for _, tt := range tests {
		got, err := db.DriverName(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("DriverName(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestCreateSchemaIdempotent(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	if err := db.CreateSchema(conn); err != nil {
		t.Errorf("Second CreateSchema() error = %v", err)
	}
}

func TestRunLifecycle(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	store := db.NewStore(conn)
	ctx := context.Background()

	runID, _ := testutil.CreateTestRun(t, conn, cfg)

	run, err := store.GetRun(ctx, runID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if run.Status != models.RunStatusRunning || run.Seats != 5 || run.RidingsTotal != 3 || !run.Interactive {
		t.Errorf("Unexpected run %+v", run)
	}
	if run.Seed != 42 {
		t.Errorf("Expected seed 42, got %d", run.Seed)
	}
	if run.FinishedAt != nil {
		t.Error("Running run should have no finish time")
	}

	input, err := store.GetRunInput(ctx, runID)
	if err != nil {
		t.Fatalf("GetRunInput() error = %v", err)
	}
	if len(input.Ridings) != 3 || len(input.PartyLists) != 2 {
		t.Errorf("Input did not round trip: %+v", input)
	}

	if err := store.FinishRun(ctx, runID, models.RunStatusFailed, "boom"); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}
	run, err = store.GetRun(ctx, runID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if run.Status != models.RunStatusFailed || run.Error != "boom" || run.FinishedAt == nil {
		t.Errorf("Unexpected finished run %+v", run)
	}
}

func TestRunNotFound(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	store := db.NewStore(conn)
	ctx := context.Background()

	if _, err := store.GetRun(ctx, "missing"); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("GetRun() error = %v, want ErrNotFound", err)
	}
	if _, err := store.GetRunInput(ctx, "missing"); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("GetRunInput() error = %v, want ErrNotFound", err)
	}
	if err := store.FinishRun(ctx, "missing", models.RunStatusDone, ""); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("FinishRun() error = %v, want ErrNotFound", err)
	}
}

func TestStepsRenderAndDiscard(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	store := db.NewStore(conn)
	ctx := context.Background()
	runID, _ := testutil.CreateTestRun(t, conn, cfg)

	for _, step := range []int{0, 7, 19} {
		err := store.RenderStep(ctx, models.StepResult{
			RunID:            runID,
			RidingIndex:      0,
			Attempt:          1,
			Step:             step,
			VotesByCandidate: []float64{float64(step) * 10, float64(step) * 5},
		})
		if err != nil {
			t.Fatalf("RenderStep() error = %v", err)
		}
	}
	if err := store.RenderStep(ctx, models.StepResult{RunID: runID, RidingIndex: 1, Attempt: 1}); err != nil {
		t.Fatalf("RenderStep() error = %v", err)
	}

	// Re-rendering the same step replaces it.
	if err := store.RenderStep(ctx, models.StepResult{RunID: runID, RidingIndex: 0, Attempt: 1, Step: 7, RemainingVotes: 3}); err != nil {
		t.Fatalf("RenderStep() error = %v", err)
	}

	steps, err := store.ListSteps(ctx, runID, 0)
	if err != nil {
		t.Fatalf("ListSteps() error = %v", err)
	}
	if len(steps) != 3 {
		t.Fatalf("Expected 3 steps, got %d", len(steps))
	}
	if steps[0].Step != 0 || steps[1].Step != 7 || steps[2].Step != 19 {
		t.Errorf("Steps out of order: %d %d %d", steps[0].Step, steps[1].Step, steps[2].Step)
	}
	if steps[1].RemainingVotes != 3 {
		t.Errorf("Expected replaced step, got %+v", steps[1])
	}
	if steps[2].VotesByCandidate[0] != 190 {
		t.Errorf("Votes did not round trip: %v", steps[2].VotesByCandidate)
	}

	if err := store.ColorRiding(ctx, models.RidingOutcome{RunID: runID, RidingIndex: 0, Riding: "Northside", FillColor: "#ff0000"}); err != nil {
		t.Fatalf("ColorRiding() error = %v", err)
	}
	if err := store.DiscardRiding(ctx, runID, 0); err != nil {
		t.Fatalf("DiscardRiding() error = %v", err)
	}

	steps, _ = store.ListSteps(ctx, runID, 0)
	if len(steps) != 0 {
		t.Errorf("Expected riding 0 discarded, got %d steps", len(steps))
	}
	other, _ := store.ListSteps(ctx, runID, 1)
	if len(other) != 1 {
		t.Errorf("Discard should not touch riding 1, got %d steps", len(other))
	}
	entries, _ := store.ListMap(ctx, runID)
	if len(entries) != 0 {
		t.Errorf("Expected map color discarded, got %d entries", len(entries))
	}
}

func TestOutcomesAndMap(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	store := db.NewStore(conn)
	ctx := context.Background()
	runID, _ := testutil.CreateTestRun(t, conn, cfg)

	accepted := models.RidingOutcome{
		RunID:           runID,
		RidingIndex:     1,
		Riding:          "Southside",
		Status:          models.RidingAccepted,
		Attempts:        2,
		WinnerCandidate: "Dev",
		WinnerParty:     "Conservative",
		FinalVotes:      []float64{300, 700},
		FillColor:       "#6666ff",
		Shares: []models.CandidateShare{
			{Candidate: "Cleo", ShortName: "LPC", Votes: 300, Share: 0.3},
			{Candidate: "Dev", ShortName: "CPC", Votes: 700, Share: 0.7},
		},
	}
	skipped := models.RidingOutcome{RunID: runID, RidingIndex: 0, Riding: "Northside", Status: models.RidingSkipped, Error: "render failed"}

	for _, o := range []models.RidingOutcome{accepted, skipped} {
		if err := store.RecordOutcome(ctx, o); err != nil {
			t.Fatalf("RecordOutcome() error = %v", err)
		}
	}
	if err := store.ColorRiding(ctx, accepted); err != nil {
		t.Fatalf("ColorRiding() error = %v", err)
	}

	outcomes, err := store.ListOutcomes(ctx, runID)
	if err != nil {
		t.Fatalf("ListOutcomes() error = %v", err)
	}
	if len(outcomes) != 2 || outcomes[0].Riding != "Northside" || outcomes[1].WinnerCandidate != "Dev" {
		t.Errorf("Unexpected outcomes %+v", outcomes)
	}
	if outcomes[0].Error != "render failed" {
		t.Errorf("Expected skip reason, got %q", outcomes[0].Error)
	}

	n, err := store.CountOutcomes(ctx, runID)
	if err != nil || n != 2 {
		t.Errorf("CountOutcomes() = %d, %v", n, err)
	}

	entries, err := store.ListMap(ctx, runID)
	if err != nil {
		t.Fatalf("ListMap() error = %v", err)
	}
	if len(entries) != 1 || entries[0].FillColor != "#6666ff" || len(entries[0].Shares) != 2 {
		t.Errorf("Unexpected map entries %+v", entries)
	}
}

func TestStandings(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	store := db.NewStore(conn)
	ctx := context.Background()
	runID, _ := testutil.CreateTestRun(t, conn, cfg)

	empty, err := store.GetStandings(ctx, runID)
	if err != nil || len(empty) != 0 {
		t.Fatalf("Expected no standings yet, got %v (%v)", empty, err)
	}

	parties := testutil.TestElection().Parties
	parties[0].CumulativeVotes = 600
	parties[0].DirectSeats = 1
	if err := store.RecordStandings(ctx, runID, parties); err != nil {
		t.Fatalf("RecordStandings() error = %v", err)
	}

	parties[1].CumulativeVotes = 1100
	parties[1].DirectSeats = 1
	parties[0].ListSeats = 1
	if err := store.RecordStandings(ctx, runID, parties); err != nil {
		t.Fatalf("RecordStandings() error = %v", err)
	}

	got, err := store.GetStandings(ctx, runID)
	if err != nil {
		t.Fatalf("GetStandings() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 parties, got %d", len(got))
	}
	if got[0].Name != "Liberal" || got[1].Name != "Conservative" || got[2].Name != models.IndependentParty {
		t.Errorf("Standings not in input order: %v", got)
	}
	if got[0].ListSeats != 1 || got[1].CumulativeVotes != 1100 || got[1].ProvisionalVotes != 1100 {
		t.Errorf("Standings not updated: %+v", got)
	}
	if got[0].Color != "#ff0000" || got[0].ShortName != "LPC" {
		t.Errorf("Party details lost: %+v", got[0])
	}
}
