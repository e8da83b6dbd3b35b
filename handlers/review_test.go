// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/election-night/auth"
	"github.com/danielhkuo/election-night/models"
	"github.com/danielhkuo/election-night/testutil"
)

// waitForReview polls GET /runs/{id}/review until a riding is pending.
func waitForReview(t *testing.T, env *testEnv, runID string) models.PendingReview {
	t.Helper()

	handler := NewReviewHandler(env.store, env.manager, env.cfg)
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		req := httptest.NewRequest("GET", "/runs/"+runID+"/review", nil)
		req.SetPathValue("id", runID)
		w := httptest.NewRecorder()

		handler.GetReview(w, req)

		switch w.Code {
		case http.StatusOK:
			var pending models.PendingReview
			testutil.AssertJSON(t, w, &pending)
			return pending
		case http.StatusNoContent:
			time.Sleep(5 * time.Millisecond)
		default:
			t.Fatalf("Unexpected status %d while waiting for review. Body: %s", w.Code, w.Body.String())
		}
	}

	t.Fatal("Timed out waiting for a pending review")
	return models.PendingReview{}
}

func submitReview(env *testEnv, runID, reviewKey string, body interface{}) *httptest.ResponseRecorder {
	handler := NewReviewHandler(env.store, env.manager, env.cfg)

	headers := map[string]string{}
	if reviewKey != "" {
		headers["X-Review-Key"] = reviewKey
	}
	req := testutil.MakeRequest("POST", "/runs/"+runID+"/review", body, headers)
	req.SetPathValue("id", runID)
	w := httptest.NewRecorder()

	handler.SubmitReview(w, req)
	return w
}

func TestReviewFlow(t *testing.T) {
	env := setupTestEnv(t)
	runID, reviewKey := env.startRun(t, true)

	// First riding: reroll once, then accept the second attempt.
	pending := waitForReview(t, env, runID)
	if pending.Riding != "Northside" || pending.Attempt != 1 {
		t.Fatalf("Expected Northside attempt 1, got %s attempt %d", pending.Riding, pending.Attempt)
	}
	if pending.Steps < 2 {
		t.Errorf("Expected at least 2 rendered steps, got %d", pending.Steps)
	}

	w := submitReview(env, runID, reviewKey, models.ReviewRequest{Decision: models.DecisionReroll})
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ReviewResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Decision != models.DecisionReroll {
		t.Errorf("Expected decision 'reroll', got '%s'", resp.Decision)
	}
	if resp.Message != "Decision recorded for Northside" {
		t.Errorf("Unexpected message %q", resp.Message)
	}

	pending = waitForReview(t, env, runID)
	if pending.Riding != "Northside" || pending.Attempt != 2 {
		t.Fatalf("Expected Northside attempt 2, got %s attempt %d", pending.Riding, pending.Attempt)
	}

	// Only the current attempt's steps are kept.
	steps, err := env.store.ListSteps(context.Background(), runID, 0)
	if err != nil {
		t.Fatalf("Failed to list steps: %v", err)
	}
	for _, s := range steps {
		if s.Attempt != 2 {
			t.Errorf("Expected only attempt 2 steps, found attempt %d", s.Attempt)
		}
	}

	for _, riding := range []string{"Northside", "Southside", "Eastside"} {
		if riding != "Northside" {
			pending = waitForReview(t, env, runID)
		}
		if pending.Riding != riding {
			t.Fatalf("Expected %s under review, got %s", riding, pending.Riding)
		}
		w := submitReview(env, runID, reviewKey, models.ReviewRequest{Decision: models.DecisionAccept})
		testutil.AssertStatus(t, w, http.StatusOK)
	}

	env.manager.Wait()

	run, err := env.store.GetRun(context.Background(), runID)
	if err != nil {
		t.Fatalf("Failed to load run: %v", err)
	}
	if run.Status != models.RunStatusDone {
		t.Errorf("Expected status 'done', got '%s' (%s)", run.Status, run.Error)
	}

	outcomes, err := env.store.ListOutcomes(context.Background(), runID)
	if err != nil {
		t.Fatalf("Failed to list outcomes: %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("Expected 3 outcomes, got %d", len(outcomes))
	}
	if outcomes[0].Attempts != 2 {
		t.Errorf("Expected Northside to take 2 attempts, got %d", outcomes[0].Attempts)
	}
	for _, o := range outcomes {
		if o.Status != models.RidingAccepted {
			t.Errorf("Expected %s accepted, got %s", o.Riding, o.Status)
		}
	}
}

func TestSubmitReviewErrors(t *testing.T) {
	env := setupTestEnv(t)
	runID, reviewKey := env.startRun(t, true)
	waitForReview(t, env, runID)

	finished := env.syncRun(t)

	tests := []struct {
		name           string
		runID          string
		reviewKey      string
		body           interface{}
		expectedStatus int
	}{
		{
			name:           "invalid review key",
			runID:          runID,
			reviewKey:      "wrong-key",
			body:           models.ReviewRequest{Decision: models.DecisionAccept},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "missing review key",
			runID:          runID,
			body:           models.ReviewRequest{Decision: models.DecisionAccept},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unknown decision",
			runID:          runID,
			reviewKey:      reviewKey,
			body:           models.ReviewRequest{Decision: "maybe"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			runID:          runID,
			reviewKey:      reviewKey,
			body:           "invalid json",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "run not awaiting review",
			runID:          finished.ID,
			reviewKey:      reviewKeyFor(env, finished.ID),
			body:           models.ReviewRequest{Decision: models.DecisionAccept},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := submitReview(env, tt.runID, tt.reviewKey, tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetReviewStates(t *testing.T) {
	env := setupTestEnv(t)

	finished := env.syncRun(t)
	inactiveID, _ := testutil.CreateTestRun(t, env.conn, env.cfg)

	tests := []struct {
		name           string
		runID          string
		expectedStatus int
	}{
		{"non-interactive run", finished.ID, http.StatusConflict},
		{"interactive run not simulating", inactiveID, http.StatusConflict},
		{"unknown run", "missing", http.StatusNotFound},
	}

	handler := NewReviewHandler(env.store, env.manager, env.cfg)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/runs/"+tt.runID+"/review", nil)
			req.SetPathValue("id", tt.runID)
			w := httptest.NewRecorder()

			handler.GetReview(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func reviewKeyFor(env *testEnv, runID string) string {
	return auth.GenerateReviewKey(runID, env.cfg.ReviewKeySalt)
}
