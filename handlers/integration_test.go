// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/election-night/models"
)

// TestFullElectionNightWorkflow tests the complete end-to-end workflow:
// 1. Create an interactive run
// 2. Review each riding as it finishes rendering
// 3. Watch standings move after each accepted riding
// 4. Verify the map and party lists
func TestFullElectionNightWorkflow(t *testing.T) {
	env := setupTestEnv(t)

	runHandler := NewRunHandler(env.store, env.manager, env.cfg)
	resultsHandler := NewResultsHandler(env.store, env.cfg)

	// Step 1: Create the run
	runID, reviewKey := env.startRun(t, true)
	if runID == "" || reviewKey == "" {
		t.Fatal("Step 1 - Missing run_id or review_key")
	}
	t.Logf("Step 1 - Created run: %s", runID)

	getRun := func() models.RunStatusResponse {
		req := httptest.NewRequest("GET", "/runs/"+runID, nil)
		req.SetPathValue("id", runID)
		w := httptest.NewRecorder()
		runHandler.GetRun(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("Get run failed: %d - %s", w.Code, w.Body.String())
		}
		var resp models.RunStatusResponse
		json.NewDecoder(w.Body).Decode(&resp)
		return resp
	}

	// Nothing is committed before the first decision.
	status := getRun()
	if status.Run.Status != models.RunStatusRunning || status.RidingsDone != 0 {
		t.Fatalf("Step 1 - Expected a running run with no ridings, got %s with %d", status.Run.Status, status.RidingsDone)
	}

	// Step 2 and 3: Review each riding and check the standings it commits
	wantDirect := []map[string]int{
		{"Liberal": 1},
		{"Liberal": 1, "Conservative": 1},
		{"Liberal": 1, "Conservative": 1, models.IndependentParty: 1},
	}
	for i, want := range wantDirect {
		pending := waitForReview(t, env, runID)
		if pending.RidingIndex != i {
			t.Fatalf("Step 2 - Expected riding %d under review, got %d", i, pending.RidingIndex)
		}

		w := submitReview(env, runID, reviewKey, models.ReviewRequest{Decision: models.DecisionAccept, RidingIndex: &i})
		if w.Code != http.StatusOK {
			t.Fatalf("Step 2 - Accept %s failed: %d - %s", pending.Riding, w.Code, w.Body.String())
		}
		t.Logf("Step 2 - Accepted %s", pending.Riding)

		if i == len(wantDirect)-1 {
			env.manager.Wait()
		} else {
			// The next review only opens after the accepted riding is committed.
			waitForReview(t, env, runID)
		}

		status = getRun()
		if status.RidingsDone != i+1 {
			t.Errorf("Step 3 - Expected %d ridings done, got %d", i+1, status.RidingsDone)
		}
		for _, p := range status.Standings {
			if p.DirectSeats != want[p.Name] {
				t.Errorf("Step 3 - After riding %d, %s: expected %d direct seats, got %d", i, p.Name, want[p.Name], p.DirectSeats)
			}
		}
	}

	if status.Run.Status != models.RunStatusDone {
		t.Fatalf("Step 3 - Expected status 'done', got '%s'", status.Run.Status)
	}

	// Step 4: Map and lists
	req := httptest.NewRequest("GET", "/runs/"+runID+"/map", nil)
	req.SetPathValue("id", runID)
	w := httptest.NewRecorder()
	resultsHandler.GetMap(w, req)

	var entries []models.MapEntry
	json.NewDecoder(w.Body).Decode(&entries)
	if len(entries) != 3 {
		t.Errorf("Step 4 - Expected 3 colored ridings, got %d", len(entries))
	}

	req = httptest.NewRequest("GET", "/runs/"+runID+"/lists", nil)
	req.SetPathValue("id", runID)
	w = httptest.NewRecorder()
	resultsHandler.GetLists(w, req)

	var lists models.ListsResponse
	json.NewDecoder(w.Body).Decode(&lists)

	listSeats := 0
	for _, e := range lists.Entries {
		if e.Status == models.ListStatusListSeat {
			listSeats++
		}
	}
	if listSeats != 2 {
		t.Errorf("Step 4 - Expected 2 list seats filled, got %d", listSeats)
	}
	t.Logf("Step 4 - %d list entries", len(lists.Entries))
}
