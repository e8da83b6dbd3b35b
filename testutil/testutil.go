// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/election-night/auth"
	"github.com/danielhkuo/election-night/cliparse"
	"github.com/danielhkuo/election-night/db"
	"github.com/danielhkuo/election-night/models"
)

// TestDBURL is the connection string for the test database
const TestDBURL = ":memory:"

// SetupTestDB creates a fresh in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseURL:   TestDBURL,
		DatabaseType:  "sqlite",
		ReviewKeySalt: "test-review-salt",
		TotalSteps:    20,
		SelectedSteps: 5,
		Seats:         5,
		Seed:          42,
	}
}

// TestElection returns a small three-riding election with an independent.
func TestElection() models.ElectionInput {
	return models.ElectionInput{
		Parties: []models.Party{
			{Name: "Liberal", ShortName: "LPC", Color: "#ff0000"},
			{Name: "Conservative", ShortName: "CPC", Color: "#0000ff"},
			{Name: models.IndependentParty, ShortName: "IND", Color: "#808080"},
		},
		Ridings: []models.Riding{
			{
				Name:           "Northside",
				CandidateNames: []string{"Ada", "Ben"},
				PartyNames:     []string{"Liberal", "Conservative"},
				FinalResults:   []float64{600, 400},
			},
			{
				Name:           "Southside",
				CandidateNames: []string{"Cleo", "Dev"},
				PartyNames:     []string{"Liberal", "Conservative"},
				FinalResults:   []float64{300, 700},
			},
			{
				Name:           "Eastside",
				CandidateNames: []string{"Eli", "Fay", "Gus"},
				PartyNames:     []string{"Liberal", "Conservative", models.IndependentParty},
				FinalResults:   []float64{200, 250, 500},
			},
		},
		PartyLists: []models.PartyList{
			{Party: "Liberal", Candidates: []string{"Ada", "Lia", "Max"}},
			{Party: "Conservative", Candidates: []string{"Dev", "Ned"}},
		},
	}
}

// CreateTestRun inserts a running run and returns its ID and review key
func CreateTestRun(t *testing.T, conn *sql.DB, cfg cliparse.Config) (runID, reviewKey string) {
	t.Helper()

	input := TestElection()
	runID = auth.NewRunID()
	reviewKey = auth.GenerateReviewKey(runID, cfg.ReviewKeySalt)

	run := models.Run{
		ID:            runID,
		Name:          "Test Run",
		Status:        models.RunStatusRunning,
		Seats:         cfg.Seats,
		TotalSteps:    cfg.TotalSteps,
		SelectedSteps: cfg.SelectedSteps,
		RidingsTotal:  len(input.Ridings),
		Interactive:   true,
		Seed:          cfg.Seed,
		CreatedAt:     time.Now().UTC(),
	}
	if err := db.NewStore(conn).CreateRun(context.Background(), run, input); err != nil {
		t.Fatalf("Failed to create test run: %v", err)
	}

	return runID, reviewKey
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
