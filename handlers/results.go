// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/election-night/cliparse"
	"github.com/danielhkuo/election-night/db"
	"github.com/danielhkuo/election-night/middleware"
	"github.com/danielhkuo/election-night/models"
	"github.com/danielhkuo/election-night/tally"
)

// ResultsHandler serves persisted results. It never touches a live tally.
type ResultsHandler struct {
	store *db.Store
	cfg   cliparse.Config
}

func NewResultsHandler(store *db.Store, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{store: store, cfg: cfg}
}

// ListRidings handles GET /runs/{id}/ridings
func (h *ResultsHandler) ListRidings(w http.ResponseWriter, r *http.Request) {
	run, ok := loadRun(w, r, h.store)
	if !ok {
		return
	}

	outcomes, err := h.store.ListOutcomes(r.Context(), run.ID)
	if err != nil {
		slog.Error("failed to list outcomes", "run_id", run.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, outcomes)
}

// ListSteps handles GET /runs/{id}/ridings/{index}/steps
// Returns the rendered steps of the riding's current attempt
func (h *ResultsHandler) ListSteps(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "riding index must be a non-negative integer")
		return
	}

	run, ok := loadRun(w, r, h.store)
	if !ok {
		return
	}
	if index >= run.RidingsTotal {
		middleware.ErrorResponse(w, http.StatusNotFound, "Riding not found")
		return
	}

	steps, err := h.store.ListSteps(r.Context(), run.ID, index)
	if err != nil {
		slog.Error("failed to list steps", "run_id", run.ID, "index", index, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, steps)
}

// GetMap handles GET /runs/{id}/map
func (h *ResultsHandler) GetMap(w http.ResponseWriter, r *http.Request) {
	run, ok := loadRun(w, r, h.store)
	if !ok {
		return
	}

	entries, err := h.store.ListMap(r.Context(), run.ID)
	if err != nil {
		slog.Error("failed to list map", "run_id", run.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, entries)
}

// GetLists handles GET /runs/{id}/lists
// Fills each party list from the committed list seats and riding winners
func (h *ResultsHandler) GetLists(w http.ResponseWriter, r *http.Request) {
	run, ok := loadRun(w, r, h.store)
	if !ok {
		return
	}

	input, err := h.store.GetRunInput(r.Context(), run.ID)
	if err != nil {
		slog.Error("failed to load run input", "run_id", run.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	outcomes, err := h.store.ListOutcomes(r.Context(), run.ID)
	if err != nil {
		slog.Error("failed to list outcomes", "run_id", run.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	standings, err := h.store.GetStandings(r.Context(), run.ID)
	if err != nil {
		slog.Error("failed to load standings", "run_id", run.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	elected := make(map[string]models.ElectedCandidate)
	for _, o := range outcomes {
		if o.Status == models.RidingAccepted && o.WinnerCandidate != "" {
			elected[o.WinnerCandidate] = models.ElectedCandidate{Party: o.WinnerParty, Riding: o.Riding}
		}
	}

	owed := make(map[string]int, len(standings))
	for _, p := range standings {
		if !p.IsIndependent() {
			owed[p.Name] = p.ListSeats
		}
	}

	entries := tally.AssignListSeats(input.PartyLists, elected, owed)
	if entries == nil {
		entries = []models.ListEntry{}
	}

	middleware.JSONResponse(w, http.StatusOK, models.ListsResponse{
		RunID:   run.ID,
		Entries: entries,
	})
}
