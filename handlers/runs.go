// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/election-night/auth"
	"github.com/danielhkuo/election-night/cliparse"
	"github.com/danielhkuo/election-night/db"
	"github.com/danielhkuo/election-night/middleware"
	"github.com/danielhkuo/election-night/models"
	"github.com/danielhkuo/election-night/tally"
)

type RunHandler struct {
	store   *db.Store
	manager *RunManager
	cfg     cliparse.Config
}

func NewRunHandler(store *db.Store, manager *RunManager, cfg cliparse.Config) *RunHandler {
	return &RunHandler{store: store, manager: manager, cfg: cfg}
}

// CreateRun handles POST /runs
// Validates the election, stores it and starts simulating in the background
func (h *RunHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRunRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	run, err := h.manager.Start(r.Context(), req)
	if errors.Is(err, tally.ErrInvalidInput) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to start run", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create run")
		return
	}

	// The review key also authorizes cancelling the run.
	middleware.JSONResponse(w, http.StatusCreated, models.CreateRunResponse{
		RunID:     run.ID,
		ReviewKey: auth.GenerateReviewKey(run.ID, h.cfg.ReviewKeySalt),
	})
}

// GetRun handles GET /runs/{id}
// Returns run state and the standings committed so far
func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := loadRun(w, r, h.store)
	if !ok {
		return
	}

	done, err := h.store.CountOutcomes(r.Context(), run.ID)
	if err != nil {
		slog.Error("failed to count outcomes", "run_id", run.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	standings, err := h.store.GetStandings(r.Context(), run.ID)
	if err != nil {
		slog.Error("failed to load standings", "run_id", run.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.RunStatusResponse{
		Run:         run,
		RidingsDone: done,
		Standings:   standings,
	})
}

// CancelRun handles POST /runs/{id}/cancel
// Requires X-Review-Key; the open riding is rolled back
func (h *RunHandler) CancelRun(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("id")
	if err := auth.ValidateReviewKey(runID, r.Header.Get("X-Review-Key"), h.cfg.ReviewKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid review key")
		return
	}

	if _, ok := loadRun(w, r, h.store); !ok {
		return
	}

	if err := h.manager.Cancel(runID); err != nil {
		middleware.ErrorResponse(w, http.StatusConflict, "Run is not active")
		return
	}

	slog.Info("run cancel requested", "run_id", runID)
	middleware.JSONResponse(w, http.StatusAccepted, map[string]string{
		"run_id": runID,
		"status": "cancelling",
	})
}

// loadRun fetches the run named by the {id} path value, writing the error
// response itself when it cannot.
func loadRun(w http.ResponseWriter, r *http.Request, store *db.Store) (models.Run, bool) {
	runID := r.PathValue("id")
	if runID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "run id is required")
		return models.Run{}, false
	}

	run, err := store.GetRun(r.Context(), runID)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Run not found")
		return models.Run{}, false
	}
	if err != nil {
		slog.Error("failed to query run", "run_id", runID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.Run{}, false
	}
	return run, true
}
