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
	"github.com/danielhkuo/election-night/sim"
)

// ReviewHandler feeds decisions to the review gate of an interactive run.
type ReviewHandler struct {
	store   *db.Store
	manager *RunManager
	cfg     cliparse.Config
}

func NewReviewHandler(store *db.Store, manager *RunManager, cfg cliparse.Config) *ReviewHandler {
	return &ReviewHandler{store: store, manager: manager, cfg: cfg}
}

// GetReview handles GET /runs/{id}/review
// Returns the riding awaiting a decision, or 204 if none is
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	run, ok := loadRun(w, r, h.store)
	if !ok {
		return
	}
	if !run.Interactive {
		middleware.ErrorResponse(w, http.StatusConflict, "Run is not interactive")
		return
	}

	gate, ok := h.manager.Gate(run.ID)
	if !ok {
		middleware.ErrorResponse(w, http.StatusConflict, "Run is not active")
		return
	}

	pending, ok := gate.Pending()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, pending)
}

// SubmitReview handles POST /runs/{id}/review
// Requires X-Review-Key. Accepts accept/reroll, or retry/skip for a failed attempt
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("id")
	if err := auth.ValidateReviewKey(runID, r.Header.Get("X-Review-Key"), h.cfg.ReviewKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid review key")
		return
	}

	var req models.ReviewRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	decision, ok := sim.ParseDecision(req.Decision)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "decision must be one of accept, reroll, retry, skip")
		return
	}

	if _, ok := loadRun(w, r, h.store); !ok {
		return
	}

	gate, ok := h.manager.Gate(runID)
	if !ok {
		middleware.ErrorResponse(w, http.StatusConflict, "Run is not awaiting review")
		return
	}

	var pending models.PendingReview
	var err error
	if req.RidingIndex != nil {
		pending, err = gate.DecideFor(*req.RidingIndex, req.Attempt, decision)
	} else {
		pending, err = gate.Decide(decision)
	}
	if err != nil {
		if errors.Is(err, sim.ErrNoPendingReview) {
			middleware.ErrorResponse(w, http.StatusConflict, "No riding awaiting review")
			return
		}
		if errors.Is(err, sim.ErrStaleReview) {
			middleware.ErrorResponse(w, http.StatusConflict, "Riding "+pending.Riding+" is under review now")
			return
		}
		slog.Error("failed to submit review", "run_id", runID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit review")
		return
	}

	slog.Info("review submitted", "run_id", runID, "riding", pending.Riding, "attempt", pending.Attempt, "decision", decision)

	middleware.JSONResponse(w, http.StatusOK, models.ReviewResponse{
		Decision: decision.String(),
		Message:  "Decision recorded for " + pending.Riding,
	})
}
