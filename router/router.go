// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/election-night/cliparse"
	"github.com/danielhkuo/election-night/db"
	"github.com/danielhkuo/election-night/handlers"
	"github.com/danielhkuo/election-night/middleware"
)

func NewRouter(store *db.Store, manager *handlers.RunManager, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	runHandler := handlers.NewRunHandler(store, manager, cfg)
	resultsHandler := handlers.NewResultsHandler(store, cfg)
	reviewHandler := handlers.NewReviewHandler(store, manager, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Run lifecycle
	mux.HandleFunc("POST /runs", middleware.WithLogging(runHandler.CreateRun))
	mux.HandleFunc("GET /runs/{id}", middleware.WithLogging(runHandler.GetRun))
	mux.HandleFunc("POST /runs/{id}/cancel", middleware.WithLogging(runHandler.CancelRun))

	// Operator review (requires X-Review-Key to decide)
	mux.HandleFunc("GET /runs/{id}/review", middleware.WithLogging(reviewHandler.GetReview))
	mux.HandleFunc("POST /runs/{id}/review", middleware.WithLogging(reviewHandler.SubmitReview))

	// Results (public)
	mux.HandleFunc("GET /runs/{id}/ridings", middleware.WithLogging(resultsHandler.ListRidings))
	mux.HandleFunc("GET /runs/{id}/ridings/{index}/steps", middleware.WithLogging(resultsHandler.ListSteps))
	mux.HandleFunc("GET /runs/{id}/lists", middleware.WithLogging(resultsHandler.GetLists))
	mux.HandleFunc("GET /runs/{id}/map", middleware.WithLogging(resultsHandler.GetMap))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("election-night API v1"))
	})

	return mux
}
