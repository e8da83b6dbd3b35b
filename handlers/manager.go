// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/election-night/auth"
	"github.com/danielhkuo/election-night/cliparse"
	"github.com/danielhkuo/election-night/db"
	"github.com/danielhkuo/election-night/models"
	"github.com/danielhkuo/election-night/sim"
	"github.com/danielhkuo/election-night/tally"
)

var ErrRunNotActive = errors.New("run is not active")

// RunManager owns every in-flight simulation. Each run gets its own driver
// goroutine; handlers only reach it through the run's review gate.
type RunManager struct {
	store *db.Store
	cfg   cliparse.Config

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.Mutex
	runs map[string]*activeRun
}

type activeRun struct {
	gate   *sim.ChannelGate
	cancel context.CancelFunc
}

// preparedRun is a validated run ready to start.
type preparedRun struct {
	run     models.Run
	input   models.ElectionInput
	driver  *sim.Driver
	gate    *sim.ChannelGate
	ridings []models.Riding
}

func NewRunManager(store *db.Store, cfg cliparse.Config) *RunManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &RunManager{
		store:  store,
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
		runs:   make(map[string]*activeRun),
	}
}

// Start validates and persists a run, then simulates it in the background.
// Errors wrapping tally.ErrInvalidInput are the caller's fault.
func (m *RunManager) Start(ctx context.Context, req models.CreateRunRequest) (models.Run, error) {
	p, err := m.prepare(ctx, req)
	if err != nil {
		return models.Run{}, err
	}

	runCtx, cancel := context.WithCancel(m.ctx)
	m.mu.Lock()
	m.runs[p.run.ID] = &activeRun{gate: p.gate, cancel: cancel}
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer cancel()
		defer func() {
			m.mu.Lock()
			delete(m.runs, p.run.ID)
			m.mu.Unlock()
		}()

		m.execute(runCtx, p)
	}()

	return p.run, nil
}

// RunSync validates, persists and simulates a run on the calling goroutine.
func (m *RunManager) RunSync(ctx context.Context, req models.CreateRunRequest) (models.Run, sim.Summary, error) {
	req.Interactive = false
	p, err := m.prepare(ctx, req)
	if err != nil {
		return models.Run{}, sim.Summary{}, err
	}

	summary, err := m.execute(ctx, p)
	run, gerr := m.store.GetRun(context.WithoutCancel(ctx), p.run.ID)
	if gerr != nil {
		run = p.run
	}
	return run, summary, err
}

// Gate returns the review gate of an active interactive run.
func (m *RunManager) Gate(runID string) (*sim.ChannelGate, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.runs[runID]
	if !ok || r.gate == nil {
		return nil, false
	}
	return r.gate, true
}

// Cancel stops an active run. The driver rolls back the open riding.
func (m *RunManager) Cancel(runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.runs[runID]
	if !ok {
		return ErrRunNotActive
	}
	r.cancel()
	return nil
}

// Active reports how many runs are still simulating.
func (m *RunManager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.runs)
}

// Wait blocks until every background run has finished.
func (m *RunManager) Wait() {
	m.wg.Wait()
}

// Shutdown cancels all runs and waits for them, or for ctx.
func (m *RunManager) Shutdown(ctx context.Context) error {
	m.cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *RunManager) prepare(ctx context.Context, req models.CreateRunRequest) (*preparedRun, error) {
	m.applyDefaults(&req)

	if len(req.Parties) == 0 {
		return nil, fmt.Errorf("%w: parties are required", tally.ErrInvalidInput)
	}
	if len(req.Ridings) == 0 {
		return nil, fmt.Errorf("%w: ridings are required", tally.ErrInvalidInput)
	}
	if req.Seats <= 0 {
		return nil, fmt.Errorf("%w: seats must be positive", tally.ErrInvalidInput)
	}

	ridings := make([]models.Riding, len(req.Ridings))
	for i, r := range req.Ridings {
		normalized, truncated := tally.NormalizeRiding(r)
		if truncated {
			slog.Warn("riding truncated to matching lengths", "riding", r.Name, "candidates", len(normalized.FinalResults))
		}
		ridings[i] = normalized
	}

	rng, seed, err := sim.NewRand(req.Seed)
	if err != nil {
		return nil, err
	}

	runID := auth.NewRunID()

	deps := sim.Deps{
		Renderer: m.store,
		Colorer:  m.store,
		Recorder: m.store,
		Logger:   slog.Default(),
	}
	var gate *sim.ChannelGate
	if req.Interactive {
		gate = sim.NewChannelGate()
		deps.Gate = gate
	}

	driver, err := sim.NewDriver(sim.Config{
		RunID:         runID,
		Seats:         req.Seats,
		TotalSteps:    req.TotalSteps,
		SelectedSteps: req.SelectedSteps,
		Byelection:    req.Byelection,
		ClampOverhang: req.ClampOverhang,
		ReviewTimeout: m.cfg.ReviewTimeout,
		MaxAttempts:   m.cfg.MaxAttempts,
	}, req.Parties, rng, deps)
	if err != nil {
		return nil, err
	}
	if err := driver.Validate(ridings); err != nil {
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = "Election night"
	}

	run := models.Run{
		ID:            runID,
		Name:          name,
		Status:        models.RunStatusRunning,
		Seats:         req.Seats,
		TotalSteps:    req.TotalSteps,
		SelectedSteps: req.SelectedSteps,
		RidingsTotal:  len(ridings),
		Interactive:   req.Interactive,
		Seed:          seed,
		CreatedAt:     time.Now().UTC(),
	}

	input := req.ElectionInput
	input.Ridings = ridings
	if err := m.store.CreateRun(ctx, run, input); err != nil {
		return nil, err
	}
	// Starting votes are visible before the first riding is accepted.
	if err := m.store.RecordStandings(ctx, runID, driver.Standings()); err != nil {
		return nil, err
	}

	slog.Info("run created",
		"run_id", runID,
		"ridings", len(ridings),
		"seats", req.Seats,
		"seed", seed,
		"interactive", req.Interactive,
	)

	return &preparedRun{run: run, input: input, driver: driver, gate: gate, ridings: ridings}, nil
}

func (m *RunManager) applyDefaults(req *models.CreateRunRequest) {
	if req.Seats == 0 {
		req.Seats = m.cfg.Seats
	}
	if req.TotalSteps == 0 {
		req.TotalSteps = m.cfg.TotalSteps
	}
	if req.SelectedSteps == 0 {
		req.SelectedSteps = m.cfg.SelectedSteps
	}
	if req.Seed == 0 {
		req.Seed = m.cfg.Seed
	}
	req.Byelection = req.Byelection || m.cfg.Byelection
	req.ClampOverhang = req.ClampOverhang || m.cfg.ClampOverhang
}

func (m *RunManager) execute(ctx context.Context, p *preparedRun) (sim.Summary, error) {
	start := time.Now()
	summary, err := p.driver.Run(ctx, p.ridings)

	status := models.RunStatusDone
	errMsg := ""
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		status = models.RunStatusCancelled
		errMsg = err.Error()
	default:
		status = models.RunStatusFailed
		errMsg = err.Error()
	}

	// The run context may be gone by now; the final status must still land.
	if ferr := m.store.FinishRun(context.WithoutCancel(ctx), p.run.ID, status, errMsg); ferr != nil {
		slog.Error("failed to finish run", "run_id", p.run.ID, "error", ferr)
	}

	var votes float64
	for _, party := range summary.Standings {
		votes += party.CumulativeVotes
	}
	slog.Info("run finished",
		"run_id", p.run.ID,
		"status", status,
		"ridings", len(summary.Outcomes),
		"seats_processed", summary.SeatsProcessed,
		"votes", humanize.Comma(int64(votes)),
		"took", time.Since(start).Round(time.Millisecond),
	)

	return summary, err
}
