// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/election-night/models"
	"github.com/danielhkuo/election-night/tally"
)

// State is the driver's position in the riding state machine.
type State int

const (
	StateIdle State = iota
	StateRidingInProgress
	StateAccepted
	StateRolledBack
	StateSkipped
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRidingInProgress:
		return "riding_in_progress"
	case StateAccepted:
		return "accepted"
	case StateRolledBack:
		return "rolled_back"
	case StateSkipped:
		return "skipped"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

var ErrReviewTimeout = errors.New("review timed out")

// ProcessingError is a recoverable failure while simulating one riding
// attempt. The tally is always back at the last accepted snapshot when one
// is reported.
type ProcessingError struct {
	Riding  string
	Attempt int
	Err     error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("riding %q attempt %d: %v", e.Riding, e.Attempt, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

type Config struct {
	RunID         string
	Seats         int
	TotalSteps    int
	SelectedSteps int
	// Byelection skips the seat projection; direct seats are still counted.
	Byelection    bool
	ClampOverhang bool
	// ReviewTimeout bounds each review decision; 0 waits forever.
	ReviewTimeout time.Duration
	// MaxAttempts caps attempts per riding; 0 is unlimited.
	MaxAttempts int
}

// Deps are the driver's optional collaborators. A nil Gate auto-accepts
// every riding.
type Deps struct {
	Renderer Renderer
	Colorer  MapColorer
	Recorder Recorder
	Gate     ReviewGate
	Logger   *slog.Logger
}

type Summary struct {
	Outcomes       []models.RidingOutcome
	Standings      []models.Party
	SeatsProcessed int
}

// Driver runs ridings one at a time against a single RunningTally. It is
// the only owner of the tally and its snapshots; Run must not be called
// concurrently.
type Driver struct {
	cfg    Config
	deps   Deps
	logger *slog.Logger
	rng    tally.Rand
	gen    *tally.Generator

	tally          *tally.RunningTally
	lastAccepted   tally.Snapshot
	seatsProcessed int
	state          State
}

type attemptResult struct {
	steps       []models.StepResult
	decidedStep int
}

func NewDriver(cfg Config, parties []models.Party, rng tally.Rand, deps Deps) (*Driver, error) {
	if cfg.TotalSteps < 2 {
		return nil, fmt.Errorf("%w: total steps must be at least 2, got %d", tally.ErrInvalidInput, cfg.TotalSteps)
	}
	if cfg.SelectedSteps < 2 {
		return nil, fmt.Errorf("%w: selected steps must be at least 2, got %d", tally.ErrInvalidInput, cfg.SelectedSteps)
	}
	if cfg.Seats < 0 {
		return nil, fmt.Errorf("%w: negative seat count %d", tally.ErrInvalidInput, cfg.Seats)
	}

	t, err := tally.NewRunningTally(parties)
	if err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Driver{
		cfg:          cfg,
		deps:         deps,
		logger:       logger.With("run_id", cfg.RunID),
		rng:          rng,
		gen:          tally.NewGenerator(rng),
		tally:        t,
		lastAccepted: t.Capture(),
		state:        StateIdle,
	}, nil
}

func (d *Driver) State() State {
	return d.state
}

func (d *Driver) SeatsProcessed() int {
	return d.seatsProcessed
}

// Standings returns a copy of every party's current accumulators.
func (d *Driver) Standings() []models.Party {
	return d.tally.Parties()
}

// LastAccepted is the snapshot every rollback returns to.
func (d *Driver) LastAccepted() tally.Snapshot {
	return d.lastAccepted
}

// Validate checks ridings against the driver's parties and seat count
// without touching the tally.
func (d *Driver) Validate(ridings []models.Riding) error {
	for _, r := range ridings {
		if err := tally.ValidateRiding(r, d.tally); err != nil {
			return err
		}
	}
	if d.cfg.Byelection {
		return nil
	}
	if d.seatsProcessed+len(ridings) > d.cfg.Seats {
		return fmt.Errorf("%w: %d ridings for %d seats", tally.ErrInvalidInput, len(ridings), d.cfg.Seats)
	}
	// List seats need at least one party that is not an independent.
	if d.cfg.Seats > 0 && !d.hasProportionalPool() {
		return fmt.Errorf("%w: %d seats to allocate but only independents stand", tally.ErrInvalidInput, d.cfg.Seats)
	}
	return nil
}

func (d *Driver) hasProportionalPool() bool {
	for _, p := range d.tally.Parties() {
		if !p.IsIndependent() {
			return true
		}
	}
	return false
}

// Run processes ridings in order. Invalid input is rejected before any
// riding starts. On a fatal error or cancellation the tally is restored to
// the last accepted snapshot and the outcomes so far are returned.
func (d *Driver) Run(ctx context.Context, ridings []models.Riding) (Summary, error) {
	if err := d.Validate(ridings); err != nil {
		return Summary{}, err
	}

	d.logger.Info("run started", "ridings", len(ridings), "seats", d.cfg.Seats, "steps", d.cfg.TotalSteps)

	var outcomes []models.RidingOutcome
	for i, riding := range ridings {
		outcome, err := d.runRiding(ctx, i, riding)
		if err != nil {
			if rerr := d.rollback(ctx, i); rerr != nil {
				err = errors.Join(err, rerr)
			}
			d.state = StateIdle
			d.logger.Error("run stopped", "riding", riding.Name, "error", err)
			return d.summary(outcomes), err
		}
		outcomes = append(outcomes, outcome)
	}

	d.state = StateDone
	d.logger.Info("run finished", "ridings", len(outcomes), "seats_processed", d.seatsProcessed)
	return d.summary(outcomes), nil
}

func (d *Driver) summary(outcomes []models.RidingOutcome) Summary {
	return Summary{
		Outcomes:       outcomes,
		Standings:      d.tally.Parties(),
		SeatsProcessed: d.seatsProcessed,
	}
}

func (d *Driver) runRiding(ctx context.Context, index int, riding models.Riding) (models.RidingOutcome, error) {
	if d.tally.IsFinalized(ridingKey(index)) {
		return models.RidingOutcome{}, fmt.Errorf("%w: %s", tally.ErrDoubleFinalization, riding.Name)
	}

	for attempt := 1; ; attempt++ {
		if d.cfg.MaxAttempts > 0 && attempt > d.cfg.MaxAttempts {
			d.logger.Warn("riding attempts exhausted", "riding", riding.Name, "attempts", d.cfg.MaxAttempts)
			return d.skip(ctx, index, riding, d.cfg.MaxAttempts, fmt.Errorf("gave up after %d attempts", d.cfg.MaxAttempts)), nil
		}

		d.state = StateRidingInProgress
		d.logger.Debug("riding started", "riding", riding.Name, "index", index, "attempt", attempt)

		res, err := d.simulate(ctx, index, riding, attempt)
		if err == nil {
			var decision Decision
			decision, err = d.review(ctx, Review{
				RunID:       d.cfg.RunID,
				RidingIndex: index,
				Riding:      riding,
				Attempt:     attempt,
				Steps:       res.steps,
			})
			if err != nil {
				if rerr := d.rollback(ctx, index); rerr != nil {
					return models.RidingOutcome{}, rerr
				}
				if ctx.Err() != nil {
					return models.RidingOutcome{}, ctx.Err()
				}
				if errors.Is(err, context.DeadlineExceeded) {
					err = ErrReviewTimeout
				}
				d.logger.Warn("review failed, skipping riding", "riding", riding.Name, "error", err)
				return d.skip(ctx, index, riding, attempt, err), nil
			}

			if decision == DecisionReroll {
				if err := d.rollback(ctx, index); err != nil {
					return models.RidingOutcome{}, err
				}
				d.state = StateRolledBack
				ridingsTotal.WithLabelValues("rerolled").Inc()
				d.logger.Info("riding rerolled", "riding", riding.Name, "attempt", attempt)
				continue
			}

			var outcome models.RidingOutcome
			outcome, err = d.accept(ctx, index, riding, attempt, res)
			if err == nil {
				return outcome, nil
			}
		}

		// Every failure below starts from the last accepted snapshot.
		if rerr := d.rollback(ctx, index); rerr != nil {
			return models.RidingOutcome{}, rerr
		}
		if ctx.Err() != nil {
			return models.RidingOutcome{}, ctx.Err()
		}
		if errors.Is(err, tally.ErrInvalidInput) || errors.Is(err, tally.ErrDoubleFinalization) {
			return models.RidingOutcome{}, err
		}

		perr := &ProcessingError{Riding: riding.Name, Attempt: attempt, Err: err}
		ridingsTotal.WithLabelValues("failed").Inc()
		d.logger.Error("riding processing failed", "riding", riding.Name, "attempt", attempt, "error", err)

		retry, rerr := d.askRetry(ctx, index, riding, attempt, perr)
		if rerr != nil && ctx.Err() != nil {
			return models.RidingOutcome{}, ctx.Err()
		}
		if retry {
			d.state = StateRolledBack
			continue
		}
		return d.skip(ctx, index, riding, attempt, perr), nil
	}
}

func (d *Driver) simulate(ctx context.Context, index int, riding models.Riding, attempt int) (attemptResult, error) {
	res := attemptResult{decidedStep: -1}

	matrix, err := d.gen.Matrix(riding.FinalResults, d.cfg.TotalSteps)
	if err != nil {
		return res, fmt.Errorf("generate progression: %w", err)
	}
	selected, err := tally.SelectSteps(d.cfg.TotalSteps, d.cfg.SelectedSteps, d.rng)
	if err != nil {
		return res, fmt.Errorf("select steps: %w", err)
	}

	finalTotal := tally.Sum(riding.FinalResults)
	for step, votes := range matrix {
		if tally.IsDecided(votes, remainingVotes(finalTotal, votes)) {
			res.decidedStep = step
			break
		}
	}

	for _, step := range selected {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		start := time.Now()
		result, err := d.step(index, riding, attempt, step, matrix[step], finalTotal)
		if err != nil {
			return res, fmt.Errorf("step %d: %w", step, err)
		}
		if d.deps.Renderer != nil {
			if err := d.deps.Renderer.RenderStep(ctx, result); err != nil {
				return res, fmt.Errorf("render step %d: %w", step, err)
			}
		}
		stepRenderDuration.Observe(time.Since(start).Seconds())

		res.steps = append(res.steps, result)
	}

	return res, nil
}

func (d *Driver) step(index int, riding models.Riding, attempt, step int, votes []float64, finalTotal float64) (models.StepResult, error) {
	if err := d.tally.UpdateProvisional(tally.VotesByParty(riding.PartyNames, votes)); err != nil {
		return models.StepResult{}, err
	}

	projection, err := d.project(riding, votes)
	if err != nil {
		return models.StepResult{}, err
	}

	remaining := remainingVotes(finalTotal, votes)
	order := tally.SortedOrder(votes)

	return models.StepResult{
		RunID:            d.cfg.RunID,
		RidingIndex:      index,
		Riding:           riding.Name,
		Attempt:          attempt,
		Step:             step,
		TotalSteps:       d.cfg.TotalSteps,
		CandidateNames:   riding.CandidateNames,
		PartyNames:       riding.PartyNames,
		VotesByCandidate: append([]float64(nil), votes...),
		SortedOrder:      order,
		LeadMargins:      tally.LeadMargins(tally.SortedVotes(votes, order)),
		RemainingVotes:   remaining,
		IsWinnerDecided:  tally.IsDecided(votes, remaining),
		SeatProjection:   projection,
	}, nil
}

// project computes the live seat picture from the provisional tally. The
// party leading the open riding is shown holding its seat already.
func (d *Driver) project(riding models.Riding, votes []float64) ([]models.SeatProjection, error) {
	if d.cfg.Byelection {
		return nil, nil
	}

	parties := d.tally.Parties()
	var national float64
	for _, p := range parties {
		national += p.ProvisionalVotes
	}
	if national <= 0 {
		return nil, nil
	}

	alloc, err := tally.Allocate(parties, d.cfg.Seats, d.seatsProcessed, tally.AllocateOptions{
		ClampOverhang: d.cfg.ClampOverhang,
		Logger:        d.logger,
	})
	if err != nil {
		return nil, err
	}

	leadingParty := ""
	if leader := tally.Leader(votes); leader >= 0 {
		leadingParty = riding.PartyNames[leader]
	}

	projection := make([]models.SeatProjection, 0, len(parties))
	for _, p := range parties {
		direct := p.DirectSeats
		if p.Name == leadingParty {
			direct++
		}
		list := 0
		if !p.IsIndependent() {
			list = alloc.Owed[p.Name]
		}
		projection = append(projection, models.SeatProjection{
			Party:       p.Name,
			ShortName:   p.ShortName,
			DirectSeats: direct,
			ListSeats:   list,
			TotalSeats:  direct + list,
			Votes:       p.ProvisionalVotes,
			VoteShare:   p.ProvisionalVotes / national,
		})
	}
	sort.SliceStable(projection, func(i, j int) bool {
		if projection[i].TotalSeats != projection[j].TotalSeats {
			return projection[i].TotalSeats > projection[j].TotalSeats
		}
		return projection[i].Votes > projection[j].Votes
	})

	return projection, nil
}

func (d *Driver) review(ctx context.Context, review Review) (Decision, error) {
	if d.deps.Gate == nil {
		return DecisionAccept, nil
	}

	if d.cfg.ReviewTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.ReviewTimeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		reviewWaitDuration.Observe(time.Since(start).Seconds())
	}()
	return d.deps.Gate.Review(ctx, review)
}

// askRetry offers a failed attempt to the gate. Without a gate the riding
// is skipped.
func (d *Driver) askRetry(ctx context.Context, index int, riding models.Riding, attempt int, cause error) (bool, error) {
	if d.deps.Gate == nil {
		return false, nil
	}

	decision, err := d.review(ctx, Review{
		RunID:       d.cfg.RunID,
		RidingIndex: index,
		Riding:      riding,
		Attempt:     attempt,
		Err:         cause,
	})
	if err != nil {
		return false, err
	}
	return decision == DecisionReroll, nil
}

func (d *Driver) accept(ctx context.Context, index int, riding models.Riding, attempt int, res attemptResult) (models.RidingOutcome, error) {
	outcome := d.outcome(index, riding, attempt, models.RidingAccepted)
	outcome.DecidedStep = res.decidedStep

	// The colorer sees final data before it is committed, so a failure
	// there still rolls back cleanly.
	if d.deps.Colorer != nil {
		if err := d.deps.Colorer.ColorRiding(ctx, outcome); err != nil {
			return models.RidingOutcome{}, fmt.Errorf("color riding: %w", err)
		}
	}

	final := tally.VotesByParty(riding.PartyNames, riding.FinalResults)
	if err := d.tally.Finalize(ridingKey(index), final, outcome.WinnerParty); err != nil {
		return models.RidingOutcome{}, err
	}
	processed := d.seatsProcessed + 1

	if !d.cfg.Byelection {
		alloc, err := tally.Allocate(d.tally.Parties(), d.cfg.Seats, processed, tally.AllocateOptions{
			ClampOverhang: d.cfg.ClampOverhang,
			Logger:        d.logger,
		})
		if err != nil {
			return models.RidingOutcome{}, fmt.Errorf("allocate list seats: %w", err)
		}
		d.tally.SetListSeats(alloc.Owed)
	}

	d.seatsProcessed = processed
	d.lastAccepted = d.tally.Capture()
	d.state = StateAccepted
	ridingsTotal.WithLabelValues("accepted").Inc()

	d.logger.Info("riding accepted",
		"riding", riding.Name,
		"winner", outcome.WinnerCandidate,
		"party", outcome.WinnerParty,
		"votes", humanize.Comma(int64(tally.Sum(riding.FinalResults))),
		"attempts", attempt,
		"decided_step", outcome.DecidedStep,
	)

	if d.deps.Recorder != nil {
		if err := d.deps.Recorder.RecordOutcome(ctx, outcome); err != nil {
			d.logger.Error("failed to record riding outcome", "riding", riding.Name, "error", err)
		}
		if err := d.deps.Recorder.RecordStandings(ctx, d.cfg.RunID, d.tally.Parties()); err != nil {
			d.logger.Error("failed to record standings", "riding", riding.Name, "error", err)
		}
	}

	return outcome, nil
}

func (d *Driver) skip(ctx context.Context, index int, riding models.Riding, attempts int, cause error) models.RidingOutcome {
	d.state = StateSkipped
	ridingsTotal.WithLabelValues("skipped").Inc()

	outcome := d.outcome(index, riding, attempts, models.RidingSkipped)
	outcome.WinnerCandidate = ""
	outcome.WinnerParty = ""
	outcome.Shares = nil
	outcome.FillColor = ""
	outcome.Error = cause.Error()

	d.logger.Warn("riding skipped", "riding", riding.Name, "attempts", attempts, "error", cause)

	if d.deps.Recorder != nil {
		if err := d.deps.Recorder.RecordOutcome(ctx, outcome); err != nil {
			d.logger.Error("failed to record riding outcome", "riding", riding.Name, "error", err)
		}
	}
	return outcome
}

func (d *Driver) outcome(index int, riding models.Riding, attempts int, status string) models.RidingOutcome {
	shortNames := make([]string, len(riding.PartyNames))
	colors := make([]string, len(riding.PartyNames))
	for i, name := range riding.PartyNames {
		p, _ := d.tally.Party(name)
		shortNames[i] = p.ShortName
		colors[i] = p.Color
	}

	outcome := models.RidingOutcome{
		RunID:          d.cfg.RunID,
		RidingIndex:    index,
		Riding:         riding.Name,
		Status:         status,
		Attempts:       attempts,
		CandidateNames: riding.CandidateNames,
		PartyNames:     riding.PartyNames,
		ShortNames:     shortNames,
		FinalVotes:     append([]float64(nil), riding.FinalResults...),
		DecidedStep:    -1,
		FillColor:      tally.FillColor(riding.FinalResults, colors),
	}

	// A riding with no votes at all awards no seat.
	if winner := tally.Leader(riding.FinalResults); winner >= 0 {
		outcome.WinnerCandidate = riding.CandidateNames[winner]
		outcome.WinnerParty = riding.PartyNames[winner]
	}

	for i, share := range tally.VoteShares(riding.FinalResults) {
		outcome.Shares = append(outcome.Shares, models.CandidateShare{
			Candidate: riding.CandidateNames[i],
			ShortName: shortNames[i],
			Votes:     riding.FinalResults[i],
			Share:     share,
		})
	}
	return outcome
}

// rollback returns the tally to the last accepted snapshot and tells the
// renderer to forget the riding's attempt.
func (d *Driver) rollback(ctx context.Context, index int) error {
	if err := d.tally.Restore(d.lastAccepted); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	if d.deps.Renderer != nil {
		if err := d.deps.Renderer.DiscardRiding(context.WithoutCancel(ctx), d.cfg.RunID, index); err != nil {
			d.logger.Warn("failed to discard rendered steps", "index", index, "error", err)
		}
	}
	return nil
}

func ridingKey(index int) string {
	return fmt.Sprintf("riding-%d", index)
}

func remainingVotes(finalTotal float64, votes []float64) float64 {
	return max(finalTotal-tally.Sum(votes), 0)
}
