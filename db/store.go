// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/election-night/models"
)

var ErrNotFound = errors.New("not found")

// DriverName maps a DATABASE_TYPE value to its database/sql driver.
func DriverName(dbType string) (string, error) {
	switch dbType {
	case "", "sqlite":
		return "sqlite", nil
	case "postgres", "postgresql":
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported database type %q (use sqlite or postgres)", dbType)
	}
}

// Open connects and pings the database.
func Open(dbType, url string) (*sql.DB, error) {
	driver, err := DriverName(dbType)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	// SQLite allows a single writer; in-memory databases are per connection.
	if driver == "sqlite" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return conn, nil
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Runs

func (s *Store) CreateRun(ctx context.Context, run models.Run, input models.ElectionInput) error {
	inputJSON, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("encode run input: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO run (id, name, status, seats, total_steps, selected_steps,
		                 ridings_total, interactive, seed, input, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, run.ID, run.Name, run.Status, run.Seats, run.TotalSteps, run.SelectedSteps,
		run.RidingsTotal, run.Interactive, run.Seed, string(inputJSON), run.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun moves a run out of running. errMsg is empty for a clean finish.
func (s *Store) FinishRun(ctx context.Context, runID, status, errMsg string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE run
		SET status = $1, error = $2, finished_at = $3
		WHERE id = $4
	`, status, errMsg, time.Now().UTC(), runID)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: run %s", ErrNotFound, runID)
	}
	return nil
}

func (s *Store) GetRun(ctx context.Context, runID string) (models.Run, error) {
	var run models.Run
	var finishedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, status, seats, total_steps, selected_steps,
		       ridings_total, interactive, seed, error, created_at, finished_at
		FROM run
		WHERE id = $1
	`, runID).Scan(
		&run.ID, &run.Name, &run.Status, &run.Seats, &run.TotalSteps,
		&run.SelectedSteps, &run.RidingsTotal, &run.Interactive, &run.Seed,
		&run.Error, &run.CreatedAt, &finishedAt,
	)
	if err == sql.ErrNoRows {
		return models.Run{}, fmt.Errorf("%w: run %s", ErrNotFound, runID)
	}
	if err != nil {
		return models.Run{}, fmt.Errorf("query run: %w", err)
	}
	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}
	return run, nil
}

// GetRunInput returns the election input a run was created from.
func (s *Store) GetRunInput(ctx context.Context, runID string) (models.ElectionInput, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT input FROM run WHERE id = $1`, runID).Scan(&raw)
	if err == sql.ErrNoRows {
		return models.ElectionInput{}, fmt.Errorf("%w: run %s", ErrNotFound, runID)
	}
	if err != nil {
		return models.ElectionInput{}, fmt.Errorf("query run input: %w", err)
	}

	var input models.ElectionInput
	if err := json.Unmarshal([]byte(raw), &input); err != nil {
		return models.ElectionInput{}, fmt.Errorf("decode run input: %w", err)
	}
	return input, nil
}

// Steps

// RenderStep stores a step result.
func (s *Store) RenderStep(ctx context.Context, step models.StepResult) error {
	payload, err := json.Marshal(step)
	if err != nil {
		return fmt.Errorf("encode step: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO step_result (run_id, riding_index, attempt, step, payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (run_id, riding_index, attempt, step)
		DO UPDATE SET payload = excluded.payload
	`, step.RunID, step.RidingIndex, step.Attempt, step.Step, string(payload))
	if err != nil {
		return fmt.Errorf("insert step: %w", err)
	}
	return nil
}

// DiscardRiding drops the rendered steps and map color of a rolled back
// riding.
func (s *Store) DiscardRiding(ctx context.Context, runID string, ridingIndex int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM step_result WHERE run_id = $1 AND riding_index = $2
	`, runID, ridingIndex); err != nil {
		return fmt.Errorf("delete steps: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM riding_color WHERE run_id = $1 AND riding_index = $2
	`, runID, ridingIndex); err != nil {
		return fmt.Errorf("delete riding color: %w", err)
	}

	return tx.Commit()
}

func (s *Store) ListSteps(ctx context.Context, runID string, ridingIndex int) ([]models.StepResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload
		FROM step_result
		WHERE run_id = $1 AND riding_index = $2
		ORDER BY attempt, step
	`, runID, ridingIndex)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	steps := []models.StepResult{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		var step models.StepResult
		if err := json.Unmarshal([]byte(raw), &step); err != nil {
			return nil, fmt.Errorf("decode step: %w", err)
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

// Map

func (s *Store) ColorRiding(ctx context.Context, outcome models.RidingOutcome) error {
	shares, err := json.Marshal(outcome.Shares)
	if err != nil {
		return fmt.Errorf("encode shares: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO riding_color (run_id, riding_index, riding, fill_color, shares)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (run_id, riding_index)
		DO UPDATE SET riding = excluded.riding, fill_color = excluded.fill_color, shares = excluded.shares
	`, outcome.RunID, outcome.RidingIndex, outcome.Riding, outcome.FillColor, string(shares))
	if err != nil {
		return fmt.Errorf("insert riding color: %w", err)
	}
	return nil
}

func (s *Store) ListMap(ctx context.Context, runID string) ([]models.MapEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT riding_index, riding, fill_color, shares
		FROM riding_color
		WHERE run_id = $1
		ORDER BY riding_index
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query map: %w", err)
	}
	defer rows.Close()

	entries := []models.MapEntry{}
	for rows.Next() {
		var e models.MapEntry
		var shares string
		if err := rows.Scan(&e.RidingIndex, &e.Riding, &e.FillColor, &shares); err != nil {
			return nil, fmt.Errorf("scan map entry: %w", err)
		}
		if err := json.Unmarshal([]byte(shares), &e.Shares); err != nil {
			return nil, fmt.Errorf("decode shares: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Outcomes

func (s *Store) RecordOutcome(ctx context.Context, outcome models.RidingOutcome) error {
	payload, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO riding_result (run_id, riding_index, riding, status, winner_party, payload, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (run_id, riding_index)
		DO UPDATE SET status = excluded.status, winner_party = excluded.winner_party,
		              payload = excluded.payload, recorded_at = excluded.recorded_at
	`, outcome.RunID, outcome.RidingIndex, outcome.Riding, outcome.Status,
		outcome.WinnerParty, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	return nil
}

func (s *Store) ListOutcomes(ctx context.Context, runID string) ([]models.RidingOutcome, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload
		FROM riding_result
		WHERE run_id = $1
		ORDER BY riding_index
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := []models.RidingOutcome{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		var o models.RidingOutcome
		if err := json.Unmarshal([]byte(raw), &o); err != nil {
			return nil, fmt.Errorf("decode outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

func (s *Store) CountOutcomes(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM riding_result WHERE run_id = $1
	`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count outcomes: %w", err)
	}
	return n, nil
}

// Standings

// RecordStandings replaces the committed standings of a run.
func (s *Store) RecordStandings(ctx context.Context, runID string, parties []models.Party) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for i, p := range parties {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO party_standing (run_id, party, position, short_name, color, starting_votes,
			                            direct_seats, list_seats, cumulative_votes, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (run_id, party)
			DO UPDATE SET position = excluded.position, direct_seats = excluded.direct_seats,
			              list_seats = excluded.list_seats, cumulative_votes = excluded.cumulative_votes,
			              updated_at = excluded.updated_at
		`, runID, p.Name, i, p.ShortName, p.Color, p.StartingVotes,
			p.DirectSeats, p.ListSeats, p.CumulativeVotes, now)
		if err != nil {
			return fmt.Errorf("upsert standing for %s: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit standings: %w", err)
	}
	return nil
}

// GetStandings returns committed standings in party input order.
// Provisional votes equal cumulative votes for committed data.
func (s *Store) GetStandings(ctx context.Context, runID string) ([]models.Party, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT party, short_name, color, starting_votes, direct_seats, list_seats, cumulative_votes
		FROM party_standing
		WHERE run_id = $1
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query standings: %w", err)
	}
	defer rows.Close()

	parties := []models.Party{}
	for rows.Next() {
		var p models.Party
		if err := rows.Scan(&p.Name, &p.ShortName, &p.Color, &p.StartingVotes,
			&p.DirectSeats, &p.ListSeats, &p.CumulativeVotes); err != nil {
			return nil, fmt.Errorf("scan standing: %w", err)
		}
		p.ProvisionalVotes = p.CumulativeVotes
		parties = append(parties, p)
	}
	return parties, rows.Err()
}
