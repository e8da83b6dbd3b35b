// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"fmt"
	"math"

	"github.com/danielhkuo/election-night/models"
)

// RunningTally owns the national per-party accumulators of one run.
// It is not safe for concurrent use; the driver is its only owner.
type RunningTally struct {
	parties   []models.Party
	index     map[string]int
	finalized map[string]struct{}
}

// NewRunningTally starts every party at its starting votes with no seats.
func NewRunningTally(parties []models.Party) (*RunningTally, error) {
	t := &RunningTally{
		parties:   make([]models.Party, len(parties)),
		index:     make(map[string]int, len(parties)),
		finalized: make(map[string]struct{}),
	}

	for i, p := range parties {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: party %d has no name", ErrInvalidInput, i)
		}
		if _, dup := t.index[p.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate party %q", ErrInvalidInput, p.Name)
		}
		if err := checkVotes(p.StartingVotes); err != nil {
			return nil, fmt.Errorf("party %q starting votes: %w", p.Name, err)
		}
		if p.Color != "" {
			if _, err := LightenColor(p.Color, 0); err != nil {
				return nil, fmt.Errorf("party %q: %w", p.Name, err)
			}
		}

		t.parties[i] = models.Party{
			Name:             p.Name,
			ShortName:        p.ShortName,
			Color:            p.Color,
			StartingVotes:    p.StartingVotes,
			CumulativeVotes:  p.StartingVotes,
			ProvisionalVotes: p.StartingVotes,
		}
		t.index[p.Name] = i
	}

	return t, nil
}

// Parties returns a copy of every party in input order.
func (t *RunningTally) Parties() []models.Party {
	out := make([]models.Party, len(t.parties))
	copy(out, t.parties)
	return out
}

func (t *RunningTally) Party(name string) (models.Party, bool) {
	i, ok := t.index[name]
	if !ok {
		return models.Party{}, false
	}
	return t.parties[i], true
}

func (t *RunningTally) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// UpdateProvisional sets provisional = cumulative + stepVotesByParty for
// every party; parties missing from the map fall back to cumulative.
func (t *RunningTally) UpdateProvisional(stepVotesByParty map[string]float64) error {
	if err := t.checkVotesByParty(stepVotesByParty); err != nil {
		return err
	}

	for i := range t.parties {
		p := &t.parties[i]
		p.ProvisionalVotes = p.CumulativeVotes + stepVotesByParty[p.Name]
	}
	return nil
}

// ResetProvisional drops any open riding from the provisional totals.
func (t *RunningTally) ResetProvisional() {
	for i := range t.parties {
		t.parties[i].ProvisionalVotes = t.parties[i].CumulativeVotes
	}
}

// Finalize commits a riding's final votes and awards its direct seat to
// winnerParty (empty for no winner). A riding key can be finalized once;
// later calls return ErrDoubleFinalization and change nothing.
func (t *RunningTally) Finalize(ridingKey string, finalVotesByParty map[string]float64, winnerParty string) error {
	if _, done := t.finalized[ridingKey]; done {
		return fmt.Errorf("%w: %s", ErrDoubleFinalization, ridingKey)
	}
	if err := t.checkVotesByParty(finalVotesByParty); err != nil {
		return err
	}
	if winnerParty != "" && !t.Has(winnerParty) {
		return fmt.Errorf("%w: unknown winning party %q", ErrInvalidInput, winnerParty)
	}

	for i := range t.parties {
		p := &t.parties[i]
		p.CumulativeVotes += finalVotesByParty[p.Name]
		p.ProvisionalVotes = p.CumulativeVotes
		if p.Name == winnerParty {
			p.DirectSeats++
		}
	}
	t.finalized[ridingKey] = struct{}{}
	return nil
}

func (t *RunningTally) IsFinalized(ridingKey string) bool {
	_, ok := t.finalized[ridingKey]
	return ok
}

// SetListSeats records the list seats owed after the latest acceptance.
// Parties absent from owed get zero.
func (t *RunningTally) SetListSeats(owed map[string]int) {
	for i := range t.parties {
		t.parties[i].ListSeats = owed[t.parties[i].Name]
	}
}

func (t *RunningTally) checkVotesByParty(votes map[string]float64) error {
	for name, v := range votes {
		if !t.Has(name) {
			return fmt.Errorf("%w: unknown party %q", ErrInvalidInput, name)
		}
		if err := checkVotes(v); err != nil {
			return fmt.Errorf("party %q: %w", name, err)
		}
	}
	return nil
}

func checkVotes(v float64) error {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: votes must be a non-negative number, got %v", ErrInvalidInput, v)
	}
	return nil
}
