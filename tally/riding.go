// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"fmt"

	"github.com/danielhkuo/election-night/models"
)

// NormalizeRiding truncates the candidate, party and result slices to the
// shortest of the three. It reports whether anything was cut.
func NormalizeRiding(r models.Riding) (models.Riding, bool) {
	n := min(len(r.CandidateNames), len(r.PartyNames), len(r.FinalResults))
	truncated := n != len(r.CandidateNames) || n != len(r.PartyNames) || n != len(r.FinalResults)

	return models.Riding{
		Name:           r.Name,
		CandidateNames: append([]string(nil), r.CandidateNames[:n]...),
		PartyNames:     append([]string(nil), r.PartyNames[:n]...),
		FinalResults:   append([]float64(nil), r.FinalResults[:n]...),
	}, truncated
}

// ValidateRiding checks a riding against the parties known to t.
func ValidateRiding(r models.Riding, t *RunningTally) error {
	if len(r.CandidateNames) != len(r.PartyNames) || len(r.PartyNames) != len(r.FinalResults) {
		return fmt.Errorf("%w: riding %q has %d candidates, %d parties, %d results",
			ErrInvalidInput, r.Name, len(r.CandidateNames), len(r.PartyNames), len(r.FinalResults))
	}
	if len(r.FinalResults) == 0 {
		return fmt.Errorf("%w: riding %q has no candidates", ErrInvalidInput, r.Name)
	}
	for i, v := range r.FinalResults {
		if err := checkVotes(v); err != nil {
			return fmt.Errorf("riding %q candidate %d: %w", r.Name, i, err)
		}
	}
	for _, party := range r.PartyNames {
		if !t.Has(party) {
			return fmt.Errorf("%w: riding %q references unknown party %q", ErrInvalidInput, r.Name, party)
		}
	}
	return nil
}

// VotesByParty sums candidate votes per party. Two candidates of the same
// party in one riding both count toward it.
func VotesByParty(partyNames []string, votes []float64) map[string]float64 {
	byParty := make(map[string]float64, len(partyNames))
	for i, party := range partyNames {
		byParty[party] += votes[i]
	}
	return byParty
}

func Sum(votes []float64) float64 {
	var total float64
	for _, v := range votes {
		total += v
	}
	return total
}
