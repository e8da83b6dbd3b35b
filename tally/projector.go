// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import "sort"

// SortedOrder returns candidate indices ordered by votes descending.
// Equal counts keep their input order.
func SortedOrder(votes []float64) []int {
	order := make([]int, len(votes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return votes[order[a]] > votes[order[b]]
	})
	return order
}

// SortedVotes applies order to votes.
func SortedVotes(votes []float64, order []int) []float64 {
	sorted := make([]float64, len(order))
	for rank, idx := range order {
		sorted[rank] = votes[idx]
	}
	return sorted
}

// IsDecided reports whether the current leader can no longer be caught
// with remainingVotes still to count. Ties are never decided.
func IsDecided(currentVotes []float64, remainingVotes float64) bool {
	if len(currentVotes) == 0 {
		return false
	}

	order := SortedOrder(currentVotes)
	leader := currentVotes[order[0]]
	if len(currentVotes) == 1 {
		return leader > 0
	}

	margin := leader - currentVotes[order[1]]
	if margin <= 0 {
		return false
	}
	return margin > remainingVotes
}

// LeadMargin is the margin of the candidate at rank over the one at rank+1.
// It is 0 for the last displayed position or with fewer than two candidates.
func LeadMargin(sortedVotes []float64, rank, totalCandidates int) float64 {
	if totalCandidates < 2 || rank < 0 || rank >= totalCandidates-1 || rank+1 >= len(sortedVotes) {
		return 0
	}
	return sortedVotes[rank] - sortedVotes[rank+1]
}

// LeadMargins returns LeadMargin for every rank.
func LeadMargins(sortedVotes []float64) []float64 {
	margins := make([]float64, len(sortedVotes))
	for rank := range sortedVotes {
		margins[rank] = LeadMargin(sortedVotes, rank, len(sortedVotes))
	}
	return margins
}

// Leader returns the index of the candidate in first place, or -1 when
// nobody has a vote yet.
func Leader(votes []float64) int {
	if len(votes) == 0 {
		return -1
	}
	order := SortedOrder(votes)
	if votes[order[0]] <= 0 {
		return -1
	}
	return order[0]
}
