// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"fmt"
	"log/slog"

	"github.com/danielhkuo/election-night/models"
)

type AllocateOptions struct {
	// ClampOverhang reports owed seats below zero as zero.
	ClampOverhang bool
	Logger        *slog.Logger
}

// Allocation is the outcome of one divisor-method pass.
type Allocation struct {
	// Parties lists the proportional pool in input order.
	Parties        []string
	RemainingSeats int
	// Allocated is the proportional entitlement before direct seats are
	// subtracted; Owed is what remains on top of the direct seats.
	Allocated map[string]int
	Owed      map[string]int
}

// Allocate runs the D'Hondt divisor method over every party except
// independents and returns the list seats each party is owed on top of the
// direct seats it already holds. Votes are the provisional totals, so the
// result is a live projection while a riding is open.
//
// Equal quotients go to the party listed first.
func Allocate(parties []models.Party, totalSeatsToProcess, partiesProcessedSoFar int, opts AllocateOptions) (Allocation, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if totalSeatsToProcess < 0 {
		return Allocation{}, fmt.Errorf("%w: negative seat count %d", ErrInvalidInput, totalSeatsToProcess)
	}
	if partiesProcessedSoFar < 0 || partiesProcessedSoFar > totalSeatsToProcess {
		return Allocation{}, fmt.Errorf("%w: %d seats processed out of %d", ErrInvalidInput, partiesProcessedSoFar, totalSeatsToProcess)
	}

	var pool []models.Party
	independentDirectSeats := 0
	for _, p := range parties {
		if p.IsIndependent() {
			independentDirectSeats += p.DirectSeats
			continue
		}
		pool = append(pool, p)
	}

	remainingSeats := totalSeatsToProcess - independentDirectSeats
	if remainingSeats < 0 {
		return Allocation{}, fmt.Errorf("%w: independents hold %d seats of %d", ErrInvalidInput, independentDirectSeats, totalSeatsToProcess)
	}
	if remainingSeats > 0 && len(pool) == 0 {
		return Allocation{}, fmt.Errorf("%w: %d seats to allocate but no eligible parties", ErrInvalidInput, remainingSeats)
	}

	logger.Debug("starting MMP allocation",
		"seats", totalSeatsToProcess,
		"processed", partiesProcessedSoFar,
		"independent_seats", independentDirectSeats,
		"remaining", remainingSeats,
	)

	votes := make([]float64, len(pool))
	quotients := make([]float64, len(pool))
	allocated := make([]int, len(pool))
	for i, p := range pool {
		votes[i] = currentVotes(p)
		quotients[i] = votes[i]
	}

	for round := 0; round < remainingSeats; round++ {
		best := 0
		for i := 1; i < len(quotients); i++ {
			if quotients[i] > quotients[best] {
				best = i
			}
		}

		before := quotients[best]
		allocated[best]++
		quotients[best] = votes[best] / float64(allocated[best]+1)

		logger.Debug("MMP round",
			"round", round+1,
			"party", pool[best].Name,
			"quotient_before", before,
			"quotient_after", quotients[best],
			"seats", allocated[best],
		)
	}

	result := Allocation{
		Parties:        make([]string, len(pool)),
		RemainingSeats: remainingSeats,
		Allocated:      make(map[string]int, len(pool)),
		Owed:           make(map[string]int, len(pool)),
	}
	for i, p := range pool {
		owed := allocated[i] - p.DirectSeats
		if opts.ClampOverhang && owed < 0 {
			owed = 0
		}
		result.Parties[i] = p.Name
		result.Allocated[p.Name] = allocated[i]
		result.Owed[p.Name] = owed
	}

	return result, nil
}

// currentVotes is the provisional total, which never sits below the
// committed one.
func currentVotes(p models.Party) float64 {
	if p.ProvisionalVotes > p.CumulativeVotes {
		return p.ProvisionalVotes
	}
	return p.CumulativeVotes
}
