// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDoubleFinalization = errors.New("riding already finalized")
	ErrSnapshotMismatch   = errors.New("snapshot does not match tally parties")
)

// Rand is the randomness used for vote progressions and step selection.
// *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Generator synthesizes vote count progressions.
type Generator struct {
	rng Rand
}

func NewGenerator(rng Rand) *Generator {
	return &Generator{rng: rng}
}

// Generate returns numSteps counts climbing from 0 to finalVotes.
// Intermediate counts are whole votes and never decrease.
func (g *Generator) Generate(finalVotes float64, numSteps int) ([]float64, error) {
	if numSteps < 2 {
		return nil, fmt.Errorf("%w: need at least 2 steps, got %d", ErrInvalidInput, numSteps)
	}
	if finalVotes < 0 || math.IsNaN(finalVotes) || math.IsInf(finalVotes, 0) {
		return nil, fmt.Errorf("%w: final votes must be a non-negative number, got %v", ErrInvalidInput, finalVotes)
	}

	counts := make([]float64, numSteps)
	counts[numSteps-1] = finalVotes
	if finalVotes == 0 {
		return counts, nil
	}

	// Random positive increments, scaled so the last one lands on finalVotes.
	increments := make([]float64, numSteps-1)
	var sum float64
	for i := range increments {
		increments[i] = 0.25 + g.rng.Float64()
		sum += increments[i]
	}

	var reached float64
	for i := 1; i < numSteps-1; i++ {
		reached += increments[i-1]
		v := math.Floor(finalVotes * reached / sum)
		if v > finalVotes {
			v = finalVotes
		}
		if v < counts[i-1] {
			v = counts[i-1]
		}
		counts[i] = v
	}

	return counts, nil
}

// Matrix builds the numSteps x len(finalResults) progression for a riding.
// Row 0 is forced to zero and the last row to the exact final results.
func (g *Generator) Matrix(finalResults []float64, numSteps int) ([][]float64, error) {
	if len(finalResults) == 0 {
		return nil, fmt.Errorf("%w: riding has no candidates", ErrInvalidInput)
	}

	matrix := make([][]float64, numSteps)
	for step := range matrix {
		matrix[step] = make([]float64, len(finalResults))
	}

	for j, final := range finalResults {
		counts, err := g.Generate(final, numSteps)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", j, err)
		}
		for step, v := range counts {
			matrix[step][j] = v
		}
	}

	for j := range finalResults {
		matrix[0][j] = 0
	}
	copy(matrix[numSteps-1], finalResults)

	return matrix, nil
}
