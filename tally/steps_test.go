// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"errors"
	"math/rand"
	"testing"
)

func TestSelectSteps(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		selected int
	}{
		{"two of two", 2, 2},
		{"ten of hundred", 100, 10},
		{"all steps", 12, 12},
		{"more selected than steps", 5, 9},
		{"three of three", 3, 3},
		{"dense", 20, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := int64(1); seed <= 25; seed++ {
				steps, err := SelectSteps(tt.total, tt.selected, rand.New(rand.NewSource(seed)))
				if err != nil {
					t.Fatalf("SelectSteps() error = %v", err)
				}
				if steps[0] != 0 {
					t.Errorf("Expected first step 0, got %d", steps[0])
				}
				if steps[len(steps)-1] != tt.total-1 {
					t.Errorf("Expected last step %d, got %d", tt.total-1, steps[len(steps)-1])
				}
				if len(steps) > min(tt.selected, tt.total) {
					t.Errorf("Expected at most %d steps, got %d", tt.selected, len(steps))
				}
				for i := 1; i < len(steps); i++ {
					if steps[i] <= steps[i-1] {
						t.Fatalf("Steps not strictly increasing: %v", steps)
					}
				}
			}
		})
	}
}

func TestSelectSteps_Errors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	if _, err := SelectSteps(1, 2, rng); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for one total step, got %v", err)
	}
	if _, err := SelectSteps(10, 1, rng); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for one selected step, got %v", err)
	}
}
