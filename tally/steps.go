// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"fmt"
	"sort"
)

// SelectSteps picks which of totalSteps progression points get rendered.
// Interior steps are evenly spaced with a jitter of one step either way.
// The result is sorted, unique, starts at 0, ends at totalSteps-1 and holds
// at most selected entries.
func SelectSteps(totalSteps, selected int, rng Rand) ([]int, error) {
	if totalSteps < 2 {
		return nil, fmt.Errorf("%w: need at least 2 steps, got %d", ErrInvalidInput, totalSteps)
	}
	if selected < 2 {
		return nil, fmt.Errorf("%w: must select at least 2 steps, got %d", ErrInvalidInput, selected)
	}
	if selected > totalSteps {
		selected = totalSteps
	}

	last := totalSteps - 1
	steps := []int{0}

	if selected > 2 {
		stepSize := float64(last) / float64(selected-1)
		seen := make(map[int]bool)
		var middle []int
		for i := 1; i < selected-1; i++ {
			step := int(float64(i)*stepSize) + rng.Intn(3) - 1
			step = min(max(1, step), last-1)
			if step <= 0 || step >= last || seen[step] {
				continue
			}
			seen[step] = true
			middle = append(middle, step)
		}
		sort.Ints(middle)
		steps = append(steps, middle...)
	}

	return append(steps, last), nil
}
