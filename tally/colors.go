// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"fmt"
	"strconv"
	"strings"
)

const fallbackColor = "#808080"

// maxLighten keeps even the narrowest win visibly tinted.
const maxLighten = 0.8

// VoteShares returns each candidate's share of the riding total.
func VoteShares(votes []float64) []float64 {
	shares := make([]float64, len(votes))
	total := Sum(votes)
	if total <= 0 {
		return shares
	}
	for i, v := range votes {
		shares[i] = v / total
	}
	return shares
}

// FillColor picks the map fill for a finalized riding: the winner's party
// color, lightened toward white the narrower the winning margin.
// colors is parallel to votes.
func FillColor(votes []float64, colors []string) string {
	winner := Leader(votes)
	if winner < 0 || winner >= len(colors) {
		return fallbackColor
	}

	shares := VoteShares(votes)
	order := SortedOrder(votes)
	margin := shares[order[0]]
	if len(order) > 1 {
		margin -= shares[order[1]]
	}

	lightened, err := LightenColor(colors[winner], maxLighten*(1-margin))
	if err != nil {
		return fallbackColor
	}
	return lightened
}

// LightenColor mixes a #rrggbb color with white. factor 0 keeps the color,
// 1 gives white.
func LightenColor(color string, factor float64) (string, error) {
	hex := strings.TrimPrefix(color, "#")
	if len(hex) != 6 {
		return "", fmt.Errorf("%w: color %q is not #rrggbb", ErrInvalidInput, color)
	}
	factor = min(max(factor, 0), 1)

	var rgb [3]int64
	for i := range rgb {
		c, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return "", fmt.Errorf("%w: color %q: %v", ErrInvalidInput, color, err)
		}
		rgb[i] = int64((1-factor)*float64(c) + factor*255)
	}
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2]), nil
}
