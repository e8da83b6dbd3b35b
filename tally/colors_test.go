// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"errors"
	"testing"
)

func TestLightenColor(t *testing.T) {
	tests := []struct {
		name   string
		color  string
		factor float64
		want   string
	}{
		{"unchanged", "#ff0000", 0, "#ff0000"},
		{"white", "#0000ff", 1, "#ffffff"},
		{"half", "#ff0000", 0.5, "#ff7f7f"},
		{"no hash", "00ff00", 0, "#00ff00"},
		{"factor clamped", "#000000", 2, "#ffffff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LightenColor(tt.color, tt.factor)
			if err != nil {
				t.Fatalf("LightenColor() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("LightenColor(%q, %v) = %q, want %q", tt.color, tt.factor, got, tt.want)
			}
		})
	}

	for _, bad := range []string{"red", "#fff", "#gg0000", "#-1-1-1", "#+f+f+f"} {
		if _, err := LightenColor(bad, 0.5); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput for %q, got %v", bad, err)
		}
	}
}

func TestVoteShares(t *testing.T) {
	shares := VoteShares([]float64{600, 400})
	if shares[0] != 0.6 || shares[1] != 0.4 {
		t.Errorf("VoteShares() = %v, want [0.6 0.4]", shares)
	}

	zero := VoteShares([]float64{0, 0})
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("Expected zero shares with no votes, got %v", zero)
	}
}

func TestFillColor(t *testing.T) {
	colors := []string{"#ff0000", "#0000ff"}

	if got := FillColor([]float64{1000, 0}, colors); got != "#ff0000" {
		t.Errorf("Expected full party color for a sweep, got %q", got)
	}
	if got := FillColor([]float64{0, 0}, colors); got != fallbackColor {
		t.Errorf("Expected fallback with no votes, got %q", got)
	}
	if got := FillColor([]float64{10, 20}, []string{"#ff0000", "blue"}); got != fallbackColor {
		t.Errorf("Expected fallback for a bad winner color, got %q", got)
	}

	narrow := FillColor([]float64{510, 490}, colors)
	wide := FillColor([]float64{900, 100}, colors)
	if narrow == wide {
		t.Errorf("Expected different fills for narrow and wide wins, both %q", narrow)
	}
}
