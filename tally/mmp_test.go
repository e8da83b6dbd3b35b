// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/danielhkuo/election-night/models"
)

func TestAllocate(t *testing.T) {
	tests := []struct {
		name          string
		parties       []models.Party
		seats         int
		clamp         bool
		wantAllocated map[string]int
		wantOwed      map[string]int
	}{
		{
			name: "two parties three seats",
			parties: []models.Party{
				{Name: "A", CumulativeVotes: 1000},
				{Name: "B", CumulativeVotes: 500, DirectSeats: 1},
			},
			seats:         3,
			wantAllocated: map[string]int{"A": 2, "B": 1},
			wantOwed:      map[string]int{"A": 2, "B": 0},
		},
		{
			name: "independents excluded",
			parties: []models.Party{
				{Name: "A", CumulativeVotes: 1000},
				{Name: models.IndependentParty, CumulativeVotes: 5000, DirectSeats: 1},
				{Name: "B", CumulativeVotes: 500},
			},
			seats:         4,
			wantAllocated: map[string]int{"A": 2, "B": 1},
			wantOwed:      map[string]int{"A": 2, "B": 1},
		},
		{
			name: "equal quotients go to first party",
			parties: []models.Party{
				{Name: "A", CumulativeVotes: 100},
				{Name: "B", CumulativeVotes: 100},
			},
			seats:         1,
			wantAllocated: map[string]int{"A": 1, "B": 0},
			wantOwed:      map[string]int{"A": 1, "B": 0},
		},
		{
			name: "overhang goes negative",
			parties: []models.Party{
				{Name: "A", CumulativeVotes: 100, DirectSeats: 3},
				{Name: "B", CumulativeVotes: 900},
			},
			seats:         4,
			wantAllocated: map[string]int{"A": 0, "B": 4},
			wantOwed:      map[string]int{"A": -3, "B": 4},
		},
		{
			name: "overhang clamped",
			parties: []models.Party{
				{Name: "A", CumulativeVotes: 100, DirectSeats: 3},
				{Name: "B", CumulativeVotes: 900},
			},
			seats:         4,
			clamp:         true,
			wantAllocated: map[string]int{"A": 0, "B": 4},
			wantOwed:      map[string]int{"A": 0, "B": 4},
		},
		{
			name: "provisional votes drive the projection",
			parties: []models.Party{
				{Name: "A", CumulativeVotes: 100, ProvisionalVotes: 100},
				{Name: "B", CumulativeVotes: 50, ProvisionalVotes: 350},
			},
			seats:         2,
			wantAllocated: map[string]int{"A": 0, "B": 2},
			wantOwed:      map[string]int{"A": 0, "B": 2},
		},
		{
			name: "zero seats",
			parties: []models.Party{
				{Name: "A", CumulativeVotes: 100},
			},
			seats:         0,
			wantAllocated: map[string]int{"A": 0},
			wantOwed:      map[string]int{"A": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Allocate(tt.parties, tt.seats, 0, AllocateOptions{ClampOverhang: tt.clamp})
			if err != nil {
				t.Fatalf("Allocate() error = %v", err)
			}
			for party, want := range tt.wantAllocated {
				if got.Allocated[party] != want {
					t.Errorf("Allocated[%s] = %d, want %d", party, got.Allocated[party], want)
				}
			}
			for party, want := range tt.wantOwed {
				if got.Owed[party] != want {
					t.Errorf("Owed[%s] = %d, want %d", party, got.Owed[party], want)
				}
			}
			if _, ok := got.Owed[models.IndependentParty]; ok {
				t.Error("Independents must not appear in the allocation")
			}
		})
	}
}

func TestAllocate_SumsToRemainingSeats(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(6)
		parties := make([]models.Party, 0, n+1)
		for i := 0; i < n; i++ {
			parties = append(parties, models.Party{
				Name:            string(rune('A' + i)),
				CumulativeVotes: float64(rng.Intn(100000)),
				DirectSeats:     rng.Intn(4),
			})
		}
		independentSeats := rng.Intn(3)
		parties = append(parties, models.Party{Name: models.IndependentParty, DirectSeats: independentSeats})
		seats := independentSeats + rng.Intn(40)

		got, err := Allocate(parties, seats, rng.Intn(seats+1), AllocateOptions{})
		if err != nil {
			t.Fatalf("trial %d: Allocate() error = %v", trial, err)
		}

		sum := 0
		for _, name := range got.Parties {
			if got.Allocated[name] < 0 {
				t.Fatalf("trial %d: negative allocation for %s", trial, name)
			}
			sum += got.Allocated[name]
		}
		if sum != seats-independentSeats || got.RemainingSeats != sum {
			t.Fatalf("trial %d: allocated %d seats, want %d", trial, sum, seats-independentSeats)
		}
	}
}

func TestAllocate_Errors(t *testing.T) {
	tests := []struct {
		name      string
		parties   []models.Party
		seats     int
		processed int
	}{
		{
			name:    "independents exceed seats",
			parties: []models.Party{{Name: "A"}, {Name: models.IndependentParty, DirectSeats: 5}},
			seats:   3,
		},
		{
			name:      "processed beyond total",
			parties:   []models.Party{{Name: "A"}},
			seats:     3,
			processed: 4,
		},
		{
			name:    "negative seats",
			parties: []models.Party{{Name: "A"}},
			seats:   -1,
		},
		{
			name:    "no eligible parties",
			parties: []models.Party{{Name: models.IndependentParty}},
			seats:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Allocate(tt.parties, tt.seats, tt.processed, AllocateOptions{})
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput, got %v", err)
			}
		})
	}
}
