// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"fmt"
	"sort"
)

// Snapshot is an immutable copy of the committed accumulators of every
// party, plus the ridings finalized so far. Build one with Capture.
type Snapshot struct {
	entries   []snapshotEntry
	finalized []string
}

type snapshotEntry struct {
	name            string
	cumulativeVotes float64
	directSeats     int
	listSeats       int
}

// Capture copies the committed state of every party.
func (t *RunningTally) Capture() Snapshot {
	s := Snapshot{
		entries:   make([]snapshotEntry, len(t.parties)),
		finalized: make([]string, 0, len(t.finalized)),
	}
	for i, p := range t.parties {
		s.entries[i] = snapshotEntry{
			name:            p.Name,
			cumulativeVotes: p.CumulativeVotes,
			directSeats:     p.DirectSeats,
			listSeats:       p.ListSeats,
		}
	}
	for key := range t.finalized {
		s.finalized = append(s.finalized, key)
	}
	sort.Strings(s.finalized)
	return s
}

// Restore overwrites every party from s and clears provisional votes.
// Everything done since s was captured is discarded.
func (t *RunningTally) Restore(s Snapshot) error {
	if s.Len() != len(t.parties) {
		return fmt.Errorf("%w: %d parties in snapshot, %d in tally", ErrSnapshotMismatch, s.Len(), len(t.parties))
	}
	for _, e := range s.entries {
		if !t.Has(e.name) {
			return fmt.Errorf("%w: unknown party %q", ErrSnapshotMismatch, e.name)
		}
	}

	for _, e := range s.entries {
		p := &t.parties[t.index[e.name]]
		p.CumulativeVotes = e.cumulativeVotes
		p.DirectSeats = e.directSeats
		p.ListSeats = e.listSeats
	}
	t.ResetProvisional()

	t.finalized = make(map[string]struct{}, len(s.finalized))
	for _, key := range s.finalized {
		t.finalized[key] = struct{}{}
	}
	return nil
}

// Len is the number of parties captured.
func (s Snapshot) Len() int {
	return len(s.entries)
}

func (s Snapshot) CumulativeVotes(party string) (float64, bool) {
	for _, e := range s.entries {
		if e.name == party {
			return e.cumulativeVotes, true
		}
	}
	return 0, false
}

func (s Snapshot) DirectSeats(party string) (int, bool) {
	for _, e := range s.entries {
		if e.name == party {
			return e.directSeats, true
		}
	}
	return 0, false
}

// Equal compares two snapshots field by field, bit for bit.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s.entries) != len(other.entries) || len(s.finalized) != len(other.finalized) {
		return false
	}
	for i := range s.entries {
		if s.entries[i] != other.entries[i] {
			return false
		}
	}
	for i := range s.finalized {
		if s.finalized[i] != other.finalized[i] {
			return false
		}
	}
	return true
}
