// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally implements the counting and seat arithmetic behind a simulated
election night.

# Vote Progressions

Generator turns a riding's final results into a step-by-step count:

	gen := tally.NewGenerator(rand.New(rand.NewSource(seed)))
	matrix, err := gen.Matrix(riding.FinalResults, 100)

Every column starts at zero, never decreases and ends exactly at the final
result.

# Winner Projection

IsDecided reports whether the leader's margin exceeds the votes still to be
counted. SortedOrder, LeadMargin and Leader share one stable ordering: votes
descending, ties by input order.

# Running Tally

RunningTally holds the national accumulators. UpdateProvisional layers the
open riding on top of the committed totals; Finalize commits a riding exactly
once; Capture and Restore take and roll back to immutable snapshots.

# MMP Allocation

Allocate runs the D'Hondt divisor method over all non-independent parties
and returns the list seats owed on top of direct seats. Owed seats go
negative on overhang unless AllocateOptions.ClampOverhang is set.

# Lists and Map Data

AssignListSeats fills party lists from the owed seats, and VoteShares and
FillColor produce the data a map colorer needs for a finalized riding.
*/
package tally
