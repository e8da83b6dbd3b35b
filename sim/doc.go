// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package sim drives an election night one riding at a time.

A Driver owns the national RunningTally. For each riding it generates a
vote progression, feeds the selected steps to a Renderer along with a live
seat projection, and then asks a ReviewGate whether to keep the result.
Accepting commits the riding's votes and direct seat and takes a new
snapshot. Rerolling, a failed attempt and a review timeout all restore the
last accepted snapshot first, so nothing from an abandoned attempt leaks
into later ridings.

# Collaborators

	Renderer    receives every computed StepResult
	MapColorer  receives each accepted riding before it is committed
	Recorder    receives accepted and skipped outcomes plus standings
	ReviewGate  accepts or rerolls; ChannelGate takes decisions from HTTP

All collaborators are optional. Without a gate every riding is accepted and
a failed attempt is skipped.

# Usage

	rng, seed, err := sim.NewRand(cfg.Seed)
	d, err := sim.NewDriver(sim.Config{
		RunID:         runID,
		Seats:         338,
		TotalSteps:    100,
		SelectedSteps: 10,
	}, input.Parties, rng, sim.Deps{Renderer: store, Recorder: store})
	summary, err := d.Run(ctx, input.Ridings)
*/
package sim
