// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sim

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ridingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "election_ridings_total",
		Help: "Riding attempts by outcome (accepted, rerolled, skipped, failed)",
	}, []string{"outcome"})

	stepRenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "election_step_render_seconds",
		Help:    "Time spent computing and rendering one selected step",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	reviewWaitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "election_review_wait_seconds",
		Help:    "Time a riding waited for a review decision",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
	})
)
