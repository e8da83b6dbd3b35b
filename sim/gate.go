// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sim

import (
	"context"
	"errors"
	"sync"

	"github.com/danielhkuo/election-night/models"
)

var (
	ErrNoPendingReview = errors.New("no riding awaiting review")
	ErrStaleReview     = errors.New("decision is for a riding that is no longer under review")
)

// ChannelGate is a ReviewGate whose decisions arrive from another goroutine,
// typically an HTTP handler. At most one review is pending at a time.
type ChannelGate struct {
	mu      sync.Mutex
	pending *pendingReview
}

type pendingReview struct {
	info     models.PendingReview
	decision chan Decision
}

func NewChannelGate() *ChannelGate {
	return &ChannelGate{}
}

// Review publishes the riding as pending and blocks until Decide is called
// or ctx is done.
func (g *ChannelGate) Review(ctx context.Context, review Review) (Decision, error) {
	info := models.PendingReview{
		RunID:       review.RunID,
		RidingIndex: review.RidingIndex,
		Riding:      review.Riding.Name,
		Attempt:     review.Attempt,
		Steps:       len(review.Steps),
	}
	if review.Err != nil {
		info.Error = review.Err.Error()
	}

	p := &pendingReview{info: info, decision: make(chan Decision, 1)}

	g.mu.Lock()
	g.pending = p
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		if g.pending == p {
			g.pending = nil
		}
		g.mu.Unlock()
	}()

	select {
	case d := <-p.decision:
		return d, nil
	case <-ctx.Done():
		return DecisionAccept, ctx.Err()
	}
}

func (g *ChannelGate) Pending() (models.PendingReview, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending == nil {
		return models.PendingReview{}, false
	}
	return g.pending.info, true
}

// Decide resolves the pending review and returns what was decided on.
// Only the first decision counts.
func (g *ChannelGate) Decide(d Decision) (models.PendingReview, error) {
	return g.decide(d, func(models.PendingReview) bool { return true })
}

// DecideFor is Decide for a specific riding. An attempt of 0 matches any
// attempt of that riding.
func (g *ChannelGate) DecideFor(ridingIndex, attempt int, d Decision) (models.PendingReview, error) {
	return g.decide(d, func(p models.PendingReview) bool {
		return p.RidingIndex == ridingIndex && (attempt == 0 || p.Attempt == attempt)
	})
}

func (g *ChannelGate) decide(d Decision, matches func(models.PendingReview) bool) (models.PendingReview, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending == nil {
		return models.PendingReview{}, ErrNoPendingReview
	}
	info := g.pending.info
	if !matches(info) {
		return info, ErrStaleReview
	}
	g.pending.decision <- d
	g.pending = nil
	return info, nil
}
