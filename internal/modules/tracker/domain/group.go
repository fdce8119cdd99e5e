package domain

import (
	"fmt"
	"time"

	apperrors "onehour/internal/platform/errors"
	"onehour/internal/platform/runs"
)

// Group aggregates the points of one period. For comparisons it behaves
// like a single instant anchored at the start of that period.
type Group struct {
	points []Point
	anchor time.Time
	marker time.Duration
}

// NewGroup builds a group from points that share a period under tf.
// marker is the duration credited to single-instant points.
func NewGroup(points []Point, tf Timeframe, marker time.Duration) (Group, error) {
	if len(points) == 0 {
		return Group{}, fmt.Errorf("%w: empty timeframe group", apperrors.ErrInvariant)
	}
	return Group{
		points: points,
		anchor: points[0].Floor(tf),
		marker: marker,
	}, nil
}

// GroupTimeframes partitions chronologically ordered points into one group
// per run of same-period points.
func GroupTimeframes(points []Point, tf Timeframe, marker time.Duration) []Group {
	chunks := runs.Group(points, func(prev, curr Point) bool {
		return prev.SameTimeframe(curr, tf)
	})
	groups := make([]Group, 0, len(chunks))
	for _, chunk := range chunks {
		group, err := NewGroup(chunk, tf, marker)
		if err != nil {
			// runs.Group never yields an empty chunk.
			panic(err)
		}
		groups = append(groups, group)
	}
	return groups
}

func (g Group) Anchor() time.Time { return g.anchor }
func (g Group) IsRange() bool     { return false }
func (g Group) Len() int          { return len(g.points) }

// Points returns the member points in insertion order.
func (g Group) Points() []Point {
	out := make([]Point, len(g.points))
	copy(out, g.points)
	return out
}

func (g Group) Ordinal(tf Timeframe) int64 {
	return tf.Ordinal(g.anchor)
}

func (g Group) SameTimeframe(other Temporal, tf Timeframe) bool { return SameTimeframe(g, other, tf) }
func (g Group) WithinStreak(other Temporal, tf Timeframe) bool  { return WithinStreak(g, other, tf) }
func (g Group) After(other Temporal, tf Timeframe) bool         { return After(g, other, tf) }
func (g Group) Before(other Temporal, tf Timeframe) bool        { return Before(g, other, tf) }

func (g Group) TotalTime() time.Duration {
	var total time.Duration
	for _, p := range g.points {
		total += p.TotalTime(g.marker)
	}
	return total
}

// Finished reports whether the period reached threshold.
func (g Group) Finished(threshold time.Duration) bool {
	return g.TotalTime() >= threshold
}
