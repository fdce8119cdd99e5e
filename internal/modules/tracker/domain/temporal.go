package domain

import "time"

// Temporal is the comparison surface shared by points and groups. All
// timeframe-relative comparisons reduce to integer ordinal comparisons.
type Temporal interface {
	Anchor() time.Time
	Ordinal(tf Timeframe) int64
}

// Instant adapts a bare time.Time to Temporal.
type Instant time.Time

func (i Instant) Anchor() time.Time          { return time.Time(i) }
func (i Instant) Ordinal(tf Timeframe) int64 { return tf.Ordinal(time.Time(i)) }

func SameTimeframe(a, b Temporal, tf Timeframe) bool {
	return a.Ordinal(tf) == b.Ordinal(tf)
}

func Consecutive(a, b Temporal, tf Timeframe) bool {
	d := a.Ordinal(tf) - b.Ordinal(tf)
	return d == 1 || d == -1
}

// WithinStreak reports whether a and b fall in the same or adjacent periods.
func WithinStreak(a, b Temporal, tf Timeframe) bool {
	d := a.Ordinal(tf) - b.Ordinal(tf)
	return d >= -1 && d <= 1
}

// After reports whether a's period is strictly later than b's.
func After(a, b Temporal, tf Timeframe) bool {
	return a.Ordinal(tf) > b.Ordinal(tf)
}

// Before reports whether a's period is strictly earlier than b's.
func Before(a, b Temporal, tf Timeframe) bool {
	return a.Ordinal(tf) < b.Ordinal(tf)
}
