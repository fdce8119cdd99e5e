package domain

import (
	"fmt"
	"strings"
	"time"

	"onehour/internal/platform/clock"
	apperrors "onehour/internal/platform/errors"
)

const (
	tagSingle = '0'
	tagRange  = '1'
	separator = " "

	instantLayout = time.RFC3339Nano
)

// Point is either a single instant (a "finished" marker) or a half-open
// range [first, second) recorded by a start/stop session. Points are
// immutable values.
type Point struct {
	first   time.Time
	second  time.Time
	isRange bool
}

func Now(c clock.Clock) Point {
	return FromInstant(c.Now())
}

func FromInstant(t time.Time) Point {
	return Point{first: t}
}

func FromRange(start, end time.Time) (Point, error) {
	if end.Before(start) {
		return Point{}, fmt.Errorf("%w: range ends before it starts (%s > %s)",
			apperrors.ErrInvariant, start.Format(instantLayout), end.Format(instantLayout))
	}
	return Point{first: start, second: end, isRange: true}, nil
}

// FromOther returns a copy of p.
func FromOther(p Point) Point {
	return p
}

// ParsePoint decodes the serialized form produced by Point.String.
func ParsePoint(raw string) (Point, error) {
	if raw == "" {
		return Point{}, fmt.Errorf("%w: empty record", apperrors.ErrParse)
	}
	body := raw[1:]
	switch raw[0] {
	case tagSingle:
		first, err := parseInstant(body)
		if err != nil {
			return Point{}, err
		}
		return FromInstant(first), nil
	case tagRange:
		left, right, ok := strings.Cut(body, separator)
		if !ok {
			return Point{}, fmt.Errorf("%w: range without separator: %q", apperrors.ErrParse, raw)
		}
		first, err := parseInstant(left)
		if err != nil {
			return Point{}, err
		}
		second, err := parseInstant(right)
		if err != nil {
			return Point{}, err
		}
		p, err := FromRange(first, second)
		if err != nil {
			return Point{}, fmt.Errorf("%w: %v", apperrors.ErrParse, err)
		}
		return p, nil
	default:
		return Point{}, fmt.Errorf("%w: unknown tag %q", apperrors.ErrParse, raw[0])
	}
}

func parseInstant(raw string) (time.Time, error) {
	t, err := time.Parse(instantLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", apperrors.ErrParse, err)
	}
	return t, nil
}

// String returns the serialized form: a tag byte, the first instant and,
// for ranges, a space and the second instant.
func (p Point) String() string {
	var b strings.Builder
	if p.isRange {
		b.WriteByte(tagRange)
	} else {
		b.WriteByte(tagSingle)
	}
	b.WriteString(p.first.Format(instantLayout))
	if p.isRange {
		b.WriteString(separator)
		b.WriteString(p.second.Format(instantLayout))
	}
	return b.String()
}

func (p Point) IsRange() bool     { return p.isRange }
func (p Point) Anchor() time.Time { return p.first }

// End returns the range end. ok is false for single instants.
func (p Point) End() (end time.Time, ok bool) {
	if !p.isRange {
		return time.Time{}, false
	}
	return p.second, true
}

func (p Point) Ordinal(tf Timeframe) int64 {
	return tf.Ordinal(p.first)
}

// EndOrdinal projects the range end instead of the anchor.
func (p Point) EndOrdinal(tf Timeframe) (int64, error) {
	if !p.isRange {
		return 0, fmt.Errorf("%w: end ordinal of a single instant", apperrors.ErrInvariant)
	}
	return tf.Ordinal(p.second), nil
}

func (p Point) SameTimeframe(other Temporal, tf Timeframe) bool { return SameTimeframe(p, other, tf) }
func (p Point) Consecutive(other Temporal, tf Timeframe) bool   { return Consecutive(p, other, tf) }
func (p Point) WithinStreak(other Temporal, tf Timeframe) bool  { return WithinStreak(p, other, tf) }
func (p Point) After(other Temporal, tf Timeframe) bool         { return After(p, other, tf) }
func (p Point) Before(other Temporal, tf Timeframe) bool        { return Before(p, other, tf) }

func (p Point) Floor(tf Timeframe) time.Time {
	return tf.Floor(p.first)
}

// TotalTime is the duration a point contributes. A single instant counts as
// marker, the configured finished threshold.
func (p Point) TotalTime(marker time.Duration) time.Duration {
	if p.isRange {
		return p.second.Sub(p.first)
	}
	return marker
}

// WithinPeriod reports whether every instant of p lies in one period.
func (p Point) WithinPeriod(tf Timeframe) bool {
	if !p.isRange || !p.second.After(p.first) {
		return true
	}
	return tf.Ordinal(p.first) == tf.Ordinal(p.second.Add(-time.Nanosecond))
}

// SplitRange cuts a range into contiguous pieces confined to one period
// each. Inner boundaries sit exactly on period floors and the last piece
// ends at the original end, so durations add up to the original.
func (p Point) SplitRange(tf Timeframe) ([]Point, error) {
	if !p.isRange {
		return nil, fmt.Errorf("%w: split of a single instant", apperrors.ErrInvariant)
	}
	var pieces []Point
	first := p.first
	for boundary := tf.Ceil(first); boundary.Before(p.second); boundary = tf.Step(boundary) {
		pieces = append(pieces, Point{first: first, second: boundary, isRange: true})
		first = boundary
	}
	if first.Before(p.second) || len(pieces) == 0 {
		pieces = append(pieces, Point{first: first, second: p.second, isRange: true})
	}
	return pieces, nil
}

// Equal reports whether both points agree on range-ness and instants.
func (p Point) Equal(other Point) bool {
	if p.isRange != other.isRange {
		return false
	}
	if !p.first.Equal(other.first) {
		return false
	}
	return !p.isRange || p.second.Equal(other.second)
}

// Less orders points by raw anchor instant, ignoring timeframes.
func (p Point) Less(other Point) bool {
	return p.first.Before(other.first)
}

// Sub returns the raw difference between the two anchors.
func (p Point) Sub(other Point) time.Duration {
	return p.first.Sub(other.first)
}
