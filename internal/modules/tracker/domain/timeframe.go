package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "onehour/internal/platform/errors"
)

// Timeframe is the unit of granularity for "same period" and
// "consecutive period" comparisons.
type Timeframe string

const (
	Year   Timeframe = "year"
	Month  Timeframe = "month"
	Week   Timeframe = "week"
	Day    Timeframe = "day"
	Hour   Timeframe = "hour"
	Minute Timeframe = "minute"
	Second Timeframe = "second"

	DefaultTimeframe = Day
)

// Timeframes lists every supported unit, coarsest first.
var Timeframes = []Timeframe{Year, Month, Week, Day, Hour, Minute, Second}

// Proleptic Gregorian ordinal of 1970-01-01, counting 0001-01-01 as day 1.
const unixEpochDayOrdinal = 719163

func ParseTimeframe(raw string) (Timeframe, error) {
	tf := Timeframe(strings.ToLower(strings.TrimSpace(raw)))
	if tf == "" {
		return DefaultTimeframe, nil
	}
	if err := tf.Validate(); err != nil {
		return "", err
	}
	return tf, nil
}

func (tf Timeframe) Validate() error {
	switch tf {
	case Year, Month, Week, Day, Hour, Minute, Second:
		return nil
	default:
		return fmt.Errorf("%w: unsupported timeframe %q", apperrors.ErrInvalidInput, string(tf))
	}
}

// Ordinal projects t onto an absolute, monotonically increasing count of tf
// units. Calendar units use the wall clock of t's location; minute and second
// are derived from the Unix timestamp.
func (tf Timeframe) Ordinal(t time.Time) int64 {
	switch tf {
	case Year:
		return int64(t.Year())
	case Month:
		return int64(t.Year())*12 + int64(t.Month())
	case Week:
		// 0001-01-01 was a Monday, so weeks start on Monday.
		return floorDiv(dayOrdinal(t)-1, 7)
	case Hour:
		return dayOrdinal(t)*24 + int64(t.Hour())
	case Minute:
		return floorDiv(t.Unix(), 60)
	case Second:
		return t.Unix()
	default:
		return dayOrdinal(t)
	}
}

// Floor truncates t to the first instant of its period.
func (tf Timeframe) Floor(t time.Time) time.Time {
	loc := t.Location()
	switch tf {
	case Year:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, loc)
	case Month:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	case Week:
		offset := (int(t.Weekday()) + 6) % 7
		return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, loc)
	case Hour:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, loc)
	case Minute:
		return time.Unix(floorDiv(t.Unix(), 60)*60, 0).In(loc)
	case Second:
		return time.Unix(t.Unix(), 0).In(loc)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	}
}

// Ceil returns the first period boundary strictly after t. In a repeated
// wall-clock hour the floor can land an hour early, so one step is not
// always enough.
func (tf Timeframe) Ceil(t time.Time) time.Time {
	next := tf.Step(tf.Floor(t))
	for !next.After(t) {
		next = tf.Step(next)
	}
	return next
}

// Step advances a period floor by exactly one period.
func (tf Timeframe) Step(floor time.Time) time.Time {
	switch tf {
	case Year:
		return floor.AddDate(1, 0, 0)
	case Month:
		return floor.AddDate(0, 1, 0)
	case Week:
		return floor.AddDate(0, 0, 7)
	case Hour:
		next := floor.Add(time.Hour)
		// Re-floor for half-hour zone shifts, unless a repeated wall hour
		// would floor back onto the current period.
		if f := tf.Floor(next); f.After(floor) {
			return f
		}
		return next
	case Minute:
		return floor.Add(time.Minute)
	case Second:
		return floor.Add(time.Second)
	default:
		return floor.AddDate(0, 0, 1)
	}
}

func dayOrdinal(t time.Time) int64 {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return floorDiv(midnight.Unix(), 86400) + unixEpochDayOrdinal
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
