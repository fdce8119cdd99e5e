package domain_test

import (
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onehour/internal/modules/tracker/domain"
)

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestParseTimeframe(t *testing.T) {
	t.Parallel()
	tf, err := domain.ParseTimeframe(" Week ")
	require.NoError(t, err)
	assert.Equal(t, domain.Week, tf)

	tf, err = domain.ParseTimeframe("")
	require.NoError(t, err)
	assert.Equal(t, domain.Day, tf)

	_, err = domain.ParseTimeframe("fortnight")
	assert.Error(t, err)
}

func TestOrdinalKnownValues(t *testing.T) {
	t.Parallel()
	assert.Equal(t, int64(719163), domain.Day.Ordinal(at(1970, 1, 1, 12, 0)))
	assert.Equal(t, int64(738886), domain.Day.Ordinal(at(2024, 1, 1, 0, 0)))
	assert.Equal(t, int64(2024*12+3), domain.Month.Ordinal(at(2024, 3, 9, 0, 0)))
	assert.Equal(t, int64(2024), domain.Year.Ordinal(at(2024, 12, 31, 23, 59)))
	assert.Equal(t, int64(738886*24+5), domain.Hour.Ordinal(at(2024, 1, 1, 5, 30)))
	assert.Equal(t, int64(1), domain.Minute.Ordinal(time.Unix(119, 0)))
	assert.Equal(t, int64(-1), domain.Minute.Ordinal(time.Unix(-1, 0)))
	assert.Equal(t, int64(42), domain.Second.Ordinal(time.Unix(42, 999)))
}

func TestOrdinalConsecutiveAcrossBoundaries(t *testing.T) {
	t.Parallel()
	dec := domain.FromInstant(at(2023, 12, 15, 0, 0))
	jan := domain.FromInstant(at(2024, 1, 2, 0, 0))
	assert.True(t, dec.Consecutive(jan, domain.Month))
	assert.True(t, dec.Consecutive(jan, domain.Year))

	// 2024-01-01 is a Monday: Sunday before belongs to the previous week.
	sunday := domain.FromInstant(at(2023, 12, 31, 23, 0))
	monday := domain.FromInstant(at(2024, 1, 1, 1, 0))
	sameWeek := domain.FromInstant(at(2024, 1, 7, 23, 0))
	assert.True(t, sunday.Consecutive(monday, domain.Week))
	assert.True(t, monday.SameTimeframe(sameWeek, domain.Week))

	lateNight := domain.FromInstant(at(2024, 2, 28, 23, 59))
	leapDay := domain.FromInstant(at(2024, 2, 29, 0, 0))
	assert.True(t, lateNight.Consecutive(leapDay, domain.Day))
	assert.True(t, leapDay.After(lateNight, domain.Day))
	assert.True(t, lateNight.Before(leapDay, domain.Day))
	assert.True(t, lateNight.WithinStreak(leapDay, domain.Day))
	assert.False(t, lateNight.WithinStreak(leapDay, domain.Second))
}

func TestOrdinalMonotonic(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(7))
	base := at(1990, 1, 1, 0, 0)
	instants := make([]time.Time, 500)
	for i := range instants {
		instants[i] = base.Add(time.Duration(rng.Int63n(int64(40 * 365 * 24 * time.Hour))))
	}
	sort.Slice(instants, func(i, j int) bool { return instants[i].Before(instants[j]) })
	for _, tf := range domain.Timeframes {
		for i := 1; i < len(instants); i++ {
			assert.LessOrEqual(t, tf.Ordinal(instants[i-1]), tf.Ordinal(instants[i]), "timeframe %s", tf)
		}
	}
}

func TestFloorCeilAndStep(t *testing.T) {
	t.Parallel()
	ts := time.Date(2024, 5, 15, 13, 47, 29, 500, time.UTC) // Wednesday
	cases := []struct {
		tf    domain.Timeframe
		floor time.Time
		ceil  time.Time
	}{
		{domain.Year, at(2024, 1, 1, 0, 0), at(2025, 1, 1, 0, 0)},
		{domain.Month, at(2024, 5, 1, 0, 0), at(2024, 6, 1, 0, 0)},
		{domain.Week, at(2024, 5, 13, 0, 0), at(2024, 5, 20, 0, 0)},
		{domain.Day, at(2024, 5, 15, 0, 0), at(2024, 5, 16, 0, 0)},
		{domain.Hour, at(2024, 5, 15, 13, 0), at(2024, 5, 15, 14, 0)},
		{domain.Minute, at(2024, 5, 15, 13, 47), at(2024, 5, 15, 13, 48)},
		{domain.Second, time.Date(2024, 5, 15, 13, 47, 29, 0, time.UTC), time.Date(2024, 5, 15, 13, 47, 30, 0, time.UTC)},
	}
	for _, tc := range cases {
		assert.True(t, tc.floor.Equal(tc.tf.Floor(ts)), "%s floor: %s", tc.tf, tc.tf.Floor(ts))
		assert.True(t, tc.ceil.Equal(tc.tf.Ceil(ts)), "%s ceil: %s", tc.tf, tc.tf.Ceil(ts))
		assert.Equal(t, tc.tf.Ordinal(ts)+1, tc.tf.Ordinal(tc.tf.Step(tc.floor)), "%s step", tc.tf)
	}
}

func TestFloorKeepsLocation(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("UTC-5", -5*3600)
	ts := time.Date(2024, 3, 1, 2, 0, 0, 0, loc)
	floor := domain.Day.Floor(ts)
	assert.Equal(t, loc, floor.Location())
	assert.Equal(t, 1, floor.Day())
	assert.Equal(t, 0, floor.Hour())
}
