package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onehour/internal/modules/tracker/domain"
	"onehour/internal/platform/clock"
	apperrors "onehour/internal/platform/errors"
)

func mustRange(t *testing.T, start, end time.Time) domain.Point {
	t.Helper()
	p, err := domain.FromRange(start, end)
	require.NoError(t, err)
	return p
}

func TestPointRoundTrip(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("CET", 3600)
	points := []domain.Point{
		domain.FromInstant(time.Date(2017, 5, 1, 12, 30, 0, 0, time.UTC)),
		domain.FromInstant(time.Date(2017, 5, 1, 12, 30, 0, 123456789, loc)),
		mustRange(t, time.Date(2020, 1, 1, 23, 50, 0, 1, loc), time.Date(2020, 1, 2, 0, 10, 0, 0, loc)),
		domain.Now(clock.Fixed(time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC))),
	}
	for _, p := range points {
		parsed, err := domain.ParsePoint(p.String())
		require.NoError(t, err)
		assert.True(t, p.Equal(parsed), "round trip of %s gave %s", p, parsed)
		assert.Equal(t, p.String(), parsed.String())
	}
}

func TestPointSerializedForm(t *testing.T) {
	t.Parallel()
	single := domain.FromInstant(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	assert.Equal(t, "02024-01-02T03:04:05Z", single.String())

	r := mustRange(t, time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC), time.Date(2024, 1, 2, 4, 0, 0, 0, time.UTC))
	assert.Equal(t, "12024-01-02T03:00:00Z 2024-01-02T04:00:00Z", r.String())
}

func TestParsePointErrors(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{
		"",
		"x2024-01-02T03:04:05Z",
		"0not-a-date",
		"12024-01-02T03:00:00Z",
		"12024-01-02T04:00:00Z 2024-01-02T03:00:00Z",
	} {
		_, err := domain.ParsePoint(raw)
		assert.True(t, errors.Is(err, apperrors.ErrParse), "%q: %v", raw, err)
	}
}

func TestPointTotalTime(t *testing.T) {
	t.Parallel()
	start := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Hour, domain.FromInstant(start).TotalTime(time.Hour))
	assert.Equal(t, 30*time.Minute, domain.FromInstant(start).TotalTime(30*time.Minute))
	assert.Equal(t, 45*time.Minute, mustRange(t, start, start.Add(45*time.Minute)).TotalTime(time.Hour))
}

func TestPointEqualityAndOrder(t *testing.T) {
	t.Parallel()
	start := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	single := domain.FromInstant(start)
	ranged := mustRange(t, start, start.Add(time.Minute))
	assert.False(t, single.Equal(ranged))
	assert.True(t, single.Equal(domain.FromOther(single)))
	assert.True(t, single.Equal(domain.FromInstant(start.In(time.FixedZone("X", 7200)))))
	assert.False(t, ranged.Equal(mustRange(t, start, start.Add(2*time.Minute))))

	later := domain.FromInstant(start.Add(time.Second))
	assert.True(t, single.Less(later))
	assert.False(t, later.Less(single))
	assert.Equal(t, time.Second, later.Sub(single))
}

func TestPointEnd(t *testing.T) {
	t.Parallel()
	start := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	_, ok := domain.FromInstant(start).End()
	assert.False(t, ok)
	_, err := domain.FromInstant(start).EndOrdinal(domain.Day)
	assert.True(t, errors.Is(err, apperrors.ErrInvariant))

	r := mustRange(t, start, start.Add(24*time.Hour))
	end, ok := r.End()
	assert.True(t, ok)
	assert.True(t, end.Equal(start.Add(24*time.Hour)))
	ord, err := r.EndOrdinal(domain.Day)
	require.NoError(t, err)
	assert.Equal(t, r.Ordinal(domain.Day)+1, ord)

	_, err = domain.FromRange(start, start.Add(-time.Second))
	assert.True(t, errors.Is(err, apperrors.ErrInvariant))
}

func TestSplitRangeAcrossMidnight(t *testing.T) {
	t.Parallel()
	start := time.Date(2024, 3, 10, 23, 50, 0, 0, time.UTC)
	end := time.Date(2024, 3, 11, 0, 10, 0, 0, time.UTC)
	pieces, err := mustRange(t, start, end).SplitRange(domain.Day)
	require.NoError(t, err)
	require.Len(t, pieces, 2)

	midnight := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	assert.True(t, pieces[0].Equal(mustRange(t, start, midnight)))
	assert.True(t, pieces[1].Equal(mustRange(t, midnight, end)))
	assert.Equal(t, 10*time.Minute, pieces[0].TotalTime(time.Hour))
	assert.Equal(t, 10*time.Minute, pieces[1].TotalTime(time.Hour))
}

func TestSplitRangeCoverage(t *testing.T) {
	t.Parallel()
	cases := []struct {
		tf         domain.Timeframe
		start, end time.Time
		pieces     int
	}{
		{domain.Day, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), time.Date(2024, 1, 4, 9, 30, 0, 0, time.UTC), 4},
		{domain.Hour, time.Date(2024, 1, 1, 8, 15, 0, 0, time.UTC), time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), 2},
		{domain.Week, time.Date(2024, 1, 6, 8, 0, 0, 0, time.UTC), time.Date(2024, 1, 22, 1, 0, 0, 0, time.UTC), 4},
		{domain.Month, time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC), time.Date(2024, 2, 1, 1, 0, 0, 0, time.UTC), 2},
		{domain.Day, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), 1},
		{domain.Day, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), 1},
	}
	for _, tc := range cases {
		original := mustRange(t, tc.start, tc.end)
		pieces, err := original.SplitRange(tc.tf)
		require.NoError(t, err)
		require.Len(t, pieces, tc.pieces, "%s %s..%s", tc.tf, tc.start, tc.end)

		var total time.Duration
		cursor := tc.start
		for i, piece := range pieces {
			assert.True(t, piece.IsRange())
			assert.True(t, piece.Anchor().Equal(cursor), "piece %d starts at %s, want %s", i, piece.Anchor(), cursor)
			assert.True(t, piece.WithinPeriod(tc.tf), "piece %d spans periods", i)
			end, _ := piece.End()
			cursor = end
			total += piece.TotalTime(0)
		}
		assert.True(t, cursor.Equal(tc.end))
		assert.Equal(t, original.TotalTime(0), total)
	}
}

func TestSplitRangeInRepeatedHour(t *testing.T) {
	t.Parallel()
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 2026-11-01 06:30Z is 01:30 EST, inside the hour repeated by the DST fall-back.
	start := time.Date(2026, 11, 1, 6, 30, 0, 0, time.UTC).In(ny)
	end := time.Date(2026, 11, 1, 7, 10, 0, 0, time.UTC).In(ny)

	ceil := domain.Hour.Ceil(start)
	assert.True(t, ceil.After(start), "ceil %s not after %s", ceil, start)
	assert.True(t, ceil.Equal(time.Date(2026, 11, 1, 7, 0, 0, 0, time.UTC)), "ceil: %s", ceil)

	pieces, err := mustRange(t, start, end).SplitRange(domain.Hour)
	require.NoError(t, err)
	require.Len(t, pieces, 2)

	var total time.Duration
	cursor := start
	for i, piece := range pieces {
		pieceEnd, ok := piece.End()
		require.True(t, ok)
		assert.True(t, piece.Anchor().Equal(cursor), "piece %d starts at %s, want %s", i, piece.Anchor(), cursor)
		assert.True(t, pieceEnd.After(piece.Anchor()), "piece %d ends before it starts", i)

		decoded, err := domain.ParsePoint(piece.String())
		require.NoError(t, err, "piece %d", i)
		assert.True(t, decoded.Equal(piece), "piece %d", i)

		cursor = pieceEnd
		total += piece.TotalTime(0)
	}
	assert.True(t, cursor.Equal(end))
	assert.Equal(t, 40*time.Minute, total)
}

func TestSplitRangeRejectsSingleInstant(t *testing.T) {
	t.Parallel()
	_, err := domain.FromInstant(time.Now()).SplitRange(domain.Day)
	assert.True(t, errors.Is(err, apperrors.ErrInvariant))
}
