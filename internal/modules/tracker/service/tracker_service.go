package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"onehour/internal/modules/tracker/domain"
	trackerout "onehour/internal/modules/tracker/port/out"
	"onehour/internal/platform/clock"
	apperrors "onehour/internal/platform/errors"
)

const DefaultThreshold = time.Hour

// Settings is the read-only configuration the tracker consults.
type Settings struct {
	Timeframe domain.Timeframe
	Threshold time.Duration
}

type StartResult struct {
	At time.Time
	// Discarded is the start of an open session that was overwritten
	// without being recorded. Zero when nothing was discarded.
	Discarded time.Time
}

type StopResult struct {
	Start  time.Time
	End    time.Time
	Pieces []domain.Point
	// Completed lists the period starts that reached the threshold
	// because of this session.
	Completed []time.Time
}

// TrackerService derives streaks and totals from the record log. Every
// query recomputes groups from the full log.
type TrackerService struct {
	clock     clock.Clock
	records   trackerout.RecordLog
	cache     trackerout.StartCache
	projector trackerout.PeriodProjector
	timeframe domain.Timeframe
	threshold time.Duration
}

func NewTrackerService(clock clock.Clock, records trackerout.RecordLog, cache trackerout.StartCache, projector trackerout.PeriodProjector, settings Settings) (*TrackerService, error) {
	if settings.Timeframe == "" {
		settings.Timeframe = domain.DefaultTimeframe
	}
	if err := settings.Timeframe.Validate(); err != nil {
		return nil, err
	}
	if settings.Threshold <= 0 {
		settings.Threshold = DefaultThreshold
	}
	return &TrackerService{
		clock:     clock,
		records:   records,
		cache:     cache,
		projector: projector,
		timeframe: settings.Timeframe,
		threshold: settings.Threshold,
	}, nil
}

func (s *TrackerService) Timeframe() domain.Timeframe { return s.timeframe }
func (s *TrackerService) Threshold() time.Duration    { return s.threshold }
func (s *TrackerService) Now() time.Time              { return s.clock.Now() }

// Start opens a session at the current instant. An open session in the
// current period is kept unless overwrite is set; one from an earlier
// period is replaced and reported as discarded.
func (s *TrackerService) Start(ctx context.Context, overwrite bool) (StartResult, error) {
	now := s.clock.Now()
	result := StartResult{At: now}

	previous, err := s.cache.LoadStart(ctx)
	switch {
	case err == nil:
		if !overwrite && domain.SameTimeframe(domain.Instant(now), domain.Instant(previous), s.timeframe) {
			return StartResult{}, apperrors.ErrAlreadyStarted
		}
		result.Discarded = previous
		log.Warn().Time("previous_start", previous).Bool("overwrite", overwrite).Msg("discarding unrecorded session")
	case overwrite && errors.Is(err, apperrors.ErrParse):
		log.Warn().Err(err).Msg("replacing unreadable start cache")
	case !errors.Is(err, apperrors.ErrNotStarted):
		return StartResult{}, err
	}

	if err := s.cache.SaveStart(ctx, now); err != nil {
		return StartResult{}, err
	}
	return result, nil
}

// Stop closes the open session and records it, split at period boundaries
// so every stored range lies within one period.
func (s *TrackerService) Stop(ctx context.Context) (StopResult, error) {
	start, err := s.cache.LoadStart(ctx)
	if err != nil {
		return StopResult{}, err
	}
	now := s.clock.Now()
	if now.Before(start) {
		log.Warn().Time("start", start).Time("now", now).Msg("clock moved backwards, recording empty session")
		now = start
	}

	before, err := s.Groups(ctx)
	if err != nil {
		return StopResult{}, err
	}

	session, err := domain.FromRange(start, now)
	if err != nil {
		return StopResult{}, err
	}
	pieces := []domain.Point{session}
	if !domain.SameTimeframe(domain.Instant(now), domain.Instant(start), s.timeframe) {
		pieces, err = session.SplitRange(s.timeframe)
		if err != nil {
			return StopResult{}, err
		}
	}
	for i, piece := range pieces {
		if err := s.records.Append(ctx, piece); err != nil {
			// Leave only the unrecorded tail open so a retry cannot store
			// the earlier pieces twice.
			if i > 0 {
				if cerr := s.cache.SaveStart(ctx, piece.Anchor()); cerr != nil {
					log.Error().Err(cerr).Time("start", piece.Anchor()).Msg("move start past recorded pieces")
				}
			}
			return StopResult{}, fmt.Errorf("append session: %w", err)
		}
	}
	if err := s.cache.ClearStart(ctx); err != nil {
		return StopResult{}, err
	}

	after, err := s.Groups(ctx)
	if err != nil {
		return StopResult{}, err
	}
	result := StopResult{Start: start, End: now, Pieces: pieces}
	for _, piece := range pieces {
		if s.totalTimeOn(before, piece) < s.threshold && s.totalTimeOn(after, piece) >= s.threshold {
			result.Completed = append(result.Completed, piece.Floor(s.timeframe))
		}
	}
	s.project(ctx, after, pieces)
	return result, nil
}

// Finish records a finished marker for the current period unless that
// period is already finished or lies before the last record.
func (s *TrackerService) Finish(ctx context.Context) (domain.Point, error) {
	points, err := s.records.ReadAll(ctx)
	if err != nil {
		return domain.Point{}, err
	}
	now := domain.Now(s.clock)
	if len(points) > 0 {
		last := points[len(points)-1]
		groups := domain.GroupTimeframes(points, s.timeframe, s.threshold)
		lastFinished := groups[len(groups)-1].Finished(s.threshold)
		allowed := now.After(last, s.timeframe) || (now.SameTimeframe(last, s.timeframe) && !lastFinished)
		if !allowed {
			return domain.Point{}, apperrors.ErrAlreadyFinished
		}
	}
	if err := s.records.Append(ctx, now); err != nil {
		return domain.Point{}, fmt.Errorf("append finish: %w", err)
	}
	s.project(ctx, nil, []domain.Point{now})
	return now, nil
}

// Active returns the start of the open session. ok is false when idle.
func (s *TrackerService) Active(ctx context.Context) (start time.Time, ok bool, err error) {
	start, err = s.cache.LoadStart(ctx)
	if errors.Is(err, apperrors.ErrNotStarted) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return start, true, nil
}

func (s *TrackerService) Groups(ctx context.Context) ([]domain.Group, error) {
	points, err := s.records.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	return domain.GroupTimeframes(points, s.timeframe, s.threshold), nil
}

func (s *TrackerService) FinishedStreaks(ctx context.Context) ([]domain.Streak, error) {
	groups, err := s.Groups(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FinishedStreaks(groups, s.timeframe, s.threshold), nil
}

// CurrentStreak returns the last streak if it still ends in the current or
// the previous period.
func (s *TrackerService) CurrentStreak(ctx context.Context) (domain.Streak, bool, error) {
	groups, err := s.Groups(ctx)
	if err != nil {
		return nil, false, err
	}
	streak, ok := s.currentStreak(groups, s.clock.Now())
	return streak, ok, nil
}

func (s *TrackerService) StreakLength(ctx context.Context) (int, error) {
	streak, ok, err := s.CurrentStreak(ctx)
	if err != nil || !ok {
		return 0, err
	}
	return streak.Len(), nil
}

func (s *TrackerService) CurrentStreakTime(ctx context.Context) (time.Duration, error) {
	groups, err := s.Groups(ctx)
	if err != nil {
		return 0, err
	}
	streak, ok := s.currentStreak(groups, s.clock.Now())
	if !ok {
		return 0, nil
	}
	dates := make([]domain.Temporal, 0, streak.Len())
	for _, g := range streak {
		dates = append(dates, g)
	}
	return s.totalTimeIn(groups, dates), nil
}

// TotalTimeOn returns the recorded time in date's period.
func (s *TrackerService) TotalTimeOn(ctx context.Context, date domain.Temporal) (time.Duration, error) {
	groups, err := s.Groups(ctx)
	if err != nil {
		return 0, err
	}
	return s.totalTimeOn(groups, date), nil
}

func (s *TrackerService) TotalTimeIn(ctx context.Context, dates []domain.Temporal) (time.Duration, error) {
	groups, err := s.Groups(ctx)
	if err != nil {
		return 0, err
	}
	return s.totalTimeIn(groups, dates), nil
}

// TotalTimeCurrent is the recorded time in the current period plus the
// elapsed time of the open session, if any.
func (s *TrackerService) TotalTimeCurrent(ctx context.Context) (time.Duration, error) {
	groups, err := s.Groups(ctx)
	if err != nil {
		return 0, err
	}
	start, active, err := s.Active(ctx)
	if err != nil {
		return 0, err
	}
	now := s.clock.Now()
	total := s.totalTimeOn(groups, domain.Instant(now))
	if active && now.After(start) {
		total += now.Sub(start)
	}
	return total, nil
}

// TimeframeRange returns the groups whose periods fall within [start, end].
// Zero bounds default to the first recorded period and now.
func (s *TrackerService) TimeframeRange(ctx context.Context, start, end time.Time) ([]domain.Group, error) {
	groups, err := s.Groups(ctx)
	if err != nil {
		return nil, err
	}
	start, end, ok := s.resolveBounds(groups, start, end, s.clock.Now())
	if !ok {
		return nil, nil
	}
	return s.timeframeRange(groups, start, end), nil
}

// FilledRange lists every period start between start and end inclusive,
// whether or not anything was recorded in it.
func (s *TrackerService) FilledRange(ctx context.Context, start, end time.Time) ([]time.Time, error) {
	groups, err := s.Groups(ctx)
	if err != nil {
		return nil, err
	}
	start, end, ok := s.resolveBounds(groups, start, end, s.clock.Now())
	if !ok {
		return nil, nil
	}
	return s.filledRange(start, end), nil
}

// StreaksRange selects the streaks overlapping [start, end]. With strict
// set, a streak must lie entirely after start and entirely before end.
func (s *TrackerService) StreaksRange(ctx context.Context, start, end time.Time, strict bool) ([]domain.Streak, error) {
	groups, err := s.Groups(ctx)
	if err != nil {
		return nil, err
	}
	start, end, ok := s.resolveBounds(groups, start, end, s.clock.Now())
	if !ok {
		return nil, nil
	}
	streaks := domain.FinishedStreaks(groups, s.timeframe, s.threshold)
	return streaksRange(streaks, domain.Instant(start), domain.Instant(end), s.timeframe, strict), nil
}

// StreaksBoolean marks each period of FilledRange. The current period is
// Pending rather than Unfinished while it can still be finished.
func (s *TrackerService) StreaksBoolean(ctx context.Context, start, end time.Time) ([]domain.Mark, error) {
	cells, err := s.Board(ctx, start, end)
	if err != nil {
		return nil, err
	}
	marks := make([]domain.Mark, 0, len(cells))
	for _, cell := range cells {
		marks = append(marks, cell.Mark)
	}
	return marks, nil
}

// Board pairs every period of FilledRange with its total and mark.
func (s *TrackerService) Board(ctx context.Context, start, end time.Time) ([]domain.Cell, error) {
	groups, err := s.Groups(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	start, end, ok := s.resolveBounds(groups, start, end, now)
	if !ok {
		return nil, nil
	}
	periods := s.filledRange(start, end)
	cells := make([]domain.Cell, 0, len(periods))
	for _, period := range periods {
		total := s.totalTimeOn(groups, domain.Instant(period))
		mark := domain.Unfinished
		if total >= s.threshold {
			mark = domain.Finished
		}
		cells = append(cells, domain.Cell{Start: period, Total: total, Mark: mark})
	}
	if n := len(cells); n > 0 && cells[n-1].Mark == domain.Unfinished &&
		domain.SameTimeframe(domain.Instant(now), domain.Instant(end), s.timeframe) {
		cells[n-1].Mark = domain.Pending
	}
	return cells, nil
}

// Reindex rebuilds the period projection from the full log and returns the
// number of periods the index holds afterwards.
func (s *TrackerService) Reindex(ctx context.Context) (int, error) {
	if s.projector == nil {
		return 0, nil
	}
	groups, err := s.Groups(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.projector.Reset(ctx); err != nil {
		return 0, err
	}
	for _, g := range groups {
		if err := s.projector.UpsertPeriod(ctx, domain.Summarize(g, s.timeframe, s.threshold)); err != nil {
			return 0, err
		}
	}
	indexed, err := s.projector.ListPeriods(ctx, s.timeframe)
	if err != nil {
		return 0, err
	}
	if len(indexed) != len(groups) {
		return 0, fmt.Errorf("%w: index holds %d periods, log has %d", apperrors.ErrInvariant, len(indexed), len(groups))
	}
	return len(indexed), nil
}

// project refreshes the projection rows of the periods touched by points.
// Projection failures are logged, never returned: the log stays the source
// of truth and `reindex` repairs the index.
func (s *TrackerService) project(ctx context.Context, groups []domain.Group, touched []domain.Point) {
	if s.projector == nil {
		return
	}
	if groups == nil {
		var err error
		if groups, err = s.Groups(ctx); err != nil {
			log.Warn().Err(err).Msg("skip projection refresh")
			return
		}
	}
	for _, g := range groups {
		for _, p := range touched {
			if !g.SameTimeframe(p, s.timeframe) {
				continue
			}
			if err := s.projector.UpsertPeriod(ctx, domain.Summarize(g, s.timeframe, s.threshold)); err != nil {
				log.Warn().Err(err).Time("period", g.Anchor()).Msg("projection refresh failed")
			}
			break
		}
	}
}

func (s *TrackerService) currentStreak(groups []domain.Group, now time.Time) (domain.Streak, bool) {
	streaks := domain.FinishedStreaks(groups, s.timeframe, s.threshold)
	if len(streaks) == 0 {
		return nil, false
	}
	last := streaks[len(streaks)-1]
	if !domain.WithinStreak(domain.Instant(now), last.Last(), s.timeframe) {
		return nil, false
	}
	return last, true
}

func (s *TrackerService) totalTimeOn(groups []domain.Group, date domain.Temporal) time.Duration {
	for _, g := range groups {
		if g.SameTimeframe(date, s.timeframe) {
			return g.TotalTime()
		}
	}
	return 0
}

func (s *TrackerService) totalTimeIn(groups []domain.Group, dates []domain.Temporal) time.Duration {
	var total time.Duration
	for _, date := range dates {
		total += s.totalTimeOn(groups, date)
	}
	return total
}

// resolveBounds fills zero bounds: start defaults to the first recorded
// period and end to now. ok is false when start cannot be resolved.
func (s *TrackerService) resolveBounds(groups []domain.Group, start, end, now time.Time) (time.Time, time.Time, bool) {
	if start.IsZero() {
		if len(groups) == 0 {
			return time.Time{}, time.Time{}, false
		}
		start = groups[0].Anchor()
	}
	if end.IsZero() {
		end = now
	}
	return start, end, true
}

func (s *TrackerService) timeframeRange(groups []domain.Group, start, end time.Time) []domain.Group {
	lowOrd, highOrd := s.timeframe.Ordinal(start), s.timeframe.Ordinal(end)
	lo := sort.Search(len(groups), func(i int) bool { return groups[i].Ordinal(s.timeframe) >= lowOrd })
	hi := sort.Search(len(groups), func(i int) bool { return groups[i].Ordinal(s.timeframe) > highOrd })
	if lo >= hi {
		return nil
	}
	return groups[lo:hi]
}

func (s *TrackerService) filledRange(start, end time.Time) []time.Time {
	var out []time.Time
	last := s.timeframe.Ordinal(end)
	for period := s.timeframe.Floor(start); s.timeframe.Ordinal(period) <= last; period = s.timeframe.Step(period) {
		out = append(out, period)
	}
	return out
}

func streaksRange(streaks []domain.Streak, start, end domain.Temporal, tf domain.Timeframe, strict bool) []domain.Streak {
	startOK := func(streak domain.Streak) bool {
		for _, g := range streak {
			atOrAfter := !domain.Before(g, start, tf)
			if strict && !domain.After(g, start, tf) {
				return false
			}
			if !strict && atOrAfter {
				return true
			}
		}
		return strict
	}
	endOK := func(streak domain.Streak) bool {
		for _, g := range streak {
			atOrBefore := !domain.After(g, end, tf)
			if strict && !domain.Before(g, end, tf) {
				return false
			}
			if !strict && atOrBefore {
				return true
			}
		}
		return strict
	}

	first := -1
	for i, streak := range streaks {
		if startOK(streak) {
			first = i
			break
		}
	}
	last := -1
	for i := len(streaks) - 1; i >= 0; i-- {
		if endOK(streaks[i]) {
			last = i
			break
		}
	}
	if first < 0 || last < 0 || first > last {
		return nil
	}
	return streaks[first : last+1]
}
