package usecase_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	trackerout "onehour/internal/modules/tracker/adapter/out"
	"onehour/internal/modules/tracker/domain"
	trackerdto "onehour/internal/modules/tracker/dto"
	trackerin "onehour/internal/modules/tracker/port/in"
	"onehour/internal/modules/tracker/service"
	"onehour/internal/modules/tracker/usecase"
	"onehour/internal/platform/clock"
	apperrors "onehour/internal/platform/errors"
)

type fakeClock struct {
	values []time.Time
	idx    int
}

func (f *fakeClock) Now() time.Time {
	if f.idx >= len(f.values) {
		return f.values[len(f.values)-1]
	}
	v := f.values[f.idx]
	f.idx++
	return v
}

type fakeNotifier struct {
	messages []string
	err      error
}

func (f *fakeNotifier) Notify(_ context.Context, _, message string) error {
	f.messages = append(f.messages, message)
	return f.err
}

type setClock struct {
	now time.Time
}

func (s *setClock) Now() time.Time { return s.now }

func newInteractor(t *testing.T, clk clock.Clock, notifier *fakeNotifier) trackerin.Usecase {
	t.Helper()
	home := t.TempDir()
	svc, err := service.NewTrackerService(
		clk,
		trackerout.NewCSVRecordLog(filepath.Join(home, "data.csv")),
		trackerout.NewJSONStartCache(filepath.Join(home, "cache.json")),
		nil,
		service.Settings{Timeframe: domain.Day, Threshold: time.Hour},
	)
	if err != nil {
		t.Fatalf("new tracker service: %v", err)
	}
	if notifier == nil {
		return usecase.NewInteractor(svc, nil)
	}
	return usecase.NewInteractor(svc, notifier)
}

func TestStartStopNotifiesWhenDayFinishes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := &fakeClock{values: []time.Time{
		time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 10, 15, 0, 0, time.UTC),
	}}
	notifier := &fakeNotifier{err: errors.New("no display")}
	uc := newInteractor(t, clk, notifier)

	start, err := uc.Start(ctx, trackerdto.StartInput{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !start.Discarded.IsZero() {
		t.Fatalf("nothing should be discarded, got %v", start.Discarded)
	}

	stop, err := uc.Stop(ctx)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if stop.Duration != 75*time.Minute {
		t.Fatalf("expected 75m session, got %s", stop.Duration)
	}
	if stop.Pieces != 1 || len(stop.Completed) != 1 {
		t.Fatalf("expected one piece completing one day, got %d pieces %d completed", stop.Pieces, len(stop.Completed))
	}
	if len(notifier.messages) != 1 || notifier.messages[0] != "day of 2026-03-02 finished" {
		t.Fatalf("unexpected notifications: %v", notifier.messages)
	}

	if _, err := uc.Stop(ctx); !errors.Is(err, apperrors.ErrNotStarted) {
		t.Fatalf("expected not started, got %v", err)
	}
}

func TestStatusReportsActiveSessionAndStreak(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := &setClock{now: time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC)}
	uc := newInteractor(t, clk, nil)

	if _, err := uc.Finish(ctx); err != nil {
		t.Fatalf("finish: %v", err)
	}
	clk.now = time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	if _, err := uc.Start(ctx, trackerdto.StartInput{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	clk.now = time.Date(2026, 3, 3, 9, 25, 0, 0, time.UTC)

	status, err := uc.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.Active || status.Elapsed != 25*time.Minute {
		t.Fatalf("expected active session of 25m, got %+v", status)
	}
	if status.CurrentTotal != 25*time.Minute {
		t.Fatalf("expected current total 25m, got %s", status.CurrentTotal)
	}
	if status.StreakLength != 1 || status.StreakTotal != time.Hour {
		t.Fatalf("expected 1 day streak worth 1h, got %d %s", status.StreakLength, status.StreakTotal)
	}
	if status.Timeframe != "day" || status.Threshold != time.Hour {
		t.Fatalf("unexpected settings in status: %+v", status)
	}
}

func TestRangeQueriesMapToOutputs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := &setClock{}
	uc := newInteractor(t, clk, nil)

	for _, d := range []int{2, 3, 5} {
		clk.now = time.Date(2026, 3, d, 21, 0, 0, 0, time.UTC)
		if _, err := uc.Finish(ctx); err != nil {
			t.Fatalf("finish day %d: %v", d, err)
		}
	}
	clk.now = time.Date(2026, 3, 6, 8, 0, 0, 0, time.UTC)
	if _, err := uc.Finish(ctx); err != nil {
		t.Fatalf("finish today: %v", err)
	}
	if _, err := uc.Finish(ctx); !errors.Is(err, apperrors.ErrAlreadyFinished) {
		t.Fatalf("expected already finished, got %v", err)
	}

	periods, err := uc.Times(ctx, trackerdto.RangeInput{})
	if err != nil {
		t.Fatalf("times: %v", err)
	}
	if len(periods) != 4 || !periods[0].Finished || periods[0].Records != 1 {
		t.Fatalf("unexpected periods: %+v", periods)
	}

	streaks, err := uc.Streaks(ctx, trackerdto.StreaksInput{})
	if err != nil {
		t.Fatalf("streaks: %v", err)
	}
	if len(streaks) != 2 || streaks[0].Length != 2 || streaks[1].Length != 2 {
		t.Fatalf("unexpected streaks: %+v", streaks)
	}
	if streaks[1].Total != 2*time.Hour {
		t.Fatalf("expected 2h in second streak, got %s", streaks[1].Total)
	}

	board, err := uc.Board(ctx, trackerdto.RangeInput{Start: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	want := []string{"unfinished", "finished", "finished", "unfinished", "finished", "finished"}
	if len(board.Cells) != len(want) {
		t.Fatalf("expected %d cells, got %d", len(want), len(board.Cells))
	}
	for i, cell := range board.Cells {
		if cell.Mark != want[i] {
			t.Fatalf("cell %d: expected %s, got %s", i, want[i], cell.Mark)
		}
	}

	reindexed, err := uc.Reindex(ctx)
	if err != nil {
		t.Fatalf("reindex without projector: %v", err)
	}
	if reindexed.Periods != 0 {
		t.Fatalf("expected no projected periods, got %d", reindexed.Periods)
	}
}
