package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"onehour/internal/modules/tracker/domain"
	trackerdto "onehour/internal/modules/tracker/dto"
	trackerin "onehour/internal/modules/tracker/port/in"
	trackerout "onehour/internal/modules/tracker/port/out"
	"onehour/internal/modules/tracker/service"
)

const notifyTitle = "onehour"

type Interactor struct {
	svc      *service.TrackerService
	notifier trackerout.Notifier
}

// NewInteractor wires the tracker service to the inbound port. notifier may
// be nil.
func NewInteractor(svc *service.TrackerService, notifier trackerout.Notifier) trackerin.Usecase {
	return &Interactor{svc: svc, notifier: notifier}
}

func (i *Interactor) Start(ctx context.Context, input trackerdto.StartInput) (trackerdto.StartOutput, error) {
	result, err := i.svc.Start(ctx, input.Overwrite)
	if err != nil {
		return trackerdto.StartOutput{}, err
	}
	return trackerdto.StartOutput{StartedAt: result.At, Discarded: result.Discarded}, nil
}

func (i *Interactor) Stop(ctx context.Context) (trackerdto.StopOutput, error) {
	result, err := i.svc.Stop(ctx)
	if err != nil {
		return trackerdto.StopOutput{}, err
	}
	for _, period := range result.Completed {
		i.notify(ctx, fmt.Sprintf("%s of %s finished", i.svc.Timeframe(), period.Format("2006-01-02")))
	}
	return trackerdto.StopOutput{
		StartedAt: result.Start,
		StoppedAt: result.End,
		Duration:  result.End.Sub(result.Start),
		Pieces:    len(result.Pieces),
		Completed: result.Completed,
	}, nil
}

func (i *Interactor) Finish(ctx context.Context) (trackerdto.FinishOutput, error) {
	point, err := i.svc.Finish(ctx)
	if err != nil {
		return trackerdto.FinishOutput{}, err
	}
	return trackerdto.FinishOutput{FinishedAt: point.Anchor()}, nil
}

func (i *Interactor) Status(ctx context.Context) (trackerdto.StatusOutput, error) {
	out := trackerdto.StatusOutput{
		Timeframe: string(i.svc.Timeframe()),
		Threshold: i.svc.Threshold(),
	}
	start, active, err := i.svc.Active(ctx)
	if err != nil {
		return trackerdto.StatusOutput{}, err
	}
	if active {
		out.Active = true
		out.StartedAt = start
		if elapsed := i.svc.Now().Sub(start); elapsed > 0 {
			out.Elapsed = elapsed
		}
	}
	if out.CurrentTotal, err = i.svc.TotalTimeCurrent(ctx); err != nil {
		return trackerdto.StatusOutput{}, err
	}
	if out.StreakLength, err = i.svc.StreakLength(ctx); err != nil {
		return trackerdto.StatusOutput{}, err
	}
	if out.StreakTotal, err = i.svc.CurrentStreakTime(ctx); err != nil {
		return trackerdto.StatusOutput{}, err
	}
	return out, nil
}

func (i *Interactor) Times(ctx context.Context, input trackerdto.RangeInput) ([]trackerdto.PeriodOutput, error) {
	groups, err := i.svc.TimeframeRange(ctx, input.Start, input.End)
	if err != nil {
		return nil, err
	}
	out := make([]trackerdto.PeriodOutput, 0, len(groups))
	for _, g := range groups {
		summary := domain.Summarize(g, i.svc.Timeframe(), i.svc.Threshold())
		out = append(out, trackerdto.PeriodOutput{
			Start:    summary.Start,
			Records:  summary.Records,
			Total:    summary.Total,
			Finished: summary.Finished,
		})
	}
	return out, nil
}

func (i *Interactor) Streaks(ctx context.Context, input trackerdto.StreaksInput) ([]trackerdto.StreakOutput, error) {
	streaks, err := i.svc.StreaksRange(ctx, input.Start, input.End, input.Strict)
	if err != nil {
		return nil, err
	}
	out := make([]trackerdto.StreakOutput, 0, len(streaks))
	for _, streak := range streaks {
		out = append(out, trackerdto.StreakOutput{
			Start:  streak.First().Anchor(),
			End:    streak.Last().Anchor(),
			Length: streak.Len(),
			Total:  streak.TotalTime(),
		})
	}
	return out, nil
}

func (i *Interactor) Board(ctx context.Context, input trackerdto.RangeInput) (trackerdto.BoardOutput, error) {
	cells, err := i.svc.Board(ctx, input.Start, input.End)
	if err != nil {
		return trackerdto.BoardOutput{}, err
	}
	out := trackerdto.BoardOutput{
		Timeframe: string(i.svc.Timeframe()),
		Threshold: i.svc.Threshold(),
		Cells:     make([]trackerdto.CellOutput, 0, len(cells)),
	}
	for _, cell := range cells {
		out.Cells = append(out.Cells, trackerdto.CellOutput{Start: cell.Start, Total: cell.Total, Mark: cell.Mark.String()})
	}
	return out, nil
}

func (i *Interactor) Reindex(ctx context.Context) (trackerdto.ReindexOutput, error) {
	n, err := i.svc.Reindex(ctx)
	if err != nil {
		return trackerdto.ReindexOutput{}, err
	}
	return trackerdto.ReindexOutput{Periods: n}, nil
}

func (i *Interactor) notify(ctx context.Context, message string) {
	if i.notifier == nil {
		return
	}
	if err := i.notifier.Notify(ctx, notifyTitle, message); err != nil {
		log.Warn().Err(err).Msg("desktop notification failed")
	}
}
