package in

import (
	"context"
	"time"

	trackerdto "onehour/internal/modules/tracker/dto"
	trackerin "onehour/internal/modules/tracker/port/in"
)

type CLIHandler struct {
	usecase trackerin.Usecase
}

func NewCLIHandler(usecase trackerin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, overwrite bool) (trackerdto.StartOutput, error) {
	return h.usecase.Start(ctx, trackerdto.StartInput{Overwrite: overwrite})
}

func (h CLIHandler) Stop(ctx context.Context) (trackerdto.StopOutput, error) {
	return h.usecase.Stop(ctx)
}

func (h CLIHandler) Finish(ctx context.Context) (trackerdto.FinishOutput, error) {
	return h.usecase.Finish(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (trackerdto.StatusOutput, error) {
	return h.usecase.Status(ctx)
}

func (h CLIHandler) Times(ctx context.Context, start, end time.Time) ([]trackerdto.PeriodOutput, error) {
	return h.usecase.Times(ctx, trackerdto.RangeInput{Start: start, End: end})
}

func (h CLIHandler) Streaks(ctx context.Context, start, end time.Time, strict bool) ([]trackerdto.StreakOutput, error) {
	return h.usecase.Streaks(ctx, trackerdto.StreaksInput{RangeInput: trackerdto.RangeInput{Start: start, End: end}, Strict: strict})
}

func (h CLIHandler) Board(ctx context.Context, start, end time.Time) (trackerdto.BoardOutput, error) {
	return h.usecase.Board(ctx, trackerdto.RangeInput{Start: start, End: end})
}

func (h CLIHandler) Reindex(ctx context.Context) (trackerdto.ReindexOutput, error) {
	return h.usecase.Reindex(ctx)
}
