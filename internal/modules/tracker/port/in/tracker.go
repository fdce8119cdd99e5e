package in

import (
	"context"

	"onehour/internal/modules/tracker/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.StartOutput, error)
	Stop(ctx context.Context) (dto.StopOutput, error)
	Finish(ctx context.Context) (dto.FinishOutput, error)
	Status(ctx context.Context) (dto.StatusOutput, error)
	Times(ctx context.Context, input dto.RangeInput) ([]dto.PeriodOutput, error)
	Streaks(ctx context.Context, input dto.StreaksInput) ([]dto.StreakOutput, error)
	Board(ctx context.Context, input dto.RangeInput) (dto.BoardOutput, error)
	Reindex(ctx context.Context) (dto.ReindexOutput, error)
}
