package out

import (
	"context"
	"time"

	"onehour/internal/modules/tracker/domain"
)

// RecordLog is the append-only, ordered log of every finish marker and
// session range.
type RecordLog interface {
	Append(ctx context.Context, point domain.Point) error
	ReadAll(ctx context.Context) ([]domain.Point, error)
}

// StartCache holds the anchor of the in-progress session across runs.
// LoadStart returns apperrors.ErrNotStarted when no session is open.
type StartCache interface {
	SaveStart(ctx context.Context, start time.Time) error
	LoadStart(ctx context.Context) (time.Time, error)
	ClearStart(ctx context.Context) error
}

type PeriodProjector interface {
	Reset(ctx context.Context) error
	UpsertPeriod(ctx context.Context, period domain.PeriodSummary) error
	ListPeriods(ctx context.Context, tf domain.Timeframe) ([]domain.PeriodSummary, error)
}

type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}
