package dto

import "time"

type StartInput struct {
	Overwrite bool
}

type StartOutput struct {
	StartedAt time.Time
	// Discarded is the overwritten start, zero when none was dropped.
	Discarded time.Time
}

type StopOutput struct {
	StartedAt time.Time
	StoppedAt time.Time
	Duration  time.Duration
	Pieces    int
	Completed []time.Time
}

type FinishOutput struct {
	FinishedAt time.Time
}

type StatusOutput struct {
	Timeframe    string
	Threshold    time.Duration
	Active       bool
	StartedAt    time.Time
	Elapsed      time.Duration
	CurrentTotal time.Duration
	StreakLength int
	StreakTotal  time.Duration
}

type RangeInput struct {
	// Zero values default to the first recorded period and now.
	Start time.Time
	End   time.Time
}

type StreaksInput struct {
	RangeInput
	Strict bool
}

type PeriodOutput struct {
	Start    time.Time
	Records  int
	Total    time.Duration
	Finished bool
}

type StreakOutput struct {
	Start  time.Time
	End    time.Time
	Length int
	Total  time.Duration
}

type CellOutput struct {
	Start time.Time
	Total time.Duration
	Mark  string
}

type BoardOutput struct {
	Timeframe string
	Threshold time.Duration
	Cells     []CellOutput
}

type ReindexOutput struct {
	Periods int
}
