package domain

import "time"

const SchemaVersion = 1

// PeriodSummary is the projected, queryable view of one group.
type PeriodSummary struct {
	Timeframe Timeframe
	Ordinal   int64
	Start     time.Time
	Records   int
	Total     time.Duration
	Finished  bool
}

func Summarize(g Group, tf Timeframe, threshold time.Duration) PeriodSummary {
	return PeriodSummary{
		Timeframe: tf,
		Ordinal:   g.Ordinal(tf),
		Start:     g.Anchor(),
		Records:   g.Len(),
		Total:     g.TotalTime(),
		Finished:  g.Finished(threshold),
	}
}

// Cell is one period of the streak board.
type Cell struct {
	Start time.Time
	Total time.Duration
	Mark  Mark
}
