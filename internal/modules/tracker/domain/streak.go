package domain

import (
	"time"

	"onehour/internal/platform/runs"
)

// Streak is a maximal, non-empty run of finished periods whose ordinals are
// equal or consecutive.
type Streak []Group

func (s Streak) Len() int     { return len(s) }
func (s Streak) First() Group { return s[0] }
func (s Streak) Last() Group  { return s[len(s)-1] }

func (s Streak) TotalTime() time.Duration {
	var total time.Duration
	for _, g := range s {
		total += g.TotalTime()
	}
	return total
}

// FinishedStreaks keeps the groups that reached threshold and splits them
// into streaks.
func FinishedStreaks(groups []Group, tf Timeframe, threshold time.Duration) []Streak {
	finished := make([]Group, 0, len(groups))
	for _, g := range groups {
		if g.Finished(threshold) {
			finished = append(finished, g)
		}
	}
	chunks := runs.Group(finished, func(prev, curr Group) bool {
		return prev.WithinStreak(curr, tf)
	})
	out := make([]Streak, 0, len(chunks))
	for _, chunk := range chunks {
		out = append(out, Streak(chunk))
	}
	return out
}

// Mark is the state of one period on the streak board.
type Mark int

const (
	Unfinished Mark = iota
	Finished
	// Pending is an unfinished current period that can still be finished.
	Pending
)

func (m Mark) String() string {
	switch m {
	case Finished:
		return "finished"
	case Pending:
		return "pending"
	default:
		return "unfinished"
	}
}
