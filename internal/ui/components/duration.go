package components

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration spells d out in hours, minutes and seconds. Seconds are
// dropped once the duration reaches an hour.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return "nothing"
	}
	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	var parts []string
	add := func(n int64, unit string) {
		if n == 0 {
			return
		}
		if n == 1 {
			parts = append(parts, fmt.Sprintf("1 %s", unit))
			return
		}
		parts = append(parts, fmt.Sprintf("%d %ss", n, unit))
	}
	add(hours, "hour")
	add(minutes, "minute")
	if hours == 0 {
		add(seconds, "second")
	}
	return strings.Join(parts, ", ")
}
