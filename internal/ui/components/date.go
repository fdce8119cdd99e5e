package components

import (
	"fmt"
	"strings"
	"time"

	apperrors "onehour/internal/platform/errors"
)

// ParseDate accepts a calendar date (2006-01-02, read in loc) or a full
// RFC3339 timestamp. Empty input yields the zero time.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(loc), nil
	}
	return time.Time{}, fmt.Errorf("%w: date %q, want YYYY-MM-DD or RFC3339", apperrors.ErrInvalidInput, raw)
}
