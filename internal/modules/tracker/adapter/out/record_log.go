package out

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"onehour/internal/modules/tracker/domain"
	trackerout "onehour/internal/modules/tracker/port/out"
)

// CSVRecordLog stores one serialized point per row, appended in
// chronological order.
type CSVRecordLog struct {
	path string
}

func NewCSVRecordLog(path string) trackerout.RecordLog {
	return &CSVRecordLog{path: path}
}

func (l *CSVRecordLog) Append(_ context.Context, point domain.Point) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open record log: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write([]string{point.String()}); err != nil {
		_ = f.Close()
		return fmt.Errorf("write record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush record: %w", err)
	}
	return f.Close()
}

// ReadAll returns every parseable record. Malformed rows are logged and
// skipped so one bad line never hides the rest of the history.
func (l *CSVRecordLog) ReadAll(_ context.Context) ([]domain.Point, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open record log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var points []domain.Point
	for row := 1; ; row++ {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warn().Err(err).Str("path", l.path).Int("row", row).Msg("skip unreadable record")
			continue
		}
		if len(fields) == 0 {
			continue
		}
		point, err := domain.ParsePoint(fields[0])
		if err != nil {
			log.Warn().Err(err).Str("path", l.path).Int("row", row).Msg("skip malformed record")
			continue
		}
		points = append(points, point)
	}
	return points, nil
}
