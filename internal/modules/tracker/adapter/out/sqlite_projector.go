package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"onehour/internal/modules/tracker/domain"
	trackerout "onehour/internal/modules/tracker/port/out"

	_ "modernc.org/sqlite"
)

// SQLitePeriodProjector keeps a queryable per-period index next to the
// record log. The log stays authoritative; Reset followed by a full upsert
// rebuilds the table.
type SQLitePeriodProjector struct {
	db *sql.DB
}

func NewSQLitePeriodProjector(dbPath string) (*SQLitePeriodProjector, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	projector := &SQLitePeriodProjector{db: db}
	if err := projector.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return projector, nil
}

var _ trackerout.PeriodProjector = (*SQLitePeriodProjector)(nil)

func (s *SQLitePeriodProjector) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS periods (
  timeframe TEXT NOT NULL,
  ordinal INTEGER NOT NULL,
  start TEXT NOT NULL,
  records INTEGER NOT NULL,
  total_seconds REAL NOT NULL,
  finished INTEGER NOT NULL,
  schema_version INTEGER NOT NULL,
  PRIMARY KEY (timeframe, ordinal)
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create periods table: %w", err)
	}
	return nil
}

func (s *SQLitePeriodProjector) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM periods`); err != nil {
		return fmt.Errorf("reset periods: %w", err)
	}
	return nil
}

func (s *SQLitePeriodProjector) UpsertPeriod(ctx context.Context, summary domain.PeriodSummary) error {
	const stmt = `
INSERT INTO periods (timeframe, ordinal, start, records, total_seconds, finished, schema_version)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(timeframe, ordinal) DO UPDATE SET
  start=excluded.start,
  records=excluded.records,
  total_seconds=excluded.total_seconds,
  finished=excluded.finished,
  schema_version=excluded.schema_version;
`
	finished := 0
	if summary.Finished {
		finished = 1
	}
	_, err := s.db.ExecContext(ctx, stmt,
		string(summary.Timeframe),
		summary.Ordinal,
		summary.Start.Format(time.RFC3339),
		summary.Records,
		summary.Total.Seconds(),
		finished,
		domain.SchemaVersion,
	)
	if err != nil {
		return fmt.Errorf("upsert period: %w", err)
	}
	return nil
}

// ListPeriods returns the projected periods of tf in ordinal order.
func (s *SQLitePeriodProjector) ListPeriods(ctx context.Context, tf domain.Timeframe) ([]domain.PeriodSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT ordinal, start, records, total_seconds, finished
FROM periods WHERE timeframe = ? ORDER BY ordinal`, string(tf))
	if err != nil {
		return nil, fmt.Errorf("query periods: %w", err)
	}
	defer rows.Close()

	var out []domain.PeriodSummary
	for rows.Next() {
		var (
			summary  domain.PeriodSummary
			start    string
			seconds  float64
			finished int
		)
		if err := rows.Scan(&summary.Ordinal, &start, &summary.Records, &seconds, &finished); err != nil {
			return nil, fmt.Errorf("scan period: %w", err)
		}
		if summary.Start, err = time.Parse(time.RFC3339, start); err != nil {
			return nil, fmt.Errorf("parse period start: %w", err)
		}
		summary.Timeframe = tf
		summary.Total = time.Duration(seconds * float64(time.Second))
		summary.Finished = finished == 1
		out = append(out, summary)
	}
	return out, rows.Err()
}

func (s *SQLitePeriodProjector) Close() error {
	return s.db.Close()
}
