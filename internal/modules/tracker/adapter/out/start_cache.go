package out

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"onehour/internal/modules/tracker/domain"
	trackerout "onehour/internal/modules/tracker/port/out"
	apperrors "onehour/internal/platform/errors"
)

type cacheFile struct {
	StartTime *string `json:"start_time"`
}

// JSONStartCache keeps the open session start in a small JSON document.
type JSONStartCache struct {
	path string
}

func NewJSONStartCache(path string) trackerout.StartCache {
	return &JSONStartCache{path: path}
}

func (c *JSONStartCache) SaveStart(_ context.Context, start time.Time) error {
	frozen := domain.FromInstant(start).String()
	return c.write(cacheFile{StartTime: &frozen})
}

func (c *JSONStartCache) LoadStart(_ context.Context) (time.Time, error) {
	payload, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return time.Time{}, apperrors.ErrNotStarted
		}
		return time.Time{}, fmt.Errorf("read cache: %w", err)
	}
	var doc cacheFile
	if err := json.Unmarshal(payload, &doc); err != nil {
		return time.Time{}, fmt.Errorf("%w: decode cache: %v", apperrors.ErrParse, err)
	}
	if doc.StartTime == nil {
		return time.Time{}, apperrors.ErrNotStarted
	}
	point, err := domain.ParsePoint(*doc.StartTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode start time: %w", err)
	}
	return point.Anchor(), nil
}

func (c *JSONStartCache) ClearStart(_ context.Context) error {
	return c.write(cacheFile{})
}

func (c *JSONStartCache) write(doc cacheFile) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	if err := os.WriteFile(c.path, payload, 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}
