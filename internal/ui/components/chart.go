package components

import (
	"fmt"
	"time"

	"github.com/guptarohit/asciigraph"

	trackerdto "onehour/internal/modules/tracker/dto"
	"onehour/internal/ui/theme"
)

// RenderTimesChart plots minutes recorded per period.
func RenderTimesChart(periods []trackerdto.PeriodOutput, threshold time.Duration, width, height int) string {
	if len(periods) == 0 {
		return theme.Muted.Render("No data available")
	}
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}
	data := make([]float64, 0, len(periods))
	for _, p := range periods {
		data = append(data, p.Total.Minutes())
	}
	if len(data) == 1 {
		// asciigraph needs two points to draw a line.
		data = append(data, data[0])
	}
	caption := fmt.Sprintf("minutes per period, %s to %s (goal %.0f)",
		periods[0].Start.Format("2006-01-02"),
		periods[len(periods)-1].Start.Format("2006-01-02"),
		threshold.Minutes())
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.LowerBound(0),
		asciigraph.Caption(caption),
	)
}
