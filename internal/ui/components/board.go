package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	trackerdto "onehour/internal/modules/tracker/dto"
	"onehour/internal/ui/theme"
)

const (
	glyphFinished   = "◼"
	glyphUnfinished = "◻"
)

// RenderBoard draws one square per period: filled for finished periods,
// hollow otherwise. Runs of the same mark share one style span. With plain
// set, no ANSI styling is emitted and pending periods render as "?".
func RenderBoard(cells []trackerdto.CellOutput, plain bool) string {
	var sb strings.Builder
	for i := 0; i < len(cells); {
		j := i
		for j < len(cells) && cells[j].Mark == cells[i].Mark {
			j++
		}
		sb.WriteString(renderRun(cells[i].Mark, j-i, plain))
		i = j
	}
	return sb.String()
}

func renderRun(mark string, n int, plain bool) string {
	glyph, style := glyphUnfinished, theme.Missed
	switch mark {
	case "finished":
		glyph, style = glyphFinished, theme.Done
	case "pending":
		style = theme.Pending
		if plain {
			glyph = "?"
		}
	}
	run := strings.Repeat(glyph, n)
	if plain {
		return run
	}
	return style.Render(run)
}

// BoardLegend explains the glyphs used by RenderBoard.
func BoardLegend(plain bool) string {
	if plain {
		return glyphFinished + " finished  " + glyphUnfinished + " missed  ? open"
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		theme.Done.Render(glyphFinished), theme.Muted.Render(" finished  "),
		theme.Missed.Render(glyphUnfinished), theme.Muted.Render(" missed  "),
		theme.Pending.Render(glyphUnfinished), theme.Muted.Render(" open"),
	)
}
