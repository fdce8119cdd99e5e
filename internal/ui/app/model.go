package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	trackerdto "onehour/internal/modules/tracker/dto"
	apperrors "onehour/internal/platform/errors"
	"onehour/internal/ui/components"
	"onehour/internal/ui/theme"
)

// TrackerPort is the slice of the tracker CLI handler the dashboard drives.
type TrackerPort interface {
	Start(ctx context.Context, overwrite bool) (trackerdto.StartOutput, error)
	Stop(ctx context.Context) (trackerdto.StopOutput, error)
	Finish(ctx context.Context) (trackerdto.FinishOutput, error)
	Status(ctx context.Context) (trackerdto.StatusOutput, error)
	Times(ctx context.Context, start, end time.Time) ([]trackerdto.PeriodOutput, error)
	Board(ctx context.Context, start, end time.Time) (trackerdto.BoardOutput, error)
	Reindex(ctx context.Context) (trackerdto.ReindexOutput, error)
}

// ─── async messages ──────────────────────────────────────────────────────────

type snapshotMsg struct {
	status  trackerdto.StatusOutput
	board   trackerdto.BoardOutput
	periods []trackerdto.PeriodOutput
	err     error
}

type actionMsg struct {
	text string
	err  error
}

type fileChangedMsg struct{}

type tickMsg time.Time

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Start     key.Binding
	Overwrite key.Binding
	Stop      key.Binding
	Finish    key.Binding
	Reindex   key.Binding
	Help      key.Binding
	Palette   key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Start:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		Overwrite: key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "restart now")),
		Stop:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		Finish:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "finish")),
		Reindex:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reindex")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette:   key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Stop, k.Finish, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Overwrite, k.Stop, k.Finish},
		{k.Reindex, k.Palette},
		{k.Help, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the dashboard: session state, the streak board and a chart of
// recorded time. It reloads whenever the record log or start cache change
// on disk, so a `stop` run from another shell shows up immediately.
type Model struct {
	tracker TrackerPort
	changes <-chan struct{}

	keys     keyMap
	help     help.Model
	showHelp bool
	palette  components.Palette

	status  trackerdto.StatusOutput
	board   trackerdto.BoardOutput
	periods []trackerdto.PeriodOutput

	rangeStart time.Time
	rangeEnd   time.Time

	message string
	width   int
	height  int
}

// NewModel builds the dashboard. changes may be nil when file watching is
// unavailable.
func NewModel(tracker TrackerPort, changes <-chan struct{}) Model {
	return Model{
		tracker: tracker,
		changes: changes,
		keys:    defaultKeys(),
		help:    help.New(),
		palette: components.NewPalette(),
		message: "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.waitForChangeCmd(), tickCmd())
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 72))
		m.help.Width = m.width

	case snapshotMsg:
		if msg.err != nil {
			m.message = "load failed: " + msg.err.Error()
			return m, nil
		}
		m.status = msg.status
		m.board = msg.board
		m.periods = msg.periods

	case actionMsg:
		switch {
		case msg.err == nil:
			m.message = msg.text
		case isNoop(msg.err):
			m.message = msg.err.Error()
		default:
			m.message = "error: " + msg.err.Error()
		}
		return m, m.loadCmd()

	case fileChangedMsg:
		return m, tea.Batch(m.loadCmd(), m.waitForChangeCmd())

	case tickMsg:
		if m.status.Active {
			m.status.Elapsed = time.Time(msg).Sub(m.status.StartedAt)
		}
		return m, tickCmd()

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.message = "ready"

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
		case key.Matches(msg, m.keys.Palette):
			return m, m.palette.Open()
		case key.Matches(msg, m.keys.Start):
			return m, m.startCmd(false)
		case key.Matches(msg, m.keys.Overwrite):
			return m, m.startCmd(true)
		case key.Matches(msg, m.keys.Stop):
			return m, m.stopCmd()
		case key.Matches(msg, m.keys.Finish):
			return m, m.finishCmd()
		case key.Matches(msg, m.keys.Reindex):
			return m, m.reindexCmd()
		}
	}
	return m, nil
}

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}
	switch parts[0] {
	case "start":
		return m, m.startCmd(false)
	case "start!":
		return m, m.startCmd(true)
	case "stop":
		return m, m.stopCmd()
	case "finish":
		return m, m.finishCmd()
	case "reindex":
		return m, m.reindexCmd()
	case "range":
		if len(parts) < 2 {
			m.message = "usage: range <from> [to] | range clear"
			return m, nil
		}
		if parts[1] == "clear" {
			m.rangeStart, m.rangeEnd = time.Time{}, time.Time{}
			m.message = "showing all periods"
			return m, m.loadCmd()
		}
		start, err := components.ParseDate(parts[1], time.Local)
		if err != nil {
			m.message = err.Error()
			return m, nil
		}
		var end time.Time
		if len(parts) >= 3 {
			if end, err = components.ParseDate(parts[2], time.Local); err != nil {
				m.message = err.Error()
				return m, nil
			}
		}
		m.rangeStart, m.rangeEnd = start, end
		m.message = "range " + describeRange(start, end)
		return m, m.loadCmd()
	default:
		m.message = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	header := m.renderHeader()
	footer := m.renderFooter()

	var content string
	switch {
	case m.showHelp:
		content = m.help.View(m.keys)
	case m.palette.Visible():
		content = lipgloss.Place(m.width, max(m.height-4, 1), lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = lipgloss.JoinVertical(lipgloss.Left,
			m.renderSession(),
			m.renderBoard(),
			m.renderChart(),
		)
	}
	return theme.App.Render(lipgloss.JoinVertical(lipgloss.Left, header, content, footer))
}

func (m Model) renderHeader() string {
	title := theme.Title.Render("onehour")
	if m.status.Timeframe != "" {
		title += theme.Muted.Render(fmt.Sprintf("  %s goal: %s", m.status.Timeframe, components.FormatDuration(m.status.Threshold)))
	}
	return title
}

func (m Model) renderSession() string {
	var sb strings.Builder
	if m.status.Active {
		sb.WriteString(theme.Hot.Render("● recording") + "  ")
		sb.WriteString(fmt.Sprintf("since %s (%s)", m.status.StartedAt.Format("15:04"), components.FormatDuration(m.status.Elapsed)))
	} else {
		sb.WriteString(theme.Muted.Render("○ idle"))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("this %s: %s\n", orDash(m.status.Timeframe), components.FormatDuration(m.status.CurrentTotal)))
	sb.WriteString(fmt.Sprintf("streak: %d (%s)", m.status.StreakLength, components.FormatDuration(m.status.StreakTotal)))
	return theme.PaneActive.Render(sb.String())
}

func (m Model) renderBoard() string {
	body := theme.Muted.Render("no periods yet")
	if len(m.board.Cells) > 0 {
		body = components.RenderBoard(m.board.Cells, false) + "\n" + components.BoardLegend(false)
	}
	return theme.Pane.Render(theme.Title.Render("Board") + "\n" + body)
}

func (m Model) renderChart() string {
	width := m.width - 12
	chart := components.RenderTimesChart(m.periods, m.status.Threshold, width, 6)
	return theme.Pane.Render(theme.Title.Render("Time") + "\n" + chart)
}

func (m Model) renderFooter() string {
	return m.message + "\n" + m.help.View(m.keys)
}

// ─── commands ────────────────────────────────────────────────────────────────

func (m Model) loadCmd() tea.Cmd {
	start, end := m.rangeStart, m.rangeEnd
	return func() tea.Msg {
		ctx := context.Background()
		status, err := m.tracker.Status(ctx)
		if err != nil {
			return snapshotMsg{err: err}
		}
		board, err := m.tracker.Board(ctx, start, end)
		if err != nil {
			return snapshotMsg{err: err}
		}
		periods, err := m.tracker.Times(ctx, start, end)
		if err != nil {
			return snapshotMsg{err: err}
		}
		return snapshotMsg{status: status, board: board, periods: periods}
	}
}

func (m Model) waitForChangeCmd() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	changes := m.changes
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return fileChangedMsg{}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) startCmd(overwrite bool) tea.Cmd {
	return func() tea.Msg {
		out, err := m.tracker.Start(context.Background(), overwrite)
		if err != nil {
			return actionMsg{err: err}
		}
		text := "started at " + out.StartedAt.Format("15:04:05")
		if !out.Discarded.IsZero() {
			text += ", dropped session from " + out.Discarded.Format("2006-01-02 15:04")
		}
		return actionMsg{text: text}
	}
}

func (m Model) stopCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.tracker.Stop(context.Background())
		if err != nil {
			return actionMsg{err: err}
		}
		text := "stopped: " + components.FormatDuration(out.Duration)
		if len(out.Completed) > 0 {
			text += ", goal reached"
		}
		return actionMsg{text: text}
	}
}

func (m Model) finishCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.tracker.Finish(context.Background())
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{text: "finished " + out.FinishedAt.Format("2006-01-02")}
	}
}

func (m Model) reindexCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.tracker.Reindex(context.Background())
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{text: fmt.Sprintf("reindexed %d periods", out.Periods)}
	}
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func isNoop(err error) bool {
	return errors.Is(err, apperrors.ErrAlreadyStarted) ||
		errors.Is(err, apperrors.ErrNotStarted) ||
		errors.Is(err, apperrors.ErrAlreadyFinished)
}

func describeRange(start, end time.Time) string {
	to := "now"
	if !end.IsZero() {
		to = end.Format("2006-01-02")
	}
	return start.Format("2006-01-02") + " to " + to
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
