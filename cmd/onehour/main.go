package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"onehour/internal/bootstrap"
	"onehour/internal/platform/config"
	apperrors "onehour/internal/platform/errors"
	"onehour/internal/platform/logging"
	"onehour/internal/ui/components"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	home     string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "onehour",
		Short:         "One hour a day on your own project, tracked as streaks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logging.Setup(opts.logLevel, cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&opts.home, "home", "", "tracker home (defaults to .project, $"+config.EnvHome+" or ~/.config/project)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug|info|warn|error")

	root.AddCommand(newSetupCmd())
	root.AddCommand(newStartCmd(opts))
	root.AddCommand(newStopCmd(opts))
	root.AddCommand(newFinishCmd(opts))
	root.AddCommand(newStatusCmd(opts))
	root.AddCommand(newStreakCmd(opts))
	root.AddCommand(newTimesCmd(opts))
	root.AddCommand(newStreaksCmd(opts))
	root.AddCommand(newBoardCmd(opts))
	root.AddCommand(newReindexCmd(opts))
	root.AddCommand(newTUICmd(opts))
	return root
}

func loadApp(cmd *cobra.Command, opts *rootOptions) (*bootstrap.App, error) {
	env, err := config.SystemEnv()
	if err != nil {
		return nil, err
	}
	home, err := config.Discover(opts.home, env)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(home)
	if err != nil {
		return nil, err
	}
	if opts.logLevel == "" {
		logging.Setup(cfg.LogLevel, cmd.ErrOrStderr())
	}
	return bootstrap.New(cfg)
}

// withApp loads the app, runs fn and releases the index afterwards.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(app *bootstrap.App) error) error {
	app, err := loadApp(cmd, opts)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return fn(app)
}

func newSetupCmd() *cobra.Command {
	var location, path string
	setup := &cobra.Command{
		Use:   "setup",
		Short: "Create a tracker home and its default config",
		RunE: func(cmd *cobra.Command, _ []string) error {
			loc, err := config.ParseLocation(location)
			if err != nil {
				return err
			}
			env, err := config.SystemEnv()
			if err != nil {
				return err
			}
			home, err := config.Setup(loc, env, path)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "tracker home: %s\n", home)
			return nil
		},
	}
	setup.Flags().StringVar(&location, "location", "global", "where to create the home: local|global|env")
	setup.Flags().StringVar(&path, "path", "", "home directory for --location env (defaults to $"+config.EnvHome+")")
	return setup
}

func newStartCmd(opts *rootOptions) *cobra.Command {
	var overwrite bool
	start := &cobra.Command{
		Use:   "start",
		Short: "Start recording a session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(app *bootstrap.App) error {
				out, err := app.TrackerCLI.Start(context.Background(), overwrite)
				if errors.Is(err, apperrors.ErrAlreadyStarted) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "already started, use --overwrite to restart now")
					return nil
				}
				if err != nil {
					return err
				}
				if !out.Discarded.IsZero() {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "dropped unrecorded session started %s\n", humanize.RelTime(out.Discarded, out.StartedAt, "earlier", "later"))
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "started at %s\n", out.StartedAt.Format("15:04:05"))
				return nil
			})
		},
	}
	start.Flags().BoolVar(&overwrite, "overwrite", false, "replace a session already started in this period")
	return start
}

func newStopCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the session and record it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(app *bootstrap.App) error {
				out, err := app.TrackerCLI.Stop(context.Background())
				if errors.Is(err, apperrors.ErrNotStarted) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "not started")
					return nil
				}
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "stopped at %s\n", out.StoppedAt.Format("15:04:05"))
				_, _ = fmt.Fprintln(w, components.FormatDuration(out.Duration))
				if out.Pieces > 1 {
					_, _ = fmt.Fprintf(w, "recorded as %d records, one per %s\n", out.Pieces, app.Config.Timeframe)
				}
				for _, period := range out.Completed {
					_, _ = fmt.Fprintf(w, "%s finished: %s\n", app.Config.Timeframe, period.Format("2006-01-02"))
				}
				return nil
			})
		},
	}
}

func newFinishCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "finish",
		Short: "Mark the current period as finished",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(app *bootstrap.App) error {
				out, err := app.TrackerCLI.Finish(context.Background())
				if errors.Is(err, apperrors.ErrAlreadyFinished) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "already finished this %s\n", app.Config.Timeframe)
					return nil
				}
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "finished %s\n", out.FinishedAt.Format("2006-01-02"))
				return nil
			})
		},
	}
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the open session and progress in the current period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(app *bootstrap.App) error {
				status, err := app.TrackerCLI.Status(context.Background())
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if status.Active {
					_, _ = fmt.Fprintf(w, "recording since %s (%s)\n", status.StartedAt.Format("15:04:05"), humanize.Time(status.StartedAt))
				} else {
					_, _ = fmt.Fprintln(w, "idle")
				}
				_, _ = fmt.Fprintf(w, "this %s: %s of %s\n", status.Timeframe, components.FormatDuration(status.CurrentTotal), components.FormatDuration(status.Threshold))
				_, _ = fmt.Fprintf(w, "streak: %d\n", status.StreakLength)
				return nil
			})
		},
	}
}

func newStreakCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "streak",
		Short: "Show the current streak and the board",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(app *bootstrap.App) error {
				ctx := context.Background()
				status, err := app.TrackerCLI.Status(ctx)
				if err != nil {
					return err
				}
				board, err := app.TrackerCLI.Board(ctx, time.Time{}, time.Time{})
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "Current streak: %d\n", status.StreakLength)
				if len(board.Cells) > 0 {
					_, _ = fmt.Fprintln(w, components.RenderBoard(board.Cells, !isTerminal(w)))
				}
				_, _ = fmt.Fprintf(w, "This %s: %s\n", status.Timeframe, components.FormatDuration(status.CurrentTotal))
				return nil
			})
		},
	}
}

type rangeFlags struct {
	start string
	end   string
}

func (r *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.start, "start", "", "first period (YYYY-MM-DD or RFC3339, defaults to the first record)")
	cmd.Flags().StringVar(&r.end, "end", "", "last period (YYYY-MM-DD or RFC3339, defaults to now)")
}

func (r rangeFlags) parse() (time.Time, time.Time, error) {
	start, err := components.ParseDate(r.start, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := components.ParseDate(r.end, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func newTimesCmd(opts *rootOptions) *cobra.Command {
	var bounds rangeFlags
	var chart bool
	times := &cobra.Command{
		Use:   "times",
		Short: "List recorded time per period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, end, err := bounds.parse()
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(app *bootstrap.App) error {
				periods, err := app.TrackerCLI.Times(context.Background(), start, end)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if len(periods) == 0 {
					_, _ = fmt.Fprintln(w, "no records")
					return nil
				}
				if chart {
					_, _ = fmt.Fprintln(w, components.RenderTimesChart(periods, app.Config.FinishedThreshold, 60, 10))
					return nil
				}
				for _, p := range periods {
					_, _ = fmt.Fprintf(w, "%s: %s\n", p.Start.Format("2006-01-02"), components.FormatDuration(p.Total))
				}
				return nil
			})
		},
	}
	bounds.register(times)
	times.Flags().BoolVar(&chart, "chart", false, "plot the totals instead of listing them")
	return times
}

func newStreaksCmd(opts *rootOptions) *cobra.Command {
	var bounds rangeFlags
	var strict bool
	streaks := &cobra.Command{
		Use:   "streaks",
		Short: "List finished streaks within a range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, end, err := bounds.parse()
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(app *bootstrap.App) error {
				items, err := app.TrackerCLI.Streaks(context.Background(), start, end, strict)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if len(items) == 0 {
					_, _ = fmt.Fprintln(w, "no streaks")
					return nil
				}
				for _, s := range items {
					_, _ = fmt.Fprintf(w, "%s..%s\t%d\t%s\n", s.Start.Format("2006-01-02"), s.End.Format("2006-01-02"), s.Length, components.FormatDuration(s.Total))
				}
				return nil
			})
		},
	}
	bounds.register(streaks)
	streaks.Flags().BoolVar(&strict, "strict", false, "only streaks entirely inside the range")
	return streaks
}

func newBoardCmd(opts *rootOptions) *cobra.Command {
	var bounds rangeFlags
	board := &cobra.Command{
		Use:   "board",
		Short: "Draw finished and missed periods",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, end, err := bounds.parse()
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(app *bootstrap.App) error {
				out, err := app.TrackerCLI.Board(context.Background(), start, end)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if len(out.Cells) == 0 {
					_, _ = fmt.Fprintln(w, "no records")
					return nil
				}
				plain := !isTerminal(w)
				_, _ = fmt.Fprintf(w, "%s..%s\n", out.Cells[0].Start.Format("2006-01-02"), out.Cells[len(out.Cells)-1].Start.Format("2006-01-02"))
				_, _ = fmt.Fprintln(w, components.RenderBoard(out.Cells, plain))
				_, _ = fmt.Fprintln(w, components.BoardLegend(plain))
				return nil
			})
		},
	}
	bounds.register(board)
	return board
}

func newReindexCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the period index from the record log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(app *bootstrap.App) error {
				out, err := app.TrackerCLI.Reindex(context.Background())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reindexed %d periods\n", out.Periods)
				return nil
			})
		},
	}
}

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the onehour dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, bootstrap.RunTUI)
		},
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
