package bootstrap

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	trackerinadapter "onehour/internal/modules/tracker/adapter/in"
	trackeroutadapter "onehour/internal/modules/tracker/adapter/out"
	"onehour/internal/modules/tracker/domain"
	trackerservice "onehour/internal/modules/tracker/service"
	trackerusecase "onehour/internal/modules/tracker/usecase"
	"onehour/internal/platform/clock"
	"onehour/internal/platform/config"
	uiapp "onehour/internal/ui/app"
)

type App struct {
	Config     config.Config
	TrackerCLI trackerinadapter.CLIHandler

	projector *trackeroutadapter.SQLitePeriodProjector
}

func New(cfg config.Config) (*App, error) {
	return NewWithClock(cfg, clock.SystemClock{})
}

// NewWithClock wires the tracker against clk.
func NewWithClock(cfg config.Config, clk clock.Clock) (*App, error) {
	tf, err := domain.ParseTimeframe(cfg.Timeframe)
	if err != nil {
		return nil, err
	}

	projector, err := trackeroutadapter.NewSQLitePeriodProjector(cfg.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("new period projector: %w", err)
	}
	svc, err := trackerservice.NewTrackerService(
		clk,
		trackeroutadapter.NewCSVRecordLog(cfg.DataPath),
		trackeroutadapter.NewJSONStartCache(cfg.CachePath),
		projector,
		trackerservice.Settings{Timeframe: tf, Threshold: cfg.FinishedThreshold},
	)
	if err != nil {
		_ = projector.Close()
		return nil, err
	}
	trackerUC := trackerusecase.NewInteractor(svc, trackeroutadapter.NewDesktopNotifier())

	log.Debug().Str("home", cfg.Home).Str("timeframe", string(tf)).Dur("threshold", svc.Threshold()).Msg("tracker ready")
	return &App{
		Config:     cfg,
		TrackerCLI: trackerinadapter.NewCLIHandler(trackerUC),
		projector:  projector,
	}, nil
}

func (a *App) Close() error {
	if a.projector == nil {
		return nil
	}
	return a.projector.Close()
}

func RunTUI(app *App) error {
	watcher, err := uiapp.NewFileWatcher(app.Config.DataPath, app.Config.CachePath)
	var changes <-chan struct{}
	if err != nil {
		log.Warn().Err(err).Msg("file watching disabled")
	} else {
		defer watcher.Close()
		changes = watcher.Changes()
	}
	model := uiapp.NewModel(app.TrackerCLI, changes)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}
