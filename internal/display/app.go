package display

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/glib/v2"

	"github.com/ocf/paper-applet/internal/config"
	"github.com/ocf/paper-applet/internal/theme"
)

const appID = "io.ocf.PaperApplet"

// App runs the libadwaita application hosting the chip.
type App struct {
	app       *adw.Application
	cfg       config.PanelConfig
	stylePath string
	logger    *slog.Logger
}

// NewApp creates the application. GTK is initialized on Run.
func NewApp(cfg config.PanelConfig, stylePath string, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		app:       adw.NewApplication(appID, 0),
		cfg:       cfg,
		stylePath: stylePath,
		logger:    logger,
	}
}

// Run blocks on the GTK main loop until ctx is cancelled. onReady is called
// on the main loop once the chip is shown and must not block.
// Run must be called from the main goroutine.
func (a *App) Run(ctx context.Context, onReady func(chip *Chip)) error {
	var started atomic.Bool

	a.app.ConnectActivate(func() {
		if started.Swap(true) {
			a.logger.Warn("application already running")
			return
		}

		styles := theme.NewLoader(a.stylePath, a.logger)
		styles.Apply(nil)

		chip := NewChip(&a.app.Application, a.cfg, styles, a.logger)
		chip.Show()
		a.logger.Info("panel chip shown", "position", a.cfg.Position)

		if onReady != nil {
			onReady(chip)
		}
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			glib.IdleAdd(a.app.Quit)
		case <-done:
		}
	}()

	// Flags belong to cobra, not GTK
	status := a.app.Run(os.Args[:1])
	if status != 0 && ctx.Err() == nil {
		return fmt.Errorf("application exited with status %d", status)
	}
	return nil
}
