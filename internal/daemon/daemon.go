package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ocf/paper-applet/internal/adapter/input"
	"github.com/ocf/paper-applet/internal/applet"
	"github.com/ocf/paper-applet/internal/config"
	"github.com/ocf/paper-applet/internal/dbus"
)

// Tray is the StatusNotifierItem frontend.
type Tray interface {
	applet.Sink
	Start() error
	Stop() error
	UpdateInfo(info dbus.ItemInfo)
	SetActivateHandler(handler dbus.ActivateHandler)
}

// Panel is the optional on-screen chip.
type Panel interface {
	applet.Sink
	SetClickHandler(handler func())
	UpdateConfig(cfg config.PanelConfig)
	ReloadStyle(onError func(err error))
}

// Options configures Run. Only Config is required.
type Options struct {
	Config     *config.Config
	ConfigPath string // watched for changes when set
	Logger     *slog.Logger
	// LogLevel follows [log] level on reload; nil keeps the level fixed.
	LogLevel *slog.LevelVar

	Source   input.Source // defaults to the paper-genmon adapter
	Tray     Tray         // defaults to the session bus StatusNotifierItem
	Panel    Panel
	Notifier *Notifier
}

// timeoutSetter is implemented by sources with a per-run deadline.
type timeoutSetter interface {
	SetTimeout(timeout time.Duration)
}

// ItemInfo converts the [item] config section.
func ItemInfo(cfg config.ItemConfig) dbus.ItemInfo {
	return dbus.ItemInfo{
		ID:            cfg.ID,
		Title:         cfg.Title,
		IconName:      cfg.IconName,
		ErrorIconName: cfg.ErrorIconName,
		Category:      cfg.Category,
	}
}

// Run runs the applet until ctx is cancelled.
//
// A tray item that cannot be exported is fatal unless a panel is attached,
// in which case the chip alone carries the text.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	source := opts.Source
	if source == nil {
		if !input.Available() {
			logger.Warn("command not found in PATH, showing Error until it is installed", "command", input.Command)
		}
		source = input.NewGenmonAdapter(cfg.Command.Timeout.Duration(), logger)
	}

	tray := opts.Tray
	if tray == nil {
		tray = dbus.NewStatusNotifierItem(ItemInfo(cfg.Item), logger)
	}

	notifier := opts.Notifier
	notifier.SetEnabled(cfg.Notify.Enabled)

	g, gctx := errgroup.WithContext(ctx)

	appletOpts := []applet.Option{
		applet.WithSink(tray),
		applet.WithLogger(logger),
		applet.WithContext(gctx),
	}
	if opts.Panel != nil {
		appletOpts = append(appletOpts, applet.WithSink(opts.Panel))
	}
	program := applet.NewHeadlessProgram(gctx, applet.New(source, appletOpts...))

	tray.SetActivateHandler(program.Refresh)
	if opts.Panel != nil {
		opts.Panel.SetClickHandler(program.Refresh)
		opts.Panel.ReloadStyle(notifier.NotifyStyleError)
	}

	if err := tray.Start(); err != nil {
		if opts.Panel == nil {
			return fmt.Errorf("failed to start tray item: %w", err)
		}
		logger.Warn("tray item unavailable, continuing with the panel chip only", "error", err)
	} else {
		defer func() {
			if err := tray.Stop(); err != nil {
				logger.Warn("failed to stop tray item", "error", err)
			}
		}()
	}

	if opts.ConfigPath != "" {
		stylePath := ""
		if opts.Panel != nil {
			stylePath = config.StylePathFor(opts.ConfigPath)
		}

		watcher, err := NewConfigWatcher(opts.ConfigPath, stylePath, logger)
		if err != nil {
			return err
		}
		watcher.SetReloadCallback(func(newConfig *config.Config) {
			applyConfig(newConfig, source, tray, opts, logger)
			notifier.NotifyConfigReloaded()
		})
		watcher.SetErrorCallback(notifier.NotifyConfigError)
		if opts.Panel != nil {
			watcher.SetStyleCallback(func() {
				opts.Panel.ReloadStyle(notifier.NotifyStyleError)
			})
		}

		g.Go(func() error {
			// The applet keeps running without hot reload
			if err := watcher.Run(gctx, cfg); err != nil {
				logger.Warn("config hot-reload disabled", "error", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		if err := program.Run(); err != nil {
			return fmt.Errorf("applet program failed: %w", err)
		}
		if gctx.Err() == nil {
			return errors.New("applet program stopped unexpectedly")
		}
		return nil
	})

	logger.Info("paper-applet ready", "command", source.Name(), "interval", applet.Interval)
	return g.Wait()
}

// applyConfig pushes a reloaded config to the running components.
// The item ID and category cannot change without re-exporting the item.
func applyConfig(cfg *config.Config, source input.Source, tray Tray, opts Options, logger *slog.Logger) {
	tray.UpdateInfo(ItemInfo(cfg.Item))

	if s, ok := source.(timeoutSetter); ok {
		s.SetTimeout(cfg.Command.Timeout.Duration())
	}

	if opts.Panel != nil {
		opts.Panel.UpdateConfig(cfg.Panel)
	}

	if opts.LogLevel != nil {
		if level, err := config.ParseLevel(cfg.Log.Level); err == nil {
			opts.LogLevel.Set(level)
		}
	}

	opts.Notifier.SetEnabled(cfg.Notify.Enabled)
	logger.Debug("applied reloaded config", "title", cfg.Item.Title, "timeout", cfg.Command.Timeout.Duration())
}
