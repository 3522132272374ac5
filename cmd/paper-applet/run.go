package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ocf/paper-applet/internal/config"
	"github.com/ocf/paper-applet/internal/daemon"
	"github.com/ocf/paper-applet/internal/dbus"
	"github.com/ocf/paper-applet/internal/display"
)

var runOpts struct {
	panel bool
}

func init() {
	rootCmd.Flags().BoolVar(&runOpts.panel, "panel", false,
		"Also show the text in an on-screen chip (overrides [panel] enabled)")
}

func runApplet(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	path, err := configPath()
	if err != nil {
		return err
	}

	logger.Info("starting paper-applet", "version", version, "config", path)

	opts := daemon.Options{
		Config:     cfg,
		ConfigPath: path,
		Logger:     logger,
	}
	if !globalOpts.verbose {
		opts.LogLevel = logLevel
	}

	if client, err := dbus.NewNotificationClient(); err != nil {
		logger.Warn("desktop notifications unavailable", "error", err)
	} else {
		opts.Notifier = daemon.NewNotifier(client.Send, logger)
	}

	if !runOpts.panel && !cfg.Panel.Enabled {
		return daemon.Run(ctx, opts)
	}

	return runWithPanel(ctx, cancel, opts, path)
}

// runWithPanel runs the GTK main loop on this goroutine and the applet
// beside it once the chip exists.
func runWithPanel(ctx context.Context, cancel context.CancelFunc, opts daemon.Options, path string) error {
	app := display.NewApp(cfg.Panel, config.StylePathFor(path), logger)

	errCh := make(chan error, 1)
	started := false

	appErr := app.Run(ctx, func(chip *display.Chip) {
		started = true
		opts.Panel = chip
		go func() {
			err := daemon.Run(ctx, opts)
			// The chip is useless without the applet behind it
			chip.Close()
			cancel()
			errCh <- err
		}()
	})

	// Make sure the applet stops if the window was closed
	cancel()
	if started {
		if err := <-errCh; err != nil {
			return err
		}
	}
	return appErr
}
