package main

import (
	"context"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ocf/paper-applet/internal/adapter/input"
	"github.com/ocf/paper-applet/internal/applet"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Show the applet in the terminal",
	Long: `Show the panel text in the terminal, refreshed every 5 seconds.

Key bindings:
  r, enter, space   Refresh now
  ?                 Show help
  q, esc            Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Log lines would tear the alt screen; keep them only when asked for
	tuiLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if globalOpts.verbose {
		tuiLogger = logger
	}

	adapter := input.NewGenmonAdapter(cfg.Command.Timeout.Duration(), tuiLogger)
	m := applet.New(adapter,
		applet.WithLogger(tuiLogger),
		applet.WithContext(ctx),
	)

	return applet.NewTerminalProgram(ctx, m).Run()
}
