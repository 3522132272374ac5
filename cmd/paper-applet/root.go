package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ocf/paper-applet/internal/config"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
	}
	logger   *slog.Logger
	logLevel = new(slog.LevelVar)
)

// rootCmd runs the applet when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "paper-applet",
	Short: "Panel applet showing the output of paper-genmon",
	Long: `paper-applet shows your remaining print quota on the desktop panel.

Every 5 seconds it runs paper-genmon and shows its trimmed output, or
"Error" if the command could not run. The text is published as a
StatusNotifierItem, so any tray host (KDE, waybar, the GNOME AppIndicator
extension) can show it. Clicking the item refreshes it right away.

With --panel the text is also shown in a small always-on-top chip.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger(os.Stderr)

		path, err := configPath()
		if err != nil {
			return err
		}

		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if !globalOpts.verbose {
			level, _ := config.ParseLevel(cfg.Log.Level)
			logLevel.Set(level)
		}
		return nil
	},
	RunE: runApplet,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/paper-applet/config.toml)")
}

// configPath returns the --config flag or the default config path.
func configPath() (string, error) {
	if globalOpts.configPath != "" {
		return globalOpts.configPath, nil
	}
	path, err := config.Path()
	if err != nil {
		return "", fmt.Errorf("failed to get config path: %w", err)
	}
	return path, nil
}

// setupLogger configures the global slog logger.
// The level is held in logLevel so a config reload can change it.
func setupLogger(w io.Writer) {
	logLevel.Set(slog.LevelWarn)
	if globalOpts.verbose {
		logLevel.Set(slog.LevelDebug)
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(w, opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}
