package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ocf/paper-applet/internal/adapter/input"
	"github.com/ocf/paper-applet/internal/adapter/output"
	"github.com/ocf/paper-applet/internal/model"
)

var statusOpts struct {
	format   string
	template string
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Run paper-genmon once and print the result",
	Long: `Run paper-genmon once and print the panel text.

The default output is Waybar's custom module JSON format, so the applet
can also be used without a tray:

  "custom/paper": {
    "exec": "paper-applet status",
    "interval": 5,
    "return-type": "json"
  }

The output includes:
  - text: The trimmed output of paper-genmon, or "Error"
  - alt: ok or error
  - tooltip: Title and time of the reading
  - class: ok or error

Use --format plain --template '{{.Text}}' for a custom line.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusOpts.format, "format", "f", string(output.FormatWaybar),
		"Output format (waybar, json, yaml, plain)")
	statusCmd.Flags().StringVar(&statusOpts.template, "template", "",
		"Go template for plain format, e.g. '{{.Text}} ({{.RelativeTime}})'")
}

func runStatus(cmd *cobra.Command, args []string) error {
	formatter, err := output.NewFormatter(output.FormatType(statusOpts.format), output.FormatterOptions{
		Template: statusOpts.template,
		Title:    cfg.Item.Title,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	adapter := input.NewGenmonAdapter(cfg.Command.Timeout.Duration(), logger)
	state := model.InitialState().Apply(adapter.Read(ctx))

	return formatter.Format(os.Stdout, state)
}
