package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"flooring-cli/internal/format"

	"github.com/spf13/cobra"
)

type App struct {
	Endpoint    string
	PrettyJSON  bool
	Format      string
	LogLevel    string
	NoWait      bool
	ResyncDelay time.Duration
	Offline     bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "flooring",
		Short:        "Marine flooring crew reports, pre-task plans and audit log (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  flooring

  # Sign in as a foreman (or Admin)
  flooring login --name Joe --pin 1111

  # Scriptable commands
  flooring reports list --query cvn74
  flooring ptps show 1709564400000 --render

  # Run a local backend that speaks the sheet script protocol
  flooring devserver --addr 127.0.0.1:8787
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Endpoint, "endpoint", "", "Sheet script URL (default: FLOORING_ENDPOINT, then config.json, then the built-in URL)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON/EDN output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("FLOORING_FORMAT", format.JSON), "Output format (json|edn|tsv)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("FLOORING_LOG", "warn"), "Log level on stderr (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&app.NoWait, "no-wait", false, "Do not wait for the follow-up resync after a write")
	cmd.PersistentFlags().DurationVar(&app.ResyncDelay, "resync-delay", 0, "Delay before the post-write resync (default: config.json, then 3s)")
	cmd.PersistentFlags().BoolVar(&app.Offline, "offline", false, "Read from the local snapshot mirror without contacting the backend")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newPingCmd(app))
	cmd.AddCommand(newSyncCmd(app))
	cmd.AddCommand(newReportsCmd(app))
	cmd.AddCommand(newPTPsCmd(app))
	cmd.AddCommand(newForemenCmd(app))
	cmd.AddCommand(newAuditCmd(app))
	cmd.AddCommand(newDashboardCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newSnapshotCmd(app))
	cmd.AddCommand(newDevserverCmd(app))

	return cmd
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lv = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lv}))
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	// TSV has no envelope: only the rows are written.
	if e, ok := v.(envelope); ok && strings.EqualFold(strings.TrimSpace(app.Format), format.TSV) {
		v = e.Data
	}
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}

// envelope is the JSON shape of every command result.
type envelope struct {
	Data  any            `json:"data"`
	Meta  map[string]any `json:"meta,omitempty"`
	Hints []string       `json:"_hints,omitempty"`
}
