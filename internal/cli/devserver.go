package cli

import (
	"os"
	"os/signal"
	"syscall"

	"flooring-cli/internal/devserver"
	"flooring-cli/internal/remote"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func newDevserverCmd(app *App) *cobra.Command {
	var addr string
	var noMetrics bool

	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Serve an in-memory backend that speaks the sheet script protocol",
		Long: `Serve an in-memory backend that speaks the sheet script protocol.

Data lives only as long as the process. The only account is Admin / 1234.
Point the CLI at it with --endpoint http://<addr>/exec or
flooring config set-endpoint http://<addr>/exec.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), app.LogLevel)

			var reg *prometheus.Registry
			if !noMetrics {
				reg = prometheus.NewRegistry()
				reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			}
			h := devserver.NewHandler(remote.NewMemory(), logger, reg)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return devserver.ListenAndServe(ctx, addr, h, logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8787", "Listen address")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "Do not serve /metrics")
	return cmd
}
