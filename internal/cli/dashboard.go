package cli

import (
	"flooring-cli/internal/query"

	"github.com/spf13/cobra"
)

func newDashboardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Production totals, QC rate and recent activity over active reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := withBackend(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: query.Summarize(b.state.Reports), Meta: b.meta()})
		},
	}
}
