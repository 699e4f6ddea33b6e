package cli

import (
	"flooring-cli/internal/model"
	"flooring-cli/internal/query"

	"github.com/spf13/cobra"
)

func newAuditCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Who did what, newest first (requires login)",
	}
	cmd.AddCommand(newAuditListCmd(app))
	return cmd
}

func newAuditListCmd(app *App) *cobra.Command {
	var q string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List audit entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return writeErr(cmd, flagError{flag: "limit", reason: "must be >= 0"})
			}
			b, err := withAuthorizedBackend(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			out := query.AuditLogs(b.state.AuditLogs, q)
			total := len(out)
			if limit > 0 && len(out) > limit {
				out = out[:limit]
			}
			if out == nil {
				out = []model.AuditLogEntry{}
			}
			meta := b.meta()
			meta["total"] = total
			return writeOut(cmd, app, envelope{Data: auditTable(out), Meta: meta})
		},
	}

	cmd.Flags().StringVar(&q, "query", "", "Search user, action or details")
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many entries (0 = all)")
	return cmd
}
