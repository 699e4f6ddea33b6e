package cli

import (
	"flooring-cli/internal/backup"
	"flooring-cli/internal/mutate"

	"github.com/spf13/cobra"
)

func newSnapshotCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Export every collection as one JSON document",
	}
	cmd.AddCommand(newSnapshotExportCmd(app))
	return cmd
}

func newSnapshotExportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir|s3://bucket/prefix>",
		Short: "Write a snapshot to a directory or an S3 bucket (Admin only)",
		Long: `Write a snapshot to a directory or an S3 bucket (Admin only).

S3 settings come from FLOORING_S3_REGION, FLOORING_S3_ENDPOINT and
FLOORING_S3_PATH_STYLE plus the usual AWS_* credentials.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := withAuthorizedBackend(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			// The document carries foreman PINs.
			if !b.state.IsAdmin() {
				return writeErr(cmd, explain(mutate.ErrForbidden))
			}
			exp := backup.Exporter{S3: backup.S3OptionsFromEnv(), Logger: b.logger}
			snap := b.state.Snapshot()
			loc, err := exp.Export(cmd.Context(), snap, b.state.CurrentUser, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{
				Data: map[string]any{
					"location":  loc,
					"reports":   len(snap.Reports),
					"ptps":      len(snap.PTPs),
					"auditLogs": len(snap.AuditLogs),
				},
				Meta: b.meta(),
			})
		},
	}
}
