package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"flooring-cli/internal/diff"
	"flooring-cli/internal/model"
	"flooring-cli/internal/mutate"
	"flooring-cli/internal/query"
	"flooring-cli/internal/render"

	"github.com/spf13/cobra"
)

func newReportsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reports",
		Aliases: []string{"report"},
		Short:   "Weekly progress reports",
	}

	cmd.AddCommand(newReportsListCmd(app))
	cmd.AddCommand(newReportsShowCmd(app))
	cmd.AddCommand(newReportsCreateCmd(app))
	cmd.AddCommand(newReportsUpdateCmd(app))
	cmd.AddCommand(newReportsDiffCmd(app))
	cmd.AddCommand(newReportsArchiveCmd(app))
	cmd.AddCommand(newReportsRestoreCmd(app))

	return cmd
}

func newReportsListCmd(app *App) *cobra.Command {
	var q string
	var deleted bool
	var qc string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reports, newest activity first",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := withBackend(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			src := b.state.Reports
			if deleted {
				if !b.state.Authorized() {
					return writeErr(cmd, explain(mutate.ErrUnauthenticated))
				}
				src = b.state.DeletedReports
			}
			out := query.Reports(src, q)
			switch strings.ToLower(strings.TrimSpace(qc)) {
			case "":
			case "done":
				out, _ = query.GroupByQC(out)
			case "active":
				_, out = query.GroupByQC(out)
			default:
				return writeErr(cmd, flagError{flag: "qc", reason: "want done or active"})
			}
			if out == nil {
				out = []model.Report{}
			}
			return writeOut(cmd, app, envelope{Data: reportTable(out), Meta: b.meta()})
		},
	}

	cmd.Flags().StringVar(&q, "query", "", "Search vessel, author, compartment name or installer")
	cmd.Flags().BoolVar(&deleted, "deleted", false, "List the trash instead of active reports")
	cmd.Flags().StringVar(&qc, "qc", "", "Only reports whose compartments all passed QC (done) or not (active)")
	return cmd
}

func newReportsShowCmd(app *App) *cobra.Command {
	var rendered bool

	cmd := &cobra.Command{
		Use:   "show <report-id>",
		Short: "Show one report (active or trashed)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := withBackend(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			r, trashed, ok := findAnyReport(b.state, args[0])
			if !ok {
				return writeErr(cmd, errNotFound("report", args[0]))
			}
			if trashed && !b.state.Authorized() {
				return writeErr(cmd, explain(mutate.ErrUnauthenticated))
			}
			if rendered {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), render.Markdown(render.ReportMarkdown(r), renderWidth(), ""))
				return err
			}
			meta := b.meta()
			meta["trashed"] = trashed
			return writeOut(cmd, app, envelope{Data: r, Meta: meta})
		},
	}

	cmd.Flags().BoolVar(&rendered, "render", false, "Print a formatted document instead of data")
	return cmd
}

func findAnyReport(s mutate.State, id string) (model.Report, bool, bool) {
	if r, ok := s.FindReport(id); ok {
		return r, false, true
	}
	if r, ok := s.FindDeletedReport(id); ok {
		return r, true, true
	}
	return model.Report{}, false, false
}

func newReportsCreateCmd(app *App) *cobra.Command {
	var file string
	var edits reportEdits

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a report from --file or flags",
		Example: strings.TrimSpace(`
  flooring reports create --vessel CVN74 --week-start 2024-03-04 --week-end 2024-03-10 \
    --compartment name=C-1,sqft=120,installer=Ann --phase C-1=2024-03-05:Prep
  flooring reports create --file report.json
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r model.Report
			if file != "" {
				if err := readJSONFile(cmd, file, &r); err != nil {
					return writeErr(cmd, err)
				}
			}
			if err := edits.apply(&r); err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(r.PrimaryVessel()) == "" {
				return writeErr(cmd, flagError{flag: "vessel", reason: "required"})
			}
			if r.ID == "" {
				r.ID = model.NewRecordID(time.Now())
			}

			b, err := withBackend(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			err = b.apply(cmd.Context(), func(ctx context.Context, s mutate.State) (mutate.State, error) {
				return b.ctrl.CreateReport(ctx, s, r)
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeReportResult(cmd, app, b, r.ID, "")
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Report JSON file (- for stdin); flags are applied on top")
	edits.bind(cmd)
	return cmd
}

// proposedReport builds the incoming revision for update and diff.
func proposedReport(cmd *cobra.Command, s mutate.State, id, file string, edits reportEdits) (existing, incoming model.Report, err error) {
	existing, ok := s.FindReport(id)
	if !ok {
		return model.Report{}, model.Report{}, errNotFound("report", id)
	}
	if file != "" {
		if err := readJSONFile(cmd, file, &incoming); err != nil {
			return existing, incoming, err
		}
	} else {
		incoming = existing.Clone()
	}
	incoming.ID = existing.ID
	if err := edits.apply(&incoming); err != nil {
		return existing, incoming, err
	}
	return existing, incoming, nil
}

func newReportsUpdateCmd(app *App) *cobra.Command {
	var file string
	var edits reportEdits

	cmd := &cobra.Command{
		Use:   "update <report-id>",
		Short: "Edit a report; the audit entry records what changed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := withBackend(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			existing, incoming, err := proposedReport(cmd, b.state, args[0], file, edits)
			if err != nil {
				return writeErr(cmd, err)
			}
			changes := diff.Reports(&existing, incoming).Summary()
			err = b.apply(cmd.Context(), func(ctx context.Context, s mutate.State) (mutate.State, error) {
				return b.ctrl.UpdateReport(ctx, s, incoming)
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeReportResult(cmd, app, b, existing.ID, changes)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Full replacement report JSON (- for stdin); flags are applied on top")
	edits.bind(cmd)
	return cmd
}

func newReportsDiffCmd(app *App) *cobra.Command {
	var file string
	var edits reportEdits

	cmd := &cobra.Command{
		Use:   "diff <report-id>",
		Short: "Preview the change summary an update would record, without saving",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := withBackend(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			existing, incoming, err := proposedReport(cmd, b.state, args[0], file, edits)
			if err != nil {
				return writeErr(cmd, err)
			}
			res := diff.Reports(&existing, incoming)
			changes := res.Changes
			if changes == nil {
				changes = []string{}
			}
			return writeOut(cmd, app, envelope{
				Data: map[string]any{
					"id":      existing.ID,
					"vessel":  res.Vessel,
					"changes": changes,
					"summary": res.Summary(),
				},
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Proposed report JSON (- for stdin); flags are applied on top")
	edits.bind(cmd)
	return cmd
}

func newReportsArchiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "archive <report-id>",
		Aliases: []string{"delete", "trash"},
		Short:   "Move a report to the trash",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := withBackend(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			err = b.apply(cmd.Context(), func(ctx context.Context, s mutate.State) (mutate.State, error) {
				return b.ctrl.ArchiveReport(ctx, s, args[0])
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{
				Data:  map[string]any{"id": args[0], "membership": b.state.ReportMembership(args[0]).String()},
				Meta:  b.meta(),
				Hints: []string{"flooring reports restore " + args[0]},
			})
		},
	}
}

func newReportsRestoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <report-id>",
		Short: "Bring a report back from the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := withBackend(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			err = b.apply(cmd.Context(), func(ctx context.Context, s mutate.State) (mutate.State, error) {
				return b.ctrl.RestoreReport(ctx, s, args[0])
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeReportResult(cmd, app, b, args[0], "")
		},
	}
}

func writeReportResult(cmd *cobra.Command, app *App, b *backend, id, changes string) error {
	meta := b.meta()
	if changes != "" {
		meta["changes"] = changes
	}
	r, ok := b.state.FindReport(id)
	if !ok {
		// Resync may not have caught up with the sheet yet.
		return writeOut(cmd, app, envelope{Data: map[string]any{"id": id}, Meta: meta})
	}
	return writeOut(cmd, app, envelope{
		Data:  r,
		Meta:  meta,
		Hints: []string{"flooring reports show " + r.ID + " --render"},
	})
}

func renderWidth() int {
	if n, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && n > 0 {
		return n
	}
	return 100
}
