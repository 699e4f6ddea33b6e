package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flooring-cli/internal/model"
	"flooring-cli/internal/mutate"
	"flooring-cli/internal/query"
	"flooring-cli/internal/render"

	"github.com/spf13/cobra"
)

func newPTPsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ptps",
		Aliases: []string{"ptp", "plans"},
		Short:   "Safety pre-task plans (requires login)",
	}

	cmd.AddCommand(newPTPsListCmd(app))
	cmd.AddCommand(newPTPsShowCmd(app))
	cmd.AddCommand(newPTPsCreateCmd(app))
	cmd.AddCommand(newPTPsUpdateCmd(app))
	cmd.AddCommand(newPTPsArchiveCmd(app))
	cmd.AddCommand(newPTPsRestoreCmd(app))
	cmd.AddCommand(newPTPsStatsCmd(app))

	return cmd
}

// withAuthorizedBackend loads a backend and requires a signed-in identity.
func withAuthorizedBackend(cmd *cobra.Command, app *App) (*backend, error) {
	b, err := withBackend(cmd, app)
	if err != nil {
		return nil, err
	}
	if !b.state.Authorized() {
		return nil, explain(mutate.ErrUnauthenticated)
	}
	return b, nil
}

func newPTPsListCmd(app *App) *cobra.Command {
	var q string
	var sortKey string
	var asc bool
	var deleted bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plans (default: newest date first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			key := query.PTPSortKey(strings.ToLower(strings.TrimSpace(sortKey)))
			if !key.Valid() {
				return writeErr(cmd, flagError{flag: "sort", reason: "want date, location, supervisor or description"})
			}
			b, err := withAuthorizedBackend(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			src := b.state.PTPs
			if deleted {
				src = b.state.DeletedPTPs
			}
			out := query.PTPs(src, q, key, !asc)
			if out == nil {
				out = []model.PreTaskPlan{}
			}
			return writeOut(cmd, app, envelope{Data: planTable(out), Meta: b.meta()})
		},
	}

	cmd.Flags().StringVar(&q, "query", "", "Search description, location, supervisor or author")
	cmd.Flags().StringVar(&sortKey, "sort", string(query.SortByDate), "Sort by date|location|supervisor|description")
	cmd.Flags().BoolVar(&asc, "asc", false, "Ascending order")
	cmd.Flags().BoolVar(&deleted, "deleted", false, "List the trash instead of active plans")
	return cmd
}

func newPTPsStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Totals over active plans: hazards, PPE, steps, incomplete evaluations",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := withAuthorizedBackend(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: query.SummarizePTPs(b.state.PTPs), Meta: b.meta()})
		},
	}
}

func newPTPsShowCmd(app *App) *cobra.Command {
	var rendered bool

	cmd := &cobra.Command{
		Use:   "show <ptp-id>",
		Short: "Show one plan (active or trashed)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := withAuthorizedBackend(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			p, trashed, ok := findAnyPTP(b.state, args[0])
			if !ok {
				return writeErr(cmd, errNotFound("ptp", args[0]))
			}
			if rendered {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), render.Markdown(render.PTPMarkdown(p), renderWidth(), ""))
				return err
			}
			meta := b.meta()
			meta["trashed"] = trashed
			meta["unanswered"] = p.Evaluation.Unanswered()
			return writeOut(cmd, app, envelope{Data: p, Meta: meta})
		},
	}

	cmd.Flags().BoolVar(&rendered, "render", false, "Print the paper form instead of data")
	return cmd
}

func findAnyPTP(s mutate.State, id string) (model.PreTaskPlan, bool, bool) {
	if p, ok := s.FindPTP(id); ok {
		return p, false, true
	}
	if p, ok := s.FindDeletedPTP(id); ok {
		return p, true, true
	}
	return model.PreTaskPlan{}, false, false
}

func newPTPsCreateCmd(app *App) *cobra.Command {
	var file string
	var edits planEdits

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a plan prefilled with the crew defaults; flags and --file override",
		Example: strings.TrimSpace(`
  flooring ptps create --location "Deck 2" --description "Tile galley" \
    --hazard "Pinch Points" --step "Lay tile|Cuts|Gloves" --answer liveSystems=no
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := model.NewPreTaskPlan(time.Now())
			if file != "" {
				if err := readJSONFile(cmd, file, &p); err != nil {
					return writeErr(cmd, err)
				}
			}
			if err := edits.apply(&p); err != nil {
				return writeErr(cmd, err)
			}
			if p.ID == "" {
				p.ID = model.NewRecordID(time.Now())
			}

			b, err := withBackend(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			err = b.apply(cmd.Context(), func(ctx context.Context, s mutate.State) (mutate.State, error) {
				return b.ctrl.CreatePTP(ctx, s, p)
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writePTPResult(cmd, app, b, p.ID)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Plan JSON file (- for stdin), merged over the defaults")
	edits.bind(cmd)
	return cmd
}

func newPTPsUpdateCmd(app *App) *cobra.Command {
	var file string
	var edits planEdits

	cmd := &cobra.Command{
		Use:   "update <ptp-id>",
		Short: "Edit a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := withBackend(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			existing, ok := b.state.FindPTP(args[0])
			if !ok {
				return writeErr(cmd, errNotFound("ptp", args[0]))
			}
			p := existing.Clone()
			if file != "" {
				if err := readJSONFile(cmd, file, &p); err != nil {
					return writeErr(cmd, err)
				}
			}
			p.ID = existing.ID
			if err := edits.apply(&p); err != nil {
				return writeErr(cmd, err)
			}
			err = b.apply(cmd.Context(), func(ctx context.Context, s mutate.State) (mutate.State, error) {
				return b.ctrl.UpdatePTP(ctx, s, p)
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writePTPResult(cmd, app, b, p.ID)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Plan JSON (- for stdin), merged over the current plan")
	edits.bind(cmd)
	return cmd
}

func newPTPsArchiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "archive <ptp-id>",
		Aliases: []string{"delete", "trash"},
		Short:   "Move a plan to the trash",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := withBackend(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			err = b.apply(cmd.Context(), func(ctx context.Context, s mutate.State) (mutate.State, error) {
				return b.ctrl.ArchivePTP(ctx, s, args[0])
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{
				Data:  map[string]any{"id": args[0], "membership": b.state.PTPMembership(args[0]).String()},
				Meta:  b.meta(),
				Hints: []string{"flooring ptps restore " + args[0]},
			})
		},
	}
}

func newPTPsRestoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <ptp-id>",
		Short: "Bring a plan back from the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := withBackend(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			err = b.apply(cmd.Context(), func(ctx context.Context, s mutate.State) (mutate.State, error) {
				return b.ctrl.RestorePTP(ctx, s, args[0])
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writePTPResult(cmd, app, b, args[0])
		},
	}
}

func writePTPResult(cmd *cobra.Command, app *App, b *backend, id string) error {
	p, ok := b.state.FindPTP(id)
	if !ok {
		return writeOut(cmd, app, envelope{Data: map[string]any{"id": id}, Meta: b.meta()})
	}
	return writeOut(cmd, app, envelope{
		Data:  p,
		Meta:  b.meta(),
		Hints: []string{"flooring ptps show " + p.ID + " --render"},
	})
}
