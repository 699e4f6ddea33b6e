package cli

import (
	"context"
	"strings"

	"flooring-cli/internal/model"
	"flooring-cli/internal/mutate"

	"github.com/spf13/cobra"
)

func newForemenCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "foremen",
		Aliases: []string{"foreman"},
		Short:   "Crew accounts (Admin manages everyone; a foreman may change their own PIN)",
	}

	cmd.AddCommand(newForemenListCmd(app))
	cmd.AddCommand(newForemenSetCmd(app))
	cmd.AddCommand(newForemenRemoveCmd(app))

	return cmd
}

func newForemenListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List foreman names (PINs are never printed)",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := withAuthorizedBackend(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			rows := make(foremanTable, 0, len(b.state.Foremen))
			for _, f := range b.state.Foremen {
				rows = append(rows, foremanRow{Name: f.Name, Admin: f.Name == model.AdminName})
			}
			return writeOut(cmd, app, envelope{Data: rows, Meta: b.meta()})
		},
	}
}

func newForemenSetCmd(app *App) *cobra.Command {
	var pin string

	cmd := &cobra.Command{
		Use:     "set <name>",
		Aliases: []string{"add"},
		Short:   "Add a foreman or change a PIN",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			b, err := withBackend(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			err = b.apply(cmd.Context(), func(ctx context.Context, s mutate.State) (mutate.State, error) {
				return b.ctrl.UpsertForeman(ctx, s, model.Foreman{Name: name, PIN: pin})
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{
				Data: map[string]any{"name": name},
				Meta: b.meta(),
			})
		},
	}

	cmd.Flags().StringVar(&pin, "pin", "", "New 4-digit PIN")
	return cmd
}

func newForemenRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm", "delete"},
		Short:   "Remove a foreman (Admin only)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := withBackend(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			err = b.apply(cmd.Context(), func(ctx context.Context, s mutate.State) (mutate.State, error) {
				return b.ctrl.DeleteForeman(ctx, s, args[0])
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{
				Data: map[string]any{"removed": strings.TrimSpace(args[0])},
				Meta: b.meta(),
			})
		},
	}
}
