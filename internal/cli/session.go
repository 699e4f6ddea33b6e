package cli

import (
	"context"
	"errors"
	"strings"

	"flooring-cli/internal/model"
	"flooring-cli/internal/mutate"
	"flooring-cli/internal/store"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var name string
	var pin string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as a foreman (or Admin); the identity is kept until logout",
		RunE: func(cmd *cobra.Command, args []string) error {
			name = strings.TrimSpace(name)
			if name == "" {
				return writeErr(cmd, flagError{flag: "name", reason: "required"})
			}
			b, err := withBackend(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			err = b.apply(cmd.Context(), func(ctx context.Context, s mutate.State) (mutate.State, error) {
				return b.ctrl.Login(ctx, s, name, pin)
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{
				Data: map[string]any{"user": b.state.CurrentUser, "admin": b.state.IsAdmin()},
				Meta: b.meta(),
				Hints: []string{
					"flooring reports list",
					"flooring ptps list",
				},
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Foreman name (Admin for the administrator)")
	cmd.Flags().StringVar(&pin, "pin", envOr("FLOORING_PIN", ""), "4-digit PIN")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the signed-in identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBackend(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			prev := b.state.CurrentUser
			// Logout works offline; only the audit entry needs the backend.
			s, err := b.ctrl.Logout(cmd.Context(), b.state)
			b.state = s
			if err != nil {
				var re *mutate.RemoteError
				if !errors.As(err, &re) {
					return writeErr(cmd, err)
				}
				b.logger.Warn("logout audit not recorded", "err", err)
			}
			return writeOut(cmd, app, envelope{
				Data: map[string]any{"loggedOut": prev},
			})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			user := store.Session{}.CurrentUser()
			hints := []string{}
			if user == "" {
				hints = append(hints, "flooring login --name <name> --pin <pin>")
			}
			return writeOut(cmd, app, envelope{
				Data:  map[string]any{"user": user, "admin": user == model.AdminName},
				Hints: hints,
			})
		},
	}
}

func newPingCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the sheet backend answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBackend(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := b.client.Ping(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{
				Data: map[string]any{"endpoint": b.endpoint, "ok": true},
			})
		},
	}
}

func newSyncCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reload every collection from the backend and refresh the local mirror",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBackend(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := b.ctrl.Resync(cmd.Context(), b.state)
			if err != nil {
				return writeErr(cmd, errors.New(mutate.SyncFailedToast+": "+err.Error()))
			}
			b.state = s
			b.saveMirror(cmd.Context())
			return writeOut(cmd, app, envelope{
				Data: map[string]any{
					"reports":        len(s.Reports),
					"deletedReports": len(s.DeletedReports),
					"ptps":           len(s.PTPs),
					"deletedPtps":    len(s.DeletedPTPs),
					"foremen":        len(s.Foremen),
					"auditLogs":      len(s.AuditLogs),
				},
				Meta: b.meta(),
			})
		},
	}
}
