package cli

import (
	"strings"
	"time"

	"flooring-cli/internal/mutate"
	"flooring-cli/internal/store"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change ~/.flooring/config.json",
	}

	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigSetEndpointCmd(app))
	cmd.AddCommand(newConfigSetResyncDelayCmd(app))

	return cmd
}

func configView(cfg *store.Config) map[string]any {
	delay := cfg.ResyncDelay()
	if delay <= 0 {
		delay = mutate.DefaultResyncDelay
	}
	path, _ := store.ConfigPath()
	return map[string]any{
		"path":           path,
		"endpoint":       store.ResolveEndpoint(cfg),
		"storedEndpoint": cfg.Endpoint,
		"currentUser":    cfg.CurrentUser,
		"resyncDelay":    delay.String(),
	}
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: configView(cfg)})
		},
	}
}

func newConfigSetEndpointCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-endpoint <url>",
		Short: "Store the sheet script URL (empty string resets to the default)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.TrimSpace(args[0])
			if raw != "" {
				if err := store.ValidateEndpoint(raw); err != nil {
					return writeErr(cmd, err)
				}
			}
			cfg, err := store.UpdateConfig(func(c *store.Config) { c.Endpoint = raw })
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{
				Data:  configView(cfg),
				Hints: []string{"flooring ping"},
			})
		},
	}
}

func newConfigSetResyncDelayCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-resync-delay <duration>",
		Short: "Store the delay before the post-write reload (e.g. 3s, 500ms; 0 resets)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := time.ParseDuration(strings.TrimSpace(args[0]))
			if err != nil || d < 0 {
				return writeErr(cmd, flagError{flag: "resync-delay", reason: "want a non-negative duration like 3s"})
			}
			cfg, err := store.UpdateConfig(func(c *store.Config) { c.ResyncDelayMs = int(d / time.Millisecond) })
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: configView(cfg)})
		},
	}
}
