package cli

import (
	"io"

	"flooring-cli/internal/mutate"
	"flooring-cli/internal/remote"
	"flooring-cli/internal/store"
	"flooring-cli/internal/tui"

	"github.com/spf13/cobra"
)

func runTUI(cmd *cobra.Command, app *App) error {
	if app.Offline {
		return writeErr(cmd, flagError{flag: "offline", reason: "the TUI always talks to the backend"})
	}
	cfg, err := store.LoadConfig()
	if err != nil {
		return writeErr(cmd, err)
	}
	endpoint := app.Endpoint
	if endpoint != "" {
		if err := store.ValidateEndpoint(endpoint); err != nil {
			return writeErr(cmd, err)
		}
	} else {
		endpoint = store.ResolveEndpoint(cfg)
	}

	// Log lines would corrupt the alt screen unless debugging.
	var logw io.Writer = io.Discard
	if app.LogLevel == "debug" {
		logw = cmd.ErrOrStderr()
	}
	logger := newLogger(logw, app.LogLevel)

	queue := &mutate.QueueScheduler{}
	ctrl := mutate.NewController(remote.NewClient(endpoint, logger, nil), queue, store.Session{}, logger, nil)
	ctrl.ResyncDelay = app.ResyncDelay
	if ctrl.ResyncDelay <= 0 {
		ctrl.ResyncDelay = cfg.ResyncDelay()
	}

	state := mutate.NewState(cfg.CurrentUser)
	var mirror *store.Cache
	if cache, err := store.DefaultCache(); err == nil {
		mirror = &cache
		// Show the last known data while the first resync runs.
		if snap, ok, err := cache.Load(cmd.Context()); err == nil && ok {
			state = state.ApplySnapshot(snap)
		}
	}

	return tui.Run(cmd.Context(), tui.Options{
		Controller: ctrl,
		Queue:      queue,
		State:      state,
		Mirror:     mirror,
		Logger:     logger,
	})
}
