package cli

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"flooring-cli/internal/mutate"
	"flooring-cli/internal/remote"
	"flooring-cli/internal/store"

	"github.com/spf13/cobra"
)

// settleTimeout bounds how long a command waits for follow-up resyncs beyond
// the configured delay.
const settleTimeout = 30 * time.Second

var errOffline = errors.New("writes are not available with --offline")

// backend is one command's view of the sheet: a controller, the state it
// drives, and the local snapshot mirror.
type backend struct {
	app      *App
	cfg      *store.Config
	endpoint string
	client   *remote.Client
	ctrl     *mutate.Controller
	sched    *mutate.TimerScheduler
	cache    store.Cache
	logger   *slog.Logger

	state mutate.State
	// fromMirror is set when state came from the local mirror instead of the backend.
	fromMirror bool
}

func openBackend(cmd *cobra.Command, app *App) (*backend, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	endpoint := strings.TrimSpace(app.Endpoint)
	if endpoint != "" {
		if err := store.ValidateEndpoint(endpoint); err != nil {
			return nil, err
		}
	} else {
		endpoint = store.ResolveEndpoint(cfg)
	}
	cache, err := store.DefaultCache()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cmd.ErrOrStderr(), app.LogLevel)
	client := remote.NewClient(endpoint, logger, nil)
	sched := mutate.NewTimerScheduler()
	ctrl := mutate.NewController(client, sched, store.Session{}, logger, nil)
	ctrl.ResyncDelay = app.ResyncDelay
	if ctrl.ResyncDelay <= 0 {
		ctrl.ResyncDelay = cfg.ResyncDelay()
	}

	return &backend{
		app:      app,
		cfg:      cfg,
		endpoint: endpoint,
		client:   client,
		ctrl:     ctrl,
		sched:    sched,
		cache:    cache,
		logger:   logger,
		state:    mutate.NewState(cfg.CurrentUser),
	}, nil
}

// load fills the state from the backend, falling back to the local mirror when
// the backend is unreachable or --offline is set.
func (b *backend) load(ctx context.Context) error {
	if !b.app.Offline {
		s, err := b.ctrl.Resync(ctx, b.state)
		if err == nil {
			b.state = s
			b.saveMirror(ctx)
			return nil
		}
		if !b.loadMirror(ctx) {
			return err
		}
		b.logger.Warn("backend unreachable; using local mirror", "endpoint", b.endpoint, "err", err)
		return nil
	}
	if !b.loadMirror(ctx) {
		return errors.New("no local snapshot yet; run `flooring sync` while online")
	}
	return nil
}

func (b *backend) loadMirror(ctx context.Context) bool {
	snap, ok, err := b.cache.Load(ctx)
	if err != nil {
		b.logger.Warn("read local mirror failed", "path", b.cache.Path, "err", err)
		return false
	}
	if !ok {
		return false
	}
	b.state = b.state.ApplySnapshot(snap)
	b.fromMirror = true
	return true
}

func (b *backend) saveMirror(ctx context.Context) {
	if err := b.cache.Save(ctx, b.state.Snapshot()); err != nil {
		b.logger.Warn("write local mirror failed", "path", b.cache.Path, "err", err)
	}
}

// apply runs one controller operation and then waits for the resyncs it
// scheduled, unless --no-wait is set.
func (b *backend) apply(ctx context.Context, fn func(context.Context, mutate.State) (mutate.State, error)) error {
	if b.app.Offline {
		return errOffline
	}
	s, err := fn(ctx, b.state)
	b.state = s
	b.settle(ctx)
	if err != nil {
		return explain(err)
	}
	return nil
}

// settle drains pending resyncs, then mirrors the final state.
func (b *backend) settle(ctx context.Context) {
	if !b.app.NoWait && b.sched.Pending() > 0 {
		wait := b.ctrl.ResyncDelay
		if wait <= 0 {
			wait = mutate.DefaultResyncDelay
		}
		ctx, cancel := context.WithTimeout(ctx, wait+settleTimeout)
		defer cancel()
		err := b.sched.Drain(ctx, func(ctx context.Context) {
			s, err := b.ctrl.Resync(ctx, b.state)
			b.state = s
			if err == nil {
				b.fromMirror = false
			}
		})
		if err != nil {
			b.logger.Warn("gave up waiting for resync", "err", err)
		}
	}
	b.saveMirror(ctx)
}

func (b *backend) meta() map[string]any {
	m := map[string]any{}
	if b.state.CurrentUser != "" {
		m["user"] = b.state.CurrentUser
	}
	if b.state.Toast.Message != "" {
		m["toast"] = b.state.Toast.Message
	}
	if !b.state.LastSync.IsZero() {
		m["lastSync"] = b.state.LastSync.UTC().Format(time.RFC3339)
	}
	if b.fromMirror {
		m["offline"] = true
	}
	if b.state.UnpersistedAudit > 0 {
		m["unpersistedAudit"] = b.state.UnpersistedAudit
	}
	return m
}

// withBackend opens and loads a backend for a command.
func withBackend(cmd *cobra.Command, app *App) (*backend, error) {
	b, err := openBackend(cmd, app)
	if err != nil {
		return nil, err
	}
	if err := b.load(cmd.Context()); err != nil {
		return nil, err
	}
	return b, nil
}
