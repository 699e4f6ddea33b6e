// Package mutate is the optimistic mutation controller.
//
// Every operation is split in three steps so interactive hosts never block on
// the backend:
//
//   - Begin* applies the local change to a State and returns an *Effect.
//   - Run performs the backend call and, when it succeeds, the audit write.
//     It touches no State and may run on any goroutine.
//   - Finish folds the Outcome back into the (possibly newer) State: toasts,
//     the new audit entry, and the follow-up resync.
//
// The plain methods (CreateReport, ArchivePTP, ...) run all three in sequence.
package mutate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"flooring-cli/internal/audit"
	"flooring-cli/internal/metrics"
	"flooring-cli/internal/model"
)

// DefaultResyncDelay is how long after a successful write the full reload runs.
const DefaultResyncDelay = 3 * time.Second

// errRejected stands in for a backend that answered without {success:true}.
var errRejected = errors.New("backend did not confirm the change")

// Fetcher loads every collection from the backend.
type Fetcher interface {
	FetchReports(ctx context.Context) ([]model.Report, error)
	FetchDeletedReports(ctx context.Context) ([]model.Report, error)
	FetchForemen(ctx context.Context) ([]model.Foreman, error)
	FetchPTPs(ctx context.Context) ([]model.PreTaskPlan, error)
	FetchDeletedPTPs(ctx context.Context) ([]model.PreTaskPlan, error)
	FetchAuditLogs(ctx context.Context) ([]model.AuditLogEntry, error)
}

// Store is the backend as seen by the controller. Both remote.Client and
// remote.Memory satisfy it.
type Store interface {
	Fetcher
	audit.Sink

	InsertReport(ctx context.Context, r model.Report) error
	UpdateReport(ctx context.Context, r model.Report) error
	DeleteReport(ctx context.Context, id string) (bool, error)
	RestoreReport(ctx context.Context, id string) (bool, error)

	InsertPTP(ctx context.Context, p model.PreTaskPlan) error
	UpdatePTP(ctx context.Context, p model.PreTaskPlan) error
	DeletePTP(ctx context.Context, id string) (bool, error)
	RestorePTP(ctx context.Context, id string) (bool, error)

	UpsertForeman(ctx context.Context, f model.Foreman) (bool, error)
	DeleteForeman(ctx context.Context, name string) (bool, error)
}

// Session persists the logged-in identity across restarts.
type Session interface {
	SaveUser(name string) error
	ClearUser() error
}

type Controller struct {
	Store     Store
	Audit     *audit.Writer
	Scheduler Scheduler
	Session   Session
	Logger    *slog.Logger
	Metrics   *metrics.Metrics

	// ResyncDelay is the delay after a successful write; zero means DefaultResyncDelay.
	ResyncDelay time.Duration
	Now         func() time.Time
}

func NewController(store Store, sched Scheduler, sess Session, logger *slog.Logger, m *metrics.Metrics) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		Store:     store,
		Audit:     audit.NewWriter(store, logger, m),
		Scheduler: sched,
		Session:   sess,
		Logger:    logger,
		Metrics:   m,
	}
}

// Effect is the remote half of an operation, captured when the local change is made.
type Effect struct {
	Op string

	call      func(ctx context.Context) (bool, error)
	requireOK bool

	// Audit is written after a successful call. Actor is captured at Begin time.
	AuditAction   string
	AuditDetails  string
	AuditActor    string
	AuditOverride string

	SuccessToast  string
	FailurePrefix string

	// FailureToast replaces FailurePrefix+err when set.
	FailureToast string

	// Resync controls the follow-up reload; failures always reload immediately.
	Resync bool
	Delay  time.Duration
}

// Outcome is what Run observed.
type Outcome struct {
	Effect *Effect
	Err    error

	Entry    model.AuditLogEntry
	Audited  bool
	AuditErr error
}

// Run performs the backend call and, on success, the audit write.
func (c *Controller) Run(ctx context.Context, eff *Effect) Outcome {
	out := Outcome{Effect: eff}
	if eff == nil {
		return out
	}
	if eff.call != nil {
		ok, err := eff.call(ctx)
		if err == nil && eff.requireOK && !ok {
			err = errRejected
		}
		if err != nil {
			out.Err = err
			return out
		}
	}
	if eff.AuditAction != "" && c.Audit != nil {
		out.Entry, out.Audited, out.AuditErr = c.Audit.Record(ctx, eff.AuditActor, eff.AuditOverride, eff.AuditAction, eff.AuditDetails)
	}
	return out
}

// Finish applies an Outcome to s. The returned error is a *RemoteError when the
// backend call failed; a failed audit write alone is not an error.
func (c *Controller) Finish(s State, out Outcome) (State, error) {
	eff := out.Effect
	if eff == nil {
		return s, nil
	}
	if out.Err != nil {
		c.Metrics.Mutation(eff.Op, "remote_error")
		c.logger().Warn("remote write failed", "op", eff.Op, "err", out.Err)
		switch {
		case eff.FailureToast != "":
			s = s.withToast(eff.FailureToast)
		case eff.FailurePrefix != "":
			s = s.withToast(eff.FailurePrefix + out.Err.Error())
		}
		c.schedule(0)
		return s, &RemoteError{Op: eff.Op, Err: out.Err}
	}

	c.Metrics.Mutation(eff.Op, "ok")
	if eff.SuccessToast != "" {
		s = s.withToast(eff.SuccessToast)
	}
	if out.Audited {
		s.AuditLogs = audit.Prepend(s.AuditLogs, out.Entry)
		if out.AuditErr != nil {
			s.UnpersistedAudit++
		}
	}
	if eff.Resync {
		c.schedule(eff.Delay)
	}
	return s, nil
}

// Complete runs eff and folds the result into s.
func (c *Controller) Complete(ctx context.Context, s State, eff *Effect) (State, error) {
	return c.Finish(s, c.Run(ctx, eff))
}

func (c *Controller) now() time.Time {
	if c.Now != nil {
		return c.Now().UTC()
	}
	return time.Now().UTC()
}

func (c *Controller) delay() time.Duration {
	if c.ResyncDelay > 0 {
		return c.ResyncDelay
	}
	return DefaultResyncDelay
}

func (c *Controller) schedule(d time.Duration) {
	if c.Scheduler != nil {
		c.Scheduler.Schedule(d)
	}
}

func (c *Controller) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// guard rejects mutations without a logged-in identity. State is untouched.
func (c *Controller) guard(s State, op string) error {
	if s.Authorized() {
		return nil
	}
	c.Metrics.Mutation(op, "unauthenticated")
	return ErrUnauthenticated
}

// inTrash refuses to create a record whose id is trashed, which would leave it
// in both lists.
func (c *Controller) inTrash(s State, op, label, id string) (State, *Effect, error) {
	c.Metrics.Mutation(op, "trashed")
	return s.withToast(fmt.Sprintf("Error: %s %s is in the trash", label, id)), nil, fmt.Errorf("%s %s: %w", strings.ToLower(label), id, ErrTrashed)
}

func (c *Controller) notFound(s State, op, kind, label, id string) (State, *Effect, error) {
	c.Metrics.Mutation(op, "not_found")
	return s.withToast(fmt.Sprintf("Error: %s %s not found", label, id)), nil, NotFoundError{Kind: kind, ID: id}
}
