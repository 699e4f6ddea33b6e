// Package audit writes the process-wide, append-only audit log.
package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"flooring-cli/internal/metrics"
	"flooring-cli/internal/model"
)

// Action labels recorded by the controller.
const (
	ActionCreateReport  = "Create Report"
	ActionUpdateReport  = "Update Report"
	ActionDeleteReport  = "Delete Report"
	ActionRestoreReport = "Restore Report"
	ActionCreatePTP     = "Create PTP"
	ActionUpdatePTP     = "Update PTP"
	ActionDeletePTP     = "Delete PTP"
	ActionRestorePTP    = "Restore PTP"
	ActionLogin         = "Foreman Login"
	ActionLogout        = "Foreman Logout"
)

// ErrRemote marks an entry that was recorded locally but not persisted remotely.
var ErrRemote = errors.New("audit entry not persisted")

// Sink persists audit entries.
type Sink interface {
	InsertAuditLog(ctx context.Context, e model.AuditLogEntry) error
}

type Writer struct {
	Sink    Sink
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
	NewID   func() string
}

func NewWriter(sink Sink, logger *slog.Logger, m *metrics.Metrics) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{Sink: sink, Logger: logger, Metrics: m}
}

// Record builds an entry for action and persists it. The actor is override when
// set, else current; with neither, nothing is recorded and ok is false.
//
// A persistence failure does not discard the entry: it is returned with ok=true so
// callers can still prepend it locally, together with an error wrapping ErrRemote.
func (w *Writer) Record(ctx context.Context, current, override, action, details string) (entry model.AuditLogEntry, ok bool, err error) {
	actor := strings.TrimSpace(override)
	if actor == "" {
		actor = strings.TrimSpace(current)
	}
	if actor == "" {
		return model.AuditLogEntry{}, false, nil
	}

	entry = model.AuditLogEntry{
		ID:        w.newID(),
		Timestamp: w.now(),
		User:      actor,
		Action:    action,
		Details:   details,
	}
	if w.Sink == nil {
		return entry, true, nil
	}

	perr := w.Sink.InsertAuditLog(ctx, entry)
	w.Metrics.AuditWrite(perr)
	if perr != nil {
		w.logger().Warn("audit write failed", "action", action, "user", actor, "err", perr)
		return entry, true, fmt.Errorf("%w: %w", ErrRemote, perr)
	}
	return entry, true, nil
}

func (w *Writer) now() time.Time {
	if w.Now != nil {
		return w.Now().UTC()
	}
	return time.Now().UTC()
}

func (w *Writer) newID() string {
	if w.NewID != nil {
		return w.NewID()
	}
	// Version 7 ids sort by creation time.
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

func (w *Writer) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.Default()
	}
	return w.Logger
}

// Prepend returns a new slice with e first. The input slice is not modified.
func Prepend(log []model.AuditLogEntry, e model.AuditLogEntry) []model.AuditLogEntry {
	out := make([]model.AuditLogEntry, 0, len(log)+1)
	out = append(out, e)
	return append(out, log...)
}

// ReportDetails is the "Vessel: X | Compartments: a, b" summary; empty is used when
// the report has no compartments.
func ReportDetails(r model.Report, empty string) string {
	names := strings.Join(r.CompartmentNames(), ", ")
	if names == "" {
		names = empty
	}
	return fmt.Sprintf("Vessel: %s | Compartments: %s", r.Vessel, names)
}

// PTPDetails is the "Location: L, ID: id" summary.
func PTPDetails(location, id string) string {
	return fmt.Sprintf("Location: %s, ID: %s", location, id)
}

// IdentityDetails is the login/logout summary.
func IdentityDetails(name string) string {
	return "Identity: " + name
}
