package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"flooring-cli/internal/model"
)

// Memory is an in-process backend with the same semantics as the sheet script:
// rows are appended in insertion order, delete/restore move rows between sheets,
// and row lookup compares ids by their digits only.
type Memory struct {
	mu sync.Mutex

	reports        []model.Report
	deletedReports []model.Report
	ptps           []model.PreTaskPlan
	deletedPTPs    []model.PreTaskPlan
	foremen        []model.Foreman
	audit          []model.AuditLogEntry

	failures map[string]error
	calls    []string
}

// NewMemory returns a backend seeded the way a fresh spreadsheet is (Admin foreman only).
func NewMemory() *Memory {
	return &Memory{
		foremen:  []model.Foreman{{Name: model.AdminName, PIN: model.AdminPIN}},
		failures: map[string]error{},
	}
}

// FailOn makes every subsequent call for action fail with err (nil clears it).
func (m *Memory) FailOn(action string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, action)
		return
	}
	m.failures[action] = err
}

// Calls returns the actions invoked so far, in order.
func (m *Memory) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *Memory) enter(ctx context.Context, action string) error {
	m.calls = append(m.calls, action)
	if err := ctx.Err(); err != nil {
		return err
	}
	if err, ok := m.failures[action]; ok {
		return &Error{Action: action, Err: err}
	}
	return nil
}

func (m *Memory) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enter(ctx, ActionPing)
}

func (m *Memory) FetchReports(ctx context.Context) ([]model.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, ActionFetchReports); err != nil {
		return nil, err
	}
	return cloneReports(m.reports), nil
}

func (m *Memory) FetchDeletedReports(ctx context.Context) ([]model.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, ActionFetchDeleted); err != nil {
		return nil, err
	}
	return cloneReports(m.deletedReports), nil
}

func (m *Memory) FetchForemen(ctx context.Context) ([]model.Foreman, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, ActionFetchForemen); err != nil {
		return nil, err
	}
	return append([]model.Foreman{}, m.foremen...), nil
}

func (m *Memory) FetchPTPs(ctx context.Context) ([]model.PreTaskPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, ActionFetchPTPs); err != nil {
		return nil, err
	}
	return clonePTPs(m.ptps), nil
}

func (m *Memory) FetchDeletedPTPs(ctx context.Context) ([]model.PreTaskPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, ActionFetchDeletedPTPs); err != nil {
		return nil, err
	}
	return clonePTPs(m.deletedPTPs), nil
}

func (m *Memory) FetchAuditLogs(ctx context.Context) ([]model.AuditLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, ActionFetchAuditLogs); err != nil {
		return nil, err
	}
	return append([]model.AuditLogEntry{}, m.audit...), nil
}

func (m *Memory) InsertReport(ctx context.Context, r model.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, ActionInsert); err != nil {
		return err
	}
	m.reports = append(m.reports, storedReport(r))
	return nil
}

func (m *Memory) UpdateReport(ctx context.Context, r model.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, ActionUpdate); err != nil {
		return err
	}
	i := indexOf(len(m.reports), func(i int) string { return m.reports[i].ID }, r.ID)
	if i < 0 {
		return &Error{Action: ActionUpdate, Message: "ID not found"}
	}
	m.reports[i] = storedReport(r)
	return nil
}

func (m *Memory) DeleteReport(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, ActionDelete); err != nil {
		return false, err
	}
	var err error
	m.reports, m.deletedReports, err = moveRow(ActionDelete, m.reports, m.deletedReports, id, func(r model.Report) string { return r.ID })
	return err == nil, err
}

func (m *Memory) RestoreReport(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, ActionRestore); err != nil {
		return false, err
	}
	var err error
	m.deletedReports, m.reports, err = moveRow(ActionRestore, m.deletedReports, m.reports, id, func(r model.Report) string { return r.ID })
	return err == nil, err
}

func (m *Memory) InsertPTP(ctx context.Context, p model.PreTaskPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, ActionInsertPTP); err != nil {
		return err
	}
	m.ptps = append(m.ptps, storedPTP(p))
	return nil
}

func (m *Memory) UpdatePTP(ctx context.Context, p model.PreTaskPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, ActionUpdatePTP); err != nil {
		return err
	}
	i := indexOf(len(m.ptps), func(i int) string { return m.ptps[i].ID }, p.ID)
	if i < 0 {
		return &Error{Action: ActionUpdatePTP, Message: "PTP Not found"}
	}
	m.ptps[i] = storedPTP(p)
	return nil
}

func (m *Memory) DeletePTP(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, ActionDeletePTP); err != nil {
		return false, err
	}
	var err error
	m.ptps, m.deletedPTPs, err = moveRow(ActionDeletePTP, m.ptps, m.deletedPTPs, id, func(p model.PreTaskPlan) string { return p.ID })
	return err == nil, err
}

func (m *Memory) RestorePTP(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, ActionRestorePTP); err != nil {
		return false, err
	}
	var err error
	m.deletedPTPs, m.ptps, err = moveRow(ActionRestorePTP, m.deletedPTPs, m.ptps, id, func(p model.PreTaskPlan) string { return p.ID })
	return err == nil, err
}

func (m *Memory) UpsertForeman(ctx context.Context, f model.Foreman) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, ActionUpsertForeman); err != nil {
		return false, err
	}
	for i := range m.foremen {
		if m.foremen[i].Name == f.Name {
			m.foremen[i].PIN = f.PIN
			return true, nil
		}
	}
	m.foremen = append(m.foremen, f)
	return true, nil
}

func (m *Memory) DeleteForeman(ctx context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, ActionDeleteForeman); err != nil {
		return false, err
	}
	for i := range m.foremen {
		if m.foremen[i].Name == name {
			m.foremen = append(m.foremen[:i:i], m.foremen[i+1:]...)
			return true, nil
		}
	}
	return false, &Error{Action: ActionDeleteForeman, Message: "Foreman not found"}
}

func (m *Memory) InsertAuditLog(ctx context.Context, e model.AuditLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, ActionInsertAuditLog); err != nil {
		return err
	}
	m.audit = append(m.audit, e)
	return nil
}

// Rows returns the sheet rows a GET for action would return.
func (m *Memory) Rows(ctx context.Context, action string) ([]Row, error) {
	switch action {
	case ActionFetchDeleted:
		rs, err := m.FetchDeletedReports(ctx)
		return mapRows(rs, ReportRow), err
	case ActionFetchForemen:
		fs, err := m.FetchForemen(ctx)
		return mapRows(fs, ForemanRow), err
	case ActionFetchPTPs:
		ps, err := m.FetchPTPs(ctx)
		return mapRows(ps, PTPRow), err
	case ActionFetchDeletedPTPs:
		ps, err := m.FetchDeletedPTPs(ctx)
		return mapRows(ps, PTPRow), err
	case ActionFetchAuditLogs:
		es, err := m.FetchAuditLogs(ctx)
		return mapRows(es, AuditRow), err
	default:
		rs, err := m.FetchReports(ctx)
		return mapRows(rs, ReportRow), err
	}
}

// ErrUnknownAction is returned by Apply for actions the script does not implement.
var ErrUnknownAction = errors.New("unknown action")

// Apply executes a POST envelope, decoding data leniently the way the script reads it.
func (m *Memory) Apply(ctx context.Context, action string, data json.RawMessage) error {
	var obj map[string]any
	if len(data) > 0 {
		if err := json.Unmarshal(data, &obj); err != nil {
			return &Error{Action: action, Message: "Invalid JSON"}
		}
	}
	f := lookup(obj)
	id := func() string {
		v, _ := f.raw("id")
		return model.IDString(v)
	}

	switch action {
	case ActionInsert:
		return m.InsertReport(ctx, ReportFromRow(obj))
	case ActionUpdate:
		return m.UpdateReport(ctx, ReportFromRow(obj))
	case ActionDelete:
		_, err := m.DeleteReport(ctx, id())
		return err
	case ActionRestore:
		_, err := m.RestoreReport(ctx, id())
		return err
	case ActionInsertPTP:
		return m.InsertPTP(ctx, PTPFromRow(obj))
	case ActionUpdatePTP:
		return m.UpdatePTP(ctx, PTPFromRow(obj))
	case ActionDeletePTP:
		_, err := m.DeletePTP(ctx, id())
		return err
	case ActionRestorePTP:
		_, err := m.RestorePTP(ctx, id())
		return err
	case ActionUpsertForeman:
		_, err := m.UpsertForeman(ctx, ForemanFromRow(obj))
		return err
	case ActionDeleteForeman:
		_, err := m.DeleteForeman(ctx, f.str("name"))
		return err
	case ActionInsertAuditLog:
		return m.InsertAuditLog(ctx, AuditLogFromRow(obj))
	default:
		return fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
}

// digitsOnly mirrors the script's id normalization.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func indexOf(n int, idAt func(int) string, id string) int {
	target := digitsOnly(id)
	if target == "" {
		return -1
	}
	for i := 0; i < n; i++ {
		if digitsOnly(idAt(i)) == target {
			return i
		}
	}
	return -1
}

func moveRow[T any](action string, from, to []T, id string, idOf func(T) string) ([]T, []T, error) {
	i := indexOf(len(from), func(i int) string { return idOf(from[i]) }, id)
	if i < 0 {
		return from, to, &Error{Action: action, Message: fmt.Sprintf("ID %s not found", id)}
	}
	row := from[i]
	from = append(from[:i:i], from[i+1:]...)
	return from, append(to, row), nil
}

func mapRows[T any](xs []T, fn func(T) Row) []Row {
	out := make([]Row, 0, len(xs))
	for _, x := range xs {
		out = append(out, fn(x))
	}
	return out
}

// storedReport round-trips through the row encoding so stored values match what a fetch returns.
func storedReport(r model.Report) model.Report {
	return ReportFromRow(ReportRow(r))
}

func storedPTP(p model.PreTaskPlan) model.PreTaskPlan {
	return PTPFromRow(PTPRow(p))
}

func cloneReports(xs []model.Report) []model.Report {
	out := make([]model.Report, 0, len(xs))
	for _, r := range xs {
		out = append(out, r.Clone())
	}
	return out
}

func clonePTPs(xs []model.PreTaskPlan) []model.PreTaskPlan {
	out := make([]model.PreTaskPlan, 0, len(xs))
	for _, p := range xs {
		out = append(out, p.Clone())
	}
	return out
}
