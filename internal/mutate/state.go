package mutate

import (
	"time"

	"flooring-cli/internal/model"
)

type View string

const (
	ViewDashboard      View = "dashboard"
	ViewReports        View = "list"
	ViewDeletedReports View = "deleted"
	ViewReportDetail   View = "detail"
	ViewPTPs           View = "ptp_list"
	ViewDeletedPTPs    View = "ptp_deleted"
	ViewPTPDetail      View = "ptp_detail"
	ViewAuditLog       View = "audit_log"
	ViewManagement     View = "management"
)

// Public reports whether v may be shown without a logged-in foreman.
func (v View) Public() bool {
	return v == ViewDashboard || v == ViewReports
}

// Toast is a transient user-visible message. Seq increases on every change so
// hosts can expire a message without clearing a newer one.
type Toast struct {
	Message string `json:"message"`
	Seq     int    `json:"seq"`
}

// State is the whole client-side application state. Controller methods take a
// State value and return the next one; slices are never mutated in place, so an
// older State stays valid after a transition.
type State struct {
	CurrentUser string `json:"currentUser,omitempty"`

	Reports        []model.Report        `json:"reports"`
	DeletedReports []model.Report        `json:"deletedReports"`
	PTPs           []model.PreTaskPlan   `json:"ptps"`
	DeletedPTPs    []model.PreTaskPlan   `json:"deletedPtps"`
	Foremen        []model.Foreman       `json:"foremen"`
	AuditLogs      []model.AuditLogEntry `json:"auditLogs"`

	View       View      `json:"view"`
	SelectedID string    `json:"selectedId,omitempty"`
	Toast      Toast     `json:"toast"`
	LoginError bool      `json:"loginError,omitempty"`
	ShowLogin  bool      `json:"showLogin,omitempty"`
	Syncing    bool      `json:"syncing,omitempty"`
	LastSync   time.Time `json:"lastSync,omitzero"`

	// UnpersistedAudit counts audit entries shown locally whose remote write failed.
	UnpersistedAudit int `json:"unpersistedAudit,omitempty"`
}

// NewState returns the initial state for a session restored from durable config.
func NewState(currentUser string) State {
	return State{CurrentUser: currentUser, View: ViewDashboard}
}

func (s State) Authorized() bool {
	return s.CurrentUser != ""
}

func (s State) IsAdmin() bool {
	return s.CurrentUser == model.AdminName
}

func (s State) withToast(msg string) State {
	s.Toast = Toast{Message: msg, Seq: s.Toast.Seq + 1}
	return s
}

// ClearToast hides the toast if seq still identifies the current message.
func (s State) ClearToast(seq int) State {
	if s.Toast.Seq == seq {
		s.Toast.Message = ""
	}
	return s
}

// Snapshot copies the collections out of the state.
func (s State) Snapshot() model.Snapshot {
	return model.Snapshot{
		Reports:        s.Reports,
		DeletedReports: s.DeletedReports,
		PTPs:           s.PTPs,
		DeletedPTPs:    s.DeletedPTPs,
		Foremen:        s.Foremen,
		AuditLogs:      s.AuditLogs,
		FetchedAt:      s.LastSync,
	}
}

// ApplySnapshot replaces every collection wholesale. Remote wins; nothing is merged.
func (s State) ApplySnapshot(snap model.Snapshot) State {
	s.Reports = nonNil(snap.Reports)
	s.DeletedReports = nonNil(snap.DeletedReports)
	s.PTPs = nonNil(snap.PTPs)
	s.DeletedPTPs = nonNil(snap.DeletedPTPs)
	s.Foremen = nonNil(snap.Foremen)
	s.AuditLogs = nonNil(snap.AuditLogs)
	s.LastSync = snap.FetchedAt
	s.UnpersistedAudit = 0
	s.Syncing = false
	return s
}

func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}

// FindReport looks up an active report by id.
func (s State) FindReport(id string) (model.Report, bool) {
	i := indexByID(s.Reports, id, reportID)
	if i < 0 {
		return model.Report{}, false
	}
	return s.Reports[i], true
}

func (s State) FindDeletedReport(id string) (model.Report, bool) {
	i := indexByID(s.DeletedReports, id, reportID)
	if i < 0 {
		return model.Report{}, false
	}
	return s.DeletedReports[i], true
}

func (s State) FindPTP(id string) (model.PreTaskPlan, bool) {
	i := indexByID(s.PTPs, id, ptpID)
	if i < 0 {
		return model.PreTaskPlan{}, false
	}
	return s.PTPs[i], true
}

func (s State) FindDeletedPTP(id string) (model.PreTaskPlan, bool) {
	i := indexByID(s.DeletedPTPs, id, ptpID)
	if i < 0 {
		return model.PreTaskPlan{}, false
	}
	return s.DeletedPTPs[i], true
}
