package model

import "time"

// Snapshot is a full copy of every remote collection, as fetched by a resync.
type Snapshot struct {
	Reports        []Report        `json:"reports"`
	DeletedReports []Report        `json:"deletedReports"`
	PTPs           []PreTaskPlan   `json:"ptps"`
	DeletedPTPs    []PreTaskPlan   `json:"deletedPtps"`
	Foremen        []Foreman       `json:"foremen"`
	AuditLogs      []AuditLogEntry `json:"auditLogs"`
	FetchedAt      time.Time       `json:"fetchedAt,omitzero"`
}
