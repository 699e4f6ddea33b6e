package remote

import (
	"encoding/json"
	"time"

	"flooring-cli/internal/model"
)

// Row is one sheet row keyed by its header.
type Row map[string]any

// Sheet headers, in column order.
var (
	ReportHeaders  = []string{"ID", "Vessel", "WeekStart", "WeekEnd", "CompartmentsData", "CreatedAt", "Author", "LastEditor", "UpdatedAt", "EditLog"}
	PTPHeaders     = []string{"ID", "Date", "Description", "Supervisor", "Location", "Company", "Evaluation", "Hazards", "PPE", "Steps", "Author", "CreatedAt"}
	ForemanHeaders = []string{"Name", "PIN"}
	AuditHeaders   = []string{"ID", "Timestamp", "User", "Action", "Details"}
)

// unknownAuthor is what the script writes when a report arrives without an author.
const unknownAuthor = "Unknown"

// ReportRow encodes a report the way the script stores it.
func ReportRow(r model.Report) Row {
	author := r.Author
	if author == "" {
		author = unknownAuthor
	}
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	editLog := r.EditLog
	if editLog == nil {
		editLog = []model.EditLogEntry{}
	}
	return Row{
		"ID":               r.ID,
		"Vessel":           r.Vessel,
		"WeekStart":        r.WeekStart,
		"WeekEnd":          r.WeekEnd,
		"CompartmentsData": jsonCell(r.Compartments),
		"CreatedAt":        timeCell(created),
		"Author":           author,
		"LastEditor":       r.LastEditor,
		"UpdatedAt":        timeCell(r.UpdatedAt),
		"EditLog":          jsonCell(editLog),
	}
}

// PTPRow encodes a plan. The sheet has no UpdatedAt column.
func PTPRow(p model.PreTaskPlan) Row {
	return Row{
		"ID":          p.ID,
		"Date":        p.Date,
		"Description": p.Description,
		"Supervisor":  p.Supervisor,
		"Location":    p.Location,
		"Company":     p.Company,
		"Evaluation":  jsonCell(p.Evaluation),
		"Hazards":     jsonCell(p.Hazards),
		"PPE":         jsonCell(p.PPE),
		"Steps":       jsonCell(p.Steps),
		"Author":      p.Author,
		"CreatedAt":   timeCell(p.CreatedAt),
	}
}

func ForemanRow(f model.Foreman) Row {
	return Row{"Name": f.Name, "PIN": f.PIN}
}

func AuditRow(e model.AuditLogEntry) Row {
	return Row{
		"ID":        e.ID,
		"Timestamp": timeCell(e.Timestamp),
		"User":      e.User,
		"Action":    e.Action,
		"Details":   e.Details,
	}
}

func jsonCell(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func timeCell(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
