package cli

import (
	"strconv"
	"strings"
	"time"

	"flooring-cli/internal/model"
)

type reportTable []model.Report

func (t reportTable) Table() ([]string, [][]string) {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		qc := "active"
		if r.IsQCComplete() {
			qc = "done"
		}
		rows = append(rows, []string{
			r.ID, r.Vessel, r.WeekStart, r.WeekEnd, r.ResolvedAuthor(),
			strings.Join(r.CompartmentNames(), ", "),
			strconv.FormatFloat(r.TotalSqFt(), 'f', -1, 64), qc,
		})
	}
	return []string{"id", "vessel", "week_start", "week_end", "author", "compartments", "sqft", "qc"}, rows
}

type planTable []model.PreTaskPlan

func (t planTable) Table() ([]string, [][]string) {
	rows := make([][]string, 0, len(t))
	for _, p := range t {
		rows = append(rows, []string{
			p.ID, p.Date, p.Location, p.Supervisor, p.Description, p.Author,
			strconv.Itoa(len(p.Hazards)), strconv.FormatBool(p.IsComplete()),
		})
	}
	return []string{"id", "date", "location", "supervisor", "description", "author", "hazards", "complete"}, rows
}

type foremanRow struct {
	Name  string `json:"name"`
	Admin bool   `json:"admin"`
}

type foremanTable []foremanRow

func (t foremanTable) Table() ([]string, [][]string) {
	rows := make([][]string, 0, len(t))
	for _, f := range t {
		rows = append(rows, []string{f.Name, strconv.FormatBool(f.Admin)})
	}
	return []string{"name", "admin"}, rows
}

type auditTable []model.AuditLogEntry

func (t auditTable) Table() ([]string, [][]string) {
	rows := make([][]string, 0, len(t))
	for _, e := range t {
		rows = append(rows, []string{e.Timestamp.UTC().Format(time.RFC3339), e.User, e.Action, e.Details})
	}
	return []string{"timestamp", "user", "action", "details"}, rows
}
