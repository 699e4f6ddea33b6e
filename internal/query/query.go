// Package query filters, sorts and groups the local collections for list views.
// Nothing here mutates its input.
package query

import (
	"sort"
	"strings"
	"time"

	"flooring-cli/internal/model"
)

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

// Reports returns reports matching q (vessel, author, compartment name or
// installer), newest activity first.
func Reports(reports []model.Report, q string) []model.Report {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]model.Report, 0, len(reports))
	for _, r := range reports {
		if q == "" || reportMatches(r, q) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastActivity().After(out[j].LastActivity())
	})
	return out
}

func reportMatches(r model.Report, q string) bool {
	if contains(r.Vessel, q) || contains(r.ResolvedAuthor(), q) {
		return true
	}
	for _, c := range r.Compartments {
		if contains(c.Name, q) || contains(c.Installer, q) {
			return true
		}
	}
	return false
}

// GroupByQC splits reports into those whose every compartment passed QC and the rest.
// Order within each group is preserved.
func GroupByQC(reports []model.Report) (done, active []model.Report) {
	done, active = []model.Report{}, []model.Report{}
	for _, r := range reports {
		if r.IsQCComplete() {
			done = append(done, r)
		} else {
			active = append(active, r)
		}
	}
	return done, active
}

type PTPSortKey string

const (
	SortByDate        PTPSortKey = "date"
	SortByLocation    PTPSortKey = "location"
	SortBySupervisor  PTPSortKey = "supervisor"
	SortByDescription PTPSortKey = "description"
)

func (k PTPSortKey) Valid() bool {
	switch k {
	case SortByDate, SortByLocation, SortBySupervisor, SortByDescription:
		return true
	}
	return false
}

// PTPs filters plans by description, location, supervisor or author and sorts
// them by key. Dates compare chronologically; text compares case-insensitively.
func PTPs(plans []model.PreTaskPlan, q string, key PTPSortKey, desc bool) []model.PreTaskPlan {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]model.PreTaskPlan, 0, len(plans))
	for _, p := range plans {
		if q == "" || contains(p.Description, q) || contains(p.Location, q) || contains(p.Supervisor, q) || contains(p.Author, q) {
			out = append(out, p)
		}
	}
	if !key.Valid() {
		key = SortByDate
	}
	less := func(a, b model.PreTaskPlan) int {
		switch key {
		case SortByLocation:
			return strings.Compare(strings.ToLower(a.Location), strings.ToLower(b.Location))
		case SortBySupervisor:
			return strings.Compare(strings.ToLower(a.Supervisor), strings.ToLower(b.Supervisor))
		case SortByDescription:
			return strings.Compare(strings.ToLower(a.Description), strings.ToLower(b.Description))
		default:
			return planDate(a).Compare(planDate(b))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		c := less(out[i], out[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func planDate(p model.PreTaskPlan) time.Time {
	t, err := time.Parse(model.DateLayout, model.NormalizeDate(p.Date))
	if err != nil {
		return time.Time{}
	}
	return t
}

type PTPStats struct {
	Plans      int `json:"plans"`
	Hazards    int `json:"hazards"`
	PPE        int `json:"ppe"`
	Steps      int `json:"steps"`
	Incomplete int `json:"incomplete"`
}

func SummarizePTPs(plans []model.PreTaskPlan) PTPStats {
	st := PTPStats{Plans: len(plans)}
	for _, p := range plans {
		st.Hazards += len(p.Hazards)
		st.PPE += len(p.PPE)
		st.Steps += len(p.Steps)
		if !p.IsComplete() {
			st.Incomplete++
		}
	}
	return st
}

// AuditLogs filters by user, action or details, newest first.
func AuditLogs(logs []model.AuditLogEntry, q string) []model.AuditLogEntry {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]model.AuditLogEntry, 0, len(logs))
	for _, e := range logs {
		if q == "" || contains(e.User, q) || contains(e.Action, q) || contains(e.Details, q) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}
