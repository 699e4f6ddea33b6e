package tui

import (
	"fmt"
	"strconv"
	"strings"

	"flooring-cli/internal/model"

	"github.com/charmbracelet/bubbles/list"
)

type reportItem struct {
	report model.Report
}

func (i reportItem) FilterValue() string {
	r := i.report
	parts := append([]string{r.PrimaryVessel(), r.ResolvedAuthor()}, r.CompartmentNames()...)
	for _, c := range r.Compartments {
		parts = append(parts, c.Installer)
	}
	return strings.Join(parts, " ")
}

func (i reportItem) Title() string {
	r := i.report
	return fmt.Sprintf("%s  %s", emptyAsDash(r.PrimaryVessel()), weekLabel(r))
}

func (i reportItem) Description() string {
	r := i.report
	qc := "in progress"
	if r.IsQCComplete() {
		qc = "QC done"
	}
	n := len(r.Compartments)
	unit := "compartments"
	if n == 1 {
		unit = "compartment"
	}
	return fmt.Sprintf("%d %s · %s sq ft · %s · %s", n, unit, strconv.FormatFloat(r.TotalSqFt(), 'f', -1, 64), qc, r.ResolvedAuthor())
}

func weekLabel(r model.Report) string {
	if r.WeekStart == "" && r.WeekEnd == "" {
		return "no week"
	}
	return model.DisplayDate(r.WeekStart) + " to " + model.DisplayDate(r.WeekEnd)
}

type ptpItem struct {
	plan model.PreTaskPlan
}

func (i ptpItem) FilterValue() string {
	p := i.plan
	return strings.Join([]string{p.Description, p.Location, p.Supervisor, p.Author}, " ")
}

func (i ptpItem) Title() string {
	p := i.plan
	return fmt.Sprintf("%s  %s", model.DisplayDate(p.Date), emptyAsDash(p.Location))
}

func (i ptpItem) Description() string {
	p := i.plan
	state := "complete"
	if !p.IsComplete() {
		state = fmt.Sprintf("%d unanswered", p.Evaluation.Unanswered())
	}
	return fmt.Sprintf("%s · %d hazards · %s", emptyAsDash(p.Description), len(p.Hazards), state)
}

type auditItem struct {
	entry model.AuditLogEntry
}

func (i auditItem) FilterValue() string {
	return i.entry.User + " " + i.entry.Action + " " + i.entry.Details
}

func (i auditItem) Title() string {
	e := i.entry
	return fmt.Sprintf("%s  %-10s  %s", e.Timestamp.Local().Format("01/02 15:04"), e.User, e.Action)
}

func (i auditItem) Description() string { return i.entry.Details }

type foremanItem struct {
	foreman model.Foreman
}

func (i foremanItem) FilterValue() string { return i.foreman.Name }
func (i foremanItem) Title() string       { return i.foreman.Name }
func (i foremanItem) Description() string {
	if i.foreman.Name == model.AdminName {
		return "administrator"
	}
	return ""
}

func emptyAsDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func newList(title string, trash bool) list.Model {
	l := list.New([]list.Item{}, newRowDelegate(trash), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	return l
}

// selectListItem moves the cursor to the item whose id matches, if present.
func selectListItem(l *list.Model, id string) {
	if id == "" {
		return
	}
	for i, it := range l.Items() {
		if itemID(it) == id {
			l.Select(i)
			return
		}
	}
}

func itemID(it list.Item) string {
	switch v := it.(type) {
	case reportItem:
		return v.report.ID
	case ptpItem:
		return v.plan.ID
	case auditItem:
		return v.entry.ID
	case foremanItem:
		return v.foreman.Name
	}
	return ""
}
