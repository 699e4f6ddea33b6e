package tui

import (
	"fmt"
	"strconv"
	"strings"

	"flooring-cli/internal/mutate"
	"flooring-cli/internal/query"

	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	if m.modal.kind != modalNone {
		w, h := m.width, m.height
		if w <= 0 || h <= 0 {
			return m.viewModal()
		}
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, m.viewModal())
	}

	var body string
	switch m.state.View {
	case mutate.ViewDashboard:
		body = m.viewDashboard()
	case mutate.ViewReportDetail, mutate.ViewPTPDetail:
		body = m.detail.View()
	default:
		if l := m.currentList(); l != nil {
			body = l.View()
		}
	}
	return strings.Join([]string{m.viewHeader(), body, m.viewFooter()}, "\n")
}

func (m appModel) viewHeader() string {
	parts := make([]string, 0, len(tabs)+1)
	active := m.state.View
	switch active {
	case mutate.ViewReportDetail:
		active = mutate.ViewReports
	case mutate.ViewPTPDetail:
		active = mutate.ViewPTPs
	}
	for i, t := range tabs {
		parts = append(parts, styleTab(t.view == active).Render(strconv.Itoa(i+1)+" "+t.label))
	}
	left := lipgloss.JoinHorizontal(lipgloss.Top, parts...)

	who := "not signed in"
	if m.state.Authorized() {
		who = m.state.CurrentUser
	}
	status := who
	switch {
	case m.state.Syncing:
		status += " · syncing…"
	case !m.state.LastSync.IsZero():
		status += " · synced " + m.state.LastSync.Local().Format("15:04:05")
	}
	if m.state.UnpersistedAudit > 0 {
		status += fmt.Sprintf(" · %d audit unsaved", m.state.UnpersistedAudit)
	}
	right := styleMuted().Render(status)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left + "\n" + right
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m appModel) viewFooter() string {
	keys := "1-7: views  r: sync  q: quit"
	switch m.state.View {
	case mutate.ViewReports, mutate.ViewPTPs:
		keys = "enter: open  d: trash  /: filter  " + keys
	case mutate.ViewDeletedReports, mutate.ViewDeletedPTPs:
		keys = "enter: open  u: restore  /: filter  " + keys
	case mutate.ViewReportDetail, mutate.ViewPTPDetail:
		keys = "↑/↓: scroll  esc: back  " + keys
	case mutate.ViewManagement:
		keys = "a: add  p: change PIN  x: remove  " + keys
	}
	if m.state.Authorized() {
		keys += "  L: logout"
	} else {
		keys += "  l: login"
	}
	footer := styleMuted().Render(keys)
	if msg := m.state.Toast.Message; msg != "" {
		footer = styleToast(msg).Render(msg) + "\n" + footer
	}
	return footer
}

func (m appModel) viewDashboard() string {
	d := m.dash
	var b strings.Builder

	stat := func(label, value string) string {
		return lipgloss.NewStyle().Padding(0, 2, 0, 0).Render(styleMuted().Render(label) + " " + styleHeader().Render(value))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		stat("Total sq ft", strconv.FormatFloat(d.TotalSqFt, 'f', 0, 64)),
		stat("Compartments", strconv.Itoa(d.Compartments)),
		stat("QC rate", strconv.Itoa(d.QCRate)+"%"),
		stat("Installers", strconv.Itoa(d.Installers)),
		stat("Vessels", strconv.Itoa(d.Vessels)),
		stat("Avg unit", strconv.Itoa(d.AvgUnitSize)+" sq ft"),
	))
	b.WriteString("\n\n")

	b.WriteString(styleHeader().Render("Production by vessel") + "\n")
	b.WriteString(bars(d.VesselProduction, m.width))
	b.WriteString("\n")
	b.WriteString(styleHeader().Render("Installer share") + "\n")
	b.WriteString(bars(d.InstallerShare, m.width))
	b.WriteString("\n")

	b.WriteString(styleHeader().Render("Recent activity") + "\n")
	if len(d.Recent) == 0 {
		b.WriteString(styleMuted().Render("No work phases recorded yet.") + "\n")
	}
	for _, a := range d.Recent {
		fmt.Fprintf(&b, "%s  %s %s  %s\n", a.Date, a.Vessel, a.Compartment, styleMuted().Render(a.Phase))
	}
	return b.String()
}

// bars draws one horizontal bar per row, scaled to the largest value.
func bars(rows []query.Production, width int) string {
	if len(rows) == 0 {
		return styleMuted().Render("No data.") + "\n"
	}
	top := 0.0
	labelW := 0
	for _, r := range rows {
		if r.SqFt > top {
			top = r.SqFt
		}
		if w := lipgloss.Width(r.Name); w > labelW {
			labelW = w
		}
	}
	barW := width - labelW - 16
	if barW < 10 {
		barW = 10
	}
	if barW > 50 {
		barW = 50
	}
	bar := lipgloss.NewStyle().Foreground(colorAccent)
	var b strings.Builder
	for _, r := range rows {
		n := 0
		if top > 0 {
			n = int(r.SqFt / top * float64(barW))
		}
		fmt.Fprintf(&b, "%-*s %s %s\n", labelW, r.Name, bar.Render(strings.Repeat("█", n)), strconv.FormatFloat(r.SqFt, 'f', 0, 64))
	}
	return b.String()
}
