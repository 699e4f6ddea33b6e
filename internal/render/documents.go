package render

import (
	"fmt"
	"strconv"
	"strings"

	"flooring-cli/internal/model"
)

// ReportMarkdown builds the detail document for a report.
func ReportMarkdown(r model.Report) string {
	var b strings.Builder
	vessel := r.Vessel
	if vessel == "" {
		vessel = r.PrimaryVessel()
	}
	fmt.Fprintf(&b, "# %s\n\n", orDash(vessel))
	fmt.Fprintf(&b, "- **Week:** %s to %s\n", dateOrNA(r.WeekStart), dateOrNA(r.WeekEnd))
	author := r.ResolvedAuthor()
	if author == "" {
		author = "Unknown"
	}
	fmt.Fprintf(&b, "- **Author:** %s\n", author)
	if r.LastEditor != "" {
		fmt.Fprintf(&b, "- **Last editor:** %s\n", r.LastEditor)
	}
	fmt.Fprintf(&b, "- **Total sq ft:** %s\n", number(r.TotalSqFt()))
	fmt.Fprintf(&b, "- **ID:** `%s`\n", r.ID)

	b.WriteString("\n## Compartments\n")
	if len(r.Compartments) == 0 {
		b.WriteString("\n_No compartments._\n")
	}
	for _, c := range r.Compartments {
		status := "In Progress"
		if model.IsQCPassed(c) {
			status = "QC Passed"
		}
		fmt.Fprintf(&b, "\n### %s (%s)\n\n", orDash(c.Name), status)
		fmt.Fprintf(&b, "- **Type:** %s\n", orDash(c.Type))
		fmt.Fprintf(&b, "- **Installer:** %s\n", orDash(c.Installer))
		if c.SqFt != nil {
			fmt.Fprintf(&b, "- **Sq ft:** %s\n", number(*c.SqFt))
		} else {
			b.WriteString("- **Sq ft:** N/A\n")
		}
		fmt.Fprintf(&b, "- **Dates:** %s to %s\n", dateOrNA(c.StartDate), dateOrNA(c.EndDate))
		if len(c.Phases) > 0 {
			b.WriteString("\n| Date | Phase |\n| --- | --- |\n")
			for _, p := range c.Phases {
				fmt.Fprintf(&b, "| %s | %s |\n", dateOrNA(p.Date), cell(p.Description))
			}
		}
	}

	if len(r.EditLog) > 0 {
		b.WriteString("\n## History\n\n")
		for _, e := range r.EditLog {
			fmt.Fprintf(&b, "- %s %s by %s\n", e.Timestamp.Format("01/02/2006 15:04"), e.Action, orDash(e.User))
		}
	}
	return b.String()
}

// PTPMarkdown builds the paper-form rendition of a pre-task plan.
func PTPMarkdown(p model.PreTaskPlan) string {
	var b strings.Builder
	b.WriteString("# Pre-Task Plan\n\n")
	fmt.Fprintf(&b, "- **Date:** %s\n", dateOrNA(p.Date))
	fmt.Fprintf(&b, "- **Activity:** %s\n", orDash(p.Description))
	fmt.Fprintf(&b, "- **Supervisor:** %s\n", orDash(p.Supervisor))
	fmt.Fprintf(&b, "- **Location:** %s\n", orDash(p.Location))
	fmt.Fprintf(&b, "- **Company:** %s\n", orDash(p.Company))
	if p.Author != "" {
		fmt.Fprintf(&b, "- **Prepared by:** %s\n", p.Author)
	}

	b.WriteString("\n## Evaluation\n\n| Question | Answer |\n| --- | --- |\n")
	for _, q := range model.AllQuestions {
		fmt.Fprintf(&b, "| %s | %s |\n", cell(q.Label()), answer(p.Evaluation.Answer(q)))
	}

	b.WriteString("\n## Hazards\n\n")
	if len(p.Hazards) == 0 {
		b.WriteString("_None selected._\n")
	}
	for _, h := range p.Hazards {
		fmt.Fprintf(&b, "- %s\n", h)
	}

	b.WriteString("\n## PPE Required\n\n")
	if len(p.PPE) == 0 {
		b.WriteString("_None selected._\n")
	}
	for _, x := range p.PPE {
		fmt.Fprintf(&b, "- %s\n", x)
	}

	b.WriteString("\n## Steps\n\n| # | Work Description | Associated Hazards | Required Actions |\n| --- | --- | --- | --- |\n")
	for i, s := range p.Steps {
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", i+1, cell(s.Description), cell(s.Hazards), cell(s.Actions))
	}
	return b.String()
}

func answer(v *bool) string {
	switch {
	case v == nil:
		return "—"
	case *v:
		return "Yes"
	default:
		return "No"
	}
}

func dateOrNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return model.DisplayDate(s)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// cell keeps table rows on one line.
func cell(s string) string {
	s = strings.NewReplacer("|", "\\|", "\r\n", " ", "\n", " ").Replace(strings.TrimSpace(s))
	if s == "" {
		return "-"
	}
	return s
}

func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
