package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"flooring-cli/internal/model"

	"github.com/spf13/cobra"
)

// readJSONFile decodes path ("-" for stdin) into v.
func readJSONFile(cmd *cobra.Command, path string, v any) error {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// reportEdits are the flag-driven changes to a report.
type reportEdits struct {
	vessel       string
	weekStart    string
	weekEnd      string
	compartments []string
	phases       []string
	removed      []string
}

func (e *reportEdits) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&e.vessel, "vessel", "", "Vessel (hull number), e.g. CVN74")
	cmd.Flags().StringVar(&e.weekStart, "week-start", "", "Week start date (YYYY-MM-DD or MM/DD/YYYY)")
	cmd.Flags().StringVar(&e.weekEnd, "week-end", "", "Week end date (YYYY-MM-DD or MM/DD/YYYY)")
	cmd.Flags().StringArrayVar(&e.compartments, "compartment", nil, "Add or change a compartment: name=C-1,sqft=120,installer=Ann[,type=..][,start=..][,end=..] (repeatable)")
	cmd.Flags().StringArrayVar(&e.phases, "phase", nil, "Append a work phase: <compartment>=<date>:<description> (repeatable)")
	cmd.Flags().StringArrayVar(&e.removed, "remove-compartment", nil, "Remove a compartment by name (repeatable)")
}

// apply changes r in place. Compartments are matched by name, case-insensitively.
func (e reportEdits) apply(r *model.Report) error {
	if v := strings.TrimSpace(e.vessel); v != "" {
		r.Vessel = v
		for i := range r.Compartments {
			r.Compartments[i].Vessel = v
		}
	}
	if v := strings.TrimSpace(e.weekStart); v != "" {
		r.WeekStart = model.NormalizeDate(v)
	}
	if v := strings.TrimSpace(e.weekEnd); v != "" {
		r.WeekEnd = model.NormalizeDate(v)
	}
	for _, raw := range e.compartments {
		if err := upsertCompartment(r, raw); err != nil {
			return err
		}
	}
	for _, raw := range e.phases {
		if err := appendPhase(r, raw); err != nil {
			return err
		}
	}
	for _, name := range e.removed {
		i := compartmentIndex(r.Compartments, name)
		if i < 0 {
			return errNotFound("compartment", name)
		}
		r.Compartments = append(r.Compartments[:i:i], r.Compartments[i+1:]...)
	}
	return nil
}

func compartmentIndex(cs []model.Compartment, name string) int {
	name = strings.TrimSpace(name)
	for i, c := range cs {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

func upsertCompartment(r *model.Report, raw string) error {
	fields, err := parsePairs(raw)
	if err != nil {
		return flagError{flag: "compartment", reason: err.Error()}
	}
	name := strings.TrimSpace(fields["name"])
	if name == "" {
		return flagError{flag: "compartment", reason: "name is required"}
	}

	i := compartmentIndex(r.Compartments, name)
	if i < 0 {
		r.Compartments = append(r.Compartments, model.NewCompartment(r.Vessel, name))
		i = len(r.Compartments) - 1
	}
	c := &r.Compartments[i]
	for k, v := range fields {
		switch k {
		case "name":
		case "sqft":
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f < 0 {
				return flagError{flag: "compartment", reason: "sqft must be a non-negative number"}
			}
			c.SqFt = &f
		case "installer":
			c.Installer = v
		case "type":
			c.Type = v
		case "start":
			c.StartDate = model.NormalizeDate(v)
		case "end":
			c.EndDate = model.NormalizeDate(v)
		default:
			return flagError{flag: "compartment", reason: "unknown key " + strconv.Quote(k)}
		}
	}
	return nil
}

func appendPhase(r *model.Report, raw string) error {
	name, rest, ok := strings.Cut(raw, "=")
	date, desc, ok2 := strings.Cut(rest, ":")
	if !ok || !ok2 || strings.TrimSpace(desc) == "" {
		return flagError{flag: "phase", reason: "want <compartment>=<date>:<description>"}
	}
	i := compartmentIndex(r.Compartments, name)
	if i < 0 {
		return errNotFound("compartment", strings.TrimSpace(name))
	}
	c := &r.Compartments[i]
	c.Phases = append(append([]model.WorkPhase(nil), c.Phases...), model.WorkPhase{
		Date:        model.NormalizeDate(strings.TrimSpace(date)),
		Description: strings.TrimSpace(desc),
	})
	return nil
}

// parsePairs reads "k=v,k=v".
func parsePairs(raw string) (map[string]string, error) {
	out := map[string]string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("expected key=value, got %q", part)
		}
		out[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return out, nil
}

// planEdits are the flag-driven changes to a pre-task plan.
type planEdits struct {
	date        string
	description string
	supervisor  string
	location    string
	company     string
	hazards     []string
	ppe         []string
	steps       []string
	answers     []string
}

func (e *planEdits) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&e.date, "date", "", "Plan date (YYYY-MM-DD or MM/DD/YYYY)")
	cmd.Flags().StringVar(&e.description, "description", "", "Activity description")
	cmd.Flags().StringVar(&e.supervisor, "supervisor", "", "Supervisor")
	cmd.Flags().StringVar(&e.location, "location", "", "Work location")
	cmd.Flags().StringVar(&e.company, "company", "", "Company")
	cmd.Flags().StringArrayVar(&e.hazards, "hazard", nil, "Hazard from the checklist (repeatable; replaces the list)")
	cmd.Flags().StringArrayVar(&e.ppe, "ppe", nil, "Required PPE (repeatable; replaces the list)")
	cmd.Flags().StringArrayVar(&e.steps, "step", nil, "Task step: <description>|<hazards>|<actions> (repeatable; replaces the steps)")
	cmd.Flags().StringArrayVar(&e.answers, "answer", nil, "Evaluation answer: <question>=yes|no|unset (repeatable)")
}

func (e planEdits) apply(p *model.PreTaskPlan) error {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	if v := strings.TrimSpace(e.date); v != "" {
		p.Date = model.NormalizeDate(v)
	}
	set(&p.Description, e.description)
	set(&p.Supervisor, e.supervisor)
	set(&p.Location, e.location)
	set(&p.Company, e.company)

	if len(e.hazards) > 0 {
		p.Hazards = []model.Hazard{}
		for _, raw := range e.hazards {
			h, ok := matchHazard(raw)
			if !ok {
				return flagError{flag: "hazard", reason: "unknown hazard " + strconv.Quote(raw)}
			}
			p.Hazards = append(p.Hazards, h)
		}
	}
	if len(e.ppe) > 0 {
		p.PPE = []model.PPE{}
		for _, raw := range e.ppe {
			x, ok := matchPPE(raw)
			if !ok {
				return flagError{flag: "ppe", reason: "unknown PPE " + strconv.Quote(raw)}
			}
			p.PPE = append(p.PPE, x)
		}
	}
	if len(e.steps) > 0 {
		p.Steps = []model.PTPStep{}
		for _, raw := range e.steps {
			parts := strings.SplitN(raw, "|", 3)
			for len(parts) < 3 {
				parts = append(parts, "")
			}
			p.Steps = append(p.Steps, model.PTPStep{
				Description: strings.TrimSpace(parts[0]),
				Hazards:     strings.TrimSpace(parts[1]),
				Actions:     strings.TrimSpace(parts[2]),
			})
		}
	}
	for _, raw := range e.answers {
		k, v, ok := strings.Cut(raw, "=")
		if !ok {
			return flagError{flag: "answer", reason: "want <question>=yes|no|unset"}
		}
		var ans *bool
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes", "y", "true":
			t := true
			ans = &t
		case "no", "n", "false":
			f := false
			ans = &f
		case "unset", "":
		default:
			return flagError{flag: "answer", reason: "answer must be yes, no or unset"}
		}
		if !p.Evaluation.Set(model.Question(strings.TrimSpace(k)), ans) {
			return flagError{flag: "answer", reason: "unknown question " + strconv.Quote(k)}
		}
	}
	return nil
}

func matchHazard(raw string) (model.Hazard, bool) {
	for _, h := range model.AllHazards {
		if strings.EqualFold(string(h), strings.TrimSpace(raw)) {
			return h, true
		}
	}
	return "", false
}

func matchPPE(raw string) (model.PPE, bool) {
	for _, x := range model.AllPPE {
		if strings.EqualFold(string(x), strings.TrimSpace(raw)) {
			return x, true
		}
	}
	return "", false
}
