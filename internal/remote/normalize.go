package remote

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"flooring-cli/internal/model"
)

// fields is a case-insensitive view over a row or a decoded JSON object.
type fields map[string]any

func lookup(m map[string]any) fields {
	out := make(fields, len(m))
	for k, v := range m {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}

// raw returns the first present, non-nil value among keys.
func (f fields) raw(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := f[strings.ToLower(k)]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// str returns the first non-empty value among keys, rendered as a string.
func (f fields) str(keys ...string) string {
	for _, k := range keys {
		v, ok := f.raw(k)
		if !ok {
			continue
		}
		if s := cellString(v); s != "" {
			return s
		}
	}
	return ""
}

func (f fields) timestamp(keys ...string) time.Time {
	t, _ := model.ParseTimestamp(f.str(keys...))
	return t
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// decodeCell decodes a cell that may hold either a JSON string or an already decoded value.
func decodeCell(v any, out any) error {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		return json.Unmarshal([]byte(s), out)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return err
		}
		return json.Unmarshal(b, out)
	}
}

func (f fields) objects(keys ...string) []map[string]any {
	v, ok := f.raw(keys...)
	if !ok {
		return nil
	}
	var out []map[string]any
	if err := decodeCell(v, &out); err != nil {
		return nil
	}
	return out
}

func (f fields) stringList(keys ...string) []string {
	v, ok := f.raw(keys...)
	if !ok {
		return nil
	}
	var xs []any
	if err := decodeCell(v, &xs); err != nil {
		return nil
	}
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		if s := cellString(x); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (f fields) author() string {
	a := f.str("author", "foreman")
	if a == unknownAuthor {
		return ""
	}
	return a
}

// ReportFromRow maps a sheet row (or a loosely shaped report object) to a Report.
func ReportFromRow(row Row) model.Report {
	f := lookup(row)
	id, _ := f.raw("id")
	r := model.Report{
		ID:         model.IDString(id),
		Vessel:     f.str("vessel"),
		WeekStart:  model.NormalizeDate(f.str("weekStart", "week_start")),
		WeekEnd:    model.NormalizeDate(f.str("weekEnd", "week_end")),
		Author:     f.author(),
		LastEditor: f.str("lastEditor", "last_editor"),
		CreatedAt:  f.timestamp("createdAt", "created_at"),
		UpdatedAt:  f.timestamp("updatedAt", "updated_at"),
	}
	for _, m := range f.objects("compartmentsData", "compartments") {
		r.Compartments = append(r.Compartments, compartmentFromMap(m))
	}
	if r.Compartments == nil {
		r.Compartments = []model.Compartment{}
	}
	for _, m := range f.objects("editLog", "edit_log") {
		r.EditLog = append(r.EditLog, editLogEntryFromMap(m))
	}
	if r.EditLog == nil {
		r.EditLog = []model.EditLogEntry{}
	}
	return r
}

func compartmentFromMap(m map[string]any) model.Compartment {
	f := lookup(m)
	id, _ := f.raw("id")
	c := model.Compartment{
		ID:        model.IDString(id),
		Vessel:    f.str("vessel"),
		Name:      f.str("name"),
		Type:      f.str("type"),
		StartDate: model.NormalizeDate(f.str("startDate")),
		EndDate:   model.NormalizeDate(f.str("endDate")),
		SqFt:      number(f, "sqft", "sqFt"),
		Installer: f.str("installer", "lead"),
		QCPassed:  truthy(f, "qcPassed"),
		Phases:    []model.WorkPhase{},
	}
	for _, pm := range f.objects("phases") {
		pf := lookup(pm)
		c.Phases = append(c.Phases, model.WorkPhase{
			Date:        model.NormalizeDate(pf.str("date")),
			Description: pf.str("description"),
		})
	}
	return c
}

func editLogEntryFromMap(m map[string]any) model.EditLogEntry {
	f := lookup(m)
	action := model.EditAction(strings.ToLower(f.str("action")))
	if action != model.EditActionCreated {
		action = model.EditActionEdited
	}
	return model.EditLogEntry{
		User:      f.str("user"),
		Timestamp: f.timestamp("timestamp"),
		Action:    action,
	}
}

func number(f fields, keys ...string) *float64 {
	v, ok := f.raw(keys...)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case float64:
		return &t
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", ""))
		if s == "" {
			return nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}

func truthy(f fields, keys ...string) bool {
	b := triState(f, keys...)
	return b != nil && *b
}

// triState maps booleans and yes/no strings to *bool; anything else is unanswered.
func triState(f fields, keys ...string) *bool {
	v, ok := f.raw(keys...)
	if !ok {
		return nil
	}
	var b bool
	switch t := v.(type) {
	case bool:
		b = t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y":
			b = true
		case "false", "no", "n":
			b = false
		default:
			return nil
		}
	default:
		return nil
	}
	return &b
}

// PTPFromRow maps a sheet row to a PreTaskPlan.
func PTPFromRow(row Row) model.PreTaskPlan {
	f := lookup(row)
	id, _ := f.raw("id")
	p := model.PreTaskPlan{
		ID:          model.IDString(id),
		Date:        model.NormalizeDate(f.str("date")),
		Description: f.str("description"),
		Supervisor:  f.str("supervisor"),
		Location:    f.str("location"),
		Company:     f.str("company"),
		Author:      f.author(),
		CreatedAt:   f.timestamp("createdAt", "created_at"),
		UpdatedAt:   f.timestamp("updatedAt", "updated_at"),
		Hazards:     []model.Hazard{},
		PPE:         []model.PPE{},
		Steps:       []model.PTPStep{},
	}
	if v, ok := f.raw("evaluation"); ok {
		var m map[string]any
		if err := decodeCell(v, &m); err == nil {
			ef := lookup(m)
			for _, q := range model.AllQuestions {
				p.Evaluation.Set(q, triState(ef, string(q)))
			}
		}
	}
	for _, s := range f.stringList("hazards") {
		p.Hazards = append(p.Hazards, model.Hazard(s))
	}
	for _, s := range f.stringList("ppe") {
		p.PPE = append(p.PPE, model.PPE(s))
	}
	for _, sm := range f.objects("steps") {
		sf := lookup(sm)
		p.Steps = append(p.Steps, model.PTPStep{
			Description: sf.str("description"),
			Hazards:     sf.str("hazards"),
			Actions:     sf.str("actions"),
		})
	}
	return p
}

// ForemanFromRow maps a Foremen row. Sheets turn "0123" into 123, so numeric
// PINs are left-padded back to four digits.
func ForemanFromRow(row Row) model.Foreman {
	f := lookup(row)
	pin := f.str("pin")
	if v, ok := f.raw("pin"); ok {
		if n, isNum := v.(float64); isNum && n >= 0 && n < 10000 && n == float64(int(n)) {
			pin = fmt.Sprintf("%04d", int(n))
		}
	}
	return model.Foreman{Name: f.str("name"), PIN: pin}
}

func AuditLogFromRow(row Row) model.AuditLogEntry {
	f := lookup(row)
	id, _ := f.raw("id")
	return model.AuditLogEntry{
		ID:        model.IDString(id),
		Timestamp: f.timestamp("timestamp"),
		User:      f.str("user"),
		Action:    f.str("action"),
		Details:   f.str("details"),
	}
}

// ReportsFromRows skips blank rows (no id).
func ReportsFromRows(rows []Row) []model.Report {
	out := make([]model.Report, 0, len(rows))
	for _, row := range rows {
		r := ReportFromRow(row)
		if r.ID == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

func PTPsFromRows(rows []Row) []model.PreTaskPlan {
	out := make([]model.PreTaskPlan, 0, len(rows))
	for _, row := range rows {
		p := PTPFromRow(row)
		if p.ID == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func ForemenFromRows(rows []Row) []model.Foreman {
	out := make([]model.Foreman, 0, len(rows))
	for _, row := range rows {
		f := ForemanFromRow(row)
		if f.Name == "" {
			continue
		}
		out = append(out, f)
	}
	return out
}

func AuditLogsFromRows(rows []Row) []model.AuditLogEntry {
	out := make([]model.AuditLogEntry, 0, len(rows))
	for _, row := range rows {
		e := AuditLogFromRow(row)
		if e.ID == "" && e.Action == "" {
			continue
		}
		out = append(out, e)
	}
	return out
}
