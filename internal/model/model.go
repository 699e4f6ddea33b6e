package model

import "time"

type EditAction string

const (
	EditActionCreated EditAction = "created"
	EditActionEdited  EditAction = "edited"
)

type EditLogEntry struct {
	User      string     `json:"user"`
	Timestamp time.Time  `json:"timestamp"`
	Action    EditAction `json:"action"`
}

type WorkPhase struct {
	Date        string `json:"date"`
	Description string `json:"description"`
}

type Compartment struct {
	ID        string      `json:"id"`
	Vessel    string      `json:"vessel"`
	Name      string      `json:"name"`
	Type      string      `json:"type"`
	StartDate string      `json:"startDate,omitempty"`
	EndDate   string      `json:"endDate,omitempty"`
	SqFt      *float64    `json:"sqft"`
	Installer string      `json:"installer"`
	Phases    []WorkPhase `json:"phases"`

	// QCPassed is only a creation default. Completion is derived from Phases (see IsQCPassed).
	QCPassed bool `json:"qcPassed"`
}

// Report is a weekly progress report for one vessel.
// WeekStart/WeekEnd are YYYY-MM-DD dates.
type Report struct {
	ID           string         `json:"id"`
	Vessel       string         `json:"vessel"`
	WeekStart    string         `json:"weekStart"`
	WeekEnd      string         `json:"weekEnd"`
	Compartments []Compartment  `json:"compartments"`
	Author       string         `json:"author,omitempty"`
	LastEditor   string         `json:"lastEditor,omitempty"`
	CreatedAt    time.Time      `json:"createdAt,omitzero"`
	UpdatedAt    time.Time      `json:"updatedAt,omitzero"`
	EditLog      []EditLogEntry `json:"editLog"`
}

type PTPStep struct {
	Description string `json:"description"`
	Hazards     string `json:"hazards"`
	Actions     string `json:"actions"`
}

// PreTaskPlan is a safety pre-task plan (PTP).
type PreTaskPlan struct {
	ID          string     `json:"id"`
	Date        string     `json:"date"`
	Description string     `json:"description"`
	Supervisor  string     `json:"supervisor"`
	Location    string     `json:"location"`
	Company     string     `json:"company"`
	Evaluation  Evaluation `json:"evaluation"`
	Hazards     []Hazard   `json:"hazards"`
	PPE         []PPE      `json:"ppe"`
	Steps       []PTPStep  `json:"steps"`
	Author      string     `json:"author"`
	CreatedAt   time.Time  `json:"createdAt,omitzero"`
	UpdatedAt   time.Time  `json:"updatedAt,omitzero"`
}

type Foreman struct {
	Name string `json:"name"`
	PIN  string `json:"pin"`
}

type AuditLogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}

const (
	AdminName = "Admin"
	AdminPIN  = "1234"

	DefaultCompartmentType = "General"
	DefaultSupervisor      = "Wayne Richardson"
	DefaultCompany         = "Marine Flooring LLC"
)

// CompartmentNames returns the compartment names in report order.
func (r Report) CompartmentNames() []string {
	out := make([]string, 0, len(r.Compartments))
	for _, c := range r.Compartments {
		out = append(out, c.Name)
	}
	return out
}

// LastActivity is the most recent of UpdatedAt and CreatedAt.
func (r Report) LastActivity() time.Time {
	if r.UpdatedAt.After(r.CreatedAt) {
		return r.UpdatedAt
	}
	return r.CreatedAt
}

// ResolvedAuthor falls back to the first created entry of the edit log.
func (r Report) ResolvedAuthor() string {
	if r.Author != "" {
		return r.Author
	}
	for _, e := range r.EditLog {
		if e.Action == EditActionCreated && e.User != "" {
			return e.User
		}
	}
	return ""
}

// TotalSqFt sums entered square footage across compartments.
func (r Report) TotalSqFt() float64 {
	var total float64
	for _, c := range r.Compartments {
		if c.SqFt != nil {
			total += *c.SqFt
		}
	}
	return total
}

// Clone returns a deep copy so reducers can hand out new values without aliasing slices.
func (r Report) Clone() Report {
	out := r
	if r.Compartments != nil {
		out.Compartments = make([]Compartment, len(r.Compartments))
		for i, c := range r.Compartments {
			out.Compartments[i] = c.Clone()
		}
	}
	if r.EditLog != nil {
		out.EditLog = append([]EditLogEntry(nil), r.EditLog...)
	}
	return out
}

func (c Compartment) Clone() Compartment {
	out := c
	if c.SqFt != nil {
		v := *c.SqFt
		out.SqFt = &v
	}
	if c.Phases != nil {
		out.Phases = append([]WorkPhase(nil), c.Phases...)
	}
	return out
}

func (p PreTaskPlan) Clone() PreTaskPlan {
	out := p
	out.Evaluation = p.Evaluation.Clone()
	if p.Hazards != nil {
		out.Hazards = append([]Hazard(nil), p.Hazards...)
	}
	if p.PPE != nil {
		out.PPE = append([]PPE(nil), p.PPE...)
	}
	if p.Steps != nil {
		out.Steps = append([]PTPStep(nil), p.Steps...)
	}
	return out
}

// IsComplete reports whether every evaluation question has been answered.
func (p PreTaskPlan) IsComplete() bool {
	return p.Evaluation.IsComplete()
}

// NewCompartment returns a compartment with creation defaults.
func NewCompartment(vessel, name string) Compartment {
	return Compartment{
		ID:     NewCompartmentID(),
		Vessel: vessel,
		Name:   name,
		Type:   DefaultCompartmentType,
		Phases: []WorkPhase{},
	}
}

// NewPreTaskPlan returns a plan prefilled with the crew's usual answers.
func NewPreTaskPlan(now time.Time) PreTaskPlan {
	return PreTaskPlan{
		ID:         NewRecordID(now),
		Date:       now.Format(DateLayout),
		Supervisor: DefaultSupervisor,
		Company:    DefaultCompany,
		Evaluation: DefaultEvaluation(),
		Hazards:    []Hazard{},
		PPE:        append([]PPE(nil), AllPPE...),
		Steps:      []PTPStep{{}},
	}
}

// PrimaryVessel is the vessel of the first compartment, falling back to the report's own.
func (r Report) PrimaryVessel() string {
	if len(r.Compartments) > 0 && r.Compartments[0].Vessel != "" {
		return r.Compartments[0].Vessel
	}
	return r.Vessel
}
