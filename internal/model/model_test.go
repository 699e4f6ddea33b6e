package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestIsQCPassed_MatchesSynonymsCaseInsensitively(t *testing.T) {
	cases := []struct {
		desc string
		want bool
	}{
		{"QC Passed by inspector", true},
		{"final qc inspected", true},
		{"QC CHECK ok", true},
		{"qc checked", true},
		{"Primer applied", false},
		{"QC failed", false},
		{"", false},
	}
	for _, tc := range cases {
		c := Compartment{Phases: []WorkPhase{{Date: "2024-01-01", Description: "Prep"}, {Description: tc.desc}}}
		if got := IsQCPassed(c); got != tc.want {
			t.Fatalf("IsQCPassed(%q)=%v, want %v", tc.desc, got, tc.want)
		}
	}
}

func TestIsQCPassed_IgnoresStoredFlag(t *testing.T) {
	c := Compartment{QCPassed: true, Phases: []WorkPhase{{Description: "Tile laid"}}}
	if IsQCPassed(c) {
		t.Fatalf("expected stored flag to be ignored")
	}
}

func TestReportIsQCComplete(t *testing.T) {
	if (Report{}).IsQCComplete() {
		t.Fatalf("empty report must not be QC complete")
	}
	r := Report{Compartments: []Compartment{
		{Name: "A", Phases: []WorkPhase{{Description: "QC pass"}}},
		{Name: "B", Phases: []WorkPhase{{Description: "Sanding"}}},
	}}
	if r.IsQCComplete() {
		t.Fatalf("expected incomplete report")
	}
	r.Compartments[1].Phases = append(r.Compartments[1].Phases, WorkPhase{Description: "qc inspected"})
	if !r.IsQCComplete() {
		t.Fatalf("expected complete report")
	}
}

func TestPreTaskPlanIsComplete(t *testing.T) {
	yes := true
	var p PreTaskPlan
	for _, q := range AllQuestions {
		p.Evaluation.Set(q, &yes)
	}
	if !p.IsComplete() {
		t.Fatalf("expected complete plan")
	}
	p.Evaluation.Set(QuestionConfinedSpace, nil)
	if p.IsComplete() {
		t.Fatalf("expected incomplete plan with one unanswered question")
	}
	if got := p.Evaluation.Unanswered(); got != 1 {
		t.Fatalf("unanswered=%d, want 1", got)
	}
}

func TestDefaultEvaluation_LeavesThreeQuestionsOpen(t *testing.T) {
	e := DefaultEvaluation()
	if got := e.Unanswered(); got != 3 {
		t.Fatalf("unanswered=%d, want 3", got)
	}
	for _, q := range []Question{QuestionLiveSystems, QuestionCongestedArea, QuestionConfinedSpace} {
		if e.Answer(q) != nil {
			t.Fatalf("expected %s unanswered", q)
		}
	}
	if v := e.Answer(QuestionWalkedArea); v == nil || !*v {
		t.Fatalf("expected walkedArea=yes")
	}
}

func TestEvaluationCloneDoesNotAlias(t *testing.T) {
	e := DefaultEvaluation()
	c := e.Clone()
	no := false
	c.Set(QuestionWalkedArea, &no)
	if v := e.Answer(QuestionWalkedArea); v == nil || !*v {
		t.Fatalf("clone mutation leaked into original")
	}
}

func TestEvaluationJSONKeys(t *testing.T) {
	b, err := json.Marshal(DefaultEvaluation())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, q := range AllQuestions {
		if !strings.Contains(string(b), `"`+string(q)+`"`) {
			t.Fatalf("missing key %q in %s", q, b)
		}
	}
}

func TestVocabularies(t *testing.T) {
	if len(AllHazards) != 30 {
		t.Fatalf("hazards=%d, want 30", len(AllHazards))
	}
	if len(AllPPE) != 7 {
		t.Fatalf("ppe=%d, want 7", len(AllPPE))
	}
	if len(AllQuestions) != 15 {
		t.Fatalf("questions=%d, want 15", len(AllQuestions))
	}
	if !HazardLockoutTagout.Valid() || Hazard("Sharks").Valid() {
		t.Fatalf("unexpected hazard validity")
	}
	if !PPEKneePads.Valid() || PPE("Cape").Valid() {
		t.Fatalf("unexpected ppe validity")
	}
}

func TestIDString(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"  42 ", "42"},
		{float64(1700000000123), "1700000000123"},
		{7, "7"},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := IDString(tc.in); got != tc.want {
			t.Fatalf("IDString(%v)=%q, want %q", tc.in, got, tc.want)
		}
	}
	if !SameID("12", " 12") {
		t.Fatalf("expected ids to match after trimming")
	}
}

func TestNormalizeDate(t *testing.T) {
	cases := map[string]string{
		"2024-03-04":               "2024-03-04",
		"03/04/2024":               "2024-03-04",
		"2024-03-04T10:00:00.000Z": "2024-03-04",
		"":                         "",
		"next week":                "next week",
	}
	for in, want := range cases {
		if got := NormalizeDate(in); got != want {
			t.Fatalf("NormalizeDate(%q)=%q, want %q", in, got, want)
		}
	}
	if got := DisplayDate("2024-03-04"); got != "03/04/2024" {
		t.Fatalf("DisplayDate=%q", got)
	}
}

func TestReportHelpers(t *testing.T) {
	sq := 120.5
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	r := Report{
		Vessel:       "Old",
		Compartments: []Compartment{{Vessel: "CVN74", Name: "C-1", SqFt: &sq}, {Name: "C-2"}},
		EditLog:      []EditLogEntry{{User: "Joe", Timestamp: now, Action: EditActionCreated}},
		CreatedAt:    now,
		UpdatedAt:    now.Add(time.Hour),
	}
	if r.PrimaryVessel() != "CVN74" {
		t.Fatalf("primary vessel=%q", r.PrimaryVessel())
	}
	if r.ResolvedAuthor() != "Joe" {
		t.Fatalf("resolved author=%q", r.ResolvedAuthor())
	}
	if r.TotalSqFt() != 120.5 {
		t.Fatalf("total=%v", r.TotalSqFt())
	}
	if !r.LastActivity().Equal(now.Add(time.Hour)) {
		t.Fatalf("last activity=%v", r.LastActivity())
	}

	c := r.Clone()
	*c.Compartments[0].SqFt = 1
	c.EditLog[0].User = "X"
	if *r.Compartments[0].SqFt != 120.5 || r.EditLog[0].User != "Joe" {
		t.Fatalf("clone aliased the original")
	}
}

func TestNewPreTaskPlanDefaults(t *testing.T) {
	now := time.Date(2024, 6, 2, 8, 0, 0, 0, time.UTC)
	p := NewPreTaskPlan(now)
	if p.Date != "2024-06-02" || p.Company != DefaultCompany || p.Supervisor != DefaultSupervisor {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	if len(p.PPE) != len(AllPPE) || len(p.Steps) != 1 {
		t.Fatalf("expected all PPE and one empty step")
	}
	if p.IsComplete() {
		t.Fatalf("default plan should not be complete")
	}
}
