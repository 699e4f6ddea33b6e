package diff

import (
	"testing"

	"flooring-cli/internal/model"
)

func f(v float64) *float64 { return &v }

func baseReport() model.Report {
	return model.Report{
		ID:     "1",
		Vessel: "CVN74",
		Compartments: []model.Compartment{
			{ID: "a", Name: "C-1", SqFt: f(100), Installer: "Joe", Type: "General", Phases: []model.WorkPhase{}},
		},
	}
}

func TestReports_SqFtChange(t *testing.T) {
	old := baseReport()
	next := baseReport()
	next.Compartments[0].SqFt = f(150)

	res := Reports(&old, next)
	if got := res.Details(); got != "C-1 [SqFt: 100→150]" {
		t.Fatalf("details=%q", got)
	}
	if got := res.Summary(); got != "VESSEL: CVN74 | Details: C-1 [SqFt: 100→150]" {
		t.Fatalf("summary=%q", got)
	}
}

func TestReports_NoChangesIsMetadataUpdate(t *testing.T) {
	old := baseReport()
	next := baseReport()
	next.WeekStart = "2024-01-01"
	next.Compartments[0].QCPassed = true

	res := Reports(&old, next)
	if !res.Empty() || res.Details() != NoChanges {
		t.Fatalf("expected metadata update, got %q", res.Details())
	}
}

func TestReports_VesselChange(t *testing.T) {
	old := baseReport()
	next := baseReport()
	next.Vessel = "LHD5"
	if got := Reports(&old, next).Vessel; got != "CVN74 → LHD5" {
		t.Fatalf("vessel=%q", got)
	}

	old.Vessel = ""
	next.Vessel = ""
	if got := Reports(&old, next).Vessel; got != "Unknown" {
		t.Fatalf("vessel=%q", got)
	}
}

func TestReports_FieldChangesUseNoneForEmptyOld(t *testing.T) {
	old := baseReport()
	old.Compartments[0].Installer = ""
	old.Compartments[0].Type = ""
	next := baseReport()
	next.Compartments[0].Installer = "Ann"
	next.Compartments[0].Type = "Galley"

	want := "C-1 [Lead: None→Ann; Type: None→Galley]"
	if got := Reports(&old, next).Details(); got != want {
		t.Fatalf("details=%q, want %q", got, want)
	}
}

func TestReports_PhaseSummaryChange(t *testing.T) {
	old := baseReport()
	next := baseReport()
	next.Compartments[0].Phases = []model.WorkPhase{{Description: "Prep"}, {Description: "QC pass"}}

	want := "C-1 [Phases: 0→2 (Before: None | After: Prep, QC pass)]"
	if got := Reports(&old, next).Details(); got != want {
		t.Fatalf("details=%q, want %q", got, want)
	}
}

func TestReports_PhaseCountOnlyChange(t *testing.T) {
	old := baseReport()
	old.Compartments[0].Phases = []model.WorkPhase{{Description: ""}}
	next := baseReport()
	next.Compartments[0].Phases = []model.WorkPhase{{Description: ""}, {Description: ""}}

	want := "C-1 [Phases: 1→2 (Before: None | After: , )]"
	if got := Reports(&old, next).Details(); got != want {
		t.Fatalf("details=%q, want %q", got, want)
	}

	// Empty list and one empty description both summarize to None.
	old.Compartments[0].Phases = nil
	next.Compartments[0].Phases = []model.WorkPhase{{Date: "2024-01-02"}}
	if got := Reports(&old, next).Details(); got != "C-1 [Phase Count: 0→1]" {
		t.Fatalf("details=%q", got)
	}
}

func TestReports_AddedAndRemoved(t *testing.T) {
	old := baseReport()
	old.Compartments = append(old.Compartments, model.Compartment{ID: "b", Name: "C-2"})
	next := baseReport()
	next.Compartments = append(next.Compartments, model.Compartment{ID: "c", Name: "C-3"})

	want := "Added Comp: C-3 || Removed Comp: C-2"
	if got := Reports(&old, next).Details(); got != want {
		t.Fatalf("details=%q, want %q", got, want)
	}
}

func TestReports_MatchesByNameWhenIDChanged(t *testing.T) {
	old := baseReport()
	next := baseReport()
	next.Compartments[0].ID = "zzz"
	next.Compartments[0].SqFt = f(110)

	if got := Reports(&old, next).Details(); got != "C-1 [SqFt: 100→110]" {
		t.Fatalf("details=%q", got)
	}
}

func TestReports_MatchesByIDWhenRenamed(t *testing.T) {
	old := baseReport()
	next := baseReport()
	next.Compartments[0].Name = "C-1A"

	res := Reports(&old, next)
	if !res.Empty() {
		t.Fatalf("rename with stable id should not add/remove, got %q", res.Details())
	}
}

func TestReports_RenameAndIDChangeIsRemoveAdd(t *testing.T) {
	old := baseReport()
	next := baseReport()
	next.Compartments[0].ID = "new"
	next.Compartments[0].Name = "C-9"

	want := "Added Comp: C-9 || Removed Comp: C-1"
	if got := Reports(&old, next).Details(); got != want {
		t.Fatalf("details=%q, want %q", got, want)
	}
}

func TestReports_NilSqFt(t *testing.T) {
	old := baseReport()
	old.Compartments[0].SqFt = nil
	next := baseReport()
	if got := Reports(&old, next).Details(); got != "C-1 [SqFt: →100]" {
		t.Fatalf("details=%q", got)
	}

	next.Compartments[0].SqFt = nil
	if !Reports(&old, next).Empty() {
		t.Fatalf("nil to nil sqft should not be a change")
	}
}

func TestReports_NilExisting(t *testing.T) {
	res := Reports(nil, baseReport())
	if res.Vessel != "Unknown → CVN74" {
		t.Fatalf("vessel=%q", res.Vessel)
	}
	if res.Details() != "Added Comp: C-1" {
		t.Fatalf("details=%q", res.Details())
	}
}
