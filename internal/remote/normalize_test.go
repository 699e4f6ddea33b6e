package remote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flooring-cli/internal/model"
)

func TestReportFromRow_SheetShape(t *testing.T) {
	row := Row{
		"ID":               float64(1700000000123),
		"Vessel":           "CVN74",
		"WeekStart":        "2024-03-04T05:00:00.000Z",
		"WeekEnd":          "03/10/2024",
		"CompartmentsData": `[{"id":"a1","name":"C-1","vessel":"CVN74","type":"General","sqft":"1,200","installer":"Joe","phases":[{"date":"2024-03-05","description":"QC Passed"}],"qcPassed":false}]`,
		"CreatedAt":        "2024-03-04T10:00:00.000Z",
		"Author":           "Unknown",
		"LastEditor":       "Ann",
		"UpdatedAt":        "",
		"EditLog":          `[{"user":"Joe","timestamp":"2024-03-04T10:00:00.000Z","action":"created"}]`,
	}

	r := ReportFromRow(row)
	assert.Equal(t, "1700000000123", r.ID)
	assert.Equal(t, "2024-03-04", r.WeekStart)
	assert.Equal(t, "2024-03-10", r.WeekEnd)
	assert.Equal(t, "", r.Author, "Unknown placeholder should be dropped")
	assert.Equal(t, "Joe", r.ResolvedAuthor())
	assert.True(t, r.UpdatedAt.IsZero())
	require.Len(t, r.Compartments, 1)
	c := r.Compartments[0]
	require.NotNil(t, c.SqFt)
	assert.Equal(t, 1200.0, *c.SqFt)
	assert.True(t, model.IsQCPassed(c))
	require.Len(t, r.EditLog, 1)
	assert.Equal(t, model.EditActionCreated, r.EditLog[0].Action)
}

func TestReportFromRow_LowercaseAndDecodedCells(t *testing.T) {
	row := Row{
		"id":           "42",
		"vessel":       "LHD5",
		"foreman":      "Ann",
		"compartments": []any{map[string]any{"Name": "Galley", "SQFT": float64(80)}},
	}
	r := ReportFromRow(row)
	assert.Equal(t, "42", r.ID)
	assert.Equal(t, "Ann", r.Author)
	require.Len(t, r.Compartments, 1)
	assert.Equal(t, "Galley", r.Compartments[0].Name)
	require.NotNil(t, r.Compartments[0].SqFt)
	assert.Equal(t, 80.0, *r.Compartments[0].SqFt)
	assert.NotNil(t, r.EditLog)
}

func TestReportFromRow_MalformedJSONCellsAreEmpty(t *testing.T) {
	r := ReportFromRow(Row{"ID": "1", "CompartmentsData": "{not json", "EditLog": "oops"})
	assert.Empty(t, r.Compartments)
	assert.Empty(t, r.EditLog)
}

func TestPTPFromRow(t *testing.T) {
	row := Row{
		"ID":          float64(99),
		"Date":        "2024-06-02",
		"Description": "Lay tile",
		"Location":    "Deck 2",
		"Evaluation":  `{"walkedArea":true,"liveSystems":"no","confinedSpace":null}`,
		"Hazards":     `["Pinch Points","Ladders"]`,
		"PPE":         `["Gloves"]`,
		"Steps":       `[{"description":"Prep","hazards":"dust","actions":"mask"}]`,
		"Author":      "Joe",
		"CreatedAt":   "2024-06-02T08:00:00.000Z",
	}
	p := PTPFromRow(row)
	assert.Equal(t, "99", p.ID)
	assert.Equal(t, []model.Hazard{model.HazardPinchPoints, model.HazardLadders}, p.Hazards)
	assert.Equal(t, []model.PPE{model.PPEGloves}, p.PPE)
	require.Len(t, p.Steps, 1)
	assert.Equal(t, "mask", p.Steps[0].Actions)

	walked := p.Evaluation.Answer(model.QuestionWalkedArea)
	require.NotNil(t, walked)
	assert.True(t, *walked)
	live := p.Evaluation.Answer(model.QuestionLiveSystems)
	require.NotNil(t, live)
	assert.False(t, *live)
	assert.Nil(t, p.Evaluation.Answer(model.QuestionConfinedSpace))
	assert.False(t, p.IsComplete())
}

func TestForemanFromRow_PadsNumericPIN(t *testing.T) {
	assert.Equal(t, model.Foreman{Name: "Joe", PIN: "0123"}, ForemanFromRow(Row{"Name": "Joe", "PIN": float64(123)}))
	assert.Equal(t, model.Foreman{Name: "Ann", PIN: "4321"}, ForemanFromRow(Row{"name": "Ann", "pin": "4321"}))
}

func TestFromRows_SkipsBlankRows(t *testing.T) {
	assert.Len(t, ReportsFromRows([]Row{{"ID": ""}, {"ID": "1"}}), 1)
	assert.Len(t, PTPsFromRows([]Row{{"ID": nil}, {"ID": "2"}}), 1)
	assert.Len(t, ForemenFromRows([]Row{{"Name": ""}, {"Name": "Joe", "PIN": "1111"}}), 1)
	assert.Len(t, AuditLogsFromRows([]Row{{}, {"ID": "x", "Action": "Create PTP"}}), 1)
}

func TestReportRowRoundTrip(t *testing.T) {
	sq := 150.0
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	in := model.Report{
		ID:           "5",
		Vessel:       "CVN74",
		WeekStart:    "2024-01-01",
		WeekEnd:      "2024-01-07",
		Compartments: []model.Compartment{{ID: "c", Name: "C-1", SqFt: &sq, Phases: []model.WorkPhase{}}},
		Author:       "Joe",
		CreatedAt:    ts,
		UpdatedAt:    ts,
		EditLog:      []model.EditLogEntry{{User: "Joe", Timestamp: ts, Action: model.EditActionCreated}},
	}
	out := ReportFromRow(ReportRow(in))
	assert.Equal(t, in, out)
}

func TestMemory_MoveSemantics(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.InsertReport(ctx, model.Report{ID: "10", Vessel: "A"}))
	require.NoError(t, m.InsertReport(ctx, model.Report{ID: "11", Vessel: "B"}))

	ok, err := m.DeleteReport(ctx, "10")
	require.NoError(t, err)
	assert.True(t, ok)

	active, _ := m.FetchReports(ctx)
	deleted, _ := m.FetchDeletedReports(ctx)
	require.Len(t, active, 1)
	require.Len(t, deleted, 1)
	assert.Equal(t, "10", deleted[0].ID)

	_, err = m.DeleteReport(ctx, "10")
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "ID 10 not found", rerr.Message)

	ok, err = m.RestoreReport(ctx, "id-10")
	require.NoError(t, err, "ids compare by digits only")
	assert.True(t, ok)
	active, _ = m.FetchReports(ctx)
	assert.Len(t, active, 2)
}

func TestMemory_FailOn(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	boom := errors.New("boom")
	m.FailOn(ActionInsertPTP, boom)

	err := m.InsertPTP(ctx, model.PreTaskPlan{ID: "1"})
	require.ErrorIs(t, err, boom)

	m.FailOn(ActionInsertPTP, nil)
	require.NoError(t, m.InsertPTP(ctx, model.PreTaskPlan{ID: "1"}))
	assert.Equal(t, []string{ActionInsertPTP, ActionInsertPTP}, m.Calls())
}

func TestMemory_Foremen(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	fs, err := m.FetchForemen(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Foreman{{Name: "Admin", PIN: "1234"}}, fs)

	_, err = m.UpsertForeman(ctx, model.Foreman{Name: "Joe", PIN: "1111"})
	require.NoError(t, err)
	_, err = m.UpsertForeman(ctx, model.Foreman{Name: "Joe", PIN: "2222"})
	require.NoError(t, err)
	fs, _ = m.FetchForemen(ctx)
	require.Len(t, fs, 2)
	assert.Equal(t, "2222", fs[1].PIN)

	_, err = m.DeleteForeman(ctx, "Nobody")
	assert.Error(t, err)
	ok, err := m.DeleteForeman(ctx, "Joe")
	require.NoError(t, err)
	assert.True(t, ok)
}
