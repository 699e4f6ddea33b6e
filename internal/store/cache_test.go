package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"flooring-cli/internal/model"
)

func TestCache_SaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := Cache{Path: filepath.Join(t.TempDir(), "cache.sqlite")}

	if _, ok, err := c.Load(ctx); err != nil || ok {
		t.Fatalf("expected empty cache, ok=%v err=%v", ok, err)
	}

	now := time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC)
	v := 120.5
	snap := model.Snapshot{
		Reports: []model.Report{
			{ID: "2", Vessel: "CVN74", CreatedAt: now, Compartments: []model.Compartment{{ID: "c", Name: "C-1", SqFt: &v}}},
			{ID: "1", Vessel: "LHD1", CreatedAt: now},
		},
		DeletedReports: []model.Report{{ID: "3", Vessel: "CVN70"}},
		PTPs:           []model.PreTaskPlan{model.NewPreTaskPlan(now)},
		DeletedPTPs:    []model.PreTaskPlan{},
		Foremen:        []model.Foreman{{Name: "Admin", PIN: "1234"}, {Name: "Joe", PIN: "0042"}},
		AuditLogs:      []model.AuditLogEntry{{ID: "a1", Timestamp: now, User: "Joe", Action: "Create Report"}},
		FetchedAt:      now,
	}
	if err := c.Save(ctx, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := c.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if len(got.Reports) != 2 || got.Reports[0].ID != "2" || got.Reports[1].ID != "1" {
		t.Fatalf("report order not preserved: %+v", got.Reports)
	}
	if *got.Reports[0].Compartments[0].SqFt != 120.5 {
		t.Fatalf("sqft lost")
	}
	if len(got.DeletedReports) != 1 || len(got.PTPs) != 1 || len(got.Foremen) != 2 || len(got.AuditLogs) != 1 {
		t.Fatalf("unexpected counts: %+v", got)
	}
	if got.DeletedPTPs == nil || len(got.DeletedPTPs) != 0 {
		t.Fatalf("expected empty deleted plans")
	}
	if got.Foremen[1].PIN != "0042" {
		t.Fatalf("PIN changed: %q", got.Foremen[1].PIN)
	}
	if !got.FetchedAt.Equal(now) {
		t.Fatalf("fetchedAt: %v", got.FetchedAt)
	}
	if got.PTPs[0].Evaluation.Unanswered() != snap.PTPs[0].Evaluation.Unanswered() {
		t.Fatalf("evaluation changed")
	}

	// Replace-all: a smaller snapshot leaves nothing behind.
	if err := c.Save(ctx, model.Snapshot{Reports: []model.Report{{ID: "9"}}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, _, err = c.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Reports) != 1 || len(got.Foremen) != 0 || len(got.AuditLogs) != 0 {
		t.Fatalf("stale rows survived: %+v", got)
	}
}
