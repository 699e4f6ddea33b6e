package mutate

import (
	"context"
	"errors"
	"testing"
	"time"

	"flooring-cli/internal/model"
	"flooring-cli/internal/remote"
)

func TestResync_ReplacesWholesale(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if err := h.mem.InsertReport(ctx, model.Report{ID: "1", Vessel: "CVN74"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	s := NewState("Joe")
	s.Reports = []model.Report{{ID: "2", Vessel: "local only"}}
	s.AuditLogs = []model.AuditLogEntry{{ID: "local"}}
	s.UnpersistedAudit = 1
	s = BeginResync(s)

	s, err := h.c.Resync(ctx, s)
	if err != nil {
		t.Fatalf("Resync: %v", err)
	}
	if len(s.Reports) != 1 || s.Reports[0].ID != "1" {
		t.Fatalf("expected backend reports, got %+v", s.Reports)
	}
	if len(s.AuditLogs) != 0 || s.UnpersistedAudit != 0 {
		t.Fatalf("audit log should be replaced")
	}
	if len(s.Foremen) != 1 || s.Foremen[0].Name != model.AdminName {
		t.Fatalf("expected seeded Admin, got %+v", s.Foremen)
	}
	if s.Syncing || !s.LastSync.Equal(testNow) {
		t.Fatalf("unexpected sync bookkeeping: %v %v", s.Syncing, s.LastSync)
	}
	if s.DeletedPTPs == nil {
		t.Fatalf("collections should be non-nil after resync")
	}
}

func TestResync_FailureKeepsState(t *testing.T) {
	h := newHarness(t)
	h.mem.FailOn(remote.ActionFetchPTPs, errors.New("timeout"))
	s := NewState("Joe")
	s.Reports = []model.Report{{ID: "2"}}

	s, err := h.c.Resync(context.Background(), s)
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(s.Reports) != 1 || s.Reports[0].ID != "2" {
		t.Fatalf("local state should be kept")
	}
	if s.Toast.Message != SyncFailedToast {
		t.Fatalf("unexpected toast %q", s.Toast.Message)
	}
}

func TestTimerSchedulerDrain(t *testing.T) {
	ts := NewTimerScheduler()
	ts.Schedule(0)
	ts.Schedule(time.Millisecond)

	ran := 0
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := ts.Drain(ctx, func(context.Context) {
		ran++
		if ran == 1 {
			ts.Schedule(0)
		}
	})
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if ran != 3 {
		t.Fatalf("expected 3 resyncs, got %d", ran)
	}
	if ts.Pending() != 0 {
		t.Fatalf("expected none pending")
	}
}

func TestTimerScheduler_UndrainedFiresDoNotBlock(t *testing.T) {
	ts := NewTimerScheduler()
	const n = 40
	for i := 0; i < n; i++ {
		ts.Schedule(0)
	}

	deadline := time.Now().Add(5 * time.Second)
	for ts.Fired() < n {
		if time.Now().After(deadline) {
			t.Fatalf("only %d of %d timers fired without a drain", ts.Fired(), n)
		}
		time.Sleep(time.Millisecond)
	}

	ran := 0
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ts.Drain(ctx, func(context.Context) { ran++ }); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if ran != n || ts.Pending() != 0 || ts.Fired() != 0 {
		t.Fatalf("ran=%d pending=%d fired=%d, want %d/0/0", ran, ts.Pending(), ts.Fired(), n)
	}
}

func TestLifecycleMoveKeepsListsExclusive(t *testing.T) {
	from := []model.Report{{ID: "1"}, {ID: "2"}}
	to := []model.Report{{ID: "2"}, {ID: "3"}}
	nf, nt, moved, ok := moveByID(from, to, "2", reportID)
	if !ok || moved.ID != "2" {
		t.Fatalf("expected move")
	}
	if len(nf) != 1 || nf[0].ID != "1" {
		t.Fatalf("unexpected source: %+v", nf)
	}
	if len(nt) != 2 || nt[0].ID != "2" || nt[1].ID != "3" {
		t.Fatalf("unexpected destination: %+v", nt)
	}
	if from[1].ID != "2" || to[0].ID != "2" {
		t.Fatalf("inputs were mutated")
	}
	if _, _, _, ok := moveByID(from, to, "9", reportID); ok {
		t.Fatalf("unexpected move of missing id")
	}
}
