package mutate

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"flooring-cli/internal/audit"
	"flooring-cli/internal/model"
	"flooring-cli/internal/remote"
)

func TestLogin_AdminAlwaysSucceeds(t *testing.T) {
	h := newHarness(t)
	s, err := h.c.Login(context.Background(), NewState(""), "Admin", "1234")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if s.CurrentUser != "Admin" || s.LoginError {
		t.Fatalf("unexpected state: %+v", s)
	}
	if h.sess.user != "Admin" {
		t.Fatalf("session not persisted")
	}
	e := s.AuditLogs[0]
	if e.Action != audit.ActionLogin || e.User != "Admin" || e.Details != "Identity: Admin" {
		t.Fatalf("unexpected audit entry: %+v", e)
	}
}

func TestLogin_ForemanFromCollection(t *testing.T) {
	h := newHarness(t)
	s := NewState("")
	s.Foremen = []model.Foreman{{Name: "Joe", PIN: "4321"}}
	s, err := h.c.Login(context.Background(), s, " Joe ", "4321")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if s.CurrentUser != "Joe" {
		t.Fatalf("expected Joe, got %q", s.CurrentUser)
	}
}

func TestLogin_FailureSetsFlagOnly(t *testing.T) {
	h := newHarness(t)
	s := NewState("")
	s.Foremen = []model.Foreman{{Name: "Joe", PIN: "4321"}}
	s, err := h.c.Login(context.Background(), s, "Joe", "0000")
	if !errors.Is(err, ErrInvalidLogin) {
		t.Fatalf("expected ErrInvalidLogin, got %v", err)
	}
	if !s.LoginError || s.CurrentUser != "" {
		t.Fatalf("unexpected state: %+v", s)
	}
	if calls := h.mem.Calls(); len(calls) != 0 {
		t.Fatalf("expected no remote calls, got %v", calls)
	}
	if h.sess.user != "" {
		t.Fatalf("session must not be written")
	}
}

func TestLogout_AuditsPreviousIdentity(t *testing.T) {
	h := newHarness(t)
	s := NewState("Joe")
	s.View = ViewAuditLog
	s, err := h.c.Logout(context.Background(), s)
	if err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if s.CurrentUser != "" || s.View != ViewDashboard {
		t.Fatalf("unexpected state: %+v", s)
	}
	if !h.sess.cleared {
		t.Fatalf("session not cleared")
	}
	e := s.AuditLogs[0]
	if e.Action != audit.ActionLogout || e.User != "Joe" || e.Details != "Identity: Joe" {
		t.Fatalf("unexpected audit entry: %+v", e)
	}
}

func TestLogout_AnonymousIsNotAudited(t *testing.T) {
	h := newHarness(t)
	s, err := h.c.Logout(context.Background(), NewState(""))
	if err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(s.AuditLogs) != 0 || len(h.mem.Calls()) != 0 {
		t.Fatalf("expected nothing recorded")
	}
}

func TestNavigate(t *testing.T) {
	s := NewState("")
	if got := Navigate(s, ViewReports, ""); got.View != ViewReports || got.ShowLogin {
		t.Fatalf("list should be public: %+v", got)
	}
	got := Navigate(s, ViewPTPs, "")
	if got.View != ViewDashboard || !got.ShowLogin {
		t.Fatalf("expected login prompt, got %+v", got)
	}
	got = Navigate(NewState("Joe"), ViewPTPDetail, "9")
	if got.View != ViewPTPDetail || got.SelectedID != "9" {
		t.Fatalf("unexpected navigation: %+v", got)
	}
}

func TestUpsertForeman(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := NewState("Admin")
	admin.Foremen = []model.Foreman{{Name: "Admin", PIN: "1234"}}

	if _, err := h.c.UpsertForeman(ctx, admin, model.Foreman{Name: "Bob", PIN: "12a4"}); !errors.Is(err, ErrInvalidPIN) {
		t.Fatalf("expected ErrInvalidPIN, got %v", err)
	}

	s, err := h.c.UpsertForeman(ctx, admin, model.Foreman{Name: "Bob", PIN: "1111"})
	if err != nil {
		t.Fatalf("UpsertForeman: %v", err)
	}
	if s.Toast.Message != "Added Bob." {
		t.Fatalf("unexpected toast %q", s.Toast.Message)
	}
	if got := h.sched.Take(); !reflect.DeepEqual(got, []time.Duration{0}) {
		t.Fatalf("expected immediate resync, got %v", got)
	}
	if len(s.AuditLogs) != 0 {
		t.Fatalf("foreman changes are not audited")
	}

	bob := NewState("Bob")
	bob.Foremen = []model.Foreman{{Name: "Admin", PIN: "1234"}, {Name: "Bob", PIN: "1111"}}
	s, err = h.c.UpsertForeman(ctx, bob, model.Foreman{Name: "Bob", PIN: "2222"})
	if err != nil {
		t.Fatalf("self PIN change: %v", err)
	}
	if s.Toast.Message != "PIN updated." {
		t.Fatalf("unexpected toast %q", s.Toast.Message)
	}
	if _, err := h.c.UpsertForeman(ctx, bob, model.Foreman{Name: "Admin", PIN: "0000"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	foremen, _ := h.mem.FetchForemen(ctx)
	if len(foremen) != 2 || foremen[1].PIN != "2222" {
		t.Fatalf("unexpected backend foremen: %+v", foremen)
	}
}

func TestDeleteForeman(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.mem.UpsertForeman(ctx, model.Foreman{Name: "Bob", PIN: "1111"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	admin := NewState("Admin")
	admin.Foremen = []model.Foreman{{Name: "Admin", PIN: "1234"}, {Name: "Bob", PIN: "1111"}}

	if _, err := h.c.DeleteForeman(ctx, admin, "Admin"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("Admin must not be removable, got %v", err)
	}
	bob := admin
	bob.CurrentUser = "Bob"
	if _, err := h.c.DeleteForeman(ctx, bob, "Bob"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-admin delete should be forbidden, got %v", err)
	}
	s, err := h.c.DeleteForeman(ctx, admin, "Bob")
	if err != nil {
		t.Fatalf("DeleteForeman: %v", err)
	}
	if s.Toast.Message != "Removed Bob." {
		t.Fatalf("unexpected toast %q", s.Toast.Message)
	}

	h.mem.FailOn(remote.ActionDeleteForeman, errors.New("down"))
	s, err = h.c.DeleteForeman(ctx, admin, "Bob")
	if err == nil || s.Toast.Message != "Failed." {
		t.Fatalf("expected failure toast, got %q (%v)", s.Toast.Message, err)
	}
}

func TestValidPIN(t *testing.T) {
	for pin, want := range map[string]bool{"1234": true, "0000": true, "123": false, "12345": false, "12a4": false, "": false} {
		if got := ValidPIN(pin); got != want {
			t.Fatalf("ValidPIN(%q) = %v, want %v", pin, got, want)
		}
	}
}
