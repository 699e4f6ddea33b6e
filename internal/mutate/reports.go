package mutate

import (
	"context"
	"strings"

	"flooring-cli/internal/audit"
	"flooring-cli/internal/diff"
	"flooring-cli/internal/editlog"
	"flooring-cli/internal/model"
)

const (
	opCreateReport  = "create_report"
	opUpdateReport  = "update_report"
	opArchiveReport = "archive_report"
	opRestoreReport = "restore_report"
)

// prepareReport fills ids and vessels the form may have left blank.
func prepareReport(r model.Report) model.Report {
	r = r.Clone()
	for i := range r.Compartments {
		c := &r.Compartments[i]
		if strings.TrimSpace(c.ID) == "" {
			c.ID = model.NewCompartmentID()
		}
		if c.Vessel == "" {
			c.Vessel = r.Vessel
		}
		if c.Type == "" {
			c.Type = model.DefaultCompartmentType
		}
		if c.Phases == nil {
			c.Phases = []model.WorkPhase{}
		}
	}
	if r.Compartments == nil {
		r.Compartments = []model.Compartment{}
	}
	r.Vessel = r.PrimaryVessel()
	return r
}

// BeginCreateReport stamps authorship and history, then puts r at the head of the
// active list.
func (c *Controller) BeginCreateReport(s State, r model.Report) (State, *Effect, error) {
	if err := c.guard(s, opCreateReport); err != nil {
		return s, nil, err
	}
	if r.ID != "" && s.ReportMembership(r.ID) == Trashed {
		return c.inTrash(s, opCreateReport, "Report", r.ID)
	}
	now := c.now()
	r = prepareReport(r)
	if strings.TrimSpace(r.ID) == "" {
		r.ID = model.NewRecordID(now)
	}
	if r.Author == "" {
		r.Author = s.CurrentUser
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.LastEditor = s.CurrentUser
	r.UpdatedAt = now
	r.EditLog = editlog.Seed(r.Author, r.CreatedAt)

	s.Reports = prepend(without(s.Reports, r.ID, reportID), r)
	s.View = ViewReports
	s.SelectedID = r.ID

	created := r
	return s, &Effect{
		Op:            opCreateReport,
		call:          func(ctx context.Context) (bool, error) { return true, c.Store.InsertReport(ctx, created) },
		AuditAction:   audit.ActionCreateReport,
		AuditDetails:  audit.ReportDetails(r, "No Units"),
		AuditActor:    s.CurrentUser,
		FailurePrefix: "Save failed: ",
		Resync:        true,
		Delay:         c.delay(),
	}, nil
}

// BeginUpdateReport replaces the active report with incoming's id, appending one
// history entry and auditing the computed diff.
func (c *Controller) BeginUpdateReport(s State, incoming model.Report) (State, *Effect, error) {
	if err := c.guard(s, opUpdateReport); err != nil {
		return s, nil, err
	}
	existing, ok := s.FindReport(incoming.ID)
	if !ok {
		return c.notFound(s, opUpdateReport, "report", "Report", incoming.ID)
	}
	// Diff what was submitted; the defaults prepareReport fills are not edits.
	submitted := incoming.Clone()
	submitted.Vessel = submitted.PrimaryVessel()
	summary := diff.Reports(&existing, submitted).Summary()

	now := c.now()
	r := prepareReport(incoming)
	r.ID = existing.ID
	if r.Author == "" {
		r.Author = existing.ResolvedAuthor()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = existing.CreatedAt
	}
	r.LastEditor = s.CurrentUser
	r.UpdatedAt = now
	r.EditLog = editlog.Append(&existing, s.CurrentUser, now)

	s.Reports = replaceByID(s.Reports, r.ID, r, reportID)
	s.View = ViewReports
	s.SelectedID = r.ID

	updated := r
	return s, &Effect{
		Op:            opUpdateReport,
		call:          func(ctx context.Context) (bool, error) { return true, c.Store.UpdateReport(ctx, updated) },
		AuditAction:   audit.ActionUpdateReport,
		AuditDetails:  summary,
		AuditActor:    s.CurrentUser,
		FailurePrefix: "Save failed: ",
		Resync:        true,
		Delay:         c.delay(),
	}, nil
}

// BeginSaveReport updates r when its id is active and creates it otherwise. A
// trashed id must be restored first.
func (c *Controller) BeginSaveReport(s State, r model.Report) (State, *Effect, error) {
	if r.ID != "" && s.ReportMembership(r.ID) == Active {
		return c.BeginUpdateReport(s, r)
	}
	return c.BeginCreateReport(s, r)
}

// BeginArchiveReport moves an active report to the trash.
func (c *Controller) BeginArchiveReport(s State, id string) (State, *Effect, error) {
	if err := c.guard(s, opArchiveReport); err != nil {
		return s, nil, err
	}
	active, trashed, moved, ok := moveByID(s.Reports, s.DeletedReports, id, reportID)
	if !ok {
		return c.notFound(s, opArchiveReport, "report", "Report", id)
	}
	s.Reports, s.DeletedReports = active, trashed
	if model.SameID(s.SelectedID, id) {
		s.SelectedID = ""
	}
	s = s.withToast("Moving to trash...")
	rid := moved.ID
	return s, &Effect{
		Op:            opArchiveReport,
		call:          func(ctx context.Context) (bool, error) { return c.Store.DeleteReport(ctx, rid) },
		requireOK:     true,
		AuditAction:   audit.ActionDeleteReport,
		AuditDetails:  audit.ReportDetails(moved, "Unknown Units"),
		AuditActor:    s.CurrentUser,
		SuccessToast:  "Report moved to trash",
		FailurePrefix: "Delete failed: ",
		Resync:        true,
		Delay:         c.delay(),
	}, nil
}

// BeginRestoreReport moves a trashed report back to the head of the active list.
func (c *Controller) BeginRestoreReport(s State, id string) (State, *Effect, error) {
	if err := c.guard(s, opRestoreReport); err != nil {
		return s, nil, err
	}
	trashed, active, moved, ok := moveByID(s.DeletedReports, s.Reports, id, reportID)
	if !ok {
		return c.notFound(s, opRestoreReport, "report", "Report", id)
	}
	s.DeletedReports, s.Reports = trashed, active
	s = s.withToast("Restoring...")
	rid := moved.ID
	return s, &Effect{
		Op:            opRestoreReport,
		call:          func(ctx context.Context) (bool, error) { return restored(c.Store.RestoreReport(ctx, rid)) },
		AuditAction:   audit.ActionRestoreReport,
		AuditDetails:  audit.ReportDetails(moved, "Unknown Units"),
		AuditActor:    s.CurrentUser,
		SuccessToast:  "Report restored to active list",
		FailurePrefix: "Restore failed: ",
		Resync:        true,
		Delay:         c.delay(),
	}, nil
}

func (c *Controller) CreateReport(ctx context.Context, s State, r model.Report) (State, error) {
	next, eff, err := c.BeginCreateReport(s, r)
	if err != nil {
		return next, err
	}
	return c.Complete(ctx, next, eff)
}

func (c *Controller) UpdateReport(ctx context.Context, s State, r model.Report) (State, error) {
	next, eff, err := c.BeginUpdateReport(s, r)
	if err != nil {
		return next, err
	}
	return c.Complete(ctx, next, eff)
}

func (c *Controller) ArchiveReport(ctx context.Context, s State, id string) (State, error) {
	next, eff, err := c.BeginArchiveReport(s, id)
	if err != nil {
		return next, err
	}
	return c.Complete(ctx, next, eff)
}

func (c *Controller) RestoreReport(ctx context.Context, s State, id string) (State, error) {
	next, eff, err := c.BeginRestoreReport(s, id)
	if err != nil {
		return next, err
	}
	return c.Complete(ctx, next, eff)
}
