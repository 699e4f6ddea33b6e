package mutate

import (
	"context"
	"strings"

	"flooring-cli/internal/audit"
	"flooring-cli/internal/model"
)

const (
	opCreatePTP  = "create_ptp"
	opUpdatePTP  = "update_ptp"
	opArchivePTP = "archive_ptp"
	opRestorePTP = "restore_ptp"
)

func (c *Controller) BeginCreatePTP(s State, p model.PreTaskPlan) (State, *Effect, error) {
	if err := c.guard(s, opCreatePTP); err != nil {
		return s, nil, err
	}
	if p.ID != "" && s.PTPMembership(p.ID) == Trashed {
		return c.inTrash(s, opCreatePTP, "Safety Plan", p.ID)
	}
	now := c.now()
	p = p.Clone()
	if strings.TrimSpace(p.ID) == "" {
		p.ID = model.NewRecordID(now)
	}
	p.Date = model.NormalizeDate(p.Date)
	p.Author = s.CurrentUser
	p.CreatedAt = now

	s.PTPs = prepend(without(s.PTPs, p.ID, ptpID), p)
	s.View = ViewPTPs
	s.SelectedID = p.ID

	created := p
	return s, &Effect{
		Op:            opCreatePTP,
		call:          func(ctx context.Context) (bool, error) { return true, c.Store.InsertPTP(ctx, created) },
		AuditAction:   audit.ActionCreatePTP,
		AuditDetails:  audit.PTPDetails(p.Location, p.ID),
		AuditActor:    s.CurrentUser,
		FailurePrefix: "Save failed: ",
		Resync:        true,
		Delay:         c.delay(),
	}, nil
}

// BeginUpdatePTP stamps UpdatedAt and replaces the plan in place. Plans are not diffed.
func (c *Controller) BeginUpdatePTP(s State, incoming model.PreTaskPlan) (State, *Effect, error) {
	if err := c.guard(s, opUpdatePTP); err != nil {
		return s, nil, err
	}
	existing, ok := s.FindPTP(incoming.ID)
	if !ok {
		return c.notFound(s, opUpdatePTP, "ptp", "Safety Plan", incoming.ID)
	}
	p := incoming.Clone()
	p.ID = existing.ID
	p.Date = model.NormalizeDate(p.Date)
	if p.Author == "" {
		p.Author = existing.Author
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = existing.CreatedAt
	}
	p.UpdatedAt = c.now()

	s.PTPs = replaceByID(s.PTPs, p.ID, p, ptpID)
	s.View = ViewPTPs
	s.SelectedID = p.ID

	updated := p
	return s, &Effect{
		Op:            opUpdatePTP,
		call:          func(ctx context.Context) (bool, error) { return true, c.Store.UpdatePTP(ctx, updated) },
		AuditAction:   audit.ActionUpdatePTP,
		AuditDetails:  audit.PTPDetails(p.Location, p.ID),
		AuditActor:    s.CurrentUser,
		FailurePrefix: "Save failed: ",
		Resync:        true,
		Delay:         c.delay(),
	}, nil
}

func (c *Controller) BeginSavePTP(s State, p model.PreTaskPlan) (State, *Effect, error) {
	if p.ID != "" && s.PTPMembership(p.ID) == Active {
		return c.BeginUpdatePTP(s, p)
	}
	return c.BeginCreatePTP(s, p)
}

func (c *Controller) BeginArchivePTP(s State, id string) (State, *Effect, error) {
	if err := c.guard(s, opArchivePTP); err != nil {
		return s, nil, err
	}
	active, trashed, moved, ok := moveByID(s.PTPs, s.DeletedPTPs, id, ptpID)
	if !ok {
		return c.notFound(s, opArchivePTP, "ptp", "Safety Plan", id)
	}
	s.PTPs, s.DeletedPTPs = active, trashed
	if model.SameID(s.SelectedID, id) {
		s.SelectedID = ""
	}
	s = s.withToast("Moving to trash...")
	pid := moved.ID
	return s, &Effect{
		Op:            opArchivePTP,
		call:          func(ctx context.Context) (bool, error) { return c.Store.DeletePTP(ctx, pid) },
		requireOK:     true,
		AuditAction:   audit.ActionDeletePTP,
		AuditDetails:  audit.PTPDetails(moved.Location, moved.ID),
		AuditActor:    s.CurrentUser,
		SuccessToast:  "Safety Plan moved to trash",
		FailurePrefix: "Delete failed: ",
		Resync:        true,
		Delay:         c.delay(),
	}, nil
}

func (c *Controller) BeginRestorePTP(s State, id string) (State, *Effect, error) {
	if err := c.guard(s, opRestorePTP); err != nil {
		return s, nil, err
	}
	trashed, active, moved, ok := moveByID(s.DeletedPTPs, s.PTPs, id, ptpID)
	if !ok {
		return c.notFound(s, opRestorePTP, "ptp", "Safety Plan", id)
	}
	s.DeletedPTPs, s.PTPs = trashed, active
	s = s.withToast("Restoring...")
	pid := moved.ID
	return s, &Effect{
		Op:            opRestorePTP,
		call:          func(ctx context.Context) (bool, error) { return restored(c.Store.RestorePTP(ctx, pid)) },
		AuditAction:   audit.ActionRestorePTP,
		AuditDetails:  audit.PTPDetails(moved.Location, moved.ID),
		AuditActor:    s.CurrentUser,
		SuccessToast:  "Safety Plan restored",
		FailurePrefix: "Restore failed: ",
		Resync:        true,
		Delay:         c.delay(),
	}, nil
}

func (c *Controller) CreatePTP(ctx context.Context, s State, p model.PreTaskPlan) (State, error) {
	next, eff, err := c.BeginCreatePTP(s, p)
	if err != nil {
		return next, err
	}
	return c.Complete(ctx, next, eff)
}

func (c *Controller) UpdatePTP(ctx context.Context, s State, p model.PreTaskPlan) (State, error) {
	next, eff, err := c.BeginUpdatePTP(s, p)
	if err != nil {
		return next, err
	}
	return c.Complete(ctx, next, eff)
}

func (c *Controller) ArchivePTP(ctx context.Context, s State, id string) (State, error) {
	next, eff, err := c.BeginArchivePTP(s, id)
	if err != nil {
		return next, err
	}
	return c.Complete(ctx, next, eff)
}

func (c *Controller) RestorePTP(ctx context.Context, s State, id string) (State, error) {
	next, eff, err := c.BeginRestorePTP(s, id)
	if err != nil {
		return next, err
	}
	return c.Complete(ctx, next, eff)
}
