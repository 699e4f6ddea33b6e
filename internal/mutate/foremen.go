package mutate

import (
	"context"
	"strings"

	"flooring-cli/internal/model"
)

const (
	opUpsertForeman = "upsert_foreman"
	opDeleteForeman = "delete_foreman"
)

// ValidPIN reports whether pin is exactly four ASCII digits.
func ValidPIN(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s State) findForeman(name string) (model.Foreman, bool) {
	for _, f := range s.Foremen {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return model.Foreman{}, false
}

// BeginUpsertForeman adds a foreman or changes a PIN. Admin may do either for
// anyone; a foreman may only change their own PIN.
func (c *Controller) BeginUpsertForeman(s State, f model.Foreman) (State, *Effect, error) {
	if err := c.guard(s, opUpsertForeman); err != nil {
		return s, nil, err
	}
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return s.withToast("Name is required."), nil, ErrInvalidInput
	}
	if !ValidPIN(f.PIN) {
		return s.withToast("PIN must be 4 digits."), nil, ErrInvalidPIN
	}
	_, exists := s.findForeman(f.Name)
	if !s.IsAdmin() && f.Name != s.CurrentUser {
		c.Metrics.Mutation(opUpsertForeman, "forbidden")
		return s.withToast("Only Admin can manage other foremen."), nil, ErrForbidden
	}

	toast := "Added " + f.Name + "."
	if exists {
		toast = "PIN updated."
	}
	return s, &Effect{
		Op:           opUpsertForeman,
		call:         func(ctx context.Context) (bool, error) { return c.Store.UpsertForeman(ctx, f) },
		requireOK:    true,
		SuccessToast: toast,
		FailureToast: "Failed.",
		Resync:       true,
	}, nil
}

// BeginDeleteForeman removes a foreman. Admin only, and Admin itself stays.
func (c *Controller) BeginDeleteForeman(s State, name string) (State, *Effect, error) {
	if err := c.guard(s, opDeleteForeman); err != nil {
		return s, nil, err
	}
	name = strings.TrimSpace(name)
	if !s.IsAdmin() || strings.EqualFold(name, model.AdminName) {
		c.Metrics.Mutation(opDeleteForeman, "forbidden")
		return s.withToast("Only Admin can remove foremen, and Admin cannot be removed."), nil, ErrForbidden
	}
	if _, ok := s.findForeman(name); !ok {
		c.Metrics.Mutation(opDeleteForeman, "not_found")
		return s.withToast("Foreman not found."), nil, NotFoundError{Kind: "foreman", ID: name}
	}
	return s, &Effect{
		Op:           opDeleteForeman,
		call:         func(ctx context.Context) (bool, error) { return c.Store.DeleteForeman(ctx, name) },
		requireOK:    true,
		SuccessToast: "Removed " + name + ".",
		FailureToast: "Failed.",
		Resync:       true,
	}, nil
}

func (c *Controller) UpsertForeman(ctx context.Context, s State, f model.Foreman) (State, error) {
	next, eff, err := c.BeginUpsertForeman(s, f)
	if err != nil {
		return next, err
	}
	return c.Complete(ctx, next, eff)
}

func (c *Controller) DeleteForeman(ctx context.Context, s State, name string) (State, error) {
	next, eff, err := c.BeginDeleteForeman(s, name)
	if err != nil {
		return next, err
	}
	return c.Complete(ctx, next, eff)
}
