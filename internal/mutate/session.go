package mutate

import (
	"context"
	"strings"

	"flooring-cli/internal/audit"
	"flooring-cli/internal/model"
)

const (
	opLogin  = "login"
	opLogout = "logout"
)

// Authenticate reports whether name/pin identify Admin or a known foreman.
func Authenticate(foremen []model.Foreman, name, pin string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	if name == model.AdminName && pin == model.AdminPIN {
		return true
	}
	for _, f := range foremen {
		if f.Name == name && f.PIN == pin {
			return true
		}
	}
	return false
}

// BeginLogin sets the identity on success. A failed attempt only raises
// LoginError; the current identity is left alone.
func (c *Controller) BeginLogin(s State, name, pin string) (State, *Effect, error) {
	name = strings.TrimSpace(name)
	if !Authenticate(s.Foremen, name, pin) {
		c.Metrics.Mutation(opLogin, "rejected")
		s.LoginError = true
		return s, nil, ErrInvalidLogin
	}
	s.CurrentUser = name
	s.LoginError = false
	s.ShowLogin = false
	if c.Session != nil {
		if err := c.Session.SaveUser(name); err != nil {
			c.logger().Warn("persist session failed", "user", name, "err", err)
		}
	}
	return s, &Effect{
		Op:            opLogin,
		AuditAction:   audit.ActionLogin,
		AuditDetails:  audit.IdentityDetails(name),
		AuditOverride: name,
	}, nil
}

// BeginLogout clears the identity locally and durably. The audit entry is
// attributed to the identity that was logged in.
func (c *Controller) BeginLogout(s State) (State, *Effect, error) {
	prev := s.CurrentUser
	s.CurrentUser = ""
	s.View = ViewDashboard
	s.SelectedID = ""
	s.ShowLogin = false
	if c.Session != nil {
		if err := c.Session.ClearUser(); err != nil {
			c.logger().Warn("clear session failed", "err", err)
		}
	}
	if prev == "" {
		return s, nil, nil
	}
	return s, &Effect{
		Op:            opLogout,
		AuditAction:   audit.ActionLogout,
		AuditDetails:  audit.IdentityDetails(prev),
		AuditOverride: prev,
	}, nil
}

func (c *Controller) Login(ctx context.Context, s State, name, pin string) (State, error) {
	next, eff, err := c.BeginLogin(s, name, pin)
	if err != nil {
		return next, err
	}
	return c.Complete(ctx, next, eff)
}

func (c *Controller) Logout(ctx context.Context, s State) (State, error) {
	next, eff, err := c.BeginLogout(s)
	if err != nil {
		return next, err
	}
	return c.Complete(ctx, next, eff)
}

// Navigate switches view. Without an identity only the dashboard and the report
// list are reachable; anything else raises the login prompt instead.
func Navigate(s State, v View, selectedID string) State {
	if !s.Authorized() && !v.Public() {
		s.ShowLogin = true
		return s
	}
	s.View = v
	s.SelectedID = selectedID
	s.ShowLogin = false
	return s
}
