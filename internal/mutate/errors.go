package mutate

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("not logged in")
	ErrInvalidLogin    = errors.New("invalid foreman name or PIN")
	ErrForbidden       = errors.New("admin only")
	ErrInvalidPIN      = errors.New("PIN must be exactly 4 digits")
	ErrInvalidInput    = errors.New("invalid input")
	ErrTrashed         = errors.New("in the trash; restore it instead")
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// RemoteError is a backend failure surfaced after the optimistic local change was applied.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }
