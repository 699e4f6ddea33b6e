package remote

import "fmt"

// Error is a failed backend call: a transport error, a non-2xx status, or an
// {"error": "..."} reply from the script.
type Error struct {
	Action  string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Action, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: http %d: %s", e.Action, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Action, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.Err }
