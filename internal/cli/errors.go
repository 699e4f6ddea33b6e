package cli

import (
	"errors"
	"fmt"

	"flooring-cli/internal/mutate"
)

func errNotFound(kind, id string) error {
	return mutate.NotFoundError{Kind: kind, ID: id}
}

type flagError struct {
	flag   string
	reason string
}

func (e flagError) Error() string {
	return fmt.Sprintf("invalid --%s: %s", e.flag, e.reason)
}

// explain adds the next step to errors a user can act on.
func explain(err error) error {
	switch {
	case errors.Is(err, mutate.ErrUnauthenticated):
		return fmt.Errorf("%w; run `flooring login --name <name> --pin <pin>`", err)
	case errors.Is(err, mutate.ErrTrashed):
		return fmt.Errorf("%w; run `flooring reports restore <id>` or `flooring ptps restore <id>`", err)
	case errors.Is(err, mutate.ErrForbidden):
		return fmt.Errorf("%w; only Admin can manage other foremen", err)
	default:
		return err
	}
}
