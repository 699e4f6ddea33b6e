package mutate

import "flooring-cli/internal/model"

// Membership is a record's place in the soft-delete lifecycle.
type Membership int

const (
	Absent Membership = iota
	Active
	Trashed
)

func (m Membership) String() string {
	switch m {
	case Active:
		return "active"
	case Trashed:
		return "trashed"
	default:
		return "absent"
	}
}

func reportID(r model.Report) string   { return r.ID }
func ptpID(p model.PreTaskPlan) string { return p.ID }

// ReportMembership reports where id lives in the local view.
func (s State) ReportMembership(id string) Membership {
	switch {
	case indexByID(s.Reports, id, reportID) >= 0:
		return Active
	case indexByID(s.DeletedReports, id, reportID) >= 0:
		return Trashed
	default:
		return Absent
	}
}

func (s State) PTPMembership(id string) Membership {
	switch {
	case indexByID(s.PTPs, id, ptpID) >= 0:
		return Active
	case indexByID(s.DeletedPTPs, id, ptpID) >= 0:
		return Trashed
	default:
		return Absent
	}
}

func indexByID[T any](xs []T, id string, idOf func(T) string) int {
	for i, x := range xs {
		if model.SameID(idOf(x), id) {
			return i
		}
	}
	return -1
}

// moveByID removes id from `from` and puts it at the head of `to`. Both results
// are fresh slices. Every copy of id is removed from `from` and `to` first so the
// two lists stay mutually exclusive.
func moveByID[T any](from, to []T, id string, idOf func(T) string) (newFrom, newTo []T, moved T, ok bool) {
	i := indexByID(from, id, idOf)
	if i < 0 {
		return from, to, moved, false
	}
	moved = from[i]
	newFrom = without(from, id, idOf)
	newTo = prepend(without(to, id, idOf), moved)
	return newFrom, newTo, moved, true
}

func without[T any](xs []T, id string, idOf func(T) string) []T {
	out := make([]T, 0, len(xs))
	for _, x := range xs {
		if !model.SameID(idOf(x), id) {
			out = append(out, x)
		}
	}
	return out
}

func prepend[T any](xs []T, x T) []T {
	out := make([]T, 0, len(xs)+1)
	out = append(out, x)
	return append(out, xs...)
}

// replaceByID returns a copy of xs with the element matching id replaced by x.
func replaceByID[T any](xs []T, id string, x T, idOf func(T) string) []T {
	out := make([]T, len(xs))
	copy(out, xs)
	if i := indexByID(out, id, idOf); i >= 0 {
		out[i] = x
	}
	return out
}

// restored ignores the backend's flag: a restore counts as done unless the call failed.
func restored(_ bool, err error) (bool, error) {
	return true, err
}
