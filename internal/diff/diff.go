// Package diff renders human-readable change summaries between report revisions
// for the audit log.
package diff

import (
	"fmt"
	"strconv"
	"strings"

	"flooring-cli/internal/model"
)

const (
	// NoChanges is the details text when no compartment-level change was found.
	NoChanges = "Metadata update"

	unknownVessel = "Unknown"
	none          = "None"
)

// Result describes the changes between two report revisions.
type Result struct {
	// Vessel is "OLD → NEW" when the vessel changed, else the unchanged name.
	Vessel string
	// Changes holds one entry per added, removed or modified compartment.
	Changes []string
}

// Details joins compartment changes with " || ", or returns NoChanges.
func (r Result) Details() string {
	if len(r.Changes) == 0 {
		return NoChanges
	}
	return strings.Join(r.Changes, " || ")
}

// Summary is the audit detail line for a report update.
func (r Result) Summary() string {
	return fmt.Sprintf("VESSEL: %s | Details: %s", r.Vessel, r.Details())
}

// Empty reports whether no compartment-level change was detected.
func (r Result) Empty() bool {
	return len(r.Changes) == 0
}

// Reports diffs an incoming revision against the existing one. existing may be nil
// when the previous revision is unknown locally; every incoming compartment is then "added".
func Reports(existing *model.Report, incoming model.Report) Result {
	var old model.Report
	if existing != nil {
		old = *existing
	}

	res := Result{Vessel: vesselDiff(old.Vessel, incoming.Vessel)}

	for _, nc := range incoming.Compartments {
		oc, ok := match(old.Compartments, nc)
		if !ok {
			res.Changes = append(res.Changes, "Added Comp: "+nc.Name)
			continue
		}
		if frags := Compartments(oc, nc); len(frags) > 0 {
			res.Changes = append(res.Changes, fmt.Sprintf("%s [%s]", nc.Name, strings.Join(frags, "; ")))
		}
	}

	for _, oc := range old.Compartments {
		if _, ok := match(incoming.Compartments, oc); !ok {
			res.Changes = append(res.Changes, "Removed Comp: "+oc.Name)
		}
	}
	return res
}

// Compartments lists field-level changes between two revisions of one compartment.
// The stored QC flag is never compared; completion is derived from phases.
func Compartments(oc, nc model.Compartment) []string {
	var out []string
	if !sameSqFt(oc.SqFt, nc.SqFt) {
		out = append(out, fmt.Sprintf("SqFt: %s→%s", formatSqFt(oc.SqFt), formatSqFt(nc.SqFt)))
	}
	if oc.Installer != nc.Installer {
		out = append(out, fmt.Sprintf("Lead: %s→%s", orNone(oc.Installer), nc.Installer))
	}
	if oc.Type != nc.Type {
		out = append(out, fmt.Sprintf("Type: %s→%s", orNone(oc.Type), nc.Type))
	}

	before, after := phaseSummary(oc.Phases), phaseSummary(nc.Phases)
	switch {
	case before != after:
		out = append(out, fmt.Sprintf("Phases: %d→%d (Before: %s | After: %s)", len(oc.Phases), len(nc.Phases), before, after))
	case len(oc.Phases) != len(nc.Phases):
		out = append(out, fmt.Sprintf("Phase Count: %d→%d", len(oc.Phases), len(nc.Phases)))
	}
	return out
}

// match finds the counterpart of c in xs: id first, then name.
// A simultaneous rename and id change is indistinguishable from remove+add.
func match(xs []model.Compartment, c model.Compartment) (model.Compartment, bool) {
	if c.ID != "" {
		for _, x := range xs {
			if x.ID == c.ID {
				return x, true
			}
		}
	}
	for _, x := range xs {
		if x.Name == c.Name {
			return x, true
		}
	}
	return model.Compartment{}, false
}

func vesselDiff(oldV, newV string) string {
	if oldV == "" {
		oldV = unknownVessel
	}
	if newV == "" {
		newV = unknownVessel
	}
	if oldV != newV {
		return oldV + " → " + newV
	}
	return oldV
}

func phaseSummary(phases []model.WorkPhase) string {
	descs := make([]string, 0, len(phases))
	for _, p := range phases {
		descs = append(descs, p.Description)
	}
	return orNone(strings.Join(descs, ", "))
}

func sameSqFt(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func formatSqFt(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func orNone(s string) string {
	if s == "" {
		return none
	}
	return s
}
