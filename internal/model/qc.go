package model

import "strings"

var qcPassSynonyms = []string{"qc pass", "qc passed", "qc inspected", "qc check", "qc checked"}

// IsQCPassed derives completion from the phase log. The stored QCPassed flag is ignored.
func IsQCPassed(c Compartment) bool {
	for _, p := range c.Phases {
		if IsQCPhase(p.Description) {
			return true
		}
	}
	return false
}

// IsQCPhase reports whether a phase description records a passed inspection.
func IsQCPhase(desc string) bool {
	d := strings.ToLower(desc)
	for _, s := range qcPassSynonyms {
		if strings.Contains(d, s) {
			return true
		}
	}
	return false
}

// IsQCComplete reports whether a report has compartments and all of them passed QC.
func (r Report) IsQCComplete() bool {
	if len(r.Compartments) == 0 {
		return false
	}
	for _, c := range r.Compartments {
		if !IsQCPassed(c) {
			return false
		}
	}
	return true
}

// LatestPhase returns the last recorded phase description, or "" when none.
func (c Compartment) LatestPhase() string {
	if len(c.Phases) == 0 {
		return ""
	}
	return c.Phases[len(c.Phases)-1].Description
}
