package model

// Hazard is a label from the closed PTP hazard checklist.
type Hazard string

const (
	HazardPinchPoints        Hazard = "Pinch Points"
	HazardThermalBurns       Hazard = "Thermal Burns"
	HazardParticlesInEyes    Hazard = "Particles in Eyes"
	HazardElevatedWork       Hazard = "Elevated Work"
	HazardPoorHousekeeping   Hazard = "Poor Housekeeping"
	HazardElectricalShock    Hazard = "Electrical Shock"
	HazardChemicalBurns      Hazard = "Chemical Burns"
	HazardFireExplosion      Hazard = "Fire/Explosion"
	HazardInadequateAccess   Hazard = "Inadequate Access"
	HazardHighNoise          Hazard = "High Noise levels"
	HazardFallingObjects     Hazard = "Falling Objects"
	HazardManualLifting      Hazard = "Manual Lifting"
	HazardChemicalSpill      Hazard = "Chemical Spill"
	HazardPlantOperations    Hazard = "Plant Operations"
	HazardScaffolding        Hazard = "Scaffolding"
	HazardMobileEquipment    Hazard = "Mobile Equipment"
	HazardHazardousChemicals Hazard = "Hazardous Chemicals"
	HazardHeatStress         Hazard = "Heat Exhaustion/Stress"
	HazardSharpObjects       Hazard = "Sharp Objects or Tools"
	HazardRadiation          Hazard = "Radiation"
	HazardExcavations        Hazard = "Excavations"
	HazardLockoutTagout      Hazard = "Lockout/Tagout"
	HazardLadders            Hazard = "Ladders"
	HazardRigging            Hazard = "Rigging"
	HazardFallsFromElevation Hazard = "Falls from Elevations"
	HazardConfinedSpaces     Hazard = "Confined Spaces"
	HazardLineBreaking       Hazard = "Line Breaking"
	HazardInhalation         Hazard = "Inhalation Hazard"
	HazardCriticalLift       Hazard = "Critical Lift"
	HazardOther              Hazard = "Other"
)

// AllHazards is the checklist in display order.
var AllHazards = []Hazard{
	HazardPinchPoints, HazardThermalBurns, HazardParticlesInEyes, HazardElevatedWork, HazardPoorHousekeeping,
	HazardElectricalShock, HazardChemicalBurns, HazardFireExplosion, HazardInadequateAccess, HazardHighNoise,
	HazardFallingObjects, HazardManualLifting, HazardChemicalSpill, HazardPlantOperations, HazardScaffolding,
	HazardMobileEquipment, HazardHazardousChemicals, HazardHeatStress, HazardSharpObjects,
	HazardRadiation, HazardExcavations, HazardLockoutTagout, HazardLadders, HazardRigging, HazardFallsFromElevation,
	HazardConfinedSpaces, HazardLineBreaking, HazardInhalation, HazardCriticalLift, HazardOther,
}

func (h Hazard) Valid() bool {
	for _, x := range AllHazards {
		if x == h {
			return true
		}
	}
	return false
}

// PPE is a label from the closed personal protective equipment list.
type PPE string

const (
	PPEHardHat       PPE = "Hard Hat"
	PPEEyeProtection PPE = "Eye Protection"
	PPEEarProtection PPE = "Ear Protection"
	PPEGloves        PPE = "Gloves"
	PPERespirators   PPE = "Respirators"
	PPEBoots         PPE = "Safety Approved Boots"
	PPEKneePads      PPE = "Knee Pads"
)

var AllPPE = []PPE{
	PPEHardHat, PPEEyeProtection, PPEEarProtection, PPEGloves, PPERespirators, PPEBoots, PPEKneePads,
}

func (p PPE) Valid() bool {
	for _, x := range AllPPE {
		if x == p {
			return true
		}
	}
	return false
}

// Question identifies one of the fixed PTP evaluation questions.
// The value is the wire key used by the sheet backend.
type Question string

const (
	QuestionWalkedArea              Question = "walkedArea"
	QuestionLiveSystems             Question = "liveSystems"
	QuestionSpecialTraining         Question = "specialTraining"
	QuestionMSDSReview              Question = "msdsReview"
	QuestionAirMonitoring           Question = "airMonitoring"
	QuestionWorkPermits             Question = "workPermits"
	QuestionEvacuationRoutes        Question = "evacuationRoutes"
	QuestionEmergencyEquipment      Question = "emergencyEquipment"
	QuestionCongestedArea           Question = "congestedArea"
	QuestionPPENeeded               Question = "ppeNeeded"
	QuestionToolsProvided           Question = "toolsProvided"
	QuestionToolsInspected          Question = "toolsInspected"
	QuestionConfinedSpace           Question = "confinedSpace"
	QuestionSafetyDeptInvolved      Question = "safetyDeptInvolved"
	QuestionSafetyIssueNotAddressed Question = "safetyIssueNotAddressed"
)

// AllQuestions is the evaluation form in display order.
var AllQuestions = []Question{
	QuestionWalkedArea, QuestionLiveSystems, QuestionSpecialTraining, QuestionMSDSReview, QuestionAirMonitoring,
	QuestionWorkPermits, QuestionEvacuationRoutes, QuestionEmergencyEquipment, QuestionCongestedArea,
	QuestionPPENeeded, QuestionToolsProvided, QuestionToolsInspected, QuestionConfinedSpace,
	QuestionSafetyDeptInvolved, QuestionSafetyIssueNotAddressed,
}

func (q Question) Label() string {
	switch q {
	case QuestionWalkedArea:
		return "Have you walked your area?"
	case QuestionLiveSystems:
		return "Working around live systems?"
	case QuestionSpecialTraining:
		return "Special training required?"
	case QuestionMSDSReview:
		return "MSDS review necessary?"
	case QuestionAirMonitoring:
		return "Air monitoring required?"
	case QuestionWorkPermits:
		return "Are work permits required for this task?"
	case QuestionEvacuationRoutes:
		return "Are you familiar with evacuation routes?"
	case QuestionEmergencyEquipment:
		return "Has emergency equipment such as fire extinguishers, eyewash stations, safety showers, and phones been located?"
	case QuestionCongestedArea:
		return "If the work area is congested, has the work plan been coordinated with other crafts?"
	case QuestionPPENeeded:
		return "Do you have the PPE needed for this task?"
	case QuestionToolsProvided:
		return "Are the required materials and tools provided?"
	case QuestionToolsInspected:
		return "Have all tools/equipment been inspected before use?"
	case QuestionConfinedSpace:
		return "Confined space involved?"
	case QuestionSafetyDeptInvolved:
		return "Safety Dept. involved in planning?"
	case QuestionSafetyIssueNotAddressed:
		return "Any unaddressed safety issues?"
	default:
		return string(q)
	}
}

// Evaluation holds the tri-state answers (nil = unanswered).
type Evaluation struct {
	WalkedArea              *bool `json:"walkedArea"`
	LiveSystems             *bool `json:"liveSystems"`
	SpecialTraining         *bool `json:"specialTraining"`
	MSDSReview              *bool `json:"msdsReview"`
	AirMonitoring           *bool `json:"airMonitoring"`
	WorkPermits             *bool `json:"workPermits"`
	EvacuationRoutes        *bool `json:"evacuationRoutes"`
	EmergencyEquipment      *bool `json:"emergencyEquipment"`
	CongestedArea           *bool `json:"congestedArea"`
	PPENeeded               *bool `json:"ppeNeeded"`
	ToolsProvided           *bool `json:"toolsProvided"`
	ToolsInspected          *bool `json:"toolsInspected"`
	ConfinedSpace           *bool `json:"confinedSpace"`
	SafetyDeptInvolved      *bool `json:"safetyDeptInvolved"`
	SafetyIssueNotAddressed *bool `json:"safetyIssueNotAddressed"`
}

func (e *Evaluation) field(q Question) **bool {
	switch q {
	case QuestionWalkedArea:
		return &e.WalkedArea
	case QuestionLiveSystems:
		return &e.LiveSystems
	case QuestionSpecialTraining:
		return &e.SpecialTraining
	case QuestionMSDSReview:
		return &e.MSDSReview
	case QuestionAirMonitoring:
		return &e.AirMonitoring
	case QuestionWorkPermits:
		return &e.WorkPermits
	case QuestionEvacuationRoutes:
		return &e.EvacuationRoutes
	case QuestionEmergencyEquipment:
		return &e.EmergencyEquipment
	case QuestionCongestedArea:
		return &e.CongestedArea
	case QuestionPPENeeded:
		return &e.PPENeeded
	case QuestionToolsProvided:
		return &e.ToolsProvided
	case QuestionToolsInspected:
		return &e.ToolsInspected
	case QuestionConfinedSpace:
		return &e.ConfinedSpace
	case QuestionSafetyDeptInvolved:
		return &e.SafetyDeptInvolved
	case QuestionSafetyIssueNotAddressed:
		return &e.SafetyIssueNotAddressed
	default:
		return nil
	}
}

// Answer returns the answer for q, or nil when unanswered or unknown.
func (e Evaluation) Answer(q Question) *bool {
	p := e.field(q)
	if p == nil {
		return nil
	}
	return *p
}

// Set records an answer. A nil v clears it. Unknown questions are ignored.
func (e *Evaluation) Set(q Question, v *bool) bool {
	p := e.field(q)
	if p == nil {
		return false
	}
	if v == nil {
		*p = nil
		return true
	}
	b := *v
	*p = &b
	return true
}

func (e Evaluation) IsComplete() bool {
	return e.Unanswered() == 0
}

// Unanswered counts questions without an answer.
func (e Evaluation) Unanswered() int {
	n := 0
	for _, q := range AllQuestions {
		if e.Answer(q) == nil {
			n++
		}
	}
	return n
}

func (e Evaluation) Clone() Evaluation {
	var out Evaluation
	for _, q := range AllQuestions {
		out.Set(q, e.Answer(q))
	}
	return out
}

// DefaultEvaluation is the preset answer sheet used for new plans.
func DefaultEvaluation() Evaluation {
	yes, no := true, false
	var e Evaluation
	for q, v := range map[Question]*bool{
		QuestionWalkedArea:              &yes,
		QuestionSpecialTraining:         &no,
		QuestionMSDSReview:              &no,
		QuestionAirMonitoring:           &no,
		QuestionWorkPermits:             &yes,
		QuestionEvacuationRoutes:        &yes,
		QuestionEmergencyEquipment:      &yes,
		QuestionPPENeeded:               &yes,
		QuestionToolsProvided:           &yes,
		QuestionToolsInspected:          &yes,
		QuestionSafetyDeptInvolved:      &no,
		QuestionSafetyIssueNotAddressed: &no,
	} {
		e.Set(q, v)
	}
	return e
}
