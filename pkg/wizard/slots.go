// Package wizard holds the claim-intimation step machine shared by the
// backend draft/submit handlers and the API client: step validation,
// document slot tracking and draft payload composition.
package wizard

// Step indexes the four form sections of an intimation.
type Step int

const (
	StepPolicy Step = iota
	StepInsurer
	StepWorkshop
	StepAllocation

	stepCount
)

func (s Step) String() string {
	switch s {
	case StepPolicy:
		return "policy"
	case StepInsurer:
		return "insurer"
	case StepWorkshop:
		return "workshop"
	case StepAllocation:
		return "allocation"
	}
	return "unknown"
}

// Document slot names. These are the 14 named upload slots of the wizard;
// the server-side document_types table mirrors this list.
const (
	SlotPolicyCopy       = "policy_copy"
	SlotIntimationForm   = "intimation_form"
	SlotClaimsForm       = "claims_form"
	SlotVehicleRC        = "vehicle_rc"
	SlotDrivingLicense   = "driving_license"
	SlotInsuranceCopy    = "insurance_copy"
	SlotAadhaar          = "aadhaar"
	SlotPAN              = "pan"
	SlotWorkshopEstimate = "workshop_estimate"
	SlotRepairPhotos     = "repair_photos"
	SlotInspectionReport = "inspection_report"
	SlotOther            = "other"
	SlotAllocationForm   = "allocation_form"
	SlotSurveyorReport   = "surveyor_report"
)

// slotSteps assigns every slot to the step it belongs to.
var slotSteps = map[string]Step{
	SlotPolicyCopy:       StepPolicy,
	SlotIntimationForm:   StepPolicy,
	SlotClaimsForm:       StepPolicy,
	SlotVehicleRC:        StepPolicy,
	SlotDrivingLicense:   StepInsurer,
	SlotInsuranceCopy:    StepInsurer,
	SlotAadhaar:          StepInsurer,
	SlotPAN:              StepInsurer,
	SlotWorkshopEstimate: StepWorkshop,
	SlotRepairPhotos:     StepWorkshop,
	SlotInspectionReport: StepWorkshop,
	SlotOther:            StepWorkshop,
	SlotAllocationForm:   StepAllocation,
	SlotSurveyorReport:   StepAllocation,
}

// requiredSlots are the slots a step cannot advance without.
var requiredSlots = map[string]bool{
	SlotPolicyCopy:       true,
	SlotIntimationForm:   true,
	SlotDrivingLicense:   true,
	SlotWorkshopEstimate: true,
	SlotAllocationForm:   true,
}

// Slots returns all slot names in step order.
func Slots() []string {
	return []string{
		SlotPolicyCopy, SlotIntimationForm, SlotClaimsForm, SlotVehicleRC,
		SlotDrivingLicense, SlotInsuranceCopy, SlotAadhaar, SlotPAN,
		SlotWorkshopEstimate, SlotRepairPhotos, SlotInspectionReport, SlotOther,
		SlotAllocationForm, SlotSurveyorReport,
	}
}

// SlotStep returns the step a slot belongs to, or -1 for unknown slots.
func SlotStep(slot string) Step {
	if s, ok := slotSteps[slot]; ok {
		return s
	}
	return -1
}

// SlotRequired reports whether the slot gates its step.
func SlotRequired(slot string) bool {
	return requiredSlots[slot]
}

// RequiredSlotsForStep lists the slots that must have a round-tripped
// upload before the step may advance.
func RequiredSlotsForStep(step Step) []string {
	var out []string
	for _, slot := range Slots() {
		if slotSteps[slot] == step && requiredSlots[slot] {
			out = append(out, slot)
		}
	}
	return out
}
