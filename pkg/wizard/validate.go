package wizard

import (
	"regexp"
	"strings"
	"time"

	"p9e.in/claims/models"
)

var (
	mobileRx  = regexp.MustCompile(`^\d{10}$`)
	vehicleRx = regexp.MustCompile(`^[A-Z]{2}\d{1,2}[A-Z]{1,3}\d{4}$`)
	emailRx   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	pincodeRx = regexp.MustCompile(`^\d{6}$`)
)

// IsValidMobile accepts exactly 10 digit strings.
func IsValidMobile(s string) bool {
	return mobileRx.MatchString(s)
}

// IsValidVehicleNumber matches Indian plate numbers like MH12AB1234.
func IsValidVehicleNumber(s string) bool {
	return vehicleRx.MatchString(strings.ToUpper(strings.ReplaceAll(s, " ", "")))
}

func IsValidEmail(s string) bool {
	return emailRx.MatchString(s)
}

func IsValidPincode(s string) bool {
	return pincodeRx.MatchString(s)
}

// ValidateStep returns a field-error map and a document-error map for one
// step. Both must be empty before the wizard may advance. Document
// validity means the slot's upload round-tripped (URL present), not that
// a file was merely selected.
func ValidateStep(step Step, f *Form) (map[string]string, map[string]string) {
	fieldErrs := map[string]string{}
	switch step {
	case StepPolicy:
		validatePolicy(&f.Policy, fieldErrs)
	case StepInsurer:
		validateInsurer(&f.Insurer, fieldErrs)
	case StepWorkshop:
		validateWorkshop(&f.Workshop, fieldErrs)
	case StepAllocation:
		validateAllocation(&f.Allocation, fieldErrs)
	}

	docErrs := map[string]string{}
	for _, slot := range RequiredSlotsForStep(step) {
		if f.Docs[slot] == nil || f.Docs[slot].URL == "" {
			docErrs[slot] = "document upload required"
		}
	}
	return fieldErrs, docErrs
}

func validatePolicy(p *models.PolicyDetails, errs map[string]string) {
	if strings.TrimSpace(p.InsurerName) == "" {
		errs["insurer_name"] = "insurer name is required"
	}
	if strings.TrimSpace(p.PolicyNumber) == "" {
		errs["policy_number"] = "policy number is required"
	}
	if strings.TrimSpace(p.IncidentPlace) == "" {
		errs["incident_place"] = "incident place is required"
	}
	if p.IncidentDate == nil || p.IncidentDate.IsZero() {
		errs["incident_date"] = "incident date is required"
	} else if time.Time(*p.IncidentDate).After(time.Now()) {
		errs["incident_date"] = "incident date cannot be in the future"
	}
	if p.PoliceReported && strings.TrimSpace(p.PoliceReportNo) == "" {
		errs["police_report_no"] = "police report number is required when reported"
	}
}

func validateInsurer(i *models.InsurerInformation, errs map[string]string) {
	if strings.TrimSpace(i.CustomerName) == "" {
		errs["customer_name"] = "customer name is required"
	}
	if !IsValidMobile(i.CustomerPhone) {
		errs["customer_phone"] = "mobile number must be 10 digits"
	}
	if i.CustomerEmail != "" && !IsValidEmail(i.CustomerEmail) {
		errs["customer_email"] = "invalid email address"
	}
	if !IsValidVehicleNumber(i.VehicleNumber) {
		errs["vehicle_number"] = "invalid vehicle number"
	}
}

func validateWorkshop(w *models.WorkshopDetails, errs map[string]string) {
	if strings.TrimSpace(w.WorkshopName) == "" {
		errs["workshop_name"] = "workshop name is required"
	}
	if !IsValidMobile(w.ContactPhone) {
		errs["contact_phone"] = "mobile number must be 10 digits"
	}
	if w.EstimatedCost <= 0 {
		errs["estimated_cost"] = "estimated cost must be positive"
	}
}

func validateAllocation(a *models.Allocation, errs map[string]string) {
	if !IsValidPincode(a.Pincode) {
		errs["pincode"] = "pincode must be 6 digits"
	}
	if strings.TrimSpace(a.State) == "" {
		errs["state"] = "state is required"
	}
	// Handler selection is an external lookup; both the display name and
	// the user id must have been chosen.
	if strings.TrimSpace(a.HandlerName) == "" {
		errs["handler_name"] = "handler is required"
	}
	if strings.TrimSpace(a.HandlerUserID) == "" {
		errs["handler_user_id"] = "handler is required"
	}
}
