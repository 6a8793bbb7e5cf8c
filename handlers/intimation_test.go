package handlers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"p9e.in/claims/middleware"
	"p9e.in/claims/models"
	"p9e.in/claims/pkg/wizard"
)

func completeSubmitPayload() wizard.SubmitPayload {
	incident := models.JSONTime(time.Now().Add(-48 * time.Hour))
	return wizard.SubmitPayload{
		ReferenceID: "CLM-20250830-0042",
		Policy: models.PolicyDetails{
			InsurerName:   "Acme General",
			PolicyNumber:  "POL-991",
			IncidentPlace: "Pune",
			IncidentDate:  &incident,
		},
		Insurer: models.InsurerInformation{
			CustomerName:  "R Sharma",
			CustomerPhone: "9876543210",
			VehicleNumber: "MH12AB1234",
		},
		Workshop: models.WorkshopDetails{
			WorkshopName:  "City Motors",
			ContactPhone:  "9123456780",
			EstimatedCost: 25000,
		},
		Allocation: models.Allocation{
			Pincode:       "400001",
			State:         "Maharashtra",
			HandlerName:   "S Patel",
			HandlerUserID: "7f9c24e5-1c3b-4d6a-9e2f-000000000001",
		},
		DocumentURLs: map[string]string{
			wizard.SlotPolicyCopy:       "/uploads/policy.pdf",
			wizard.SlotIntimationForm:   "/uploads/intimation.pdf",
			wizard.SlotDrivingLicense:   "/uploads/dl.jpg",
			wizard.SlotWorkshopEstimate: "/uploads/estimate.pdf",
			wizard.SlotAllocationForm:   "/uploads/allocation.pdf",
		},
	}
}

func TestValidateSubmitPayloadComplete(t *testing.T) {
	p := completeSubmitPayload()
	if errs := validateSubmitPayload(&p); len(errs) != 0 {
		t.Errorf("complete payload reported errors: %v", errs)
	}
}

func TestValidateSubmitPayloadMissingSection(t *testing.T) {
	p := completeSubmitPayload()
	p.Workshop = models.WorkshopDetails{}
	delete(p.DocumentURLs, wizard.SlotWorkshopEstimate)

	errs := validateSubmitPayload(&p)
	stepErrs, ok := errs[wizard.StepWorkshop.String()]
	if !ok {
		t.Fatalf("missing workshop section not reported, got %v", errs)
	}
	if _, ok := stepErrs["workshop_name"]; !ok {
		t.Errorf("workshop_name not flagged: %v", stepErrs)
	}
	if _, ok := stepErrs["document:"+wizard.SlotWorkshopEstimate]; !ok {
		t.Errorf("missing estimate document not flagged: %v", stepErrs)
	}
	// Other steps stay clean.
	if _, ok := errs[wizard.StepPolicy.String()]; ok {
		t.Errorf("policy step wrongly flagged: %v", errs)
	}
}

func TestValidateSubmitPayloadMissingRequiredDocument(t *testing.T) {
	p := completeSubmitPayload()
	delete(p.DocumentURLs, wizard.SlotDrivingLicense)

	errs := validateSubmitPayload(&p)
	stepErrs, ok := errs[wizard.StepInsurer.String()]
	if !ok {
		t.Fatalf("missing driving license not reported, got %v", errs)
	}
	if _, ok := stepErrs["document:"+wizard.SlotDrivingLicense]; !ok {
		t.Errorf("driving license slot not flagged: %v", stepErrs)
	}
}

func TestClaimIdentifierColumn(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		want       string
	}{
		{"uuid", "7f9c24e5-1c3b-4d6a-9e2f-000000000001", "id"},
		{"reference id", "CLM-20250830-0001", "reference_id"},
		{"arbitrary string", "not-a-uuid", "reference_id"},
		{"empty", "", "reference_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := claimIdentifierColumn(tt.identifier); got != tt.want {
				t.Errorf("claimIdentifierColumn(%q) = %q, want %q", tt.identifier, got, tt.want)
			}
		})
	}
}

func TestCanViewClaim(t *testing.T) {
	handlerID := uuid.New()
	otherID := uuid.New()
	creatorID := uuid.New()

	claim := &models.Claim{CreatedByID: creatorID, HandlerID: &handlerID}
	unallocated := &models.Claim{CreatedByID: creatorID}

	tests := []struct {
		name   string
		role   string
		userID string
		claim  *models.Claim
		want   bool
	}{
		{"admin sees all", models.RoleAdmin, otherID.String(), claim, true},
		{"staff sees all", models.RoleIntimationStaff, otherID.String(), claim, true},
		{"auditor sees all", models.RoleAuditor, otherID.String(), claim, true},
		{"allocated handler", models.RoleClaimHandler, handlerID.String(), claim, true},
		{"other handler", models.RoleClaimHandler, otherID.String(), claim, false},
		{"handler on unallocated claim", models.RoleClaimHandler, otherID.String(), unallocated, false},
		{"handler owns the draft", models.RoleClaimHandler, creatorID.String(), unallocated, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := &middleware.Claims{UserID: tt.userID, Role: tt.role}
			if got := canViewClaim(claims, tt.claim); got != tt.want {
				t.Errorf("canViewClaim(%s, %s) = %v, want %v", tt.role, tt.userID, got, tt.want)
			}
		})
	}
}

func TestReviewStatusTransitions(t *testing.T) {
	allowed := func(from, to models.ClaimStatus) bool {
		for _, next := range reviewStatusTransitions[from] {
			if next == to {
				return true
			}
		}
		return false
	}

	tests := []struct {
		from models.ClaimStatus
		to   models.ClaimStatus
		want bool
	}{
		{models.ClaimStatusSubmitted, models.ClaimStatusInReview, true},
		{models.ClaimStatusSubmitted, models.ClaimStatusRejected, true},
		{models.ClaimStatusSubmitted, models.ClaimStatusApproved, false},
		{models.ClaimStatusInReview, models.ClaimStatusApproved, true},
		{models.ClaimStatusInReview, models.ClaimStatusRejected, true},
		{models.ClaimStatusDraft, models.ClaimStatusApproved, false},
		{models.ClaimStatusApproved, models.ClaimStatusInReview, false},
		{models.ClaimStatusRejected, models.ClaimStatusApproved, false},
	}
	for _, tt := range tests {
		if got := allowed(tt.from, tt.to); got != tt.want {
			t.Errorf("transition %s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
