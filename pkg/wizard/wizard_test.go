package wizard

import (
	"context"
	"errors"
	"testing"

	"p9e.in/claims/models"
)

type fakeBackend struct {
	refToIssue string
	saveErr    error
	submitErr  error

	saves   []DraftPayload
	submits []SubmitPayload
}

func (f *fakeBackend) SaveDraft(_ context.Context, p DraftPayload) (string, error) {
	f.saves = append(f.saves, p)
	if f.saveErr != nil {
		return "", f.saveErr
	}
	return f.refToIssue, nil
}

func (f *fakeBackend) SubmitClaim(_ context.Context, p SubmitPayload) error {
	f.submits = append(f.submits, p)
	return f.submitErr
}

func fillStep(f *Form, step Step) {
	switch step {
	case StepPolicy:
		f.Policy = validPolicy()
		f.Docs[SlotPolicyCopy] = &DocumentSlot{File: "p.pdf", URL: "/uploads/p.pdf", DocumentID: "d1"}
		f.Docs[SlotIntimationForm] = &DocumentSlot{File: "i.pdf", URL: "/uploads/i.pdf", DocumentID: "d2"}
	case StepInsurer:
		f.Insurer = models.InsurerInformation{
			CustomerName:  "R Sharma",
			CustomerPhone: "9876543210",
			VehicleNumber: "MH12AB1234",
		}
		f.Docs[SlotDrivingLicense] = &DocumentSlot{File: "dl.jpg", URL: "/uploads/dl.jpg", DocumentID: "d3"}
	case StepWorkshop:
		f.Workshop = models.WorkshopDetails{
			WorkshopName:  "City Motors",
			ContactPhone:  "9123456780",
			EstimatedCost: 25000,
		}
		f.Docs[SlotWorkshopEstimate] = &DocumentSlot{File: "e.pdf", URL: "/uploads/e.pdf", DocumentID: "d4"}
	case StepAllocation:
		f.Allocation = models.Allocation{
			Pincode:       "400001",
			State:         "Maharashtra",
			HandlerName:   "S Patel",
			HandlerUserID: "7f9c24e5-1c3b-4d6a-9e2f-000000000001",
		}
		f.Docs[SlotAllocationForm] = &DocumentSlot{File: "a.pdf", URL: "/uploads/a.pdf", DocumentID: "d5"}
	}
}

func TestNextRejectsInvalidStep(t *testing.T) {
	backend := &fakeBackend{refToIssue: "CLM-20250830-0001"}
	f := NewForm(backend, backend)

	err := f.Next(context.Background())
	if err == nil {
		t.Fatal("Next on an empty policy step should fail")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if f.Step != StepPolicy {
		t.Errorf("step advanced to %v despite validation failure", f.Step)
	}
	if len(backend.saves) != 0 {
		t.Error("no draft should be saved on a failed Next")
	}
	if len(verr.Fields) == 0 {
		t.Error("validation error should carry failing field keys")
	}
}

func TestNextAdvancesAndSavesDraft(t *testing.T) {
	backend := &fakeBackend{refToIssue: "CLM-20250830-0001"}
	f := NewForm(backend, backend)
	fillStep(f, StepPolicy)

	if err := f.Next(context.Background()); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if f.Step != StepInsurer {
		t.Fatalf("step = %v, want %v", f.Step, StepInsurer)
	}
	if len(backend.saves) != 1 {
		t.Fatalf("saves = %d, want 1", len(backend.saves))
	}
	if f.ReferenceID() != "CLM-20250830-0001" {
		t.Errorf("reference id not cached: %q", f.ReferenceID())
	}
}

func TestDraftSaveFailureDoesNotBlockNavigation(t *testing.T) {
	backend := &fakeBackend{saveErr: errors.New("network down")}
	f := NewForm(backend, backend)
	fillStep(f, StepPolicy)

	if err := f.Next(context.Background()); err != nil {
		t.Fatalf("Next should succeed despite draft-save failure, got %v", err)
	}
	if f.Step != StepInsurer {
		t.Errorf("step = %v, want %v", f.Step, StepInsurer)
	}
	if f.ReferenceID() != "" {
		t.Error("no reference id should be cached after a failed save")
	}
}

func TestDraftPayloadSectionRules(t *testing.T) {
	backend := &fakeBackend{refToIssue: "CLM-20250830-0002"}
	f := NewForm(backend, backend)

	// Step 0, nothing entered: no sections at all.
	p := f.DraftPayload()
	if p.Policy != nil || p.Insurer != nil || p.Workshop != nil || p.Allocation != nil {
		t.Errorf("empty form composed sections: %+v", p)
	}

	// Policy filled at step 0: only the policy section.
	fillStep(f, StepPolicy)
	// Insurer data typed ahead of reaching the step must not leak into
	// the payload.
	f.Insurer.CustomerName = "typed early"
	p = f.DraftPayload()
	if p.Policy == nil {
		t.Error("policy section missing at step 0 with populated fields")
	}
	if p.Insurer != nil {
		t.Error("insurer section included before step 1 was reached")
	}

	if err := f.Next(context.Background()); err != nil {
		t.Fatalf("Next: %v", err)
	}
	p = f.DraftPayload()
	if p.Insurer == nil {
		t.Error("insurer section missing at step 1 with populated fields")
	}
	if p.Workshop != nil {
		t.Error("workshop section included before step 2")
	}
}

func TestReferenceIDStableAcrossSaves(t *testing.T) {
	backend := &fakeBackend{refToIssue: "CLM-20250830-0003"}
	f := NewForm(backend, backend)
	fillStep(f, StepPolicy)

	if err := f.SaveDraft(context.Background()); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	// A later (out of order) response with a different reference must not
	// clobber the cached one.
	backend.refToIssue = "CLM-20250830-9999"
	if err := f.SaveDraft(context.Background()); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}

	if f.ReferenceID() != "CLM-20250830-0003" {
		t.Errorf("reference id = %q, want the first issued", f.ReferenceID())
	}
	if backend.saves[1].ReferenceID != "CLM-20250830-0003" {
		t.Errorf("second save sent reference %q, want the cached one", backend.saves[1].ReferenceID)
	}
}

func TestDocumentSlotTransitions(t *testing.T) {
	f := NewForm(nil, nil)

	// Success: all three fields set.
	if err := f.ApplyUpload(SlotAadhaar, "aadhaar.jpg", "/uploads/aadhaar.jpg", "doc-1"); err != nil {
		t.Fatalf("ApplyUpload: %v", err)
	}
	slot := f.Docs[SlotAadhaar]
	if slot.File != "aadhaar.jpg" || slot.URL != "/uploads/aadhaar.jpg" || slot.DocumentID != "doc-1" {
		t.Errorf("slot after upload = %+v", slot)
	}

	// Failure-shaped responses never reach the slot.
	if err := f.ApplyUpload(SlotAadhaar, "other.jpg", "", "doc-2"); err == nil {
		t.Error("ApplyUpload without URL should error")
	}
	if f.Docs[SlotAadhaar].URL != "/uploads/aadhaar.jpg" {
		t.Error("failed upload mutated the slot")
	}

	// Unknown slots are refused.
	if err := f.ApplyUpload("no_such_slot", "x", "/u/x", "d"); err == nil {
		t.Error("unknown slot should be refused")
	}

	// Clear resets all three fields.
	f.ClearSlot(SlotAadhaar)
	slot = f.Docs[SlotAadhaar]
	if slot.File != "" || slot.URL != "" || slot.DocumentID != "" {
		t.Errorf("slot after clear = %+v", slot)
	}
}

func completeWizard(t *testing.T, backend *fakeBackend) *Form {
	t.Helper()
	f := NewForm(backend, backend)
	for step := StepPolicy; step <= StepAllocation; step++ {
		fillStep(f, step)
		if err := f.Next(context.Background()); err != nil {
			t.Fatalf("Next at %v: %v", step, err)
		}
	}
	return f
}

func TestSubmitHappyPath(t *testing.T) {
	backend := &fakeBackend{refToIssue: "CLM-20250830-0004"}
	f := completeWizard(t, backend)

	ref, err := f.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if ref != "CLM-20250830-0004" {
		t.Errorf("submit returned reference %q", ref)
	}
	if len(backend.submits) != 1 {
		t.Fatalf("submits = %d, want 1", len(backend.submits))
	}
	payload := backend.submits[0]
	if payload.ReferenceID != "CLM-20250830-0004" {
		t.Errorf("submit payload reference = %q", payload.ReferenceID)
	}
	if payload.DocumentURLs[SlotPolicyCopy] == "" {
		t.Error("submit payload missing uploaded document URLs")
	}
	// Optional fields default to zero values, not omissions.
	if payload.Policy.ClaimNumber != "" {
		t.Errorf("unset claim number = %q, want empty string", payload.Policy.ClaimNumber)
	}
}

func TestSubmitFailureIsSurfaced(t *testing.T) {
	backend := &fakeBackend{refToIssue: "CLM-20250830-0005", submitErr: errors.New("backend rejected")}
	f := completeWizard(t, backend)

	if _, err := f.Submit(context.Background()); err == nil {
		t.Fatal("submit failure must be returned, not folded into success")
	}

	// Retry after the backend recovers.
	backend.submitErr = nil
	if _, err := f.Submit(context.Background()); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
}

func TestSubmitRequiresCompletedSteps(t *testing.T) {
	backend := &fakeBackend{refToIssue: "CLM-20250830-0006"}
	f := NewForm(backend, backend)
	if _, err := f.Submit(context.Background()); !errors.Is(err, ErrNotAtReview) {
		t.Fatalf("err = %v, want ErrNotAtReview", err)
	}
}

func TestSubmitCreatesLastChanceDraft(t *testing.T) {
	backend := &fakeBackend{saveErr: errors.New("flaky")}
	f := completeWizard(t, backend)
	if f.ReferenceID() != "" {
		t.Fatal("precondition: draft saves failed, no reference cached")
	}

	backend.saveErr = nil
	backend.refToIssue = "CLM-20250830-0007"
	ref, err := f.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if ref != "CLM-20250830-0007" {
		t.Errorf("last-chance draft did not assign reference, got %q", ref)
	}
}

func TestResetClearsEverything(t *testing.T) {
	backend := &fakeBackend{refToIssue: "CLM-20250830-0008"}
	f := completeWizard(t, backend)

	f.Reset()
	if f.Step != StepPolicy || f.ReferenceID() != "" {
		t.Error("reset left step or reference id behind")
	}
	if f.Policy.InsurerName != "" || f.Allocation.HandlerUserID != "" {
		t.Error("reset left section data behind")
	}
	for slot, doc := range f.Docs {
		if doc.URL != "" || doc.File != "" || doc.DocumentID != "" {
			t.Errorf("reset left slot %s populated", slot)
		}
	}
}

func TestNeedsSavePrompt(t *testing.T) {
	backend := &fakeBackend{refToIssue: "CLM-20250830-0009"}
	f := NewForm(backend, backend)

	// First step: leaving is quiet even with edits.
	f.MarkDirty()
	if f.NeedsSavePrompt() {
		t.Error("first step should never prompt")
	}

	fillStep(f, StepPolicy)
	if err := f.Next(context.Background()); err != nil {
		t.Fatalf("Next: %v", err)
	}
	// Draft save on Next cleared the dirty flag.
	if f.NeedsSavePrompt() {
		t.Error("freshly saved step should not prompt")
	}
	f.MarkDirty()
	if !f.NeedsSavePrompt() {
		t.Error("mid-wizard with unsaved edits should prompt")
	}
}
