package wizard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"p9e.in/claims/models"
)

// DocumentSlot tracks one upload slot. File is the locally selected file
// name, URL and DocumentID are set only after the upload round-tripped.
type DocumentSlot struct {
	File       string `json:"file"`
	URL        string `json:"url"`
	DocumentID string `json:"document_id"`
}

// DraftPayload is the partial claim persisted on every successful Next
// and on explicit save. Sections are present only for steps reached so
// far and only when populated.
type DraftPayload struct {
	ReferenceID string                     `json:"reference_id,omitempty"`
	Policy      *models.PolicyDetails      `json:"policy_details,omitempty"`
	Insurer     *models.InsurerInformation `json:"insurer_information,omitempty"`
	Workshop    *models.WorkshopDetails    `json:"workshop_details,omitempty"`
	Allocation  *models.Allocation         `json:"allocation,omitempty"`
}

// SubmitPayload is the full claim composed at review time. All four
// sections are always present, unset optional fields keep their zero
// values rather than being omitted.
type SubmitPayload struct {
	ReferenceID  string                    `json:"reference_id"`
	Policy       models.PolicyDetails      `json:"policy_details"`
	Insurer      models.InsurerInformation `json:"insurer_information"`
	Workshop     models.WorkshopDetails    `json:"workshop_details"`
	Allocation   models.Allocation         `json:"allocation"`
	DocumentURLs map[string]string         `json:"document_urls"`
}

// DraftSaver persists a partial claim and returns the server-issued
// reference id (stable across saves of the same draft).
type DraftSaver interface {
	SaveDraft(ctx context.Context, p DraftPayload) (referenceID string, err error)
}

// Submitter finalises a claim.
type Submitter interface {
	SubmitClaim(ctx context.Context, p SubmitPayload) error
}

// ValidationError reports why a step refused to advance. Fields and Docs
// contain exactly the failing keys.
type ValidationError struct {
	Step   Step
	Fields map[string]string
	Docs   map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %s invalid: %d field error(s), %d document error(s)",
		e.Step, len(e.Fields), len(e.Docs))
}

var ErrNotAtReview = errors.New("wizard: submit requires all steps completed")

// Form is the in-memory state of one intimation wizard run. Methods are
// safe for concurrent use; overlapping draft saves keep the first
// reference id issued so a late response cannot clobber it.
type Form struct {
	mu sync.Mutex

	Step       Step
	Policy     models.PolicyDetails
	Insurer    models.InsurerInformation
	Workshop   models.WorkshopDetails
	Allocation models.Allocation
	Docs       map[string]*DocumentSlot

	referenceID string
	dirty       bool
	completed   bool // all four steps passed validation at least once

	saver     DraftSaver
	submitter Submitter
}

// NewForm starts an empty wizard run.
func NewForm(saver DraftSaver, submitter Submitter) *Form {
	docs := make(map[string]*DocumentSlot, len(Slots()))
	for _, slot := range Slots() {
		docs[slot] = &DocumentSlot{}
	}
	return &Form{Docs: docs, saver: saver, submitter: submitter}
}

// ReferenceID returns the cached server-issued reference id, if any.
func (f *Form) ReferenceID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.referenceID
}

// MarkDirty records an edit so leaving mid-wizard prompts to save.
func (f *Form) MarkDirty() {
	f.mu.Lock()
	f.dirty = true
	f.mu.Unlock()
}

// NeedsSavePrompt reports whether leaving now should show the
// discard-or-save interstitial: only mid-wizard with unsaved edits.
func (f *Form) NeedsSavePrompt() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dirty && f.Step > StepPolicy && f.Step < stepCount
}

// Next validates the current step and advances. On validation failure the
// step is unchanged and the returned error carries the exact failing
// keys. A draft is saved on every successful advance; a failed save is
// logged but never blocks navigation.
func (f *Form) Next(ctx context.Context) error {
	f.mu.Lock()
	step := f.Step
	if step >= stepCount {
		f.mu.Unlock()
		return fmt.Errorf("wizard: no step after %s", StepAllocation)
	}
	fieldErrs, docErrs := ValidateStep(step, f)
	if len(fieldErrs) > 0 || len(docErrs) > 0 {
		f.mu.Unlock()
		return &ValidationError{Step: step, Fields: fieldErrs, Docs: docErrs}
	}
	f.Step = step + 1
	if f.Step == stepCount {
		f.completed = true
	}
	f.mu.Unlock()

	if err := f.SaveDraft(ctx); err != nil {
		log.Printf("[wizard] draft save after step %s failed: %v", step, err)
	}
	return nil
}

// Back moves one step back. It never validates.
func (f *Form) Back() {
	f.mu.Lock()
	if f.Step > StepPolicy {
		f.Step--
	}
	f.mu.Unlock()
}

// DraftPayload composes the partial payload for the current progress:
// section i is included iff the wizard has reached step i and the section
// has at least one non-empty field.
func (f *Form) DraftPayload() DraftPayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draftPayloadLocked()
}

func (f *Form) draftPayloadLocked() DraftPayload {
	p := DraftPayload{ReferenceID: f.referenceID}
	if f.Step >= StepPolicy && policyPresent(&f.Policy) {
		policy := f.Policy
		p.Policy = &policy
	}
	if f.Step >= StepInsurer && insurerPresent(&f.Insurer) {
		insurer := f.Insurer
		p.Insurer = &insurer
	}
	if f.Step >= StepWorkshop && workshopPresent(&f.Workshop) {
		workshop := f.Workshop
		p.Workshop = &workshop
	}
	if f.Step >= StepAllocation && allocationPresent(&f.Allocation) {
		alloc := f.Allocation
		p.Allocation = &alloc
	}
	return p
}

// SaveDraft persists the current progress. The first successful save
// caches the server-issued reference id; later saves reuse it so the
// backend updates the same draft instead of opening a new claim.
func (f *Form) SaveDraft(ctx context.Context) error {
	if f.saver == nil {
		return errors.New("wizard: no draft saver configured")
	}
	f.mu.Lock()
	payload := f.draftPayloadLocked()
	f.mu.Unlock()

	ref, err := f.saver.SaveDraft(ctx, payload)
	if err != nil {
		return err
	}
	f.mu.Lock()
	if f.referenceID == "" {
		f.referenceID = ref
	}
	f.dirty = false
	f.mu.Unlock()
	return nil
}

// ApplyUpload records a successful round-tripped upload for a slot. It is
// called only on success; a failed upload leaves the slot untouched.
func (f *Form) ApplyUpload(slot, file, url, documentID string) error {
	if SlotStep(slot) < 0 {
		return fmt.Errorf("wizard: unknown document slot %q", slot)
	}
	if url == "" || documentID == "" {
		return fmt.Errorf("wizard: upload for %q did not return url and document id", slot)
	}
	f.mu.Lock()
	f.Docs[slot] = &DocumentSlot{File: file, URL: url, DocumentID: documentID}
	f.dirty = true
	f.mu.Unlock()
	return nil
}

// ClearSlot resets a slot to empty.
func (f *Form) ClearSlot(slot string) {
	f.mu.Lock()
	if _, ok := f.Docs[slot]; ok {
		f.Docs[slot] = &DocumentSlot{}
		f.dirty = true
	}
	f.mu.Unlock()
}

// Review composes the full submit payload. Optional fields keep zero
// values; every uploaded slot contributes its URL.
func (f *Form) Review() SubmitPayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	urls := make(map[string]string)
	for slot, doc := range f.Docs {
		if doc != nil && doc.URL != "" {
			urls[slot] = doc.URL
		}
	}
	return SubmitPayload{
		ReferenceID:  f.referenceID,
		Policy:       f.Policy,
		Insurer:      f.Insurer,
		Workshop:     f.Workshop,
		Allocation:   f.Allocation,
		DocumentURLs: urls,
	}
}

// Submit finalises the claim. A reference id is guaranteed first (via a
// last-chance draft save if none was ever assigned). Submit failures are
// returned to the caller as errors so the UI can show a distinct failure
// state with retry; they are never folded into the success path.
func (f *Form) Submit(ctx context.Context) (string, error) {
	f.mu.Lock()
	completed := f.completed
	f.mu.Unlock()
	if !completed {
		return "", ErrNotAtReview
	}

	if f.ReferenceID() == "" {
		if err := f.SaveDraft(ctx); err != nil {
			return "", fmt.Errorf("wizard: could not obtain reference id: %w", err)
		}
	}
	payload := f.Review()
	if f.submitter == nil {
		return "", errors.New("wizard: no submitter configured")
	}
	if err := f.submitter.SubmitClaim(ctx, payload); err != nil {
		return "", err
	}
	return payload.ReferenceID, nil
}

// Reset clears all wizard state after the success screen.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Step = StepPolicy
	f.Policy = models.PolicyDetails{}
	f.Insurer = models.InsurerInformation{}
	f.Workshop = models.WorkshopDetails{}
	f.Allocation = models.Allocation{}
	for _, slot := range Slots() {
		f.Docs[slot] = &DocumentSlot{}
	}
	f.referenceID = ""
	f.dirty = false
	f.completed = false
}

func policyPresent(p *models.PolicyDetails) bool {
	return p.InsurerName != "" || p.PolicyNumber != "" || p.ClaimNumber != "" ||
		p.IncidentPlace != "" || p.PoliceReportNo != "" ||
		(p.IncidentDate != nil && !p.IncidentDate.IsZero()) ||
		(p.PolicyStartDate != nil && !p.PolicyStartDate.IsZero()) ||
		(p.PolicyEndDate != nil && !p.PolicyEndDate.IsZero()) ||
		p.PoliceReported
}

func insurerPresent(i *models.InsurerInformation) bool {
	return i.CustomerName != "" || i.CustomerPhone != "" || i.CustomerEmail != "" ||
		i.Address != "" || i.VehicleNumber != ""
}

func workshopPresent(w *models.WorkshopDetails) bool {
	return w.WorkshopName != "" || w.ContactPerson != "" || w.ContactPhone != "" ||
		w.Address != "" || w.EstimatedCost != 0
}

func allocationPresent(a *models.Allocation) bool {
	return a.Pincode != "" || a.State != "" || a.Division != "" ||
		a.HandlerName != "" || a.HandlerUserID != "" ||
		a.CustomerPhone != "" || a.WorkshopPhone != ""
}
