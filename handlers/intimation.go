// handlers/intimation.go
package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"p9e.in/claims/config"
	"p9e.in/claims/middleware"
	"p9e.in/claims/models"
	"p9e.in/claims/pkg/wizard"
)

// nextReferenceID issues the human-facing claim reference. Draws from a
// DB sequence so concurrent draft saves cannot collide.
func nextReferenceID(tx *gorm.DB) (string, error) {
	var n int64
	if err := tx.Raw("SELECT nextval('claim_reference_seq')").Scan(&n).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("CLM-%s-%04d", time.Now().Format("20060102"), n%10000), nil
}

// SaveDraft creates or updates a draft claim. The first save for a new
// claim issues a reference id; saves carrying a known reference id update
// that draft in place instead of opening a new claim.
func SaveDraft(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	var payload wizard.DraftPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	var claim models.Claim
	if payload.ReferenceID != "" {
		if err := config.DB.Where("reference_id = ? AND created_by_id = ?", payload.ReferenceID, userID).
			First(&claim).Error; err != nil {
			http.Error(w, "draft not found", http.StatusNotFound)
			return
		}
		if claim.Status != models.ClaimStatusDraft {
			http.Error(w, "claim is no longer a draft", http.StatusConflict)
			return
		}
	} else {
		ref, err := nextReferenceID(config.DB)
		if err != nil {
			http.Error(w, "failed to issue reference id: "+err.Error(), http.StatusInternalServerError)
			return
		}
		claim = models.Claim{
			ReferenceID: ref,
			Status:      models.ClaimStatusDraft,
			CreatedByID: userID,
		}
	}

	applyDraftSections(&claim, &payload)

	if err := config.DB.Save(&claim).Error; err != nil {
		http.Error(w, "failed to save draft: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"reference_id": claim.ReferenceID,
		"id":           claim.ID,
		"status":       claim.Status,
	})
}

func applyDraftSections(claim *models.Claim, p *wizard.DraftPayload) {
	if p.Policy != nil {
		claim.Policy = *p.Policy
	}
	if p.Insurer != nil {
		claim.Insurer = *p.Insurer
	}
	if p.Workshop != nil {
		claim.Workshop = *p.Workshop
	}
	if p.Allocation != nil {
		claim.Allocated = *p.Allocation
	}
}

// SubmitClaim finalises a draft. The full payload is re-validated with
// the same step validators the wizard uses, so a tampering client cannot
// submit an incomplete claim. Failures are real errors, never folded into
// a success response.
func SubmitClaim(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	var payload wizard.SubmitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if payload.ReferenceID == "" {
		http.Error(w, "reference_id is required", http.StatusBadRequest)
		return
	}

	if errsByStep := validateSubmitPayload(&payload); len(errsByStep) > 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "claim is incomplete",
			"errors":  errsByStep,
		})
		return
	}

	var claim models.Claim
	if err := config.DB.Where("reference_id = ? AND created_by_id = ?", payload.ReferenceID, userID).
		First(&claim).Error; err != nil {
		http.Error(w, "draft not found", http.StatusNotFound)
		return
	}
	if claim.Status != models.ClaimStatusDraft {
		http.Error(w, "claim was already submitted", http.StatusConflict)
		return
	}

	claim.Policy = payload.Policy
	claim.Insurer = payload.Insurer
	claim.Workshop = payload.Workshop
	claim.Allocated = payload.Allocation
	claim.DocumentURLs = nil
	for _, slot := range wizard.Slots() {
		if url := payload.DocumentURLs[slot]; url != "" {
			claim.DocumentURLs = append(claim.DocumentURLs, url)
		}
	}
	if payload.Allocation.HandlerUserID != "" {
		if hid, err := uuid.Parse(payload.Allocation.HandlerUserID); err == nil {
			claim.HandlerID = &hid
		}
	}
	now := time.Now()
	claim.Status = models.ClaimStatusSubmitted
	claim.SubmittedAt = &now

	if err := config.DB.Save(&claim).Error; err != nil {
		http.Error(w, "failed to submit claim: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// Attach any unclaimed uploads referenced by the payload. The claim
	// itself is already submitted, so a failed attach is logged rather
	// than failing the request.
	for slot, url := range payload.DocumentURLs {
		res := config.DB.Model(&models.ClaimDocument{}).
			Where("url = ? AND uploaded_by_id = ? AND slot = ?", url, userID, slot).
			Update("claim_id", claim.ID)
		if res.Error != nil {
			log.Printf("[INTIMATION] attach %s document to %s failed: %v", slot, claim.ReferenceID, res.Error)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"reference_id": claim.ReferenceID,
		"id":           claim.ID,
		"status":       claim.Status,
		"submitted_at": claim.SubmittedAt,
	})
}

// validateSubmitPayload runs all four step validators against the
// composed payload. Returns a per-step map of failing keys, empty when
// the claim is complete.
func validateSubmitPayload(p *wizard.SubmitPayload) map[string]map[string]string {
	form := wizard.NewForm(nil, nil)
	form.Policy = p.Policy
	form.Insurer = p.Insurer
	form.Workshop = p.Workshop
	form.Allocation = p.Allocation
	for slot, url := range p.DocumentURLs {
		if wizard.SlotStep(slot) >= 0 && url != "" {
			form.Docs[slot] = &wizard.DocumentSlot{URL: url, DocumentID: "submitted"}
		}
	}

	out := map[string]map[string]string{}
	for step := wizard.StepPolicy; step <= wizard.StepAllocation; step++ {
		fieldErrs, docErrs := wizard.ValidateStep(step, form)
		merged := map[string]string{}
		for k, v := range fieldErrs {
			merged[k] = v
		}
		for k, v := range docErrs {
			merged["document:"+k] = v
		}
		if len(merged) > 0 {
			out[step.String()] = merged
		}
	}
	return out
}

// ListClaims returns the paginated claims grid. All filters are applied
// in SQL so they cover the whole result set, not just the current page.
func ListClaims(w http.ResponseWriter, r *http.Request) {
	p := parseListParams(r)
	claims := middleware.GetClaims(r)

	query := config.DB.Model(&models.Claim{}).Preload("Handler")
	// Handlers only see claims allocated to them; staff and admins see
	// everything.
	if claims.Role == models.RoleClaimHandler {
		query = query.Where("handler_id = ?", claims.UserID)
	}
	if p.Status != "" {
		query = query.Where("status = ?", p.Status)
	} else {
		query = query.Where("status <> ?", models.ClaimStatusDeleted)
	}
	if p.Search != "" {
		like := "%" + p.Search + "%"
		query = query.Where(
			"reference_id ILIKE ? OR insurer_customer_name ILIKE ? OR insurer_vehicle_number ILIKE ? OR policy_policy_number ILIKE ?",
			like, like, like, like)
	}
	if p.StartDate != nil {
		query = query.Where("created_at >= ?", *p.StartDate)
	}
	if p.EndDate != nil {
		query = query.Where("created_at <= ?", *p.EndDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		http.Error(w, "DB count error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	var rows []models.Claim
	if err := query.Limit(p.Limit).Offset(p.offset()).Order("created_at DESC").Find(&rows).Error; err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	type claimRow struct {
		models.Claim
		StatusColor string `json:"status_color"`
	}
	out := make([]claimRow, len(rows))
	for i := range rows {
		out[i] = claimRow{Claim: rows[i], StatusColor: rows[i].Status.ColorToken()}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data":       out,
		"total":      total,
		"page":       p.Page,
		"limit":      p.Limit,
		"totalPages": totalPages(total, p.Limit),
	})
}

// claimIdentifierColumn picks the lookup column for a claim path
// segment: uuid-shaped values address the primary key, anything else the
// human-facing reference id. The id column is uuid typed, so binding a
// reference string against it would fail in Postgres instead of falling
// through to the OR branch.
func claimIdentifierColumn(identifier string) string {
	if _, err := uuid.Parse(identifier); err == nil {
		return "id"
	}
	return "reference_id"
}

// canViewClaim applies the grid's visibility rule to a single claim:
// handlers see claims allocated to them (or drafts they created), every
// other role sees all.
func canViewClaim(claims *middleware.Claims, claim *models.Claim) bool {
	if claims.Role != models.RoleClaimHandler {
		return true
	}
	if claim.HandlerID != nil && claim.HandlerID.String() == claims.UserID {
		return true
	}
	return claim.CreatedByID.String() == claims.UserID
}

// GetClaim returns one claim with its documents.
func GetClaim(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	claims := middleware.GetClaims(r)

	var claim models.Claim
	if err := config.DB.Preload("Documents").Preload("Documents.DocumentType").
		Preload("Handler").Preload("CreatedBy").
		First(&claim, claimIdentifierColumn(id)+" = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			http.Error(w, "claim not found", http.StatusNotFound)
		} else {
			http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}
	// Out-of-scope claims read as absent rather than forbidden, matching
	// what the grid shows.
	if !canViewClaim(claims, &claim) {
		http.Error(w, "claim not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(claim)
}

// DeleteClaim soft deletes a claim. Drafts may be deleted by their owner,
// anything else requires the admin role.
func DeleteClaim(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	claims := middleware.GetClaims(r)

	var claim models.Claim
	if err := config.DB.First(&claim, claimIdentifierColumn(id)+" = ?", id).Error; err != nil {
		http.Error(w, "claim not found", http.StatusNotFound)
		return
	}
	owner := claim.CreatedByID.String() == claims.UserID
	if claim.Status != models.ClaimStatusDraft || !owner {
		if claims.Role != models.RoleAdmin {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
	}
	claim.Status = models.ClaimStatusDeleted
	if err := config.DB.Save(&claim).Error; err != nil {
		http.Error(w, "failed to delete claim: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := config.DB.Delete(&claim).Error; err != nil {
		http.Error(w, "failed to delete claim: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reviewStatusTransitions names the legal handler/admin moves on a
// submitted claim.
var reviewStatusTransitions = map[models.ClaimStatus][]models.ClaimStatus{
	models.ClaimStatusSubmitted: {models.ClaimStatusInReview, models.ClaimStatusRejected},
	models.ClaimStatusInReview:  {models.ClaimStatusApproved, models.ClaimStatusRejected},
}

type updateClaimStatusReq struct {
	Status models.ClaimStatus `json:"status"`
}

// UpdateClaimStatus advances a submitted claim through the review
// lifecycle. Illegal transitions are rejected.
func UpdateClaimStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req updateClaimStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	var claim models.Claim
	if err := config.DB.First(&claim, claimIdentifierColumn(id)+" = ?", id).Error; err != nil {
		http.Error(w, "claim not found", http.StatusNotFound)
		return
	}
	allowed := false
	for _, next := range reviewStatusTransitions[claim.Status] {
		if next == req.Status {
			allowed = true
			break
		}
	}
	if !allowed {
		http.Error(w, fmt.Sprintf("cannot move claim from %s to %s", claim.Status, req.Status), http.StatusConflict)
		return
	}
	claim.Status = req.Status
	if err := config.DB.Save(&claim).Error; err != nil {
		http.Error(w, "failed to update claim: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(claim)
}
