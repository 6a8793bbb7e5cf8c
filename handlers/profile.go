// handlers/profile.go
package handlers

import (
	"encoding/json"
	"net/http"

	"p9e.in/claims/config"
	"p9e.in/claims/middleware"
	"p9e.in/claims/models"
)

// GetRoles lists the active role catalog for the profile-completion
// screen.
func GetRoles(w http.ResponseWriter, r *http.Request) {
	var roles []models.Role
	if err := config.DB.Where("is_active = ?", true).Order("label").Find(&roles).Error; err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(roles)
}

type completeProfileReq struct {
	RoleID         string `json:"role_id"`
	Department     string `json:"department"`
	Responsibility string `json:"responsibility"`
	Zone           string `json:"zone"`
	Experience     int    `json:"experience"`
}

// CompleteProfile fills in the post-registration fields and picks a role.
// The user stays Pending until an admin approves.
func CompleteProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	var req completeProfileReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.RoleID == "" {
		http.Error(w, "role_id is required", http.StatusBadRequest)
		return
	}
	var role models.Role
	if err := config.DB.Where("id = ? AND is_active = ?", req.RoleID, true).First(&role).Error; err != nil {
		http.Error(w, "unknown role", http.StatusBadRequest)
		return
	}
	var u models.User
	if err := config.DB.First(&u, "id = ?", claims.UserID).Error; err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	u.RoleID = &role.ID
	u.Role = role.Name
	u.Department = req.Department
	u.Responsibility = req.Responsibility
	u.Zone = req.Zone
	u.Experience = req.Experience
	if err := config.DB.Save(&u).Error; err != nil {
		http.Error(w, "failed to update profile: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserPayload(&u))
}

// GetClaimHandlers lists approved claim handlers for the allocation
// step's handler lookup.
func GetClaimHandlers(w http.ResponseWriter, r *http.Request) {
	var handlers []models.User
	if err := config.DB.
		Where("role = ? AND user_status = ? AND is_active = ?",
			models.RoleClaimHandler, models.UserStatusApproved, true).
		Order("name").
		Find(&handlers).Error; err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]userPayload, len(handlers))
	for i := range handlers {
		out[i] = toUserPayload(&handlers[i])
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}
