// handlers/analytics.go
package handlers

import (
	"encoding/json"
	"net/http"

	"p9e.in/claims/config"
	"p9e.in/claims/middleware"
	"p9e.in/claims/models"
)

type statusCount struct {
	Status models.ClaimStatus `json:"status"`
	Count  int64              `json:"count"`
	Color  string             `json:"color"`
}

// ClaimsSummary backs the dashboard analytics tabs: claim counts per
// status plus pending-user count for admins.
func ClaimsSummary(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)

	query := config.DB.Model(&models.Claim{})
	if claims.Role == models.RoleClaimHandler {
		query = query.Where("handler_id = ?", claims.UserID)
	}

	var rows []struct {
		Status models.ClaimStatus
		Count  int64
	}
	if err := query.Select("status, count(*) as count").Group("status").Scan(&rows).Error; err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	counts := make([]statusCount, len(rows))
	var total int64
	for i, row := range rows {
		counts[i] = statusCount{Status: row.Status, Count: row.Count, Color: row.Status.ColorToken()}
		total += row.Count
	}

	out := map[string]interface{}{
		"total":     total,
		"by_status": counts,
	}

	if claims.Role == models.RoleAdmin {
		var pendingUsers int64
		config.DB.Model(&models.User{}).
			Where("user_status = ?", models.UserStatusPending).
			Count(&pendingUsers)
		out["pending_users"] = pendingUsers
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}
