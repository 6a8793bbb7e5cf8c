// handlers/admin.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"p9e.in/claims/config"
	"p9e.in/claims/middleware"
	"p9e.in/claims/models"
)

// listParams are the shared pagination and filter query parameters of the
// grid endpoints. Filtering happens in SQL so it applies across the whole
// result set, not just the fetched page.
type listParams struct {
	Search    string
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

func parseListParams(r *http.Request) listParams {
	q := r.URL.Query()
	p := listParams{
		Search: q.Get("search"),
		Status: q.Get("status"),
		Page:   1,
		Limit:  10,
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 && v <= 100 {
		p.Limit = v
	}
	if t, err := time.Parse("2006-01-02", q.Get("startDate")); err == nil {
		p.StartDate = &t
	}
	if t, err := time.Parse("2006-01-02", q.Get("endDate")); err == nil {
		// Include the whole end day.
		end := t.Add(24*time.Hour - time.Nanosecond)
		p.EndDate = &end
	}
	return p
}

func (p listParams) offset() int {
	return (p.Page - 1) * p.Limit
}

func totalPages(total int64, limit int) int64 {
	return (total + int64(limit) - 1) / int64(limit)
}

// ListAdminUsers returns the paginated user grid for the approval screen.
func ListAdminUsers(w http.ResponseWriter, r *http.Request) {
	p := parseListParams(r)

	query := config.DB.Model(&models.User{}).Preload("RoleModel")
	if p.Status != "" {
		query = query.Where("user_status = ?", p.Status)
	}
	if p.Search != "" {
		like := "%" + p.Search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ? OR department ILIKE ?", like, like, like)
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

	var users []models.User
	if err := query.Limit(p.Limit).Offset(p.offset()).Order("created_at DESC").Find(&users).Error; err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	type adminUserOut struct {
		userPayload
		Department      string `json:"department"`
		Responsibility  string `json:"responsibility"`
		Zone            string `json:"zone"`
		Experience      int    `json:"experience"`
		RejectionReason string `json:"rejectionReason,omitempty"`
		StatusColor     string `json:"status_color"`
		CreatedAt       string `json:"created_at"`
	}
	out := make([]adminUserOut, len(users))
	for i := range users {
		u := &users[i]
		out[i] = adminUserOut{
			userPayload:     toUserPayload(u),
			Department:      u.Department,
			Responsibility:  u.Responsibility,
			Zone:            u.Zone,
			Experience:      u.Experience,
			RejectionReason: u.RejectionReason,
			StatusColor:     u.UserStatus.ColorToken(),
			CreatedAt:       u.CreatedAt.Format(time.RFC3339),
		}
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

func adminTargetUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return nil, false
	}
	var user models.User
	if err := config.DB.First(&user, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			http.Error(w, "user not found", http.StatusNotFound)
		} else {
			http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		}
		return nil, false
	}
	return &user, true
}

// ApproveUser moves a pending user to Approved.
func ApproveUser(w http.ResponseWriter, r *http.Request) {
	user, ok := adminTargetUser(w, r)
	if !ok {
		return
	}
	user.UserStatus = models.UserStatusApproved
	user.RejectionReason = ""
	user.IsActive = true
	if err := config.DB.Save(user).Error; err != nil {
		http.Error(w, "failed to approve user: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserPayload(user))
}

type rejectUserReq struct {
	Reason string `json:"reason"`
}

// RejectUser marks a user Rejected with the reason shown on their next
// login attempt.
func RejectUser(w http.ResponseWriter, r *http.Request) {
	user, ok := adminTargetUser(w, r)
	if !ok {
		return
	}
	var req rejectUserReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Reason == "" {
		http.Error(w, "reason is required", http.StatusBadRequest)
		return
	}
	user.UserStatus = models.UserStatusRejected
	user.RejectionReason = req.Reason
	if err := config.DB.Save(user).Error; err != nil {
		http.Error(w, "failed to reject user: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserPayload(user))
}

// RemoveUser deactivates an account. Admins cannot remove themselves.
func RemoveUser(w http.ResponseWriter, r *http.Request) {
	user, ok := adminTargetUser(w, r)
	if !ok {
		return
	}
	if middleware.GetUserID(r) == user.ID.String() {
		http.Error(w, "cannot remove your own account", http.StatusBadRequest)
		return
	}
	user.UserStatus = models.UserStatusRemoved
	user.IsActive = false
	if err := config.DB.Save(user).Error; err != nil {
		http.Error(w, "failed to remove user: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
