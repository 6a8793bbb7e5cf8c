package routes

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"p9e.in/claims/handlers"
	"p9e.in/claims/middleware"
	"p9e.in/claims/models"
)

var adminOnly = []string{models.RoleAdmin}
var reviewRoles = []string{models.RoleAdmin, models.RoleClaimHandler}

// memberRoles is every assigned role. Users who logged in before
// completing their profile carry a token with no role; it opens only the
// profile-completion endpoints.
var memberRoles = []string{
	models.RoleAdmin, models.RoleClaimHandler,
	models.RoleIntimationStaff, models.RoleAuditor,
}

// RegisterRoutes sets up all application routes
func RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/auth/register", handlers.Register).Methods("POST")
	r.HandleFunc("/auth/login", handlers.Login).Methods("POST")
	r.HandleFunc("/auth/forgot-password", handlers.ForgotPassword).Methods("POST")
	r.HandleFunc("/auth/reset-password", handlers.ResetPassword).Methods("POST")
	r.HandleFunc("/auth/verify-email", handlers.VerifyEmail).Methods("GET")
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir("./uploads"))),
	)

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)

	api.HandleFunc("/auth/logout", handlers.Logout).Methods("POST")
	api.HandleFunc("/auth/validate-token", handlers.ValidateToken).Methods("POST")

	api.HandleFunc("/profile", handleProfile).Methods("GET")
	api.HandleFunc("/profile/complete", handlers.CompleteProfile).Methods("POST")
	api.HandleFunc("/profile/claim-handlers", handlers.GetClaimHandlers).Methods("GET")
	api.HandleFunc("/roles", handlers.GetRoles).Methods("GET")

	// Claim intimation. Requires an assigned role, so limited
	// profile-completion tokens stop here.
	intimation := api.PathPrefix("/intimation").Subrouter()
	intimation.Use(func(next http.Handler) http.Handler {
		return middleware.RequireRole(memberRoles, next)
	})
	intimation.HandleFunc("/claims", handlers.ListClaims).Methods("GET")
	intimation.HandleFunc("/claims/export", handlers.ExportClaimsToExcel).Methods("GET")
	intimation.HandleFunc("/claims/summary", handlers.ClaimsSummary).Methods("GET")
	intimation.HandleFunc("/claim/{id}", handlers.GetClaim).Methods("GET")
	intimation.HandleFunc("/draft", handlers.SaveDraft).Methods("POST")
	intimation.HandleFunc("/submit", handlers.SubmitClaim).Methods("POST")
	intimation.HandleFunc("/{id}", handlers.DeleteClaim).Methods("DELETE")
	intimation.HandleFunc("/{id}/status",
		middleware.RequireRoleFunc(reviewRoles, handlers.UpdateClaimStatus)).Methods("PATCH")

	// Document uploads
	uploads := api.PathPrefix("/uploads").Subrouter()
	uploads.Use(func(next http.Handler) http.Handler {
		return middleware.RequireRole(memberRoles, next)
	})
	uploads.HandleFunc("/users/{userId}/documents", handlers.UploadDocuments).Methods("POST")
	uploads.HandleFunc("/users/{userId}/documents/batch", handlers.UploadDocuments).Methods("POST")
	uploads.HandleFunc("/documents/{id}", handlers.GetDocument).Methods("GET")
	uploads.HandleFunc("/documents/{id}", handlers.PatchDocument).Methods("PATCH")
	uploads.HandleFunc("/documents/{id}", handlers.DeleteDocument).Methods("DELETE")
	uploads.HandleFunc("/document-types", handlers.GetDocumentTypes).Methods("GET")

	// =====================================================
	// Admin Routes (require admin role)
	// =====================================================
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(func(next http.Handler) http.Handler {
		return middleware.RequireRole(adminOnly, next)
	})
	admin.HandleFunc("/list", handlers.ListAdminUsers).Methods("GET")
	admin.HandleFunc("/approve/{id}", handlers.ApproveUser).Methods("PATCH")
	admin.HandleFunc("/reject/{id}", handlers.RejectUser).Methods("PATCH")
	admin.HandleFunc("/remove/{id}", handlers.RemoveUser).Methods("DELETE")

	return r
}

// handleProfile returns the logged-in user's profile
func handleProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	user := middleware.GetUser(r)

	response := map[string]interface{}{
		"userID":     claims.UserID,
		"name":       user.Name,
		"email":      user.Email,
		"role":       user.Role,
		"userStatus": user.UserStatus,
	}
	json.NewEncoder(w).Encode(response)
}
