package apiclient

import (
	"context"
	"net/http"

	"p9e.in/claims/models"
)

// User is the session user returned by the auth endpoints.
type User struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	Phone      string            `json:"phone"`
	Role       string            `json:"role"`
	UserStatus models.UserStatus `json:"userStatus"`
}

// LoginOutcome is how the dashboard routes after a credential check.
type LoginOutcome int

const (
	// LoginOK: token stored, session established.
	LoginOK LoginOutcome = iota
	// LoginNeedsProfile: credentials fine but no role chosen yet; no token.
	LoginNeedsProfile
	// LoginPending: account awaits admin approval; no token.
	LoginPending
)

// LoginResult carries the gated login response.
type LoginResult struct {
	Outcome LoginOutcome
	User    User
}

type loginResp struct {
	Token                  string `json:"token"`
	User                   User   `json:"user"`
	NeedsProfileCompletion bool   `json:"needs_profile_completion"`
	PendingApproval        bool   `json:"pending_approval"`
}

// Login checks credentials and stores the token only when the account is
// approved and has a role. Rejected and inactive accounts surface as
// *APIError from the server.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var resp loginResp
	if err := c.call(ctx, http.MethodPost, "/auth/login", body, &resp, false); err != nil {
		return nil, err
	}
	switch {
	case resp.NeedsProfileCompletion:
		// The limited token lets the user finish their profile; the
		// caller routes to the completion screen instead of the app.
		if resp.Token != "" {
			c.SetToken(resp.Token)
		}
		return &LoginResult{Outcome: LoginNeedsProfile, User: resp.User}, nil
	case resp.PendingApproval:
		return &LoginResult{Outcome: LoginPending, User: resp.User}, nil
	}
	if resp.Token == "" || resp.User.ID == "" {
		return nil, &APIError{Status: http.StatusOK, Message: "malformed login response"}
	}
	c.SetToken(resp.Token)
	return &LoginResult{Outcome: LoginOK, User: resp.User}, nil
}

// Register creates an account; it stays Pending until approved.
func (c *Client) Register(ctx context.Context, name, email, phone, password string) error {
	body := map[string]string{"name": name, "email": email, "phone": phone, "password": password}
	return c.call(ctx, http.MethodPost, "/auth/register", body, nil, false)
}

// Logout best-effort notifies the server, then drops the session either
// way.
func (c *Client) Logout(ctx context.Context) {
	_ = c.call(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil, true)
	c.ClearSession()
}

// ForgotPassword requests a reset link.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.call(ctx, http.MethodPost, "/auth/forgot-password", map[string]string{"email": email}, nil, false)
}

// ResetPassword consumes a reset token.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"token": token, "new_password": newPassword}
	return c.call(ctx, http.MethodPost, "/auth/reset-password", body, nil, false)
}

// ValidateToken checks a persisted token on session bootstrap and returns
// the current user.
func (c *Client) ValidateToken(ctx context.Context) (*User, error) {
	var resp struct {
		Valid bool `json:"valid"`
		User  User `json:"user"`
	}
	if err := c.call(ctx, http.MethodPost, "/api/v1/auth/validate-token", nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// CompleteProfile sets the role and profile fields after registration.
func (c *Client) CompleteProfile(ctx context.Context, roleID, department, responsibility, zone string, experience int) (*User, error) {
	body := map[string]interface{}{
		"role_id":        roleID,
		"department":     department,
		"responsibility": responsibility,
		"zone":           zone,
		"experience":     experience,
	}
	var user User
	if err := c.call(ctx, http.MethodPost, "/api/v1/profile/complete", body, &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}

// Roles fetches the role catalog for the profile-completion screen.
func (c *Client) Roles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := c.call(ctx, http.MethodGet, "/api/v1/roles", nil, &roles, true); err != nil {
		return nil, err
	}
	return roles, nil
}

// ClaimHandlers lists approved handlers for the allocation step lookup.
func (c *Client) ClaimHandlers(ctx context.Context) ([]User, error) {
	var handlers []User
	if err := c.call(ctx, http.MethodGet, "/api/v1/profile/claim-handlers", nil, &handlers, true); err != nil {
		return nil, err
	}
	return handlers, nil
}
