package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"p9e.in/claims/models"
)

// AdminUser is one row of the admin approval grid.
type AdminUser struct {
	User
	Department      string `json:"department"`
	Responsibility  string `json:"responsibility"`
	Zone            string `json:"zone"`
	Experience      int    `json:"experience"`
	RejectionReason string `json:"rejectionReason,omitempty"`
	StatusColor     string `json:"status_color"`
	CreatedAt       string `json:"created_at"`
}

// AdminUsersPage is one page of the admin user grid.
type AdminUsersPage struct {
	Data       []AdminUser `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int64       `json:"totalPages"`
}

// AdminUsers fetches one page of the user approval grid.
func (c *Client) AdminUsers(ctx context.Context, filter ClaimFilter) (*AdminUsersPage, error) {
	var page AdminUsersPage
	if err := c.call(ctx, http.MethodGet, "/api/v1/admin/list"+filter.query(), nil, &page, true); err != nil {
		return nil, err
	}
	return &page, nil
}

// ApproveUser approves a pending user.
func (c *Client) ApproveUser(ctx context.Context, userID string) (*User, error) {
	var user User
	if err := c.call(ctx, http.MethodPatch, "/api/v1/admin/approve/"+url.PathEscape(userID), nil, &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}

// RejectUser rejects a pending user with a reason.
func (c *Client) RejectUser(ctx context.Context, userID, reason string) (*User, error) {
	var user User
	body := map[string]string{"reason": reason}
	if err := c.call(ctx, http.MethodPatch, "/api/v1/admin/reject/"+url.PathEscape(userID), body, &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}

// RemoveUser deactivates a user account.
func (c *Client) RemoveUser(ctx context.Context, userID string) error {
	return c.call(ctx, http.MethodDelete, "/api/v1/admin/remove/"+url.PathEscape(userID), nil, nil, true)
}

// ApproveUserRow runs the approve action through the row state machine:
// the grid shows Approved immediately, and the change is rolled back with
// the error surfaced if the server rejects it.
func (c *Client) ApproveUserRow(ctx context.Context, row *UserRow) error {
	if err := row.BeginStatusChange(models.UserStatusApproved); err != nil {
		return err
	}
	user, err := c.ApproveUser(ctx, row.User.ID)
	if err != nil {
		row.Rollback(err)
		return err
	}
	row.Commit(user.UserStatus)
	return nil
}

// RejectUserRow is ApproveUserRow for the reject action.
func (c *Client) RejectUserRow(ctx context.Context, row *UserRow, reason string) error {
	if err := row.BeginStatusChange(models.UserStatusRejected); err != nil {
		return err
	}
	user, err := c.RejectUser(ctx, row.User.ID, reason)
	if err != nil {
		row.Rollback(err)
		return err
	}
	row.User.RejectionReason = reason
	row.Commit(user.UserStatus)
	return nil
}

// RemoveUserRow is ApproveUserRow for the remove action.
func (c *Client) RemoveUserRow(ctx context.Context, row *UserRow) error {
	if err := row.BeginStatusChange(models.UserStatusRemoved); err != nil {
		return err
	}
	if err := c.RemoveUser(ctx, row.User.ID); err != nil {
		row.Rollback(err)
		return err
	}
	row.Commit(models.UserStatusRemoved)
	return nil
}
