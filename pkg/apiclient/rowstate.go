package apiclient

import (
	"errors"
	"sync"

	"p9e.in/claims/models"
)

// RowState tracks one grid row through an optimistic update. The grid
// renders the optimistic value while Pending; Failed rows revert to the
// pre-action value and carry the error.
type RowState int

const (
	RowIdle RowState = iota
	RowPending
	RowCommitted
	RowFailed
)

func (s RowState) String() string {
	switch s {
	case RowIdle:
		return "idle"
	case RowPending:
		return "pending"
	case RowCommitted:
		return "committed"
	case RowFailed:
		return "failed"
	}
	return "unknown"
}

// ErrActionInFlight means a second action was started on a row whose
// previous action has not resolved.
var ErrActionInFlight = errors.New("apiclient: row action already in flight")

// UserRow is one admin-grid row wrapped in the optimistic state machine.
type UserRow struct {
	mu sync.Mutex

	User UserRowData

	state      RowState
	prevStatus models.UserStatus
	err        error
}

// UserRowData is the rendered content of the row.
type UserRowData struct {
	ID              string
	Name            string
	Email           string
	Status          models.UserStatus
	RejectionReason string
}

// NewUserRow wraps a fetched admin user for grid rendering.
func NewUserRow(u AdminUser) *UserRow {
	return &UserRow{
		User: UserRowData{
			ID:              u.ID,
			Name:            u.Name,
			Email:           u.Email,
			Status:          u.UserStatus,
			RejectionReason: u.RejectionReason,
		},
	}
}

// BeginStatusChange applies the optimistic status and moves the row to
// Pending. Overlapping actions on the same row are refused.
func (r *UserRow) BeginStatusChange(next models.UserStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == RowPending {
		return ErrActionInFlight
	}
	r.prevStatus = r.User.Status
	r.User.Status = next
	r.state = RowPending
	r.err = nil
	return nil
}

// Commit settles the row on the server-confirmed status.
func (r *UserRow) Commit(confirmed models.UserStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if confirmed != "" {
		r.User.Status = confirmed
	}
	r.state = RowCommitted
}

// Rollback reverts the optimistic change and records the failure so the
// grid can surface it instead of silently disagreeing with the server.
func (r *UserRow) Rollback(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.User.Status = r.prevStatus
	r.state = RowFailed
	r.err = err
}

// State returns the row's lifecycle state.
func (r *UserRow) State() RowState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Err returns the failure recorded by Rollback, if any.
func (r *UserRow) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Status returns the currently rendered status.
func (r *UserRow) Status() models.UserStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.User.Status
}
