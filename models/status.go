// models/status.go
package models

// Color tokens for status dot+label rendering in the dashboard grids.
// Unrecognised statuses fall back to the default token instead of erroring.
const statusColorDefault = "grey"

var claimStatusColors = map[ClaimStatus]string{
	ClaimStatusDraft:     "amber",
	ClaimStatusSubmitted: "blue",
	ClaimStatusInReview:  "purple",
	ClaimStatusApproved:  "green",
	ClaimStatusRejected:  "red",
	ClaimStatusDeleted:   "grey",
}

var userStatusColors = map[UserStatus]string{
	UserStatusPending:  "amber",
	UserStatusApproved: "green",
	UserStatusRejected: "red",
	UserStatusRemoved:  "grey",
}

// ColorToken returns the rendering color for a claim status.
func (s ClaimStatus) ColorToken() string {
	if c, ok := claimStatusColors[s]; ok {
		return c
	}
	return statusColorDefault
}

// ColorToken returns the rendering color for a user approval status.
func (s UserStatus) ColorToken() string {
	if c, ok := userStatusColors[s]; ok {
		return c
	}
	return statusColorDefault
}
