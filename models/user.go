// models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserStatus is the admin-approval state of a platform user.
type UserStatus string

const (
	UserStatusPending  UserStatus = "Pending"
	UserStatusApproved UserStatus = "Approved"
	UserStatusRejected UserStatus = "Rejected"
	UserStatusRemoved  UserStatus = "Remove"
)

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string     `gorm:"size:100;not null" json:"name"`
	Email        string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Phone        string     `gorm:"size:15" json:"phone"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	RoleID       *uuid.UUID `gorm:"type:uuid" json:"role_id"`
	RoleModel    *Role      `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Role         string     `gorm:"size:50" json:"role_name"`

	UserStatus      UserStatus `gorm:"type:varchar(20);default:'Pending';index" json:"userStatus"`
	RejectionReason string     `gorm:"type:text" json:"rejectionReason,omitempty"`

	// Profile-completion fields, filled after registration.
	Department     string `gorm:"size:100" json:"department"`
	Responsibility string `gorm:"size:100" json:"responsibility"`
	Zone           string `gorm:"size:50" json:"zone"`
	Experience     int    `gorm:"default:0" json:"experience"`

	EmailVerified    bool       `gorm:"default:false" json:"email_verified"`
	VerifyToken      string     `gorm:"size:64;index" json:"-"`
	ResetToken       string     `gorm:"size:64;index" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`

	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}

// CanLogin reports whether the approval state allows issuing a token.
func (u *User) CanLogin() bool {
	return u.IsActive && u.UserStatus == UserStatusApproved
}

// Role is the catalog entry offered on the profile-completion screen.
type Role struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Label     string    `gorm:"size:100;not null" json:"label"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Role) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}

// Built-in role names.
const (
	RoleIntimationStaff = "intimation_staff"
	RoleClaimHandler    = "claim_handler"
	RoleAuditor         = "auditor"
	RoleAdmin           = "admin"
)
