// models/claim.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ClaimStatus is the lifecycle state of an intimation.
type ClaimStatus string

const (
	ClaimStatusDraft     ClaimStatus = "draft"
	ClaimStatusSubmitted ClaimStatus = "submitted"
	ClaimStatusInReview  ClaimStatus = "in_review"
	ClaimStatusApproved  ClaimStatus = "approved"
	ClaimStatusRejected  ClaimStatus = "rejected"
	ClaimStatusDeleted   ClaimStatus = "deleted"
)

// PolicyDetails is the first wizard section of an intimation.
type PolicyDetails struct {
	InsurerName     string    `gorm:"column:insurer_name"      json:"insurer_name"`
	PolicyNumber    string    `gorm:"column:policy_number"     json:"policy_number"`
	PolicyStartDate *JSONTime `gorm:"column:policy_start_date" json:"policy_start_date,omitempty"`
	PolicyEndDate   *JSONTime `gorm:"column:policy_end_date"   json:"policy_end_date,omitempty"`
	ClaimNumber     string    `gorm:"column:claim_number"      json:"claim_number"`
	IncidentPlace   string    `gorm:"column:incident_place"    json:"incident_place"`
	IncidentDate    *JSONTime `gorm:"column:incident_date"     json:"incident_date,omitempty"`
	PoliceReported  bool      `gorm:"column:police_reported"   json:"police_reported"`
	PoliceReportNo  string    `gorm:"column:police_report_no"  json:"police_report_no"`
}

// InsurerInformation carries customer identity and vehicle fields.
type InsurerInformation struct {
	CustomerName  string `gorm:"column:customer_name"  json:"customer_name"`
	CustomerPhone string `gorm:"column:customer_phone" json:"customer_phone"`
	CustomerEmail string `gorm:"column:customer_email" json:"customer_email"`
	Address       string `gorm:"column:address"        json:"address"`
	VehicleNumber string `gorm:"column:vehicle_number" json:"vehicle_number"`
}

// WorkshopDetails carries the repairing workshop and its estimate.
type WorkshopDetails struct {
	WorkshopName  string  `gorm:"column:workshop_name"  json:"workshop_name"`
	ContactPerson string  `gorm:"column:contact_person" json:"contact_person"`
	ContactPhone  string  `gorm:"column:contact_phone"  json:"contact_phone"`
	EstimatedCost float64 `gorm:"column:estimated_cost" json:"estimated_cost"`
	Address       string  `gorm:"column:address"        json:"address"`
}

// Allocation routes the claim to a handler.
type Allocation struct {
	Pincode       string `gorm:"column:pincode"         json:"pincode"`
	State         string `gorm:"column:state"           json:"state"`
	Division      string `gorm:"column:division"        json:"division"`
	HandlerName   string `gorm:"column:handler_name"    json:"handler_name"`
	HandlerUserID string `gorm:"column:handler_user_id" json:"handler_user_id"`
	CustomerPhone string `gorm:"column:customer_phone"  json:"customer_phone"`
	WorkshopPhone string `gorm:"column:workshop_phone"  json:"workshop_phone"`
}

// Claim is one intimation record. The four wizard sections are stored as
// prefixed column groups on the same row; uploaded documents live in
// claim_documents keyed by slot.
type Claim struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	ReferenceID string      `gorm:"size:30;uniqueIndex;not null" json:"reference_id"`
	Status      ClaimStatus `gorm:"type:varchar(20);default:'draft';index" json:"status"`

	Policy    PolicyDetails      `gorm:"embedded;embeddedPrefix:policy_"   json:"policy_details"`
	Insurer   InsurerInformation `gorm:"embedded;embeddedPrefix:insurer_"  json:"insurer_information"`
	Workshop  WorkshopDetails    `gorm:"embedded;embeddedPrefix:workshop_" json:"workshop_details"`
	Allocated Allocation         `gorm:"embedded;embeddedPrefix:alloc_"    json:"allocation"`

	// Snapshot of uploaded document URLs taken at submit time so the
	// submitted payload stays readable even if a slot is later cleared.
	DocumentURLs pq.StringArray `gorm:"type:text[]" json:"document_urls"`

	CreatedByID uuid.UUID  `gorm:"type:uuid;index;not null" json:"created_by_id"`
	CreatedBy   *User      `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	HandlerID   *uuid.UUID `gorm:"type:uuid;index" json:"handler_id,omitempty"`
	Handler     *User      `gorm:"foreignKey:HandlerID" json:"handler,omitempty"`

	SubmittedAt *time.Time     `json:"submitted_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Documents []ClaimDocument `gorm:"foreignKey:ClaimID" json:"documents,omitempty"`
}

func (c *Claim) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
