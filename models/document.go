// models/document.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DocumentType is one named slot of the intimation wizard. Keeping the
// slot-to-type mapping in a table means a backend re-categorisation is a
// data change, not a code change.
type DocumentType struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Slot      string    `gorm:"size:50;uniqueIndex;not null" json:"slot"`
	Label     string    `gorm:"size:100;not null" json:"label"`
	Step      int       `gorm:"not null" json:"step"`
	Required  bool      `gorm:"default:false" json:"required"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (dt *DocumentType) BeforeCreate(tx *gorm.DB) (err error) {
	if dt.ID == uuid.Nil {
		dt.ID = uuid.New()
	}
	return
}

// ClaimDocument is one uploaded file. A document becomes usable for step
// validation only once URL is non-empty, i.e. the upload round-tripped.
type ClaimDocument struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ClaimID        *uuid.UUID     `gorm:"type:uuid;index" json:"claim_id,omitempty"`
	UploadedByID   uuid.UUID      `gorm:"type:uuid;index;not null" json:"uploaded_by_id"`
	UploadedBy     *User          `gorm:"foreignKey:UploadedByID" json:"uploaded_by,omitempty"`
	DocumentTypeID uuid.UUID      `gorm:"type:uuid;not null" json:"document_type_id"`
	DocumentType   *DocumentType  `gorm:"foreignKey:DocumentTypeID" json:"document_type,omitempty"`
	Slot           string         `gorm:"size:50;index" json:"slot"`
	FileName       string         `gorm:"size:255;not null" json:"file_name"`
	FilePath       string         `gorm:"size:500;not null" json:"file_path"`
	URL            string         `gorm:"size:500;not null" json:"url"`
	FileSize       int64          `gorm:"not null" json:"file_size"`
	FileType       string         `gorm:"size:100" json:"file_type"`
	FileHash       string         `gorm:"size:64;index" json:"file_hash"`
	Metadata       datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"metadata"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (cd *ClaimDocument) BeforeCreate(tx *gorm.DB) (err error) {
	if cd.ID == uuid.Nil {
		cd.ID = uuid.New()
	}
	return
}
