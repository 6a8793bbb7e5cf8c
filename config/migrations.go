package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"p9e.in/claims/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20250812_create_auth_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Role{}, &models.User{})
			},
		},
		{
			ID: "20250812_create_claim_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Claim{}, &models.DocumentType{}, &models.ClaimDocument{})
			},
		},
		{
			ID: "20250819_claim_reference_sequence",
			Migrate: func(tx *gorm.DB) error {
				// Daily human-facing reference numbers (CLM-YYYYMMDD-XXXX)
				// draw from one sequence so two drafts saved in the same
				// instant cannot collide.
				return tx.Exec("CREATE SEQUENCE IF NOT EXISTS claim_reference_seq START 1").Error
			},
		},
		{
			ID: "20250902_add_user_verify_tokens",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.User{})
			},
		},
	})
	return m.Migrate()
}
