package config

import (
	"gorm.io/gorm"
	"p9e.in/claims/models"
)

// SeedRoles inserts the built-in role catalog if it is not present yet.
func SeedRoles(db *gorm.DB) error {
	roles := []models.Role{
		{Name: models.RoleIntimationStaff, Label: "Claim Intimation Staff"},
		{Name: models.RoleClaimHandler, Label: "Claim Handler"},
		{Name: models.RoleAuditor, Label: "Auditor"},
		{Name: models.RoleAdmin, Label: "Administrator"},
	}
	for _, role := range roles {
		var existing models.Role
		err := db.Where("name = ?", role.Name).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			role.IsActive = true
			if err := db.Create(&role).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// documentTypeSeed mirrors wizard.Slots. The backend does not yet
// differentiate document categories beyond the slot name, so re-mapping a
// slot is a row update here rather than a code change.
type documentTypeSeed struct {
	slot     string
	label    string
	step     int
	required bool
}

var documentTypeSeeds = []documentTypeSeed{
	{"policy_copy", "Policy Copy", 0, true},
	{"intimation_form", "Intimation Form", 0, true},
	{"claims_form", "Claims Form", 0, false},
	{"vehicle_rc", "Vehicle RC", 0, false},
	{"driving_license", "Driving License", 1, true},
	{"insurance_copy", "Insurance Copy", 1, false},
	{"aadhaar", "Aadhaar Card", 1, false},
	{"pan", "PAN Card", 1, false},
	{"workshop_estimate", "Workshop Estimate", 2, true},
	{"repair_photos", "Repair Photos", 2, false},
	{"inspection_report", "Inspection Report", 2, false},
	{"other", "Other Document", 2, false},
	{"allocation_form", "Allocation Form", 3, true},
	{"surveyor_report", "Surveyor Report", 3, false},
}

// SeedDocumentTypes inserts the 14 wizard document slots.
func SeedDocumentTypes(db *gorm.DB) error {
	for _, seed := range documentTypeSeeds {
		var existing models.DocumentType
		err := db.Where("slot = ?", seed.slot).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			dt := models.DocumentType{
				Slot:     seed.slot,
				Label:    seed.label,
				Step:     seed.step,
				Required: seed.required,
				IsActive: true,
			}
			if err := db.Create(&dt).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}
