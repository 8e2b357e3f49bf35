package migrations

import (
	"fmt"

	"idcard.link/models"

	"gorm.io/gorm"
)

// MigrateCandidateRegistryTable creates the lookup table. Rows are loaded by an external import.
func MigrateCandidateRegistryTable(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.CandidateRecord{}); err != nil {
		return fmt.Errorf("candidate_registry table migration failed: %w", err)
	}
	return nil
}
