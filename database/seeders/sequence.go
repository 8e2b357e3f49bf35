package seeders

import (
	"idcard.link/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedCardSequences makes sure every prefix has its counter row.
func SeedCardSequences(db *gorm.DB, prefixes ...string) error {
	for _, p := range prefixes {
		seq := models.CardSequence{Prefix: p}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil {
			return err
		}
	}
	return nil
}
