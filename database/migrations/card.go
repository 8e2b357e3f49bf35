package migrations

import (
	"idcard.link/configs/configslog"
	"idcard.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateCardsTables(db *gorm.DB) error {
	configslog.SLog.Info("Migrating senior_cards, youth_cards & card_sequences tables...")
	err := db.AutoMigrate(&models.SeniorCard{}, &models.YouthCard{}, &models.CardSequence{})
	if err != nil {
		configslog.Log.Error("Failed to migrate card tables", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Card tables migrated successfully")
	return nil
}

func MigrateCardAuditsTable(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.CardAudit{}); err != nil {
		configslog.Log.Error("Failed to migrate card_audits table", zap.Error(err))
		return err
	}
	return nil
}
