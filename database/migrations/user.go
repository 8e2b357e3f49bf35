package migrations

import (
	"fmt"

	"idcard.link/configs/configslog"
	"idcard.link/models"

	"gorm.io/gorm"
)

func MigrateUsersTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating users table...")
	if err := db.AutoMigrate(&models.User{}); err != nil {
		return fmt.Errorf("users table migration failed: %w", err)
	}
	return nil
}

func MigrateRevokedSessionsTable(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.RevokedSession{}); err != nil {
		return fmt.Errorf("revoked_sessions table migration failed: %w", err)
	}
	return nil
}
