package seeders

import (
	"errors"
	"fmt"

	"idcard.link/configs"
	"idcard.link/configs/configslog"
	"idcard.link/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedSystemUser creates the first operator account from ADMIN_USERNAME / ADMIN_PASSWORD.
// An existing account is left untouched.
func SeedSystemUser(db *gorm.DB) error {
	username := configs.GetEnv("ADMIN_USERNAME", "admin")
	password := configs.GetEnv("ADMIN_PASSWORD")
	if password == "" {
		configslog.SLog.Warn("ADMIN_PASSWORD not set, skipping system user seed")
		return nil
	}

	var existing models.User
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		configslog.SLog.Infof("System user '%s' already exists, skipping", username)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		configslog.Log.Error("System user lookup failed", zap.Error(err))
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing system user password: %w", err)
	}
	user := models.User{
		Username:     username,
		PasswordHash: string(hash),
		FullName:     configs.GetEnv("ADMIN_FULL_NAME", "System Administrator"),
		Designation:  configs.GetEnv("ADMIN_DESIGNATION", "Administrator"),
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		configslog.Log.Error("System user could not be created", zap.Error(err))
		return err
	}
	configslog.SLog.Infof("System user '%s' created (ID: %d)", username, user.ID)
	return nil
}
