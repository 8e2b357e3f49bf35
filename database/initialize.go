package database

import (
	"errors"

	"idcard.link/configs"
	"idcard.link/configs/configslog"
	"idcard.link/database/migrations"
	"idcard.link/database/seeders"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Initialize runs migrations and/or seeders in one transaction.
func Initialize(db *gorm.DB, migrate bool, seed bool) error {
	if !migrate && !seed {
		configslog.SLog.Info("Neither -migrate nor -seed given, nothing to do.")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		configslog.SLog.Info("Database initialization starting...")

		if migrate {
			if err := RunMigrationsInOrder(tx); err != nil {
				configslog.Log.Error("Migration failed", zap.Error(err))
				return err
			}
			configslog.SLog.Info("Migrations completed.")
		}

		if seed {
			if err := CheckAndRunSeeders(tx); err != nil {
				configslog.Log.Error("Seeding failed", zap.Error(err))
				return err
			}
			configslog.SLog.Info("Seeders completed.")
		}
		return nil
	})
}

func RunMigrationsInOrder(db *gorm.DB) error {
	steps := []struct {
		name string
		run  func(*gorm.DB) error
	}{
		{"users", migrations.MigrateUsersTable},
		{"revoked_sessions", migrations.MigrateRevokedSessionsTable},
		{"cards", migrations.MigrateCardsTables},
		{"card_audits", migrations.MigrateCardAuditsTable},
		{"candidate_registry", migrations.MigrateCandidateRegistryTable},
	}
	for _, step := range steps {
		configslog.SLog.Infof(" -> migrating %s", step.name)
		if err := step.run(db); err != nil {
			return err
		}
	}
	return nil
}

func CheckAndRunSeeders(db *gorm.DB) error {
	cfg := configs.Get()
	var errs []error
	if err := seeders.SeedSystemUser(db); err != nil {
		errs = append(errs, err)
	}
	if err := seeders.SeedCardSequences(db, cfg.SeniorPrefix, cfg.YouthPrefix); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
