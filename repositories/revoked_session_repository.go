package repositories

import (
	"context"
	"time"

	"idcard.link/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IRevokedSessionRepository logout list kept in the database.
type IRevokedSessionRepository interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type RevokedSessionRepository struct {
	db *gorm.DB
}

func NewRevokedSessionRepository(db *gorm.DB) *RevokedSessionRepository {
	return &RevokedSessionRepository{db: db}
}

func (r *RevokedSessionRepository) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	row := models.RevokedSession{JTI: jti, ExpiresAt: expiresAt}
	return dbFrom(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

func (r *RevokedSessionRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	err := dbFrom(ctx, r.db).Model(&models.RevokedSession{}).Where("jti = ?", jti).Count(&count).Error
	return count > 0, err
}

func (r *RevokedSessionRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result := dbFrom(ctx, r.db).Where("expires_at < ?", now).Delete(&models.RevokedSession{})
	return result.RowsAffected, result.Error
}

var _ IRevokedSessionRepository = (*RevokedSessionRepository)(nil)
