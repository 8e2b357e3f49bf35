package repositories

import (
	"context"

	"idcard.link/models"

	"gorm.io/gorm"
)

// IAuditRepository card audit trail.
type IAuditRepository interface {
	Create(ctx context.Context, entry *models.CardAudit) error
	ListForCard(ctx context.Context, variant, cardNo string, limit int) ([]models.CardAudit, error)
}

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, entry *models.CardAudit) error {
	return dbFrom(ctx, r.db).Create(entry).Error
}

func (r *AuditRepository) ListForCard(ctx context.Context, variant, cardNo string, limit int) ([]models.CardAudit, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.CardAudit
	err := dbFrom(ctx, r.db).
		Where("variant = ? AND card_no = ?", variant, cardNo).
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

var _ IAuditRepository = (*AuditRepository)(nil)
