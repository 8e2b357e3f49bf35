package repositories

import (
	"context"

	"idcard.link/models"
	"idcard.link/pkg/search"

	"gorm.io/gorm"
)

// ICandidateRepository read-only access to the candidate registry.
type ICandidateRepository interface {
	SearchByName(ctx context.Context, term string, limit int) ([]models.CandidateRecord, error)
}

type CandidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

func (r *CandidateRepository) SearchByName(ctx context.Context, term string, limit int) ([]models.CandidateRecord, error) {
	if limit <= 0 || limit > search.DefaultLimit {
		limit = search.DefaultLimit
	}
	var rows []models.CandidateRecord
	err := dbFrom(ctx, r.db).
		Where("LOWER(full_name) LIKE ? ESCAPE '!'", search.ContainsPattern(term)).
		Order("full_name ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

var _ ICandidateRepository = (*CandidateRepository)(nil)
