package repositories

import (
	"context"

	"idcard.link/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ISequenceRepository per-prefix lock rows used to serialize identifier allocation.
type ISequenceRepository interface {
	Ensure(ctx context.Context, prefix string) error
	Lock(ctx context.Context, prefix string) (*models.CardSequence, error)
}

type SequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// Ensure inserts the lock row for prefix if it does not exist yet.
func (r *SequenceRepository) Ensure(ctx context.Context, prefix string) error {
	seq := models.CardSequence{Prefix: prefix}
	return dbFrom(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error
}

// Lock reads the row with FOR UPDATE. The lock lasts until the surrounding transaction ends.
func (r *SequenceRepository) Lock(ctx context.Context, prefix string) (*models.CardSequence, error) {
	var seq models.CardSequence
	err := dbFrom(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("prefix = ?", prefix).
		First(&seq).Error
	if err != nil {
		return nil, translate(err)
	}
	return &seq, nil
}

var _ ISequenceRepository = (*SequenceRepository)(nil)
