package repositories

import (
	"context"
	"errors"

	"idcard.link/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned instead of gorm.ErrRecordNotFound so services need not import gorm for it.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate wraps unique constraint violations.
var ErrDuplicate = errors.New("duplicate record")

type txKey struct{}

// WithTx stores a transaction in ctx; repositories created on the root connection
// pick it up so one service transaction spans several repositories.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func dbFrom(ctx context.Context, db *gorm.DB) *gorm.DB {
	if ctx == nil {
		ctx = context.Background()
	}
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Join(ErrDuplicate, err)
	default:
		return err
	}
}

// IBaseRepository basic CRUD shared by simple tables.
type IBaseRepository[T any] interface {
	Create(ctx context.Context, entity *T) error
	FindByID(ctx context.Context, id uint) (*T, error)
	Update(ctx context.Context, id uint, data map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	GetCount(ctx context.Context) (int64, error)
}

// BaseRepository generic implementation of IBaseRepository.
type BaseRepository[T any] struct {
	db *gorm.DB
}

func NewBaseRepository[T any](db *gorm.DB) *BaseRepository[T] {
	return &BaseRepository[T]{db: db}
}

func (r *BaseRepository[T]) Create(ctx context.Context, entity *T) error {
	return translate(dbFrom(ctx, r.db).Create(entity).Error)
}

func (r *BaseRepository[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	var entity T
	if err := dbFrom(ctx, r.db).First(&entity, id).Error; err != nil {
		return nil, translate(err)
	}
	return &entity, nil
}

func (r *BaseRepository[T]) Update(ctx context.Context, id uint, data map[string]interface{}) error {
	if len(data) == 0 {
		return nil
	}
	var entity T
	result := dbFrom(ctx, r.db).Model(&entity).Where("id = ?", id).Updates(data)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := dbFrom(ctx, r.db).Model(&entity).Where("id = ?", id).Count(&count).Error; err == nil && count == 0 {
			return ErrNotFound
		}
	}
	return nil
}

func (r *BaseRepository[T]) Delete(ctx context.Context, id uint) error {
	var entity T
	result := dbFrom(ctx, r.db).Delete(&entity, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BaseRepository[T]) GetCount(ctx context.Context) (int64, error) {
	var (
		entity T
		count  int64
	)
	err := dbFrom(ctx, r.db).Model(&entity).Count(&count).Error
	return count, translate(err)
}

var _ IBaseRepository[models.User] = (*BaseRepository[models.User])(nil)
