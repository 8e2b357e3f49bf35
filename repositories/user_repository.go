package repositories

import (
	"context"
	"strings"

	"idcard.link/models"

	"gorm.io/gorm"
)

// IUserRepository web account access.
type IUserRepository interface {
	IBaseRepository[models.User]
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

type UserRepository struct {
	*BaseRepository[models.User]
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{BaseRepository: NewBaseRepository[models.User](db), db: db}
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := dbFrom(ctx, r.db).Where("LOWER(username) = ?", strings.ToLower(strings.TrimSpace(username))).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := dbFrom(ctx, r.db).Order("username ASC").Find(&users).Error
	return users, err
}

var _ IUserRepository = (*UserRepository)(nil)
