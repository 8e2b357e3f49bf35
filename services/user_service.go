package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"idcard.link/configs/configslog"
	"idcard.link/models"
	"idcard.link/repositories"

	"go.uber.org/zap"
)

type UserServiceError string

func (e UserServiceError) Error() string { return string(e) }

const (
	ErrUserNotFound     UserServiceError = "user not found"
	ErrUserInvalidInput UserServiceError = "invalid user data"
	ErrUserUpdateFailed UserServiceError = "user could not be updated"
)

// UpdateUserInput fields an administrator may change; nil leaves a field as is.
type UpdateUserInput struct {
	FullName    *string `json:"fullName" validate:"omitempty,max=150"`
	Designation *string `json:"designation" validate:"omitempty,max=100"`
	IsActive    *bool   `json:"isActive"`
	Password    *string `json:"password" validate:"omitempty,min=8,max=72"`
}

type IUserService interface {
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id uint, in UpdateUserInput) (*models.User, error)
}

type UserService struct {
	repo repositories.IUserRepository
	auth IAuthService
}

func NewUserService(repo repositories.IUserRepository, auth IAuthService) *UserService {
	return &UserService{repo: repo, auth: auth}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) Update(ctx context.Context, id uint, in UpdateUserInput) (*models.User, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: user_id is required", ErrUserInvalidInput)
	}
	updates := map[string]interface{}{}
	if in.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*in.FullName)
	}
	if in.Designation != nil {
		updates["designation"] = strings.TrimSpace(*in.Designation)
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := s.auth.HashPassword(*in.Password)
		if err != nil {
			configslog.Log.Error("UserService.Update: hash failed", zap.Error(err))
			return nil, ErrUserUpdateFailed
		}
		updates["password_hash"] = hash
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrUserInvalidInput)
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		configslog.Log.Error("UserService.Update failed", zap.Uint("user_id", id), zap.Error(err))
		return nil, ErrUserUpdateFailed
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

var _ IUserService = (*UserService)(nil)
