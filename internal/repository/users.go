package repository

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"github.com/campuscerts/cert-tracker/internal/common"
	"github.com/campuscerts/cert-tracker/internal/entity"
)

type UserRepository interface {
	GetByAccountID(ctx context.Context, accountID string) (*entity.User, error)
	CreateUser(ctx context.Context, u *entity.User) error
}

type userRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewUserRepository(db *gorm.DB, logger *slog.Logger) UserRepository {
	return &userRepository{db: db, logger: logger}
}

func (r *userRepository) GetByAccountID(ctx context.Context, accountID string) (*entity.User, error) {
	var u entity.User
	err := r.db.WithContext(ctx).First(&u, "account_id = ?", accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.WrapError(common.ErrNotFound, "account "+accountID)
	}
	if err != nil {
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	return &u, nil
}

func (r *userRepository) CreateUser(ctx context.Context, u *entity.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		r.logger.Error("user create failed", "account_id", u.AccountID, "error", err)
		return common.WrapError(common.ErrDatabase, err.Error())
	}
	return nil
}
