package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campuscerts/cert-tracker/internal/common"
	"github.com/campuscerts/cert-tracker/internal/entity"
)

type FileRepository interface {
	CreateFile(ctx context.Context, f *entity.UploadedFile) error
	GetFile(ctx context.Context, id uuid.UUID) (*entity.UploadedFile, error)
	ListByOwner(ctx context.Context, accountID string) ([]*entity.UploadedFile, error)
	DeleteFile(ctx context.Context, id uuid.UUID) error
}

type fileRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewFileRepository(db *gorm.DB, logger *slog.Logger) FileRepository {
	return &fileRepository{db: db, logger: logger}
}

func (r *fileRepository) CreateFile(ctx context.Context, f *entity.UploadedFile) error {
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		r.logger.Error("file record create failed", "error", err)
		return common.WrapError(common.ErrDatabase, err.Error())
	}
	return nil
}

func (r *fileRepository) GetFile(ctx context.Context, id uuid.UUID) (*entity.UploadedFile, error) {
	var f entity.UploadedFile
	err := r.db.WithContext(ctx).First(&f, "file_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.WrapError(common.ErrNotFound, "file "+id.String())
	}
	if err != nil {
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	return &f, nil
}

func (r *fileRepository) ListByOwner(ctx context.Context, accountID string) ([]*entity.UploadedFile, error) {
	var files []*entity.UploadedFile
	err := r.db.WithContext(ctx).
		Where("owner_account_id = ?", accountID).
		Order("uploaded_at DESC").
		Find(&files).Error
	if err != nil {
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	return files, nil
}

func (r *fileRepository) DeleteFile(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&entity.UploadedFile{}, "file_id = ?", id)
	if res.Error != nil {
		return common.WrapError(common.ErrDatabase, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return common.WrapError(common.ErrNotFound, "file "+id.String())
	}
	return nil
}
