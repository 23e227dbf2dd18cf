package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campuscerts/cert-tracker/internal/common"
	"github.com/campuscerts/cert-tracker/internal/entity"
)

type ConfigRepository interface {
	// SubmissionDeadline reads the deadline row. A missing or empty value
	// means no deadline is set and returns the zero time.
	SubmissionDeadline(ctx context.Context) (time.Time, error)
	SetSubmissionDeadline(ctx context.Context, deadline time.Time, updatedBy string) error
	GetValue(ctx context.Context, key string) (string, error)
	SetValue(ctx context.Context, key, value, updatedBy string) error
}

type configRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewConfigRepository(db *gorm.DB, logger *slog.Logger) ConfigRepository {
	return &configRepository{db: db, logger: logger}
}

func (r *configRepository) SubmissionDeadline(ctx context.Context) (time.Time, error) {
	raw, err := r.GetValue(ctx, entity.ConfigKeySubmissionDeadline)
	if errors.Is(err, common.ErrNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(entity.DeadlineLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed deadline %q: %w", raw, common.ErrInternal)
	}
	return t, nil
}

func (r *configRepository) SetSubmissionDeadline(ctx context.Context, deadline time.Time, updatedBy string) error {
	return r.SetValue(ctx, entity.ConfigKeySubmissionDeadline,
		deadline.Format(entity.DeadlineLayout), updatedBy)
}

func (r *configRepository) GetValue(ctx context.Context, key string) (string, error) {
	var row entity.SystemConfig
	err := r.db.WithContext(ctx).First(&row, "config_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", common.WrapError(common.ErrNotFound, "config key "+key)
	}
	if err != nil {
		return "", common.WrapError(common.ErrDatabase, err.Error())
	}
	return row.Value, nil
}

func (r *configRepository) SetValue(ctx context.Context, key, value, updatedBy string) error {
	row := entity.SystemConfig{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
		UpdatedBy: updatedBy,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "config_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"config_value", "updated_at", "updated_by"}),
		}).
		Create(&row).Error
	if err != nil {
		r.logger.Error("config write failed", "key", key, "error", err)
		return common.WrapError(common.ErrDatabase, err.Error())
	}
	r.logger.Info("config updated", "key", key, "updated_by", updatedBy)
	return nil
}
