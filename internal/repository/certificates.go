package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campuscerts/cert-tracker/constants"
	"github.com/campuscerts/cert-tracker/internal/common"
	"github.com/campuscerts/cert-tracker/internal/entity"
)

// ListFilter narrows certificate listings.
type ListFilter struct {
	SubmitterAccountID string
	Status             constants.RecordStatus
}

// Statistics summarizes the certificate table for the admin dashboard.
type Statistics struct {
	Total        int64            `json:"total"`
	Drafts       int64            `json:"drafts"`
	Submitted    int64            `json:"submitted"`
	ByLevel      map[string]int64 `json:"by_level"`
	ByCategory   map[string]int64 `json:"by_category"`
	ByDepartment map[string]int64 `json:"by_department"`
	BySubmitter  map[string]int64 `json:"by_submitter"`
}

type CertificateRepository interface {
	CreateCertificate(ctx context.Context, cert *entity.Certificate) error
	GetCertificate(ctx context.Context, id uuid.UUID) (*entity.Certificate, error)
	ListCertificates(ctx context.Context, f ListFilter) ([]*entity.Certificate, error)
	UpdateStatused(ctx context.Context, cert *entity.Certificate, expect constants.RecordStatus) error
	MarkSubmitted(ctx context.Context, id uuid.UUID, at time.Time) error
	DeleteCertificate(ctx context.Context, id uuid.UUID) error
	Statistics(ctx context.Context) (*Statistics, error)
}

type certificateRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewCertificateRepository(db *gorm.DB, logger *slog.Logger) CertificateRepository {
	return &certificateRepository{db: db, logger: logger}
}

func (r *certificateRepository) CreateCertificate(ctx context.Context, cert *entity.Certificate) error {
	if err := r.db.WithContext(ctx).Create(cert).Error; err != nil {
		r.logger.Error("certificate create failed", "error", err)
		return common.WrapError(common.ErrDatabase, err.Error())
	}
	return nil
}

func (r *certificateRepository) GetCertificate(ctx context.Context, id uuid.UUID) (*entity.Certificate, error) {
	var cert entity.Certificate
	err := r.db.WithContext(ctx).First(&cert, "cert_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.WrapError(common.ErrNotFound, "certificate "+id.String())
	}
	if err != nil {
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	return &cert, nil
}

func (r *certificateRepository) ListCertificates(ctx context.Context, f ListFilter) ([]*entity.Certificate, error) {
	q := r.db.WithContext(ctx).Model(&entity.Certificate{})
	if f.SubmitterAccountID != "" {
		q = q.Where("submitter_account_id = ?", f.SubmitterAccountID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var certs []*entity.Certificate
	if err := q.Order("created_at DESC").Find(&certs).Error; err != nil {
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	return certs, nil
}

// UpdateStatused writes the record's fields guarded by the stored status.
// Zero rows affected means the guard failed, which the caller sees as a
// conflict.
func (r *certificateRepository) UpdateStatused(ctx context.Context, cert *entity.Certificate, expect constants.RecordStatus) error {
	res := r.db.WithContext(ctx).
		Model(&entity.Certificate{}).
		Where("cert_id = ? AND status = ?", cert.ID, expect).
		Updates(certFieldColumns(cert))
	if res.Error != nil {
		r.logger.Error("certificate update failed", "cert_id", cert.ID.String(), "error", res.Error)
		return common.WrapError(common.ErrDatabase, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return common.WrapError(common.ErrConflict, "certificate "+cert.ID.String())
	}
	return nil
}

// MarkSubmitted is the compare-and-set that makes submit exactly-once: only a
// row still in draft flips, and the loser of a race gets a conflict.
func (r *certificateRepository) MarkSubmitted(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&entity.Certificate{}).
		Where("cert_id = ? AND status = ?", id, constants.StatusDraft).
		Updates(map[string]any{
			"status":       constants.StatusSubmitted,
			"submitted_at": at,
			"updated_at":   at,
		})
	if res.Error != nil {
		r.logger.Error("certificate submit failed", "cert_id", id.String(), "error", res.Error)
		return common.WrapError(common.ErrDatabase, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return common.WrapError(common.ErrConflict, "certificate "+id.String())
	}
	return nil
}

func (r *certificateRepository) DeleteCertificate(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&entity.Certificate{}, "cert_id = ?", id)
	if res.Error != nil {
		return common.WrapError(common.ErrDatabase, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return common.WrapError(common.ErrNotFound, "certificate "+id.String())
	}
	return nil
}

func (r *certificateRepository) Statistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{
		ByLevel:      map[string]int64{},
		ByCategory:   map[string]int64{},
		ByDepartment: map[string]int64{},
		BySubmitter:  map[string]int64{},
	}
	if err := r.db.WithContext(ctx).Model(&entity.Certificate{}).Count(&stats.Total).Error; err != nil {
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	if err := r.db.WithContext(ctx).Model(&entity.Certificate{}).
		Where("status = ?", constants.StatusDraft).Count(&stats.Drafts).Error; err != nil {
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	stats.Submitted = stats.Total - stats.Drafts

	type bucket struct {
		Key   string
		Count int64
	}
	groups := []struct {
		column string
		dest   map[string]int64
	}{
		{"award_level", stats.ByLevel},
		{"award_category", stats.ByCategory},
		{"department", stats.ByDepartment},
		{"submitter_account_id", stats.BySubmitter},
	}
	for _, g := range groups {
		var rows []bucket
		err := r.db.WithContext(ctx).Model(&entity.Certificate{}).
			Select(g.column+" AS key, COUNT(*) AS count").
			Where("status = ?", constants.StatusSubmitted).
			Group(g.column).
			Scan(&rows).Error
		if err != nil {
			return nil, common.WrapError(common.ErrDatabase, err.Error())
		}
		for _, row := range rows {
			if row.Key != "" {
				g.dest[row.Key] = row.Count
			}
		}
	}
	return stats, nil
}

// certFieldColumns maps a record to the column set UpdateStatused writes.
// Status and submitted_at are deliberately absent: only MarkSubmitted moves
// them.
func certFieldColumns(cert *entity.Certificate) map[string]any {
	return map[string]any{
		"student_id":       cert.StudentID,
		"student_name":     cert.StudentName,
		"department":       cert.Department,
		"competition_name": cert.CompetitionName,
		"award_category":   cert.AwardCategory,
		"award_level":      cert.AwardLevel,
		"competition_type": cert.CompetitionType,
		"organizer":        cert.Organizer,
		"award_date":       cert.AwardDate,
		"advisor":          cert.Advisor,
		"updated_at":       cert.UpdatedAt,
	}
}
