// Package ingest runs the certificate upload pipeline end to end: store the
// bytes, normalize to a canonical image, extract fields, reconcile against
// the submitter's identity and persist the resulting draft.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/campuscerts/cert-tracker/constants"
	"github.com/campuscerts/cert-tracker/internal/common"
	"github.com/campuscerts/cert-tracker/internal/entity"
	"github.com/campuscerts/cert-tracker/internal/lifecycle"
	"github.com/campuscerts/cert-tracker/internal/normalize"
	"github.com/campuscerts/cert-tracker/internal/recognize"
	"github.com/campuscerts/cert-tracker/internal/reconcile"
	"github.com/campuscerts/cert-tracker/internal/repository"
	"github.com/google/uuid"
)

// Pipeline stages, reported in IngestionError.
const (
	StageValidate  = "validate"
	StageStore     = "store"
	StageNormalize = "normalize"
	StageExtract   = "extract"
	StagePersist   = "persist"
)

// IngestionError says which stage broke and, when the upload bytes were
// already stored, which file record survived for a later retry.
type IngestionError struct {
	Stage  string
	FileID uuid.UUID
	Err    error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingest %s: %v", e.Stage, e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }

// Result is a completed ingestion: the stored file and the reconciled draft.
type Result struct {
	Certificate      *entity.Certificate `json:"certificate"`
	FileID           uuid.UUID           `json:"file_id"`
	StoredPath       string              `json:"stored_path"`
	ExtractionStatus recognize.Status    `json:"extraction_status"`
	ExtractionNotes  string              `json:"extraction_notes,omitempty"`
}

// Service wires the pipeline stages together.
type Service struct {
	users      repository.UserRepository
	files      repository.FileRepository
	store      *Store
	normalizer *normalize.Normalizer
	recognizer recognize.Recognizer
	reconciler *reconcile.Reconciler
	machine    *lifecycle.Machine
	method     string
	logger     *slog.Logger
}

func NewService(
	users repository.UserRepository,
	files repository.FileRepository,
	store *Store,
	normalizer *normalize.Normalizer,
	recognizer recognize.Recognizer,
	reconciler *reconcile.Reconciler,
	machine *lifecycle.Machine,
	method string,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if method == "" {
		method = "glm-4v"
	}
	return &Service{
		users:      users,
		files:      files,
		store:      store,
		normalizer: normalizer,
		recognizer: recognizer,
		reconciler: reconciler,
		machine:    machine,
		method:     method,
		logger:     logger,
	}
}

// Ingest processes one certificate upload for accountID. The upload bytes are
// stored before extraction, so a failed extraction leaves the file behind and
// returns an IngestionError carrying its id; nothing downstream of the failed
// stage is written.
func (s *Service) Ingest(ctx context.Context, raw []byte, originalName, declaredExt, accountID string) (*Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(declaredExt)

	user, err := s.users.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, &IngestionError{Stage: StageValidate, Err: err}
	}
	if !user.IsActive {
		return nil, &IngestionError{Stage: StageValidate,
			Err: fmt.Errorf("account %s is inactive: %w", accountID, common.ErrUnauthorized)}
	}
	if err := common.ValidateAccountID(accountID, user.Role); err != nil {
		return nil, &IngestionError{Stage: StageValidate, Err: err}
	}
	if len(raw) == 0 {
		return nil, &IngestionError{Stage: StageValidate,
			Err: common.ValidationError{Field: "file", Message: "empty upload"}}
	}
	if len(raw) > constants.MaxUploadBytes {
		return nil, &IngestionError{Stage: StageValidate,
			Err: common.ValidationError{Field: "file", Message: fmt.Sprintf("upload exceeds %d bytes", constants.MaxUploadBytes)}}
	}
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return nil, &IngestionError{Stage: StageValidate,
			Err: fmt.Errorf("extension %q: %w", ext, normalize.ErrUnsupportedFormat)}
	}

	// closed uploads fail fast, before any disk or API work
	if err := s.machine.CheckDeadline(ctx); err != nil {
		return nil, &IngestionError{Stage: StageValidate, Err: err}
	}

	now := time.Now()
	storedPath, hash, err := s.store.Save(accountID, ext, raw, now)
	if err != nil {
		return nil, &IngestionError{Stage: StageStore, Err: err}
	}
	file := &entity.UploadedFile{
		ID:             uuid.New(),
		OwnerAccountID: accountID,
		OriginalName:   originalName,
		StoredPath:     storedPath,
		FileExt:        ext,
		ContentHash:    hash,
		ByteSize:       len(raw),
		UploadedAt:     now,
	}
	if err := s.files.CreateFile(ctx, file); err != nil {
		return nil, &IngestionError{Stage: StageStore, Err: err}
	}

	img, err := s.normalizer.Normalize(ctx, raw, ext)
	if err != nil {
		return nil, &IngestionError{Stage: StageNormalize, FileID: file.ID, Err: err}
	}

	res, err := s.recognizer.Extract(ctx, img)
	if err != nil {
		return nil, &IngestionError{Stage: StageExtract, FileID: file.ID, Err: err}
	}

	cert, err := s.reconciler.Reconcile(res, user.Identity(), nil)
	if err != nil {
		return nil, &IngestionError{Stage: StageExtract, FileID: file.ID, Err: err}
	}
	cert.FileID = file.ID
	cert.FilePath = storedPath
	cert.ExtractionMethod = s.method

	if err := s.machine.SaveDraft(ctx, cert); err != nil {
		return nil, &IngestionError{Stage: StagePersist, FileID: file.ID, Err: err}
	}

	s.logger.Info("ingest.ok",
		"cert_id", cert.ID.String(),
		"file_id", file.ID.String(),
		"submitter", accountID,
		"extraction_status", string(res.Status),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &Result{
		Certificate:      cert,
		FileID:           file.ID,
		StoredPath:       storedPath,
		ExtractionStatus: res.Status,
		ExtractionNotes:  res.Notes,
	}, nil
}
