package entity

import (
	"time"

	"github.com/google/uuid"
)

// UploadedFile records one stored certificate upload. Created once per upload
// attempt; never mutated afterwards.
type UploadedFile struct {
	ID             uuid.UUID `json:"file_id" gorm:"type:uuid;primaryKey;column:file_id"`
	OwnerAccountID string    `json:"owner_account_id" gorm:"index;not null"`
	OriginalName   string    `json:"original_name" gorm:"not null"`
	StoredPath     string    `json:"stored_path" gorm:"not null"`
	FileExt        string    `json:"file_ext" gorm:"not null"`
	ContentHash    []byte    `json:"content_hash" gorm:"index"`
	ByteSize       int       `json:"byte_size" gorm:"not null"`
	UploadedAt     time.Time `json:"uploaded_at"`
}

// TableName implements the gorm naming hook.
func (UploadedFile) TableName() string { return "files" }
