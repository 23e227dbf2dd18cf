package entity

import "time"

// SystemConfig is a key/value row for process-wide settings, most importantly
// the submission deadline.
type SystemConfig struct {
	Key         string    `json:"config_key" gorm:"primaryKey;column:config_key"`
	Value       string    `json:"config_value" gorm:"not null;column:config_value"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
	UpdatedBy   string    `json:"updated_by"`
}

// TableName implements the gorm naming hook.
func (SystemConfig) TableName() string { return "system_config" }

// Config keys known to the core.
const (
	ConfigKeySubmissionDeadline = "submission_deadline"
	ConfigKeyMaxFileSize        = "max_file_size"
	ConfigKeyAPIProvider        = "api_provider"
)

// DeadlineLayout is the storage format for the submission deadline value.
const DeadlineLayout = "2006-01-02 15:04:05"
