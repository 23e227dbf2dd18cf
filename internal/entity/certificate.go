package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/campuscerts/cert-tracker/constants"
)

// Certificate is a competition-award certificate record.
// Field names and JSON tags are part of the export/report compatibility
// contract and must stay aligned with the extraction schema.
type Certificate struct {
	ID                 uuid.UUID              `json:"cert_id" gorm:"type:uuid;primaryKey;column:cert_id"`
	SubmitterAccountID string                 `json:"submitter_account_id" gorm:"index;not null"`
	SubmitterRole      constants.Role         `json:"submitter_role" gorm:"not null"`
	StudentID          string                 `json:"student_id"`
	StudentName        string                 `json:"student_name"`
	Department         string                 `json:"department"`
	CompetitionName    string                 `json:"competition_name"`
	AwardCategory      string                 `json:"award_category"`
	AwardLevel         string                 `json:"award_level"`
	CompetitionType    string                 `json:"competition_type"`
	Organizer          string                 `json:"organizer"`
	AwardDate          string                 `json:"award_date"` // YYYY-MM-DD
	Advisor            string                 `json:"advisor"`
	FilePath           string                 `json:"file_path" gorm:"not null"`
	FileID             uuid.UUID              `json:"file_id" gorm:"type:uuid;not null"`
	ExtractionMethod   string                 `json:"extraction_method"`
	Status             constants.RecordStatus `json:"status" gorm:"index;not null;default:draft"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
	SubmittedAt        *time.Time             `json:"submitted_at,omitempty"`
}

// TableName implements the gorm naming hook.
func (Certificate) TableName() string { return "certificates" }

// Field returns the named wire field's current value. Unknown names yield "".
func (c *Certificate) Field(name string) string {
	switch name {
	case constants.FieldStudentID:
		return c.StudentID
	case constants.FieldStudentName:
		return c.StudentName
	case constants.FieldDepartment:
		return c.Department
	case constants.FieldCompetitionName:
		return c.CompetitionName
	case constants.FieldAwardCategory:
		return c.AwardCategory
	case constants.FieldAwardLevel:
		return c.AwardLevel
	case constants.FieldCompetitionType:
		return c.CompetitionType
	case constants.FieldOrganizer:
		return c.Organizer
	case constants.FieldAwardDate:
		return c.AwardDate
	case constants.FieldAdvisor:
		return c.Advisor
	default:
		return ""
	}
}

// SetField assigns the named wire field. Unknown names are ignored.
func (c *Certificate) SetField(name, value string) {
	switch name {
	case constants.FieldStudentID:
		c.StudentID = value
	case constants.FieldStudentName:
		c.StudentName = value
	case constants.FieldDepartment:
		c.Department = value
	case constants.FieldCompetitionName:
		c.CompetitionName = value
	case constants.FieldAwardCategory:
		c.AwardCategory = value
	case constants.FieldAwardLevel:
		c.AwardLevel = value
	case constants.FieldCompetitionType:
		c.CompetitionType = value
	case constants.FieldOrganizer:
		c.Organizer = value
	case constants.FieldAwardDate:
		c.AwardDate = value
	case constants.FieldAdvisor:
		c.Advisor = value
	}
}
