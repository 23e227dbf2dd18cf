// Package recognize maps a canonical certificate image to structured fields
// via an external vision-recognition capability.
package recognize

import (
	"context"
	"errors"

	"github.com/campuscerts/cert-tracker/constants"
	"github.com/campuscerts/cert-tracker/internal/normalize"
)

// Status classifies an extraction outcome. Partial is a success variant:
// the submitter completes missing fields manually downstream.
type Status string

const (
	StatusOK      Status = "ok"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// ErrExtractionFailed is the terminal, non-retried extraction failure.
// Transient faults are retried inside the client and never escape.
var ErrExtractionFailed = errors.New("extraction failed")

// CertificateFields is the normalized shape we want from the recognition
// service. Empty string means the field was absent or unreadable.
type CertificateFields struct {
	Department      string `json:"department,omitempty"`
	CompetitionName string `json:"competition_name,omitempty"`
	StudentID       string `json:"student_id,omitempty"`
	StudentName     string `json:"student_name,omitempty"`
	AwardCategory   string `json:"award_category,omitempty"`
	AwardLevel      string `json:"award_level,omitempty"`
	CompetitionType string `json:"competition_type,omitempty"`
	Organizer       string `json:"organizer,omitempty"`
	AwardDate       string `json:"award_date,omitempty"`
	Advisor         string `json:"advisor,omitempty"`
}

// AsMap returns the fields keyed by wire name, omitting unset entries.
func (f CertificateFields) AsMap() map[string]string {
	out := make(map[string]string, 10)
	set := func(k, v string) {
		if v != "" {
			out[k] = v
		}
	}
	set(constants.FieldDepartment, f.Department)
	set(constants.FieldCompetitionName, f.CompetitionName)
	set(constants.FieldStudentID, f.StudentID)
	set(constants.FieldStudentName, f.StudentName)
	set(constants.FieldAwardCategory, f.AwardCategory)
	set(constants.FieldAwardLevel, f.AwardLevel)
	set(constants.FieldCompetitionType, f.CompetitionType)
	set(constants.FieldOrganizer, f.Organizer)
	set(constants.FieldAwardDate, f.AwardDate)
	set(constants.FieldAdvisor, f.Advisor)
	return out
}

// Missing lists the extraction fields with no value, in prompt order.
func (f CertificateFields) Missing() []string {
	have := f.AsMap()
	var missing []string
	for _, name := range constants.ExtractionFields {
		if _, ok := have[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Result is what a Recognizer produces. Ephemeral: consumed immediately by
// reconciliation, never persisted on its own.
type Result struct {
	Status Status
	Fields CertificateFields
	Notes  string // opaque diagnostics: unparsed remainder, sanitize drops
}

// Recognizer is the capability interface the pipeline depends on. The
// production adapter lives in recognize/glm; Fixture serves tests.
type Recognizer interface {
	Extract(ctx context.Context, img normalize.CanonicalImage) (Result, error)
}
