// Package reconcile merges machine-extracted certificate fields with
// submitter-identity-derived fields according to role policy.
package reconcile

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/campuscerts/cert-tracker/constants"
	"github.com/campuscerts/cert-tracker/internal/common"
	"github.com/campuscerts/cert-tracker/internal/entity"
	"github.com/campuscerts/cert-tracker/internal/recognize"
)

// ErrRoleCannotSubmit rejects roles outside the closed submitter set.
var ErrRoleCannotSubmit = errors.New("role cannot submit certificates")

// FieldAuthorityError rejects an edit to a field whose value is owned by the
// submitter's identity rather than the form.
type FieldAuthorityError struct {
	Field string
	Role  constants.Role
}

func (e FieldAuthorityError) Error() string {
	return fmt.Sprintf("field %q is derived from the %s account and cannot be edited", e.Field, e.Role)
}

// authority is one role's source-of-truth table.
type authority struct {
	// identityFields are written from the submitter's account and override
	// both extraction and prior values.
	identityFields map[string]func(entity.Identity) string
}

var authorityByRole = map[constants.Role]authority{
	constants.RoleStudent: {
		identityFields: map[string]func(entity.Identity) string{
			constants.FieldStudentID:   func(id entity.Identity) string { return id.AccountID },
			constants.FieldStudentName: func(id entity.Identity) string { return id.DisplayName },
			constants.FieldDepartment:  func(id entity.Identity) string { return id.Department },
		},
	},
	constants.RoleTeacher: {
		identityFields: map[string]func(entity.Identity) string{
			constants.FieldAdvisor: func(id entity.Identity) string { return id.DisplayName },
		},
	},
}

// requiredBeforeSubmit must be non-empty before a draft may be submitted,
// regardless of the submitter's role.
var requiredBeforeSubmit = []string{
	constants.FieldStudentID,
	constants.FieldStudentName,
	constants.FieldAdvisor,
}

// Reconciler builds certificate drafts out of extraction results.
type Reconciler struct {
	logger *slog.Logger
}

// New returns a Reconciler.
func New(logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{logger: logger}
}

// Reconcile merges an extraction result with the submitter's identity into a
// draft record. When prior is non-nil the merge is an extraction re-run over
// an existing draft: a field the submitter already holds a value for is never
// overwritten by extraction, only empty fields are filled. Identity-owned
// fields always win. The returned record is in status draft; Reconcile never
// transitions status itself.
func (r *Reconciler) Reconcile(res recognize.Result, id entity.Identity, prior *entity.Certificate) (*entity.Certificate, error) {
	auth, ok := authorityByRole[id.Role]
	if !ok {
		return nil, fmt.Errorf("role %q: %w", id.Role, ErrRoleCannotSubmit)
	}

	cert := &entity.Certificate{
		SubmitterAccountID: id.AccountID,
		SubmitterRole:      id.Role,
		Status:             constants.StatusDraft,
	}
	if prior != nil {
		clone := *prior
		cert = &clone
	}

	extracted := res.Fields.AsMap()
	if date, ok := NormalizeAwardDate(extracted[constants.FieldAwardDate]); ok {
		extracted[constants.FieldAwardDate] = date
	}

	filled := 0
	for _, name := range constants.ExtractionFields {
		value, ok := extracted[name]
		if !ok {
			continue
		}
		// extraction never silently clobbers a previously confirmed value
		if cert.Field(name) != "" {
			continue
		}
		cert.SetField(name, value)
		filled++
	}

	for name, fromIdentity := range auth.identityFields {
		if v := fromIdentity(id); v != "" {
			cert.SetField(name, v)
		}
	}

	r.logger.Debug("reconcile.ok",
		"role", string(id.Role),
		"extraction_status", string(res.Status),
		"fields_filled", filled,
		"required_missing", len(RequiredMissing(cert)),
	)
	return cert, nil
}

// ApplyEdits overwrites exactly the fields the submitter changed. Fields owned
// by the submitter's identity reject edits with FieldAuthorityError; unknown
// field names are rejected outright.
func (r *Reconciler) ApplyEdits(cert *entity.Certificate, changes map[string]string) error {
	auth, ok := authorityByRole[cert.SubmitterRole]
	if !ok {
		return fmt.Errorf("role %q: %w", cert.SubmitterRole, ErrRoleCannotSubmit)
	}

	known := make(map[string]struct{}, len(constants.ExtractionFields))
	for _, name := range constants.ExtractionFields {
		known[name] = struct{}{}
	}

	for name := range changes {
		if _, ok := known[name]; !ok {
			return common.ValidationError{Field: name, Message: "unknown certificate field"}
		}
		if _, owned := auth.identityFields[name]; owned {
			return FieldAuthorityError{Field: name, Role: cert.SubmitterRole}
		}
	}

	for name, value := range changes {
		cert.SetField(name, value)
	}
	cert.UpdatedAt = time.Now()
	return nil
}

// RequiredMissing lists the fields that must be completed before submit:
// the role-independent required set, plus a format check on the student id.
func RequiredMissing(cert *entity.Certificate) []string {
	var missing []string
	for _, name := range requiredBeforeSubmit {
		if cert.Field(name) == "" {
			missing = append(missing, name)
		}
	}
	if cert.StudentID != "" {
		if err := common.ValidateStudentID(cert.StudentID); err != nil {
			missing = append(missing, constants.FieldStudentID)
		}
	}
	return missing
}
