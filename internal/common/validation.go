package common

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/campuscerts/cert-tracker/constants"
)

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

var reDigits = regexp.MustCompile(`^\d+$`)

// ValidateAccountID checks a student or teacher account id against its
// role-specific format: 13 digits for students, 8 for teachers. Admin ids
// are free-form.
func ValidateAccountID(accountID string, role constants.Role) error {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return ValidationError{Field: "account_id", Value: accountID, Message: "is required"}
	}

	switch role {
	case constants.RoleStudent:
		if !reDigits.MatchString(accountID) || len(accountID) != constants.StudentIDLength {
			return ValidationError{
				Field:   "account_id",
				Value:   accountID,
				Message: fmt.Sprintf("student id must be %d digits", constants.StudentIDLength),
			}
		}
	case constants.RoleTeacher:
		if !reDigits.MatchString(accountID) || len(accountID) != constants.TeacherIDLength {
			return ValidationError{
				Field:   "account_id",
				Value:   accountID,
				Message: fmt.Sprintf("teacher id must be %d digits", constants.TeacherIDLength),
			}
		}
	case constants.RoleAdmin:
		// no format constraint
	default:
		return ValidationError{Field: "role", Value: string(role), Message: "unknown role"}
	}
	return nil
}

// ValidateStudentID checks the 13-digit student id format independent of who
// submitted the record.
func ValidateStudentID(studentID string) error {
	return ValidateAccountID(studentID, constants.RoleStudent)
}

// Validator collects field-level validation errors.
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{errors: make([]ValidationError, 0)}
}

// Require records an error when value is blank.
func (v *Validator) Require(fieldName, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.errors = append(v.errors, ValidationError{Field: fieldName, Value: value, Message: "is required"})
	}
	return v
}

// Check records err (if non-nil and a ValidationError) against the collection.
func (v *Validator) Check(err error) *Validator {
	if err == nil {
		return v
	}
	if ve, ok := err.(ValidationError); ok {
		v.errors = append(v.errors, ve)
	} else {
		v.errors = append(v.errors, ValidationError{Field: "", Message: err.Error()})
	}
	return v
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors
func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// Error returns a combined error, or nil when the collection is empty.
func (v *Validator) Error() error {
	if !v.HasErrors() {
		return nil
	}
	var messages []string
	for _, err := range v.errors {
		messages = append(messages, err.Error())
	}
	return fmt.Errorf("%s", strings.Join(messages, "; "))
}
