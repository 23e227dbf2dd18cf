package common

import (
	"testing"

	"github.com/campuscerts/cert-tracker/constants"
)

func TestValidateAccountID(t *testing.T) {
	tests := []struct {
		name      string
		accountID string
		role      constants.Role
		wantErr   bool
	}{
		{"student 13 digits", "2024010101001", constants.RoleStudent, false},
		{"student too short", "20240101", constants.RoleStudent, true},
		{"student non-numeric", "2024O1O1O1OO1", constants.RoleStudent, true},
		{"student 14 digits", "20240101010011", constants.RoleStudent, true},
		{"teacher 8 digits", "20240001", constants.RoleTeacher, false},
		{"teacher 13 digits", "2024010101001", constants.RoleTeacher, true},
		{"admin free-form", "admin", constants.RoleAdmin, false},
		{"empty", "", constants.RoleStudent, true},
		{"unknown role", "123", constants.Role("guest"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAccountID(tt.accountID, tt.role)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateAccountID(%q, %q) error = %v, wantErr %v", tt.accountID, tt.role, err, tt.wantErr)
			}
		})
	}
}

func TestValidatorCollectsErrors(t *testing.T) {
	v := NewValidator()
	v.Require("student_name", "  ").
		Check(ValidateAccountID("123", constants.RoleStudent)).
		Require("advisor", "王老师")

	if !v.HasErrors() {
		t.Fatal("expected validation errors")
	}
	if got := len(v.Errors()); got != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", got, v.Errors())
	}
	if v.Error() == nil {
		t.Fatal("expected combined error")
	}
}

func TestValidatorCleanPass(t *testing.T) {
	v := NewValidator()
	v.Require("student_name", "张三").Check(nil)
	if v.HasErrors() {
		t.Fatalf("unexpected errors: %v", v.Errors())
	}
	if v.Error() != nil {
		t.Fatalf("unexpected combined error: %v", v.Error())
	}
}
