package constants

// RecordStatus is the canonical status for rows in certificates.
type RecordStatus string

// Stable values (store these exact strings in DB).
const (
	StatusDraft     RecordStatus = "draft"     // editable by the submitter
	StatusSubmitted RecordStatus = "submitted" // terminal; immutable to the submitter
)

// Role identifies the kind of account interacting with the pipeline.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Account id lengths enforced at registration and reconciliation time.
const (
	StudentIDLength = 13
	TeacherIDLength = 8
)

// ValidRole reports whether s is one of the closed role set.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	default:
		return false
	}
}
