package entity

import (
	"time"

	"github.com/campuscerts/cert-tracker/constants"
)

// User is an account row. The core only reads users: credential storage and
// session handling live in the surrounding application.
type User struct {
	AccountID  string         `json:"account_id" gorm:"primaryKey;column:account_id"`
	Name       string         `json:"name" gorm:"not null"`
	Role       constants.Role `json:"role" gorm:"not null"`
	Department string         `json:"department"`
	Email      string         `json:"email" gorm:"uniqueIndex"`
	IsActive   bool           `json:"is_active" gorm:"default:true"`
	CreatedAt  time.Time      `json:"created_at"`
}

// TableName implements the gorm naming hook.
func (User) TableName() string { return "users" }

// Identity is the read-only submitter view consumed by reconciliation.
type Identity struct {
	AccountID   string
	DisplayName string
	Role        constants.Role
	Department  string
}

// Identity projects the account fields reconciliation needs.
func (u *User) Identity() Identity {
	return Identity{
		AccountID:   u.AccountID,
		DisplayName: u.Name,
		Role:        u.Role,
		Department:  u.Department,
	}
}
