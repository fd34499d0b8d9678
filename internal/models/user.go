package models

import (
	"fmt"

	"gorm.io/gorm"
)

// UserRole is the coarse role assigned to an account.
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is a registered account. Users are never hard-deleted by this service.
type User struct {
	BaseModel

	Username string   `gorm:"uniqueIndex;not null;size:64" json:"username"`
	Password string   `gorm:"not null" json:"-"`
	Role     UserRole `gorm:"size:16;not null;default:USER" json:"role"`

	FirstName string `gorm:"size:128" json:"firstName"`
	LastName  string `gorm:"size:128" json:"lastName"`
}

// BeforeSave defaults an empty role to RoleUser and rejects unknown roles.
func (u *User) BeforeSave(*gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleUser
	}
	if !u.Role.Valid() {
		return fmt.Errorf("user: unknown role %q", u.Role)
	}
	return nil
}
