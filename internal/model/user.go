package model

import "time"

// Role is the platform role assigned to a user.
type Role string

const (
	RoleStudent    Role = "student"
	RoleTeacher    Role = "teacher"
	RoleTechnician Role = "technician"
	RoleAdmin      Role = "admin"
)

// IsStaff reports whether the role may approve reservations and resolve issues.
func (r Role) IsStaff() bool {
	return r == RoleTechnician || r == RoleAdmin
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleTechnician, RoleAdmin:
		return true
	}
	return false
}

// Profile holds the user-facing identity of an account.
type Profile struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	FullName   string    `gorm:"size:256;not null" json:"full_name"`
	Email      string    `gorm:"uniqueIndex;size:256;not null" json:"email"`
	Department string    `gorm:"size:128" json:"department,omitempty"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

// UserRole assigns a single role to a user.
type UserRole struct {
	UserID    string    `gorm:"primaryKey;size:36" json:"user_id"`
	Role      Role      `gorm:"size:32;not null" json:"role"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
