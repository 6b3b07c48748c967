package domain

import (
	"database/sql"
	"strings"
	"time"
)

// User maps to the users table.
type User struct {
	ID           string         `db:"id"`
	Email        sql.NullString `db:"email"`         // UNIQUE, stored lowercase
	PasswordHash sql.NullString `db:"password_hash"` // bcrypt; null means the user cannot log in

	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	Gender    string `db:"gender"`

	// At least one of these is set on every persisted user.
	NationalID     sql.NullString `db:"national_id"`     // UNIQUE
	PassportNumber sql.NullString `db:"passport_number"` // UNIQUE

	IsActive    bool `db:"is_active"`
	IsStaff     bool `db:"is_staff"`
	IsSuperuser bool `db:"is_superuser"`

	PropertyProjectID sql.NullString `db:"property_project_id"` // home project, ON DELETE SET NULL

	LastLoginAt sql.NullTime `db:"last_login_at"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`

	// Roles is loaded from user_roles; not a column.
	Roles []Role `db:"-"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return FullName(u.FirstName, u.LastName)
}

// RoleNames returns the names of the loaded roles.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// HasRole reports whether the user holds the named role.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// FullName is trim(first + " " + last).
func FullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
