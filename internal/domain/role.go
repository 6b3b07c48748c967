package domain

import "database/sql"

// Role maps to the roles table.
type Role struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`         // UNIQUE, referenced by code ("tenant", "admin", ...)
	DisplayName string         `db:"display_name"` // label shown in clients
	Description sql.NullString `db:"description"`
}

// Well known role names.
const (
	RoleAdmin        = "admin"
	RoleTenant       = "tenant"
	RoleManager      = "manager"
	RoleStaff        = "staff"
	RoleReceptionist = "receptionist"
)

// DefaultRoleName is assigned when a user is created without roles.
const DefaultRoleName = RoleTenant

// SeedRoles is the role catalog installed by migrations and seed-roles.
var SeedRoles = []Role{
	{Name: RoleAdmin, DisplayName: "Admin"},
	{Name: RoleTenant, DisplayName: "Tenant"},
	{Name: RoleManager, DisplayName: "Manager"},
	{Name: RoleStaff, DisplayName: "Staff"},
	{Name: RoleReceptionist, DisplayName: "Receptionist"},
}
