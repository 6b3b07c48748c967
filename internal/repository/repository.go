package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/andalize/proptic/internal/domain"
)

// Repositories bundles every repository the services need.
type Repositories struct {
	Roles            RolesRepository
	Users            UsersRepository
	Projects         ProjectsRepository
	Units            UnitsRepository
	Tenancies        TenanciesRepository
	RentTransactions RentTransactionsRepository
	Bookings         BookingsRepository
}

// NewPostgresRepositories wires the PostgreSQL implementations on db.
func NewPostgresRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Roles:            NewPostgresRolesRepository(db),
		Users:            NewPostgresUsersRepository(db),
		Projects:         NewPostgresProjectsRepository(db),
		Units:            NewPostgresUnitsRepository(db),
		Tenancies:        NewPostgresTenanciesRepository(db),
		RentTransactions: NewPostgresRentTransactionsRepository(db),
		Bookings:         NewPostgresBookingsRepository(db),
	}
}

// RolesRepository reads the role catalog.
type RolesRepository interface {
	ListRoles(ctx context.Context) ([]domain.Role, error)
	GetRoleByName(ctx context.Context, name string) (*domain.Role, error)
	// GetRolesByIDs returns the roles that exist; missing ids are skipped.
	GetRolesByIDs(ctx context.Context, ids []string) ([]domain.Role, error)
}

// UserFilter narrows ListUsers.
type UserFilter struct {
	Role string // role name; empty means all users
}

// UsersRepository persists users and their role links. Returned users carry
// their roles.
type UsersRepository interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]*domain.User, error)
	// EmailExists matches case-insensitively; excludeID may be empty.
	EmailExists(ctx context.Context, email, excludeID string) (bool, error)
	CreateUser(ctx context.Context, user *domain.User, roleIDs []string) error
	// UpdateUser writes every column; roleIDs nil leaves role links unchanged.
	UpdateUser(ctx context.Context, user *domain.User, roleIDs []string) error
	DeactivateUser(ctx context.Context, id string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// ProjectsRepository persists property projects.
type ProjectsRepository interface {
	ListProjects(ctx context.Context, page, size int) ([]*domain.PropertyProject, int, error)
	GetProject(ctx context.Context, id string) (*domain.PropertyProject, error)
	GetProjectsByIDs(ctx context.Context, ids []string) (map[string]*domain.PropertyProject, error)
	// ProjectNameExists matches case-insensitively; excludeID may be empty.
	ProjectNameExists(ctx context.Context, name, excludeID string) (bool, error)
	CreateProject(ctx context.Context, p *domain.PropertyProject) error
	UpdateProject(ctx context.Context, p *domain.PropertyProject) error
	DeleteProject(ctx context.Context, id string) error
}

// UnitFilter narrows ListUnits.
type UnitFilter struct {
	ProjectID string
}

// UnitsRepository persists units and their image gallery. Units come back
// with PropertyProjectName filled.
type UnitsRepository interface {
	// ListUnits orders by project name then unit name. size <= 0 returns all.
	ListUnits(ctx context.Context, filter UnitFilter, page, size int) ([]*domain.PropertyUnit, int, error)
	GetUnit(ctx context.Context, id string) (*domain.PropertyUnit, error)
	GetUnitsByIDs(ctx context.Context, ids []string) (map[string]*domain.PropertyUnit, error)
	CreateUnit(ctx context.Context, u *domain.PropertyUnit) error
	UpdateUnit(ctx context.Context, u *domain.PropertyUnit) error
	DeleteUnit(ctx context.Context, id string) error

	ListImages(ctx context.Context, unitIDs []string) (map[string][]domain.PropertyUnitImage, error)
	CreateImage(ctx context.Context, img *domain.PropertyUnitImage) error
	DeleteImage(ctx context.Context, unitID, imageID string) error
}

// TenanciesRepository persists tenancies.
type TenanciesRepository interface {
	// ListTenancies returns newest first.
	ListTenancies(ctx context.Context) ([]*domain.Tenancy, error)
	GetTenancy(ctx context.Context, id string) (*domain.Tenancy, error)
	CreateTenancy(ctx context.Context, t *domain.Tenancy) error
	// UpdateTenancy never changes tenant or unit.
	UpdateTenancy(ctx context.Context, t *domain.Tenancy) error
	DeleteTenancy(ctx context.Context, id string) error

	// ActiveByUnitIDs maps unit id to its most recently created active tenancy.
	ActiveByUnitIDs(ctx context.Context, unitIDs []string) (map[string]*domain.Tenancy, error)
	// ActiveByTenantIDs maps user id to their most recently created active tenancy.
	ActiveByTenantIDs(ctx context.Context, tenantIDs []string) (map[string]*domain.Tenancy, error)
}

// RentTransactionFilter narrows ListRentTransactions.
type RentTransactionFilter struct {
	TenancyID string
}

// RentTransactionsRepository is append-only.
type RentTransactionsRepository interface {
	ListRentTransactions(ctx context.Context, filter RentTransactionFilter) ([]*domain.RentTransaction, error)
	GetRentTransaction(ctx context.Context, id string) (*domain.RentTransaction, error)
	CreateRentTransaction(ctx context.Context, tx *domain.RentTransaction) error
}

// BookingsRepository persists bookings.
type BookingsRepository interface {
	// ListBookings returns newest first.
	ListBookings(ctx context.Context) ([]*domain.Booking, error)
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	CreateBooking(ctx context.Context, b *domain.Booking) error
	UpdateBooking(ctx context.Context, b *domain.Booking) error
	DeleteBooking(ctx context.Context, id string) error
}
