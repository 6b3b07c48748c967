package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/andalize/proptic/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SeedsRoles(t *testing.T) {
	repos := NewMemoryRepositories()
	roles, err := repos.Roles.ListRoles(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, len(domain.SeedRoles))

	tenant, err := repos.Roles.GetRoleByName(context.Background(), domain.RoleTenant)
	require.NoError(t, err)
	assert.Equal(t, "Tenant", tenant.DisplayName)

	_, err = repos.Roles.GetRoleByName(context.Background(), "landlord")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemory_UserUniqueness(t *testing.T) {
	ctx := context.Background()
	repos := NewMemoryRepositories()

	a := &domain.User{IsActive: true}
	a.Email.String, a.Email.Valid = "jane@example.com", true
	a.PassportNumber.String, a.PassportNumber.Valid = "AB1234567", true
	require.NoError(t, repos.Users.CreateUser(ctx, a, nil))

	b := &domain.User{IsActive: true}
	b.Email.String, b.Email.Valid = "JANE@example.com", true
	b.NationalID.String, b.NationalID.Valid = "123456789012", true
	err := repos.Users.CreateUser(ctx, b, nil)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("email"))

	c := &domain.User{}
	c.PassportNumber.String, c.PassportNumber.Valid = "AB1234567", true
	err = repos.Users.CreateUser(ctx, c, nil)
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("passport_number"))

	exists, err := repos.Users.EmailExists(ctx, "Jane@Example.com", "")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repos.Users.EmailExists(ctx, "jane@example.com", a.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemory_DeactivateKeepsUser(t *testing.T) {
	ctx := context.Background()
	repos := NewMemoryRepositories()

	u := &domain.User{IsActive: true}
	u.NationalID.String, u.NationalID.Valid = "123456789012", true
	require.NoError(t, repos.Users.CreateUser(ctx, u, nil))
	require.NoError(t, repos.Users.DeactivateUser(ctx, u.ID))

	got, err := repos.Users.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	assert.ErrorIs(t, repos.Users.DeactivateUser(ctx, "missing"), domain.ErrNotFound)
}

func TestMemory_ListUnits_OrderedByProjectThenUnit(t *testing.T) {
	ctx := context.Background()
	repos := NewMemoryRepositories()

	zeta := &domain.PropertyProject{Name: "Zeta"}
	alpha := &domain.PropertyProject{Name: "Alpha"}
	require.NoError(t, repos.Projects.CreateProject(ctx, zeta))
	require.NoError(t, repos.Projects.CreateProject(ctx, alpha))

	for _, u := range []*domain.PropertyUnit{
		{PropertyProjectID: zeta.ID, UnitName: "A1"},
		{PropertyProjectID: alpha.ID, UnitName: "B2"},
		{PropertyProjectID: alpha.ID, UnitName: "A9"},
	} {
		require.NoError(t, repos.Units.CreateUnit(ctx, u))
	}

	items, total, err := repos.Units.ListUnits(ctx, UnitFilter{}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	got := []string{}
	for _, u := range items {
		got = append(got, u.PropertyProjectName+"/"+u.UnitName)
	}
	assert.Equal(t, []string{"Alpha/A9", "Alpha/B2", "Zeta/A1"}, got)

	page2, _, err := repos.Units.ListUnits(ctx, UnitFilter{}, 2, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, "A1", page2[0].UnitName)
}

func TestMemory_UnitChecks(t *testing.T) {
	ctx := context.Background()
	repos := NewMemoryRepositories()
	p := &domain.PropertyProject{Name: "P"}
	require.NoError(t, repos.Projects.CreateProject(ctx, p))

	var verr *domain.ValidationError
	err := repos.Units.CreateUnit(ctx, &domain.PropertyUnit{PropertyProjectID: p.ID, Price: -1})
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("price"))

	err = repos.Units.CreateUnit(ctx, &domain.PropertyUnit{PropertyProjectID: p.ID, Amenities: json.RawMessage(`[1]`)})
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("amenities"))

	err = repos.Units.CreateUnit(ctx, &domain.PropertyUnit{PropertyProjectID: "nope"})
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("property_project"))
}

func TestMemory_ImagesUniquePerUnit(t *testing.T) {
	ctx := context.Background()
	repos := NewMemoryRepositories()
	p := &domain.PropertyProject{Name: "P"}
	require.NoError(t, repos.Projects.CreateProject(ctx, p))
	u := &domain.PropertyUnit{PropertyProjectID: p.ID, UnitName: "U"}
	require.NoError(t, repos.Units.CreateUnit(ctx, u))

	require.NoError(t, repos.Units.CreateImage(ctx, &domain.PropertyUnitImage{PropertyUnitID: u.ID, Image: "a.jpg"}))
	err := repos.Units.CreateImage(ctx, &domain.PropertyUnitImage{PropertyUnitID: u.ID, Image: "a.jpg"})
	assert.True(t, domain.IsValidation(err))

	imgs, err := repos.Units.ListImages(ctx, []string{u.ID})
	require.NoError(t, err)
	require.Len(t, imgs[u.ID], 1)

	assert.ErrorIs(t, repos.Units.DeleteImage(ctx, "other-unit", imgs[u.ID][0].ID), domain.ErrNotFound)
	require.NoError(t, repos.Units.DeleteImage(ctx, u.ID, imgs[u.ID][0].ID))
}

func TestMemory_ActiveTenancy_NewestWins(t *testing.T) {
	ctx := context.Background()
	repos := NewMemoryRepositories()
	p := &domain.PropertyProject{Name: "P"}
	require.NoError(t, repos.Projects.CreateProject(ctx, p))
	unit := &domain.PropertyUnit{PropertyProjectID: p.ID, UnitName: "U"}
	require.NoError(t, repos.Units.CreateUnit(ctx, unit))
	tenant := &domain.User{}
	tenant.NationalID.String, tenant.NationalID.Valid = "123456789012", true
	require.NoError(t, repos.Users.CreateUser(ctx, tenant, nil))

	first := &domain.Tenancy{TenantID: tenant.ID, PropertyUnitID: unit.ID, Active: true}
	second := &domain.Tenancy{TenantID: tenant.ID, PropertyUnitID: unit.ID, Active: true}
	ended := &domain.Tenancy{TenantID: tenant.ID, PropertyUnitID: unit.ID, Active: false}
	require.NoError(t, repos.Tenancies.CreateTenancy(ctx, first))
	require.NoError(t, repos.Tenancies.CreateTenancy(ctx, second))
	require.NoError(t, repos.Tenancies.CreateTenancy(ctx, ended))

	byUnit, err := repos.Tenancies.ActiveByUnitIDs(ctx, []string{unit.ID})
	require.NoError(t, err)
	assert.Equal(t, second.ID, byUnit[unit.ID].ID)

	byTenant, err := repos.Tenancies.ActiveByTenantIDs(ctx, []string{tenant.ID})
	require.NoError(t, err)
	assert.Equal(t, second.ID, byTenant[tenant.ID].ID)

	list, err := repos.Tenancies.ListTenancies(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, ended.ID, list[0].ID)
}

func TestMemory_TenancyRequiresExistingUnit(t *testing.T) {
	ctx := context.Background()
	repos := NewMemoryRepositories()
	tenant := &domain.User{}
	require.NoError(t, repos.Users.CreateUser(ctx, tenant, nil))

	err := repos.Tenancies.CreateTenancy(ctx, &domain.Tenancy{TenantID: tenant.ID, PropertyUnitID: "missing"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("property_unit_id"))
}

func TestMemory_DeleteProjectCascades(t *testing.T) {
	ctx := context.Background()
	repos := NewMemoryRepositories()
	p := &domain.PropertyProject{Name: "P"}
	require.NoError(t, repos.Projects.CreateProject(ctx, p))
	unit := &domain.PropertyUnit{PropertyProjectID: p.ID, UnitName: "U"}
	require.NoError(t, repos.Units.CreateUnit(ctx, unit))
	guest := &domain.User{}
	guest.PropertyProjectID.String, guest.PropertyProjectID.Valid = p.ID, true
	require.NoError(t, repos.Users.CreateUser(ctx, guest, nil))
	require.NoError(t, repos.Bookings.CreateBooking(ctx, &domain.Booking{PropertyUnitID: unit.ID, GuestID: guest.ID}))

	require.NoError(t, repos.Projects.DeleteProject(ctx, p.ID))

	_, err := repos.Units.GetUnit(ctx, unit.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	bookings, err := repos.Bookings.ListBookings(ctx)
	require.NoError(t, err)
	assert.Empty(t, bookings)
	got, err := repos.Users.GetUser(ctx, guest.ID)
	require.NoError(t, err)
	assert.False(t, got.PropertyProjectID.Valid)
}

func TestMemory_BookingsNewestFirst(t *testing.T) {
	ctx := context.Background()
	repos := NewMemoryRepositories()
	p := &domain.PropertyProject{Name: "P"}
	require.NoError(t, repos.Projects.CreateProject(ctx, p))
	unit := &domain.PropertyUnit{PropertyProjectID: p.ID, UnitName: "U"}
	require.NoError(t, repos.Units.CreateUnit(ctx, unit))
	guest := &domain.User{}
	require.NoError(t, repos.Users.CreateUser(ctx, guest, nil))

	ids := []string{}
	for i := 0; i < 3; i++ {
		b := &domain.Booking{PropertyUnitID: unit.ID, GuestID: guest.ID}
		require.NoError(t, repos.Bookings.CreateBooking(ctx, b))
		ids = append(ids, b.ID)
	}

	list, err := repos.Bookings.ListBookings(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{list[0].ID, list[1].ID, list[2].ID})
}
