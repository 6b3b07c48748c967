package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/andalize/proptic/internal/domain"
	"github.com/andalize/proptic/internal/events"
	"github.com/andalize/proptic/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_CreateUserDefaultsToTenant(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "  Jane@Example.COM ")

	require.NotNil(t, u.Email)
	assert.Equal(t, "jane@example.com", *u.Email)
	assert.Equal(t, "Jane Doe", u.FullName)
	assert.True(t, u.IsActive)
	assert.False(t, u.IsStaff)
	require.Len(t, u.Roles, 1)
	assert.Equal(t, domain.RoleTenant, u.Roles[0].Name)
	assert.Nil(t, u.Tenancy)
	assert.Contains(t, env.published.types(), events.UserCreated)
}

func TestUserService_EmailUniqueIgnoringCase(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "owner@example.com")

	_, err := env.svc.Users.CreateUser(context.Background(), UserInput{
		Email:          strPtr("OWNER@example.com"),
		PassportNumber: strPtr(nextPassport()),
	})
	assert.Equal(t, []string{domain.MsgEmailTaken}, fieldErrors(t, err)["email"])
}

func TestUserService_UpdateKeepsOwnEmail(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "self@example.com")

	updated, err := env.svc.Users.UpdateUser(context.Background(), u.ID, UserInput{
		Email:     strPtr("Self@Example.com"),
		FirstName: strPtr("Janet"),
	})
	require.NoError(t, err)
	assert.Equal(t, "self@example.com", *updated.Email)
	assert.Equal(t, "Janet Doe", updated.FullName)
	// untouched fields survive a partial update
	assert.Equal(t, u.PassportNumber, updated.PassportNumber)
}

func TestUserService_NationalIDLength(t *testing.T) {
	cases := []struct {
		id string
		ok bool
	}{
		{strings.Repeat("1", 11), false},
		{strings.Repeat("1", 12), true},
		{strings.Repeat("2", 18), true},
		{strings.Repeat("3", 19), false},
	}
	env := newTestEnv(t)
	for _, tc := range cases {
		_, err := env.svc.Users.CreateUser(context.Background(), UserInput{NationalID: strPtr(tc.id)})
		if tc.ok {
			assert.NoError(t, err, tc.id)
			continue
		}
		assert.Equal(t, []string{domain.MsgNationalIDLength}, fieldErrors(t, err)["national_id"], tc.id)
	}
}

func TestUserService_PassportLength(t *testing.T) {
	env := newTestEnv(t)
	for _, number := range []string{"12345678", "1234567890"} {
		_, err := env.svc.Users.CreateUser(context.Background(), UserInput{PassportNumber: strPtr(number)})
		assert.Equal(t, []string{domain.MsgPassportLength}, fieldErrors(t, err)["passport_number"], number)
	}
	_, err := env.svc.Users.CreateUser(context.Background(), UserInput{PassportNumber: strPtr("123456789")})
	assert.NoError(t, err)
}

func TestUserService_RequiresIdentityDocument(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Users.CreateUser(context.Background(), UserInput{Email: strPtr("noid@example.com")})
	assert.Equal(t, []string{domain.MsgIdentityRequired}, fieldErrors(t, err)[domain.NonFieldErrors])

	// clearing the only document on update is rejected too
	u := env.createUser(t, "doc@example.com")
	_, err = env.svc.Users.UpdateUser(context.Background(), u.ID, UserInput{PassportNumber: strPtr("")})
	assert.Equal(t, []string{domain.MsgIdentityRequired}, fieldErrors(t, err)[domain.NonFieldErrors])
}

func TestUserService_DuplicatePassport(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Users.CreateUser(context.Background(), UserInput{PassportNumber: strPtr("AB1234567")})
	require.NoError(t, err)
	_, err = env.svc.Users.CreateUser(context.Background(), UserInput{PassportNumber: strPtr("AB1234567")})
	assert.Equal(t, []string{domain.MsgPassportTaken}, fieldErrors(t, err)["passport_number"])
}

func TestUserService_ShortPassword(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Users.CreateUser(context.Background(), UserInput{
		PassportNumber: strPtr(nextPassport()),
		Password:       strPtr("short"),
	})
	assert.Equal(t, []string{domain.MsgPasswordTooShort}, fieldErrors(t, err)["password"])
}

func TestUserService_RoleIDs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin, err := env.repos.Roles.GetRoleByName(ctx, domain.RoleAdmin)
	require.NoError(t, err)

	u, err := env.svc.Users.CreateUser(ctx, UserInput{
		PassportNumber: strPtr(nextPassport()),
		RoleIDs:        []string{admin.ID},
	})
	require.NoError(t, err)
	require.Len(t, u.Roles, 1)
	assert.Equal(t, domain.RoleAdmin, u.Roles[0].Name)

	missing := "5b0c9f0e-0000-4000-8000-000000000000"
	_, err = env.svc.Users.CreateUser(ctx, UserInput{
		PassportNumber: strPtr(nextPassport()),
		RoleIDs:        []string{missing},
	})
	assert.Equal(t, []string{relatedMissing(missing)}, fieldErrors(t, err)["role_ids"])

	// an empty list resets to the default role
	u, err = env.svc.Users.UpdateUser(ctx, u.ID, UserInput{RoleIDs: []string{}})
	require.NoError(t, err)
	require.Len(t, u.Roles, 1)
	assert.Equal(t, domain.RoleTenant, u.Roles[0].Name)
}

// rolesWithoutTenant hides the tenant role from the catalog.
type rolesWithoutTenant struct {
	repository.RolesRepository
}

func (r rolesWithoutTenant) ListRoles(ctx context.Context) ([]domain.Role, error) {
	all, err := r.RolesRepository.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, role := range all {
		if role.Name != domain.RoleTenant {
			out = append(out, role)
		}
	}
	return out, nil
}

func TestUserService_DefaultRoleMissing(t *testing.T) {
	env := newTestEnv(t)
	env.repos.Roles = rolesWithoutTenant{env.repos.Roles}

	_, err := env.svc.Users.CreateUser(context.Background(), UserInput{PassportNumber: strPtr(nextPassport())})
	assert.Equal(t, []string{domain.MsgDefaultRoleMissing}, fieldErrors(t, err)["roles"])
}

func TestUserService_DeactivateKeepsUserReadable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.createUser(t, "gone@example.com")

	require.NoError(t, env.svc.Users.DeactivateUser(ctx, u.ID))

	got, err := env.svc.Users.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Contains(t, env.published.types(), events.UserDeactivated)

	err = env.svc.Users.DeactivateUser(ctx, "7d9a2b8e-1111-4111-8111-111111111111")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestUserService_UsersByRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "t1@example.com")
	env.createUser(t, "t2@example.com")

	res, err := env.svc.Users.UsersByRole(ctx, domain.RoleTenant)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTenant, res.Role)
	assert.Equal(t, 2, res.Count)
	assert.Len(t, res.Users, 2)

	res, err = env.svc.Users.UsersByRole(ctx, domain.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Count)

	_, err = env.svc.Users.UsersByRole(ctx, "janitor")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	tenants, err := env.svc.Users.ListTenants(ctx)
	require.NoError(t, err)
	assert.Len(t, tenants, 2)

	roles, err := env.svc.Users.ListRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, len(domain.SeedRoles))
}

func TestUserService_TenancyAndLoggedInUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.createProject(t, "Harbor View")
	unit := env.createUnit(t, project.ID, "A-101")

	u, err := env.svc.Users.CreateUser(ctx, UserInput{
		Email:           strPtr("resident@example.com"),
		PassportNumber:  strPtr(nextPassport()),
		PropertyProject: strPtr(project.ID),
	})
	require.NoError(t, err)
	env.createTenancy(t, u.ID, unit.ID)

	got, err := env.svc.Users.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Tenancy)
	assert.Equal(t, unit.ID, got.Tenancy.PropertyUnitID)
	assert.Equal(t, "A-101", got.Tenancy.PropertyUnitName)
	assert.Equal(t, "2024-01-01", got.Tenancy.TenancyStartDate.String())

	li, err := env.svc.Users.LoggedInUser(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, li.PropertyProject)
	assert.Equal(t, ProjectRef{ID: project.ID, Name: "Harbor View"}, *li.PropertyProject)

	other := env.createUser(t, "nohome@example.com")
	li, err = env.svc.Users.LoggedInUser(ctx, other.ID)
	require.NoError(t, err)
	assert.Nil(t, li.PropertyProject)
}

func TestUserService_UpdateProfileIgnoresRoles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin, err := env.repos.Roles.GetRoleByName(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	u := env.createUser(t, "me@example.com")

	got, err := env.svc.Users.UpdateProfile(ctx, u.ID, UserInput{
		Gender:  strPtr("female"),
		RoleIDs: []string{admin.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "female", got.Gender)
	require.Len(t, got.Roles, 1)
	assert.Equal(t, domain.RoleTenant, got.Roles[0].Name)
}

func TestUserService_CreateSuperuser(t *testing.T) {
	env := newTestEnv(t)
	u, err := env.svc.Users.CreateSuperuser(context.Background(), SuperuserInput{
		Email:          "root@example.com",
		Password:       "supersecret",
		PassportNumber: nextPassport(),
	})
	require.NoError(t, err)
	assert.True(t, u.IsStaff)
	require.Len(t, u.Roles, 1)
	assert.Equal(t, domain.RoleAdmin, u.Roles[0].Name)

	_, err = env.svc.Users.CreateSuperuser(context.Background(), SuperuserInput{Password: "supersecret", PassportNumber: nextPassport()})
	assert.Contains(t, fieldErrors(t, err), "email")
}
