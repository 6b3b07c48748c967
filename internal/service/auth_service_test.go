package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andalize/proptic/internal/config"
	"github.com/andalize/proptic/internal/domain"
	"github.com/andalize/proptic/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.Auth.Register(ctx, RegisterInput{
		Email:          strPtr("New.User@Example.com"),
		Password:       strPtr("correct-horse"),
		FirstName:      strPtr("New"),
		LastName:       strPtr("User"),
		PassportNumber: strPtr(nextPassport()),
		Role:           domain.RoleManager,
	})
	require.NoError(t, err)
	assert.Equal(t, "User created successfully", res.Message)
	assert.NotEmpty(t, res.Token)
	require.Len(t, res.User.Roles, 1)
	assert.Equal(t, domain.RoleManager, res.User.Roles[0].Name)
	assert.Contains(t, env.published.types(), events.UserRegistered)

	login, err := env.svc.Auth.Login(ctx, LoginInput{Email: " NEW.user@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.UserID)
	assert.Equal(t, "new.user@example.com", login.Email)
	assert.Equal(t, []string{domain.RoleManager}, login.Roles)

	u, err := env.svc.Auth.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, u.ID)
	assert.True(t, u.LastLoginAt.Valid)
}

func TestAuthService_RegisterUnknownRole(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Auth.Register(context.Background(), RegisterInput{
		PassportNumber: strPtr(nextPassport()),
		Role:           "landlord",
	})
	assert.Equal(t, []string{"Role 'landlord' does not exist."}, fieldErrors(t, err)["role"])
}

func TestAuthService_RegisterDefaultsToTenant(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.svc.Auth.Register(context.Background(), RegisterInput{
		Email:      strPtr("tenant@example.com"),
		NationalID: strPtr("123456789012"),
	})
	require.NoError(t, err)
	require.Len(t, res.User.Roles, 1)
	assert.Equal(t, domain.RoleTenant, res.User.Roles[0].Name)
}

func TestAuthService_LoginFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.createUser(t, "login@example.com")

	_, err := env.svc.Users.CreateUser(ctx, UserInput{
		Email:          strPtr("nopass@example.com"),
		PassportNumber: strPtr(nextPassport()),
	})
	require.NoError(t, err)

	cases := []LoginInput{
		{Email: "login@example.com", Password: "wrong-password"},
		{Email: "missing@example.com", Password: "password123"},
		{Email: "nopass@example.com", Password: ""},
	}
	for _, in := range cases {
		_, err := env.svc.Auth.Login(ctx, in)
		assert.True(t, errors.Is(err, domain.ErrInvalidCredentials), in.Email)
	}

	require.NoError(t, env.svc.Users.DeactivateUser(ctx, u.ID))
	_, err = env.svc.Auth.Login(ctx, LoginInput{Email: "login@example.com", Password: "password123"})
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))
}

func TestAuthService_LoginComparesHashOnEveryRejection(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.createUser(t, "timing@example.com")
	_, err := env.svc.Users.CreateUser(ctx, UserInput{
		Email:          strPtr("timing-nopass@example.com"),
		PassportNumber: strPtr(nextPassport()),
	})
	require.NoError(t, err)

	var compared []string
	orig := compareHashAndPassword
	compareHashAndPassword = func(hash, password []byte) error {
		compared = append(compared, string(hash))
		return orig(hash, password)
	}
	t.Cleanup(func() { compareHashAndPassword = orig })

	for _, email := range []string{"nobody@example.com", "timing-nopass@example.com"} {
		compared = nil
		_, err := env.svc.Auth.Login(ctx, LoginInput{Email: email, Password: "password123"})
		require.True(t, errors.Is(err, domain.ErrInvalidCredentials), email)
		require.Len(t, compared, 1, email)
		assert.Equal(t, decoyHash(), compared[0], email)
	}

	require.NoError(t, env.svc.Users.DeactivateUser(ctx, u.ID))
	compared = nil
	_, err = env.svc.Auth.Login(ctx, LoginInput{Email: "timing@example.com", Password: "password123"})
	require.True(t, errors.Is(err, domain.ErrInvalidCredentials))
	require.Len(t, compared, 1)
	assert.NotEqual(t, decoyHash(), compared[0])
}

func TestAuthService_AuthenticateRejectsInactiveUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "soon-gone@example.com")

	login, err := env.svc.Auth.Login(ctx, LoginInput{Email: "soon-gone@example.com", Password: "password123"})
	require.NoError(t, err)
	require.NoError(t, env.svc.Users.DeactivateUser(ctx, login.UserID))

	_, err = env.svc.Auth.Authenticate(ctx, login.Token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer(config.AuthConfig{JWTSecret: "k1", TokenTTL: time.Minute, Issuer: "proptic"})
	user := &domain.User{
		ID:      "8b7f7a52-6d43-4c1e-9a5e-6b1c1f3f2b10",
		IsStaff: true,
		Roles:   []domain.Role{{Name: domain.RoleAdmin}},
	}
	user.Email.String, user.Email.Valid = "admin@example.com", true

	token, err := issuer.Issue(user)
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, []string{domain.RoleAdmin}, claims.Roles)
	assert.True(t, claims.Staff)

	other := NewTokenIssuer(config.AuthConfig{JWTSecret: "k2", TokenTTL: time.Minute, Issuer: "proptic"})
	_, err = other.Parse(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = issuer.Parse(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	_, err = issuer.Parse("not-a-token")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}
