//go:build integration
// +build integration

package repository

import (
	"context"
	"database/sql"
	"os"
	"strconv"
	"testing"

	"github.com/andalize/proptic/common/config"
	"github.com/andalize/proptic/common/database"
	"github.com/andalize/proptic/internal/domain"
	"github.com/andalize/proptic/internal/migrations"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

// getTestDB connects to TEST_DB_* and applies migrations, or skips.
func getTestDB(t *testing.T) *sql.DB {
	cfg := &config.DatabaseConfig{
		Host:     getEnv("TEST_DB_HOST", "localhost"),
		Port:     getEnvInt("TEST_DB_PORT", 5432),
		User:     getEnv("TEST_DB_USER", "postgres"),
		Password: getEnv("TEST_DB_PASSWORD", "postgres"),
		Database: getEnv("TEST_DB_NAME", "proptic_test"),
		SSLMode:  getEnv("TEST_DB_SSLMODE", "disable"),
	}
	db, err := database.NewPostgresDB(context.Background(), cfg)
	if err != nil {
		t.Skipf("Skipping integration test: cannot connect to database: %v", err)
		return nil
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, migrations.Apply(ctx, db, zap.NewNop()))
	_, err = migrations.SeedRoles(ctx, db)
	require.NoError(t, err)
	return db
}

func TestPostgresIntegration_UnitLifecycle(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()
	repos := NewPostgresRepositories(db)

	p := &domain.PropertyProject{Name: "Integration Heights", Address: "1 Test Rd"}
	require.NoError(t, repos.Projects.CreateProject(ctx, p))
	t.Cleanup(func() { repos.Projects.DeleteProject(ctx, p.ID) })

	u := &domain.PropertyUnit{PropertyProjectID: p.ID, UnitName: "IT-1", UnitType: "apartment", Purpose: "residential"}
	require.NoError(t, repos.Units.CreateUnit(ctx, u))

	bad := &domain.PropertyUnit{PropertyProjectID: p.ID, UnitName: "IT-2", UnitType: "apartment", Purpose: "residential", Price: -5}
	err := repos.Units.CreateUnit(ctx, bad)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("price"))

	got, err := repos.Units.GetUnit(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Integration Heights", got.PropertyProjectName)
}

func TestPostgresIntegration_UserRoles(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()
	repos := NewPostgresRepositories(db)

	tenant, err := repos.Roles.GetRoleByName(ctx, domain.RoleTenant)
	require.NoError(t, err)

	u := &domain.User{FirstName: "Integration", IsActive: true}
	u.PassportNumber.String, u.PassportNumber.Valid = "IT0000001", true
	require.NoError(t, repos.Users.CreateUser(ctx, u, []string{tenant.ID}))
	t.Cleanup(func() { db.Exec(`DELETE FROM users WHERE id = $1`, u.ID) })

	got, err := repos.Users.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.RoleTenant}, got.RoleNames())

	require.NoError(t, repos.Users.DeactivateUser(ctx, u.ID))
	got, err = repos.Users.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}
