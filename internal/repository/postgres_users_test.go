package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/andalize/proptic/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var userRowColumns = []string{
	"id", "email", "password_hash", "first_name", "last_name", "gender",
	"national_id", "passport_number", "is_active", "is_staff", "is_superuser",
	"property_project_id", "last_login_at", "created_at", "updated_at",
}

func TestPostgresUsers_GetUser_LoadsRoles(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresUsersRepository(db)

	userID := uuid.NewString()
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM users u WHERE u.id = \$1`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(
			userID, "jane@example.com", nil, "Jane", "Doe", "female",
			"123456789012", nil, true, false, false,
			nil, nil, now, now,
		))
	mock.ExpectQuery(`FROM user_roles ur\s+JOIN roles r`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "id", "name", "display_name", "description"}).
			AddRow(userID, uuid.NewString(), "tenant", "Tenant", nil))

	u, err := repo.GetUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", u.Email.String)
	assert.Equal(t, "Jane Doe", u.FullName())
	assert.False(t, u.PassportNumber.Valid)
	assert.Equal(t, []string{"tenant"}, u.RoleNames())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsers_GetUser_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresUsersRepository(db)
	userID := uuid.NewString()

	mock.ExpectQuery(`SELECT`).WithArgs(userID).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUser(context.Background(), userID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.GetUser(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsers_ListUsers_RoleFilter(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresUsersRepository(db)

	mock.ExpectQuery(`WHERE ur.user_id = u.id AND r.name = \$1`).
		WithArgs("tenant").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	users, err := repo.ListUsers(context.Background(), UserFilter{Role: "tenant"})
	require.NoError(t, err)
	assert.Empty(t, users)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsers_EmailExists(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresUsersRepository(db)

	mock.ExpectQuery(`LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs("jane@example.com", "").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.EmailExists(context.Background(), "jane@example.com", "")
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsers_CreateUser_WithRoles(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresUsersRepository(db)
	roleID := uuid.NewString()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec(`INSERT INTO user_roles`).
		WithArgs(sqlmock.AnyArg(), roleID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	u := &domain.User{FirstName: "Jane", IsActive: true}
	u.NationalID.String, u.NationalID.Valid = "123456789012", true
	require.NoError(t, repo.CreateUser(context.Background(), u, []string{roleID}))
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, now, u.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsers_CreateUser_UniqueViolation(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresUsersRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_passport_number_key"})
	mock.ExpectRollback()

	err := repo.CreateUser(context.Background(), &domain.User{}, nil)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{domain.MsgPassportTaken}, verr.Fields["passport_number"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsers_UpdateUser_KeepsRolesWhenNil(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresUsersRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE users SET`).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateUser(context.Background(), &domain.User{ID: uuid.NewString()}, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsers_UpdateUser_ReplacesRoles(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresUsersRepository(db)
	userID := uuid.NewString()
	roleID := uuid.NewString()

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE users SET`).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))
	mock.ExpectExec(`DELETE FROM user_roles WHERE user_id = \$1`).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO user_roles`).
		WithArgs(userID, roleID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateUser(context.Background(), &domain.User{ID: userID}, []string{roleID}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsers_DeactivateUser(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresUsersRepository(db)
	userID := uuid.NewString()

	mock.ExpectExec(`UPDATE users SET is_active = FALSE`).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.DeactivateUser(context.Background(), userID))

	mock.ExpectExec(`UPDATE users SET is_active = FALSE`).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.DeactivateUser(context.Background(), userID), domain.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMapPQError(t *testing.T) {
	plain := errors.New("boom")
	assert.Same(t, plain, mapPQError(plain))

	err := mapPQError(&pq.Error{Code: "23503", Constraint: "tenancies_property_unit_id_fkey"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{msgRelatedMissing}, verr.Fields["property_unit_id"])

	err = mapPQError(&pq.Error{Code: "23514", Constraint: "property_units_price_check"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{domain.MsgPriceNegative}, verr.Fields["price"])

	err = mapPQError(&pq.Error{Code: "23505", Constraint: "something_else", Message: "duplicate key"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"duplicate key"}, verr.Fields[domain.NonFieldErrors])

	err = mapPQError(&pq.Error{Code: "22003", Message: "numeric field overflow"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{domain.MsgMoneyTooLarge}, verr.Fields[domain.NonFieldErrors])

	deadlock := &pq.Error{Code: "40P01"}
	assert.Same(t, deadlock, mapPQError(deadlock))
}
