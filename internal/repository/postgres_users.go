package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andalize/proptic/internal/domain"

	"github.com/lib/pq"
)

// PostgresUsersRepository persists users and user_roles.
type PostgresUsersRepository struct {
	db *sql.DB
}

func NewPostgresUsersRepository(db *sql.DB) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db}
}

var _ UsersRepository = (*PostgresUsersRepository)(nil)

const userColumns = `
	u.id::text,
	u.email,
	u.password_hash,
	u.first_name,
	u.last_name,
	u.gender,
	u.national_id,
	u.passport_number,
	u.is_active,
	u.is_staff,
	u.is_superuser,
	u.property_project_id::text,
	u.last_login_at,
	u.created_at,
	u.updated_at`

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Gender,
		&u.NationalID,
		&u.PassportNumber,
		&u.IsActive,
		&u.IsStaff,
		&u.IsSuperuser,
		&u.PropertyProjectID,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PostgresUsersRepository) getOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE ` + where
	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if err := r.loadRoles(ctx, []*domain.User{u}); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *PostgresUsersRepository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if !isUUID(id) {
		return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
	}
	return r.getOne(ctx, `u.id = $1`, id)
}

func (r *PostgresUsersRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `LOWER(u.email) = LOWER($1)`, email)
}

func (r *PostgresUsersRepository) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	out := map[string]*domain.User{}
	ids = validUUIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	users, err := r.query(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = ANY($1::uuid[])`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (r *PostgresUsersRepository) ListUsers(ctx context.Context, filter UserFilter) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u`
	var args []any
	if filter.Role != "" {
		query += `
			WHERE EXISTS (
				SELECT 1 FROM user_roles ur
				JOIN roles r ON r.id = ur.role_id
				WHERE ur.user_id = u.id AND r.name = $1
			)`
		args = append(args, filter.Role)
	}
	query += ` ORDER BY u.created_at, u.id`
	return r.query(ctx, query, args...)
}

func (r *PostgresUsersRepository) query(ctx context.Context, query string, args ...any) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	if err := r.loadRoles(ctx, users); err != nil {
		return nil, err
	}
	return users, nil
}

// loadRoles fills Roles for all users with one query.
func (r *PostgresUsersRepository) loadRoles(ctx context.Context, users []*domain.User) error {
	if len(users) == 0 {
		return nil
	}
	ids := make([]string, 0, len(users))
	byID := make(map[string]*domain.User, len(users))
	for _, u := range users {
		u.Roles = []domain.Role{}
		ids = append(ids, u.ID)
		byID[u.ID] = u
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT ur.user_id::text, r.id::text, r.name, r.display_name, r.description
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = ANY($1::uuid[])
		ORDER BY r.name
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load user roles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		var role domain.Role
		if err := rows.Scan(&userID, &role.ID, &role.Name, &role.DisplayName, &role.Description); err != nil {
			return fmt.Errorf("failed to scan user role: %w", err)
		}
		if u, ok := byID[userID]; ok {
			u.Roles = append(u.Roles, role)
		}
	}
	return rows.Err()
}

func (r *PostgresUsersRepository) EmailExists(ctx context.Context, email, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users
			WHERE LOWER(email) = LOWER($1) AND ($2 = '' OR id::text <> $2)
		)
	`, email, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

func (r *PostgresUsersRepository) CreateUser(ctx context.Context, user *domain.User, roleIDs []string) error {
	user.ID = newID(user.ID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name, gender,
			national_id, passport_number, is_active, is_staff, is_superuser,
			property_project_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12::uuid)
		RETURNING created_at, updated_at
	`,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Gender,
		user.NationalID,
		user.PassportNumber,
		user.IsActive,
		user.IsStaff,
		user.IsSuperuser,
		user.PropertyProjectID,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", mapPQError(err))
	}

	if err := replaceUserRoles(ctx, tx, user.ID, roleIDs); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PostgresUsersRepository) UpdateUser(ctx context.Context, user *domain.User, roleIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		UPDATE users SET
			email = $2,
			password_hash = $3,
			first_name = $4,
			last_name = $5,
			gender = $6,
			national_id = $7,
			passport_number = $8,
			is_active = $9,
			is_staff = $10,
			is_superuser = $11,
			property_project_id = $12::uuid,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Gender,
		user.NationalID,
		user.PassportNumber,
		user.IsActive,
		user.IsStaff,
		user.IsSuperuser,
		user.PropertyProjectID,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("user: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("failed to update user: %w", mapPQError(err))
	}

	if roleIDs != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, user.ID); err != nil {
			return fmt.Errorf("failed to clear user roles: %w", err)
		}
		if err := replaceUserRoles(ctx, tx, user.ID, roleIDs); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func replaceUserRoles(ctx context.Context, tx *sql.Tx, userID string, roleIDs []string) error {
	for _, roleID := range roleIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, userID, roleID)
		if err != nil {
			return fmt.Errorf("failed to assign role: %w", mapPQError(err))
		}
	}
	return nil
}

func (r *PostgresUsersRepository) DeactivateUser(ctx context.Context, id string) error {
	if !isUUID(id) {
		return fmt.Errorf("user: %w", domain.ErrNotFound)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *PostgresUsersRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}
