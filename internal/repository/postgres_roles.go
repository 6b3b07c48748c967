package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andalize/proptic/internal/domain"

	"github.com/lib/pq"
)

// PostgresRolesRepository reads roles from PostgreSQL.
type PostgresRolesRepository struct {
	db *sql.DB
}

func NewPostgresRolesRepository(db *sql.DB) *PostgresRolesRepository {
	return &PostgresRolesRepository{db: db}
}

var _ RolesRepository = (*PostgresRolesRepository)(nil)

func (r *PostgresRolesRepository) ListRoles(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id::text, name, display_name, description
		FROM roles
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()
	return scanRoles(rows)
}

func (r *PostgresRolesRepository) GetRoleByName(ctx context.Context, name string) (*domain.Role, error) {
	var role domain.Role
	err := r.db.QueryRowContext(ctx, `
		SELECT id::text, name, display_name, description
		FROM roles
		WHERE name = $1
	`, name).Scan(&role.ID, &role.Name, &role.DisplayName, &role.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("role %s: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return &role, nil
}

func (r *PostgresRolesRepository) GetRolesByIDs(ctx context.Context, ids []string) ([]domain.Role, error) {
	ids = validUUIDs(ids)
	if len(ids) == 0 {
		return []domain.Role{}, nil
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id::text, name, display_name, description
		FROM roles
		WHERE id = ANY($1::uuid[])
		ORDER BY name
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get roles: %w", err)
	}
	defer rows.Close()
	return scanRoles(rows)
}

func scanRoles(rows *sql.Rows) ([]domain.Role, error) {
	roles := []domain.Role{}
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.DisplayName, &role.Description); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roles: %w", err)
	}
	return roles, nil
}
