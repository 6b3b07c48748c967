package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andalize/proptic/internal/domain"

	"github.com/lib/pq"
)

// PostgresProjectsRepository persists property projects.
type PostgresProjectsRepository struct {
	db *sql.DB
}

func NewPostgresProjectsRepository(db *sql.DB) *PostgresProjectsRepository {
	return &PostgresProjectsRepository{db: db}
}

var _ ProjectsRepository = (*PostgresProjectsRepository)(nil)

const projectColumns = `id::text, name, address, description, cover_image, created_at`

func scanProject(row rowScanner) (*domain.PropertyProject, error) {
	var p domain.PropertyProject
	if err := row.Scan(&p.ID, &p.Name, &p.Address, &p.Description, &p.CoverImage, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresProjectsRepository) ListProjects(ctx context.Context, page, size int) ([]*domain.PropertyProject, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM property_projects`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	query := `SELECT ` + projectColumns + ` FROM property_projects ORDER BY name, id`
	var args []any
	if size > 0 {
		limit, offset := limitOffset(page, size)
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	items := []*domain.PropertyProject{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan project: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return items, total, nil
}

func (r *PostgresProjectsRepository) GetProject(ctx context.Context, id string) (*domain.PropertyProject, error) {
	if !isUUID(id) {
		return nil, fmt.Errorf("project: %w", domain.ErrNotFound)
	}
	p, err := scanProject(r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM property_projects WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

func (r *PostgresProjectsRepository) GetProjectsByIDs(ctx context.Context, ids []string) (map[string]*domain.PropertyProject, error) {
	out := map[string]*domain.PropertyProject{}
	ids = validUUIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM property_projects WHERE id = ANY($1::uuid[])`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get projects: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (r *PostgresProjectsRepository) ProjectNameExists(ctx context.Context, name, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM property_projects
			WHERE LOWER(name) = LOWER($1) AND ($2 = '' OR id::text <> $2)
		)
	`, name, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check project name: %w", err)
	}
	return exists, nil
}

func (r *PostgresProjectsRepository) CreateProject(ctx context.Context, p *domain.PropertyProject) error {
	p.ID = newID(p.ID)
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO property_projects (id, name, address, description, cover_image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, p.ID, p.Name, p.Address, p.Description, p.CoverImage).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", mapPQError(err))
	}
	return nil
}

func (r *PostgresProjectsRepository) UpdateProject(ctx context.Context, p *domain.PropertyProject) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE property_projects
		SET name = $2, address = $3, description = $4, cover_image = $5
		WHERE id = $1
	`, p.ID, p.Name, p.Address, p.Description, p.CoverImage)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", mapPQError(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("project: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *PostgresProjectsRepository) DeleteProject(ctx context.Context, id string) error {
	if !isUUID(id) {
		return fmt.Errorf("project: %w", domain.ErrNotFound)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM property_projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("project: %w", domain.ErrNotFound)
	}
	return nil
}
