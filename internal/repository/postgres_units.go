package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andalize/proptic/internal/domain"

	"github.com/lib/pq"
)

// PostgresUnitsRepository persists property units and their images.
type PostgresUnitsRepository struct {
	db *sql.DB
}

func NewPostgresUnitsRepository(db *sql.DB) *PostgresUnitsRepository {
	return &PostgresUnitsRepository{db: db}
}

var _ UnitsRepository = (*PostgresUnitsRepository)(nil)

const unitSelect = `
	SELECT
		u.id::text,
		u.property_project_id::text,
		p.name,
		u.unit_name,
		u.unit_type,
		u.purpose,
		u.price,
		u.listed_for_rent,
		u.listed_for_sale,
		u.available,
		u.amenities,
		u.paid,
		u.paid_at,
		u.created_at
	FROM property_units u
	JOIN property_projects p ON p.id = u.property_project_id`

func scanUnit(row rowScanner) (*domain.PropertyUnit, error) {
	var u domain.PropertyUnit
	var amenities []byte
	err := row.Scan(
		&u.ID,
		&u.PropertyProjectID,
		&u.PropertyProjectName,
		&u.UnitName,
		&u.UnitType,
		&u.Purpose,
		&u.Price,
		&u.ListedForRent,
		&u.ListedForSale,
		&u.Available,
		&amenities,
		&u.Paid,
		&u.PaidAt,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Amenities = rawJSON(amenities)
	return &u, nil
}

func (r *PostgresUnitsRepository) ListUnits(ctx context.Context, filter UnitFilter, page, size int) ([]*domain.PropertyUnit, int, error) {
	where := ""
	args := []any{}
	argIdx := 1
	if filter.ProjectID != "" {
		if !isUUID(filter.ProjectID) {
			return []*domain.PropertyUnit{}, 0, nil
		}
		where = fmt.Sprintf(" WHERE u.property_project_id = $%d", argIdx)
		args = append(args, filter.ProjectID)
		argIdx++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM property_units u` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count units: %w", err)
	}

	query := unitSelect + where + ` ORDER BY p.name, u.unit_name, u.id`
	if size > 0 {
		limit, offset := limitOffset(page, size)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list units: %w", err)
	}
	defer rows.Close()

	items := []*domain.PropertyUnit{}
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan unit: %w", err)
		}
		items = append(items, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate units: %w", err)
	}
	return items, total, nil
}

func (r *PostgresUnitsRepository) GetUnit(ctx context.Context, id string) (*domain.PropertyUnit, error) {
	if !isUUID(id) {
		return nil, fmt.Errorf("unit: %w", domain.ErrNotFound)
	}
	u, err := scanUnit(r.db.QueryRowContext(ctx, unitSelect+` WHERE u.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("unit: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get unit: %w", err)
	}
	return u, nil
}

func (r *PostgresUnitsRepository) GetUnitsByIDs(ctx context.Context, ids []string) (map[string]*domain.PropertyUnit, error) {
	out := map[string]*domain.PropertyUnit{}
	ids = validUUIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx, unitSelect+` WHERE u.id = ANY($1::uuid[])`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get units: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		out[u.ID] = u
	}
	return out, rows.Err()
}

func (r *PostgresUnitsRepository) CreateUnit(ctx context.Context, u *domain.PropertyUnit) error {
	u.ID = newID(u.ID)
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO property_units (
			id, property_project_id, unit_name, unit_type, purpose, price,
			listed_for_rent, listed_for_sale, available, amenities, paid, paid_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb, $11, $12)
		RETURNING created_at
	`,
		u.ID,
		u.PropertyProjectID,
		u.UnitName,
		u.UnitType,
		u.Purpose,
		u.Price,
		u.ListedForRent,
		u.ListedForSale,
		u.Available,
		nullJSON(u.Amenities),
		u.Paid,
		u.PaidAt,
	).Scan(&u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create unit: %w", mapPQError(err))
	}
	return nil
}

func (r *PostgresUnitsRepository) UpdateUnit(ctx context.Context, u *domain.PropertyUnit) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE property_units SET
			property_project_id = $2,
			unit_name = $3,
			unit_type = $4,
			purpose = $5,
			price = $6,
			listed_for_rent = $7,
			listed_for_sale = $8,
			available = $9,
			amenities = $10::jsonb,
			paid = $11,
			paid_at = $12
		WHERE id = $1
	`,
		u.ID,
		u.PropertyProjectID,
		u.UnitName,
		u.UnitType,
		u.Purpose,
		u.Price,
		u.ListedForRent,
		u.ListedForSale,
		u.Available,
		nullJSON(u.Amenities),
		u.Paid,
		u.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update unit: %w", mapPQError(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("unit: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *PostgresUnitsRepository) DeleteUnit(ctx context.Context, id string) error {
	if !isUUID(id) {
		return fmt.Errorf("unit: %w", domain.ErrNotFound)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM property_units WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete unit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("unit: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *PostgresUnitsRepository) ListImages(ctx context.Context, unitIDs []string) (map[string][]domain.PropertyUnitImage, error) {
	out := map[string][]domain.PropertyUnitImage{}
	unitIDs = validUUIDs(unitIDs)
	if len(unitIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id::text, property_unit_id::text, image, created_at
		FROM property_unit_images
		WHERE property_unit_id = ANY($1::uuid[])
		ORDER BY created_at, id
	`, pq.Array(unitIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list unit images: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var img domain.PropertyUnitImage
		if err := rows.Scan(&img.ID, &img.PropertyUnitID, &img.Image, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan unit image: %w", err)
		}
		out[img.PropertyUnitID] = append(out[img.PropertyUnitID], img)
	}
	return out, rows.Err()
}

func (r *PostgresUnitsRepository) CreateImage(ctx context.Context, img *domain.PropertyUnitImage) error {
	img.ID = newID(img.ID)
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO property_unit_images (id, property_unit_id, image)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, img.ID, img.PropertyUnitID, img.Image).Scan(&img.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add unit image: %w", mapPQError(err))
	}
	return nil
}

func (r *PostgresUnitsRepository) DeleteImage(ctx context.Context, unitID, imageID string) error {
	if !isUUID(unitID) || !isUUID(imageID) {
		return fmt.Errorf("unit image: %w", domain.ErrNotFound)
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM property_unit_images WHERE id = $1 AND property_unit_id = $2`, imageID, unitID)
	if err != nil {
		return fmt.Errorf("failed to delete unit image: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("unit image: %w", domain.ErrNotFound)
	}
	return nil
}
