package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andalize/proptic/internal/domain"

	"github.com/lib/pq"
)

// PostgresTenanciesRepository persists tenancies.
type PostgresTenanciesRepository struct {
	db *sql.DB
}

func NewPostgresTenanciesRepository(db *sql.DB) *PostgresTenanciesRepository {
	return &PostgresTenanciesRepository{db: db}
}

var _ TenanciesRepository = (*PostgresTenanciesRepository)(nil)

const tenancyColumns = `
	id::text,
	tenant_id::text,
	property_unit_id::text,
	tenancy_start_date,
	tenancy_end_date,
	monthly_rent,
	deposit_amount,
	rent_period_paid,
	paid_amount,
	payment_due_date,
	active,
	created_at`

func scanTenancy(row rowScanner) (*domain.Tenancy, error) {
	var t domain.Tenancy
	err := row.Scan(
		&t.ID,
		&t.TenantID,
		&t.PropertyUnitID,
		&t.TenancyStartDate,
		&t.TenancyEndDate,
		&t.MonthlyRent,
		&t.DepositAmount,
		&t.RentPeriodPaid,
		&t.PaidAmount,
		&t.PaymentDueDate,
		&t.Active,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PostgresTenanciesRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Tenancy, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenancies: %w", err)
	}
	defer rows.Close()

	items := []*domain.Tenancy{}
	for rows.Next() {
		t, err := scanTenancy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenancy: %w", err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tenancies: %w", err)
	}
	return items, nil
}

func (r *PostgresTenanciesRepository) ListTenancies(ctx context.Context) ([]*domain.Tenancy, error) {
	return r.list(ctx, `SELECT `+tenancyColumns+` FROM tenancies ORDER BY created_at DESC, id`)
}

func (r *PostgresTenanciesRepository) GetTenancy(ctx context.Context, id string) (*domain.Tenancy, error) {
	if !isUUID(id) {
		return nil, fmt.Errorf("tenancy: %w", domain.ErrNotFound)
	}
	t, err := scanTenancy(r.db.QueryRowContext(ctx,
		`SELECT `+tenancyColumns+` FROM tenancies WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("tenancy: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get tenancy: %w", err)
	}
	return t, nil
}

func (r *PostgresTenanciesRepository) CreateTenancy(ctx context.Context, t *domain.Tenancy) error {
	t.ID = newID(t.ID)
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO tenancies (
			id, tenant_id, property_unit_id, tenancy_start_date, tenancy_end_date,
			monthly_rent, deposit_amount, rent_period_paid, paid_amount,
			payment_due_date, active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`,
		t.ID,
		t.TenantID,
		t.PropertyUnitID,
		t.TenancyStartDate,
		t.TenancyEndDate,
		t.MonthlyRent,
		t.DepositAmount,
		t.RentPeriodPaid,
		t.PaidAmount,
		t.PaymentDueDate,
		t.Active,
	).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tenancy: %w", mapPQError(err))
	}
	return nil
}

func (r *PostgresTenanciesRepository) UpdateTenancy(ctx context.Context, t *domain.Tenancy) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tenancies SET
			tenancy_start_date = $2,
			tenancy_end_date = $3,
			monthly_rent = $4,
			deposit_amount = $5,
			rent_period_paid = $6,
			paid_amount = $7,
			payment_due_date = $8,
			active = $9
		WHERE id = $1
	`,
		t.ID,
		t.TenancyStartDate,
		t.TenancyEndDate,
		t.MonthlyRent,
		t.DepositAmount,
		t.RentPeriodPaid,
		t.PaidAmount,
		t.PaymentDueDate,
		t.Active,
	)
	if err != nil {
		return fmt.Errorf("failed to update tenancy: %w", mapPQError(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("tenancy: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *PostgresTenanciesRepository) DeleteTenancy(ctx context.Context, id string) error {
	if !isUUID(id) {
		return fmt.Errorf("tenancy: %w", domain.ErrNotFound)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM tenancies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tenancy: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("tenancy: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *PostgresTenanciesRepository) ActiveByUnitIDs(ctx context.Context, unitIDs []string) (map[string]*domain.Tenancy, error) {
	return r.activeBy(ctx, "property_unit_id", unitIDs, func(t *domain.Tenancy) string { return t.PropertyUnitID })
}

func (r *PostgresTenanciesRepository) ActiveByTenantIDs(ctx context.Context, tenantIDs []string) (map[string]*domain.Tenancy, error) {
	return r.activeBy(ctx, "tenant_id", tenantIDs, func(t *domain.Tenancy) string { return t.TenantID })
}

// activeBy picks the newest active tenancy per key column with DISTINCT ON.
func (r *PostgresTenanciesRepository) activeBy(ctx context.Context, column string, ids []string, key func(*domain.Tenancy) string) (map[string]*domain.Tenancy, error) {
	out := map[string]*domain.Tenancy{}
	ids = validUUIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	query := fmt.Sprintf(`
		SELECT DISTINCT ON (%[1]s) %[2]s
		FROM tenancies
		WHERE active AND %[1]s = ANY($1::uuid[])
		ORDER BY %[1]s, created_at DESC, id
	`, column, tenancyColumns)
	items, err := r.list(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	for _, t := range items {
		out[key(t)] = t
	}
	return out, nil
}
