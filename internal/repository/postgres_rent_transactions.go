package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andalize/proptic/internal/domain"
)

// PostgresRentTransactionsRepository persists the rent ledger. There is no
// update or delete.
type PostgresRentTransactionsRepository struct {
	db *sql.DB
}

func NewPostgresRentTransactionsRepository(db *sql.DB) *PostgresRentTransactionsRepository {
	return &PostgresRentTransactionsRepository{db: db}
}

var _ RentTransactionsRepository = (*PostgresRentTransactionsRepository)(nil)

const rentTransactionColumns = `
	id::text,
	tenancy_id::text,
	amount,
	method,
	status,
	period_start,
	period_end,
	paid_days,
	receipt_number,
	created_at`

func scanRentTransaction(row rowScanner) (*domain.RentTransaction, error) {
	var t domain.RentTransaction
	err := row.Scan(
		&t.ID,
		&t.TenancyID,
		&t.Amount,
		&t.Method,
		&t.Status,
		&t.PeriodStart,
		&t.PeriodEnd,
		&t.PaidDays,
		&t.ReceiptNumber,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PostgresRentTransactionsRepository) ListRentTransactions(ctx context.Context, filter RentTransactionFilter) ([]*domain.RentTransaction, error) {
	query := `SELECT ` + rentTransactionColumns + ` FROM rent_transactions`
	var args []any
	if filter.TenancyID != "" {
		if !isUUID(filter.TenancyID) {
			return []*domain.RentTransaction{}, nil
		}
		query += ` WHERE tenancy_id = $1`
		args = append(args, filter.TenancyID)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rent transactions: %w", err)
	}
	defer rows.Close()

	items := []*domain.RentTransaction{}
	for rows.Next() {
		t, err := scanRentTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rent transaction: %w", err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rent transactions: %w", err)
	}
	return items, nil
}

func (r *PostgresRentTransactionsRepository) GetRentTransaction(ctx context.Context, id string) (*domain.RentTransaction, error) {
	if !isUUID(id) {
		return nil, fmt.Errorf("rent transaction: %w", domain.ErrNotFound)
	}
	t, err := scanRentTransaction(r.db.QueryRowContext(ctx,
		`SELECT `+rentTransactionColumns+` FROM rent_transactions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("rent transaction: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get rent transaction: %w", err)
	}
	return t, nil
}

func (r *PostgresRentTransactionsRepository) CreateRentTransaction(ctx context.Context, t *domain.RentTransaction) error {
	t.ID = newID(t.ID)
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO rent_transactions (
			id, tenancy_id, amount, method, status,
			period_start, period_end, paid_days, receipt_number
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`,
		t.ID,
		t.TenancyID,
		t.Amount,
		t.Method,
		t.Status,
		t.PeriodStart,
		t.PeriodEnd,
		t.PaidDays,
		t.ReceiptNumber,
	).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record rent transaction: %w", mapPQError(err))
	}
	return nil
}
