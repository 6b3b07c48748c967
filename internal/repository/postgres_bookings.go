package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andalize/proptic/internal/domain"
)

// PostgresBookingsRepository persists bookings.
type PostgresBookingsRepository struct {
	db *sql.DB
}

func NewPostgresBookingsRepository(db *sql.DB) *PostgresBookingsRepository {
	return &PostgresBookingsRepository{db: db}
}

var _ BookingsRepository = (*PostgresBookingsRepository)(nil)

const bookingColumns = `
	id::text,
	property_unit_id::text,
	guest_id::text,
	check_in,
	check_out,
	total_amount,
	payment_status,
	booking_status,
	created_at`

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID,
		&b.PropertyUnitID,
		&b.GuestID,
		&b.CheckIn,
		&b.CheckOut,
		&b.TotalAmount,
		&b.PaymentStatus,
		&b.BookingStatus,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PostgresBookingsRepository) ListBookings(ctx context.Context) ([]*domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	items := []*domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		items = append(items, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return items, nil
}

func (r *PostgresBookingsRepository) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	if !isUUID(id) {
		return nil, fmt.Errorf("booking: %w", domain.ErrNotFound)
	}
	b, err := scanBooking(r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("booking: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

func (r *PostgresBookingsRepository) CreateBooking(ctx context.Context, b *domain.Booking) error {
	b.ID = newID(b.ID)
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO bookings (
			id, property_unit_id, guest_id, check_in, check_out,
			total_amount, payment_status, booking_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`,
		b.ID,
		b.PropertyUnitID,
		b.GuestID,
		b.CheckIn,
		b.CheckOut,
		b.TotalAmount,
		b.PaymentStatus,
		b.BookingStatus,
	).Scan(&b.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", mapPQError(err))
	}
	return nil
}

func (r *PostgresBookingsRepository) UpdateBooking(ctx context.Context, b *domain.Booking) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bookings SET
			property_unit_id = $2,
			guest_id = $3,
			check_in = $4,
			check_out = $5,
			total_amount = $6,
			payment_status = $7,
			booking_status = $8
		WHERE id = $1
	`,
		b.ID,
		b.PropertyUnitID,
		b.GuestID,
		b.CheckIn,
		b.CheckOut,
		b.TotalAmount,
		b.PaymentStatus,
		b.BookingStatus,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", mapPQError(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("booking: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *PostgresBookingsRepository) DeleteBooking(ctx context.Context, id string) error {
	if !isUUID(id) {
		return fmt.Errorf("booking: %w", domain.ErrNotFound)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("booking: %w", domain.ErrNotFound)
	}
	return nil
}
