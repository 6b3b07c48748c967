package domain

import "time"

// Booking maps to the bookings table. Overlapping bookings for the same unit
// are accepted.
type Booking struct {
	ID             string    `db:"id"`
	PropertyUnitID string    `db:"property_unit_id"`
	GuestID        string    `db:"guest_id"`
	CheckIn        time.Time `db:"check_in"`
	CheckOut       time.Time `db:"check_out"`
	TotalAmount    float64   `db:"total_amount"`
	PaymentStatus  string    `db:"payment_status"` // PaymentStatuses
	BookingStatus  string    `db:"booking_status"` // BookingStatuses
	CreatedAt      time.Time `db:"created_at"`
}

// Payment statuses.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// PaymentStatuses lists the accepted payment_status values.
var PaymentStatuses = []string{
	PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded,
}

// Booking statuses.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

// BookingStatuses lists the accepted booking_status values.
var BookingStatuses = []string{
	BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted,
}
