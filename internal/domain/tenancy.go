package domain

import "time"

// Tenancy maps to the tenancies table: a tenant occupying a unit for a date
// range. Nothing prevents several active tenancies for the same unit; readers
// take the most recently created one.
type Tenancy struct {
	ID             string `db:"id"`
	TenantID       string `db:"tenant_id"`        // immutable after create
	PropertyUnitID string `db:"property_unit_id"` // immutable after create

	TenancyStartDate Date `db:"tenancy_start_date"`
	TenancyEndDate   Date `db:"tenancy_end_date"`

	MonthlyRent    float64 `db:"monthly_rent"`
	DepositAmount  float64 `db:"deposit_amount"`
	RentPeriodPaid int     `db:"rent_period_paid"` // days covered by paid rent
	PaidAmount     float64 `db:"paid_amount"`
	PaymentDueDate Date    `db:"payment_due_date"`

	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
}
