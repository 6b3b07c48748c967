package domain

import (
	"database/sql"
	"time"
)

// RentTransaction maps to the rent_transactions table. Rows are never
// updated or deleted.
type RentTransaction struct {
	ID            string         `db:"id"`
	TenancyID     string         `db:"tenancy_id"`
	Amount        float64        `db:"amount"`
	Method        string         `db:"method"` // RentMethods
	Status        string         `db:"status"` // RentStatuses
	PeriodStart   Date           `db:"period_start"`
	PeriodEnd     Date           `db:"period_end"`
	PaidDays      int            `db:"paid_days"` // derived from the period
	ReceiptNumber sql.NullString `db:"receipt_number"`
	CreatedAt     time.Time      `db:"created_at"`
}

// Rent payment methods.
const (
	RentMethodCash         = "cash"
	RentMethodBankTransfer = "bank_transfer"
	RentMethodMobileMoney  = "mobile_money"
	RentMethodCard         = "card"
	RentMethodCheque       = "cheque"
)

// RentMethods lists the accepted method values.
var RentMethods = []string{
	RentMethodCash, RentMethodBankTransfer, RentMethodMobileMoney,
	RentMethodCard, RentMethodCheque,
}

// Rent transaction statuses.
const (
	RentStatusPending   = "pending"
	RentStatusCompleted = "completed"
	RentStatusFailed    = "failed"
)

// RentStatuses lists the accepted status values.
var RentStatuses = []string{RentStatusPending, RentStatusCompleted, RentStatusFailed}
