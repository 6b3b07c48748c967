package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/andalize/proptic/internal/domain"
	"github.com/andalize/proptic/internal/events"
	"github.com/andalize/proptic/internal/repository"

	"go.uber.org/zap"
)

// RentTransactionService records rent payments. Entries are append-only.
type RentTransactionService struct {
	repos  *repository.Repositories
	events *events.Emitter
	logger *zap.Logger
}

func NewRentTransactionService(repos *repository.Repositories, emitter *events.Emitter, logger *zap.Logger) *RentTransactionService {
	return &RentTransactionService{repos: repos, events: emitter, logger: logger}
}

// RentTransactionInput records one payment. paid_days is derived.
type RentTransactionInput struct {
	Tenancy       *string      `json:"tenancy"`
	Amount        *float64     `json:"amount"`
	Method        *string      `json:"method"`
	Status        *string      `json:"status"`
	PeriodStart   *domain.Date `json:"period_start"`
	PeriodEnd     *domain.Date `json:"period_end"`
	ReceiptNumber *string      `json:"receipt_number"`
}

// ListRentTransactions returns newest first; tenancyID may be empty.
func (s *RentTransactionService) ListRentTransactions(ctx context.Context, tenancyID string) ([]RentTransactionView, error) {
	txs, err := s.repos.RentTransactions.ListRentTransactions(ctx, repository.RentTransactionFilter{TenancyID: tenancyID})
	if err != nil {
		return nil, fmt.Errorf("failed to list rent transactions: %w", err)
	}
	out := make([]RentTransactionView, 0, len(txs))
	for _, tx := range txs {
		out = append(out, rentTransactionView(tx))
	}
	return out, nil
}

func (s *RentTransactionService) GetRentTransaction(ctx context.Context, id string) (*RentTransactionView, error) {
	tx, err := s.repos.RentTransactions.GetRentTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	view := rentTransactionView(tx)
	return &view, nil
}

func (s *RentTransactionService) RecordRentTransaction(ctx context.Context, in RentTransactionInput) (*RentTransactionView, error) {
	tx := &domain.RentTransaction{Method: domain.RentMethodCash, Status: domain.RentStatusCompleted}
	v := domain.NewValidationError()

	tenancyID := trimmed(in.Tenancy)
	if tenancyID == "" {
		v.Add("tenancy", domain.MsgFieldRequired)
	} else if _, err := s.repos.Tenancies.GetTenancy(ctx, tenancyID); err != nil {
		if !isNotFound(err) {
			return nil, fmt.Errorf("failed to check tenancy: %w", err)
		}
		v.Add("tenancy", relatedMissing(tenancyID))
	}
	tx.TenancyID = tenancyID

	switch {
	case in.Amount == nil:
		v.Add("amount", domain.MsgFieldRequired)
	case *in.Amount < 0:
		v.Add("amount", domain.MsgAmountNegative)
	case domain.ValidateMoney(*in.Amount) != "":
		v.Add("amount", domain.MsgMoneyTooLarge)
	default:
		tx.Amount = *in.Amount
	}
	if in.Method != nil {
		if msg := domain.ValidateChoice(*in.Method, domain.RentMethods); msg != "" {
			v.Add("method", msg)
		} else {
			tx.Method = *in.Method
		}
	}
	if in.Status != nil {
		if msg := domain.ValidateChoice(*in.Status, domain.RentStatuses); msg != "" {
			v.Add("status", msg)
		} else {
			tx.Status = *in.Status
		}
	}
	tx.ReceiptNumber = nullString(trimmed(in.ReceiptNumber))

	if in.PeriodStart != nil {
		tx.PeriodStart = *in.PeriodStart
	}
	if in.PeriodEnd != nil {
		tx.PeriodEnd = *in.PeriodEnd
	}
	days, err := domain.PaidDays(tx.PeriodStart, tx.PeriodEnd)
	if err != nil {
		var pv *domain.ValidationError
		if !errors.As(err, &pv) {
			return nil, err
		}
		for field, msgs := range pv.Fields {
			for _, msg := range msgs {
				v.Add(field, msg)
			}
		}
	}
	tx.PaidDays = days
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	if err := s.repos.RentTransactions.CreateRentTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to record rent transaction: %w", err)
	}
	s.logger.Info("Rent transaction recorded",
		zap.String("rent_transaction_id", tx.ID),
		zap.String("tenancy_id", tx.TenancyID),
		zap.Float64("amount", tx.Amount),
		zap.Int("paid_days", tx.PaidDays),
	)
	s.events.Emit(ctx, events.RentTransactionRecorded, tx.ID, map[string]any{
		"tenancy":   tx.TenancyID,
		"amount":    tx.Amount,
		"paid_days": tx.PaidDays,
	})
	view := rentTransactionView(tx)
	return &view, nil
}
