package service

import (
	"context"
	"fmt"

	"github.com/andalize/proptic/internal/domain"
	"github.com/andalize/proptic/internal/events"
	"github.com/andalize/proptic/internal/repository"

	"go.uber.org/zap"
)

// TenancyService links tenants to units. It does not check date order or
// whether the unit already has an active tenancy.
type TenancyService struct {
	repos  *repository.Repositories
	views  *assembler
	events *events.Emitter
	logger *zap.Logger
}

func NewTenancyService(repos *repository.Repositories, emitter *events.Emitter, logger *zap.Logger) *TenancyService {
	return &TenancyService{repos: repos, views: &assembler{repos: repos}, events: emitter, logger: logger}
}

// TenancyInput is the writable part of a tenancy. TenantID and
// PropertyUnitID are read on create only.
type TenancyInput struct {
	TenantID         *string      `json:"tenant_id"`
	PropertyUnitID   *string      `json:"property_unit_id"`
	TenancyStartDate *domain.Date `json:"tenancy_start_date"`
	TenancyEndDate   *domain.Date `json:"tenancy_end_date"`
	MonthlyRent      *float64     `json:"monthly_rent"`
	DepositAmount    *float64     `json:"deposit_amount"`
	RentPeriodPaid   *int         `json:"rent_period_paid"`
	PaidAmount       *float64     `json:"paid_amount"`
	PaymentDueDate   *domain.Date `json:"payment_due_date"`
	Active           *bool        `json:"active"`
}

func (s *TenancyService) ListTenancies(ctx context.Context) ([]TenancyView, error) {
	tenancies, err := s.repos.Tenancies.ListTenancies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenancies: %w", err)
	}
	return s.views.tenancies(ctx, tenancies)
}

func (s *TenancyService) GetTenancy(ctx context.Context, id string) (*TenancyView, error) {
	t, err := s.repos.Tenancies.GetTenancy(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.views.tenancy(ctx, t)
}

func applyTenancy(t *domain.Tenancy, in TenancyInput, v *domain.ValidationError) {
	if in.TenancyStartDate != nil {
		t.TenancyStartDate = *in.TenancyStartDate
	}
	if in.TenancyEndDate != nil {
		t.TenancyEndDate = *in.TenancyEndDate
	}
	if in.PaymentDueDate != nil {
		t.PaymentDueDate = *in.PaymentDueDate
	}
	amounts := []struct {
		field string
		in    *float64
		out   *float64
	}{
		{"monthly_rent", in.MonthlyRent, &t.MonthlyRent},
		{"deposit_amount", in.DepositAmount, &t.DepositAmount},
		{"paid_amount", in.PaidAmount, &t.PaidAmount},
	}
	for _, a := range amounts {
		if a.in == nil {
			continue
		}
		if *a.in < 0 {
			v.Add(a.field, domain.MsgAmountNegative)
			continue
		}
		if msg := domain.ValidateMoney(*a.in); msg != "" {
			v.Add(a.field, msg)
			continue
		}
		*a.out = *a.in
	}
	if in.RentPeriodPaid != nil {
		if *in.RentPeriodPaid < 0 {
			v.Add("rent_period_paid", domain.MsgAmountNegative)
		} else {
			t.RentPeriodPaid = *in.RentPeriodPaid
		}
	}
	if in.Active != nil {
		t.Active = *in.Active
	}
}

// CreateTenancy requires an existing tenant and unit, a start date and the
// monthly rent.
func (s *TenancyService) CreateTenancy(ctx context.Context, in TenancyInput) (*TenancyView, error) {
	t := &domain.Tenancy{Active: true}
	v := domain.NewValidationError()

	tenantID := trimmed(in.TenantID)
	if tenantID == "" {
		v.Add("tenant_id", domain.MsgFieldRequired)
	} else if _, err := s.repos.Users.GetUser(ctx, tenantID); err != nil {
		if !isNotFound(err) {
			return nil, fmt.Errorf("failed to check tenant: %w", err)
		}
		v.Add("tenant_id", relatedMissing(tenantID))
	}
	unitID := trimmed(in.PropertyUnitID)
	if unitID == "" {
		v.Add("property_unit_id", domain.MsgFieldRequired)
	} else if _, err := s.repos.Units.GetUnit(ctx, unitID); err != nil {
		if !isNotFound(err) {
			return nil, fmt.Errorf("failed to check unit: %w", err)
		}
		v.Add("property_unit_id", relatedMissing(unitID))
	}
	if in.TenancyStartDate == nil || !in.TenancyStartDate.Valid {
		v.Add("tenancy_start_date", domain.MsgFieldRequired)
	}
	if in.MonthlyRent == nil {
		v.Add("monthly_rent", domain.MsgFieldRequired)
	}
	applyTenancy(t, in, v)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	t.TenantID, t.PropertyUnitID = tenantID, unitID
	if err := s.repos.Tenancies.CreateTenancy(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create tenancy: %w", err)
	}
	s.logger.Info("Tenancy created",
		zap.String("tenancy_id", t.ID),
		zap.String("tenant_id", t.TenantID),
		zap.String("property_unit_id", t.PropertyUnitID),
	)
	s.events.Emit(ctx, events.TenancyCreated, t.ID, map[string]any{
		"tenant_id":        t.TenantID,
		"property_unit_id": t.PropertyUnitID,
	})
	return s.views.tenancy(ctx, t)
}

// UpdateTenancy merges in into the tenancy. Tenant and unit never change.
func (s *TenancyService) UpdateTenancy(ctx context.Context, id string, in TenancyInput) (*TenancyView, error) {
	t, err := s.repos.Tenancies.GetTenancy(ctx, id)
	if err != nil {
		return nil, err
	}
	v := domain.NewValidationError()
	applyTenancy(t, in, v)
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	if err := s.repos.Tenancies.UpdateTenancy(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to update tenancy: %w", err)
	}
	return s.views.tenancy(ctx, t)
}

func (s *TenancyService) DeleteTenancy(ctx context.Context, id string) error {
	if err := s.repos.Tenancies.DeleteTenancy(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Tenancy deleted", zap.String("tenancy_id", id))
	s.events.Emit(ctx, events.TenancyDeleted, id, nil)
	return nil
}
