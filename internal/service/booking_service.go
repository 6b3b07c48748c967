package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andalize/proptic/internal/domain"
	"github.com/andalize/proptic/internal/events"
	"github.com/andalize/proptic/internal/repository"

	"go.uber.org/zap"
)

// BookingService manages short-stay bookings. Overlapping bookings for the
// same unit are accepted.
type BookingService struct {
	repos  *repository.Repositories
	views  *assembler
	events *events.Emitter
	logger *zap.Logger
}

func NewBookingService(repos *repository.Repositories, emitter *events.Emitter, logger *zap.Logger) *BookingService {
	return &BookingService{repos: repos, views: &assembler{repos: repos}, events: emitter, logger: logger}
}

// BookingInput is the writable part of a booking. Nil fields are unchanged.
type BookingInput struct {
	PropertyUnitID *string    `json:"property_unit_id"`
	GuestID        *string    `json:"guest_id"`
	CheckIn        *time.Time `json:"check_in"`
	CheckOut       *time.Time `json:"check_out"`
	TotalAmount    *float64   `json:"total_amount"`
	PaymentStatus  *string    `json:"payment_status"`
	BookingStatus  *string    `json:"booking_status"`
}

func (s *BookingService) ListBookings(ctx context.Context) ([]BookingView, error) {
	bookings, err := s.repos.Bookings.ListBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return s.views.bookings(ctx, bookings)
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*BookingView, error) {
	b, err := s.repos.Bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.views.booking(ctx, b)
}

func (s *BookingService) apply(ctx context.Context, b *domain.Booking, in BookingInput, create bool) error {
	v := domain.NewValidationError()

	if in.PropertyUnitID != nil || create {
		id := trimmed(in.PropertyUnitID)
		if id == "" {
			v.Add("property_unit_id", domain.MsgFieldRequired)
		} else if _, err := s.repos.Units.GetUnit(ctx, id); err != nil {
			if !isNotFound(err) {
				return fmt.Errorf("failed to check unit: %w", err)
			}
			v.Add("property_unit_id", relatedMissing(id))
		} else {
			b.PropertyUnitID = id
		}
	}
	if in.GuestID != nil || create {
		id := trimmed(in.GuestID)
		if id == "" {
			v.Add("guest_id", domain.MsgFieldRequired)
		} else if _, err := s.repos.Users.GetUser(ctx, id); err != nil {
			if !isNotFound(err) {
				return fmt.Errorf("failed to check guest: %w", err)
			}
			v.Add("guest_id", relatedMissing(id))
		} else {
			b.GuestID = id
		}
	}

	if in.CheckIn != nil {
		b.CheckIn = in.CheckIn.UTC()
	} else if create {
		v.Add("check_in", domain.MsgFieldRequired)
	}
	if in.CheckOut != nil {
		b.CheckOut = in.CheckOut.UTC()
	} else if create {
		v.Add("check_out", domain.MsgFieldRequired)
	}
	switch {
	case in.TotalAmount != nil && *in.TotalAmount < 0:
		v.Add("total_amount", domain.MsgAmountNegative)
	case in.TotalAmount != nil && domain.ValidateMoney(*in.TotalAmount) != "":
		v.Add("total_amount", domain.MsgMoneyTooLarge)
	case in.TotalAmount != nil:
		b.TotalAmount = *in.TotalAmount
	case create:
		v.Add("total_amount", domain.MsgFieldRequired)
	}

	if in.PaymentStatus != nil {
		if msg := domain.ValidateChoice(*in.PaymentStatus, domain.PaymentStatuses); msg != "" {
			v.Add("payment_status", msg)
		} else {
			b.PaymentStatus = *in.PaymentStatus
		}
	}
	if in.BookingStatus != nil {
		if msg := domain.ValidateChoice(*in.BookingStatus, domain.BookingStatuses); msg != "" {
			v.Add("booking_status", msg)
		} else {
			b.BookingStatus = *in.BookingStatus
		}
	}
	return v.OrNil()
}

func (s *BookingService) CreateBooking(ctx context.Context, in BookingInput) (*BookingView, error) {
	b := &domain.Booking{
		PaymentStatus: domain.PaymentStatusPending,
		BookingStatus: domain.BookingStatusPending,
	}
	if err := s.apply(ctx, b, in, true); err != nil {
		return nil, err
	}
	if err := s.repos.Bookings.CreateBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	s.logger.Info("Booking created", zap.String("booking_id", b.ID), zap.String("property_unit_id", b.PropertyUnitID))
	s.events.Emit(ctx, events.BookingCreated, b.ID, map[string]any{
		"property_unit_id": b.PropertyUnitID,
		"guest_id":         b.GuestID,
		"check_in":         b.CheckIn,
		"check_out":        b.CheckOut,
	})
	return s.views.booking(ctx, b)
}

func (s *BookingService) UpdateBooking(ctx context.Context, id string, in BookingInput) (*BookingView, error) {
	b, err := s.repos.Bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, b, in, false); err != nil {
		return nil, err
	}
	if err := s.repos.Bookings.UpdateBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}
	s.events.Emit(ctx, events.BookingUpdated, b.ID, map[string]any{
		"payment_status": b.PaymentStatus,
		"booking_status": b.BookingStatus,
	})
	return s.views.booking(ctx, b)
}

func (s *BookingService) DeleteBooking(ctx context.Context, id string) error {
	if err := s.repos.Bookings.DeleteBooking(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Booking deleted", zap.String("booking_id", id))
	s.events.Emit(ctx, events.BookingDeleted, id, nil)
	return nil
}
