package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andalize/proptic/internal/domain"
	"github.com/andalize/proptic/internal/events"
	"github.com/andalize/proptic/internal/repository"

	"go.uber.org/zap"
)

// UnitService manages property units and their image gallery.
type UnitService struct {
	repos  *repository.Repositories
	views  *assembler
	events *events.Emitter
	logger *zap.Logger
	now    func() time.Time
}

func NewUnitService(repos *repository.Repositories, emitter *events.Emitter, logger *zap.Logger) *UnitService {
	return &UnitService{
		repos:  repos,
		views:  &assembler{repos: repos},
		events: emitter,
		logger: logger,
		now:    time.Now,
	}
}

// UnitInput is the writable part of a unit. Nil fields are unchanged.
// Amenities is left unchanged when absent; JSON null clears it.
type UnitInput struct {
	PropertyProject *string         `json:"property_project"`
	UnitName        *string         `json:"unit_name"`
	UnitType        *string         `json:"unit_type"`
	Purpose         *string         `json:"purpose"`
	Price           *float64        `json:"price"`
	ListedForRent   *bool           `json:"listed_for_rent"`
	ListedForSale   *bool           `json:"listed_for_sale"`
	Available       *bool           `json:"available"`
	Amenities       json.RawMessage `json:"amenities"`
	Paid            *bool           `json:"paid"`
}

// ImageInput attaches one image reference to a unit.
type ImageInput struct {
	Image *string `json:"image"`
}

// UnitListRequest filters and pages ListUnits.
type UnitListRequest struct {
	PageRequest
	ProjectID string
}

func (s *UnitService) ListUnits(ctx context.Context, req UnitListRequest) (*Page[UnitView], error) {
	page := req.PageRequest.normalize()
	units, total, err := s.repos.Units.ListUnits(ctx, repository.UnitFilter{ProjectID: req.ProjectID}, page.Page, page.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	if err := checkPage(page, total); err != nil {
		return nil, err
	}
	views, err := s.views.units(ctx, units)
	if err != nil {
		return nil, err
	}
	return &Page[UnitView]{Items: views, Total: total, Page: page.Page, Size: page.Size}, nil
}

// AllUnits returns every unit in list order, unpaged.
func (s *UnitService) AllUnits(ctx context.Context) ([]UnitView, error) {
	units, _, err := s.repos.Units.ListUnits(ctx, repository.UnitFilter{}, 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	return s.views.units(ctx, units)
}

func (s *UnitService) GetUnit(ctx context.Context, id string) (*UnitView, error) {
	u, err := s.repos.Units.GetUnit(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.views.unit(ctx, u)
}

// apply merges in into u, recording every field failure.
func (s *UnitService) apply(ctx context.Context, u *domain.PropertyUnit, in UnitInput, create bool) error {
	v := domain.NewValidationError()

	if in.PropertyProject != nil && trimmed(in.PropertyProject) != "" {
		id := trimmed(in.PropertyProject)
		if _, err := s.repos.Projects.GetProject(ctx, id); err != nil {
			if !isNotFound(err) {
				return fmt.Errorf("failed to check property project: %w", err)
			}
			v.Add("property_project", relatedMissing(id))
		} else {
			u.PropertyProjectID = id
		}
	} else if create {
		v.Add("property_project", domain.MsgUnitProjectRequired)
	} else if in.PropertyProject != nil {
		v.Add("property_project", domain.MsgFieldRequired)
	}

	if in.UnitName != nil && trimmed(in.UnitName) != "" {
		u.UnitName = trimmed(in.UnitName)
	} else if create {
		v.Add("unit_name", domain.MsgUnitNameRequired)
	} else if in.UnitName != nil {
		v.Add("unit_name", domain.MsgFieldRequired)
	}

	switch {
	case in.Price != nil && *in.Price < 0:
		v.Add("price", domain.MsgPriceNegative)
	case in.Price != nil && domain.ValidateMoney(*in.Price) != "":
		v.Add("price", domain.MsgMoneyTooLarge)
	case in.Price != nil:
		u.Price = *in.Price
	case create:
		v.Add("price", domain.MsgUnitPriceRequired)
	}

	if in.UnitType != nil {
		if msg := domain.ValidateChoice(*in.UnitType, domain.UnitTypes); msg != "" {
			v.Add("unit_type", msg)
		} else {
			u.UnitType = *in.UnitType
		}
	}
	if in.Purpose != nil {
		if msg := domain.ValidateChoice(*in.Purpose, domain.Purposes); msg != "" {
			v.Add("purpose", msg)
		} else {
			u.Purpose = *in.Purpose
		}
	}
	if in.Amenities != nil {
		if msg := domain.ValidateAmenities(in.Amenities); msg != "" {
			v.Add("amenities", msg)
		} else if string(in.Amenities) == "null" {
			u.Amenities = nil
		} else {
			u.Amenities = in.Amenities
		}
	}

	if in.ListedForRent != nil {
		u.ListedForRent = *in.ListedForRent
	}
	if in.ListedForSale != nil {
		u.ListedForSale = *in.ListedForSale
	}
	if in.Available != nil {
		u.Available = *in.Available
	}
	if in.Paid != nil {
		if *in.Paid && !u.Paid {
			u.PaidAt.Time, u.PaidAt.Valid = s.now().UTC(), true
		}
		u.Paid = *in.Paid
	}
	return v.OrNil()
}

func (s *UnitService) CreateUnit(ctx context.Context, in UnitInput) (*UnitView, error) {
	u := &domain.PropertyUnit{
		UnitType:  domain.UnitTypeApartment,
		Purpose:   domain.PurposeResidential,
		Available: true,
	}
	if err := s.apply(ctx, u, in, true); err != nil {
		return nil, err
	}
	if err := s.repos.Units.CreateUnit(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create unit: %w", err)
	}
	s.logger.Info("Unit created", zap.String("unit_id", u.ID), zap.String("project_id", u.PropertyProjectID))
	s.events.Emit(ctx, events.UnitCreated, u.ID, map[string]any{
		"property_project": u.PropertyProjectID,
		"unit_name":        u.UnitName,
	})
	return s.GetUnit(ctx, u.ID)
}

// UpdateUnit merges in into the unit. Switching paid on stamps paid_at.
func (s *UnitService) UpdateUnit(ctx context.Context, id string, in UnitInput) (*UnitView, error) {
	u, err := s.repos.Units.GetUnit(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, u, in, false); err != nil {
		return nil, err
	}
	if err := s.repos.Units.UpdateUnit(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update unit: %w", err)
	}
	return s.GetUnit(ctx, id)
}

func (s *UnitService) DeleteUnit(ctx context.Context, id string) error {
	if err := s.repos.Units.DeleteUnit(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Unit deleted", zap.String("unit_id", id))
	s.events.Emit(ctx, events.UnitDeleted, id, nil)
	return nil
}

func (s *UnitService) ListImages(ctx context.Context, unitID string) ([]UnitImageView, error) {
	if _, err := s.repos.Units.GetUnit(ctx, unitID); err != nil {
		return nil, err
	}
	images, err := s.repos.Units.ListImages(ctx, []string{unitID})
	if err != nil {
		return nil, fmt.Errorf("failed to list unit images: %w", err)
	}
	out := make([]UnitImageView, 0, len(images[unitID]))
	for _, img := range images[unitID] {
		out = append(out, UnitImageView{ID: img.ID, Image: img.Image, CreatedAt: img.CreatedAt})
	}
	return out, nil
}

// AddImage attaches an image; the same image twice on one unit is rejected.
func (s *UnitService) AddImage(ctx context.Context, unitID string, in ImageInput) (*UnitImageView, error) {
	if _, err := s.repos.Units.GetUnit(ctx, unitID); err != nil {
		return nil, err
	}
	image := trimmed(in.Image)
	if image == "" {
		return nil, domain.FieldError("image", domain.MsgFieldRequired)
	}
	img := &domain.PropertyUnitImage{PropertyUnitID: unitID, Image: image}
	if err := s.repos.Units.CreateImage(ctx, img); err != nil {
		return nil, fmt.Errorf("failed to add unit image: %w", err)
	}
	return &UnitImageView{ID: img.ID, Image: img.Image, CreatedAt: img.CreatedAt}, nil
}

func (s *UnitService) DeleteImage(ctx context.Context, unitID, imageID string) error {
	return s.repos.Units.DeleteImage(ctx, unitID, imageID)
}
