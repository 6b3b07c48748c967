package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andalize/proptic/internal/domain"
	"github.com/andalize/proptic/internal/repository"
)

// RoleView is a role as returned by the API.
type RoleView struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Description *string `json:"description"`
}

// UserTenancyView is the active tenancy nested in a user.
type UserTenancyView struct {
	PropertyUnitID   string      `json:"property_unit_id"`
	PropertyUnitName string      `json:"property_unit_name"`
	TenancyStartDate domain.Date `json:"tenancy_start_date"`
	TenancyEndDate   domain.Date `json:"tenancy_end_date"`
}

// UserView is a user as returned by the API. The password hash never leaves
// the service.
type UserView struct {
	ID              string           `json:"id"`
	Email           *string          `json:"email"`
	FirstName       string           `json:"first_name"`
	LastName        string           `json:"last_name"`
	FullName        string           `json:"full_name"`
	Gender          string           `json:"gender"`
	NationalID      *string          `json:"national_id"`
	PassportNumber  *string          `json:"passport_number"`
	Roles           []RoleView       `json:"roles"`
	Tenancy         *UserTenancyView `json:"tenancy"`
	IsActive        bool             `json:"is_active"`
	IsStaff         bool             `json:"is_staff"`
	PropertyProject *string          `json:"property_project"`
	LastLogin       *time.Time       `json:"last_login"`
	CreatedAt       time.Time        `json:"created_at"`
}

// ProjectView is a property project as returned by the API.
type ProjectView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Description *string   `json:"description"`
	CoverImage  *string   `json:"cover_image"`
	CreatedAt   time.Time `json:"created_at"`
}

// TenantInfo describes the tenant currently occupying a unit.
type TenantInfo struct {
	TenantID         string      `json:"tenant_id"`
	FullName         string      `json:"full_name"`
	Email            *string     `json:"email"`
	TenancyID        string      `json:"tenancy_id"`
	TenancyStartDate domain.Date `json:"tenancy_start_date"`
	TenancyEndDate   domain.Date `json:"tenancy_end_date"`
}

type UnitImageView struct {
	ID        string    `json:"id"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

// UnitView is a property unit as returned by the API.
type UnitView struct {
	ID                  string          `json:"id"`
	PropertyProject     string          `json:"property_project"`
	PropertyProjectName string          `json:"property_project_name"`
	UnitName            string          `json:"unit_name"`
	UnitType            string          `json:"unit_type"`
	Purpose             string          `json:"purpose"`
	Price               float64         `json:"price"`
	ListedForRent       bool            `json:"listed_for_rent"`
	ListedForSale       bool            `json:"listed_for_sale"`
	Available           bool            `json:"available"`
	Amenities           json.RawMessage `json:"amenities"`
	Paid                bool            `json:"paid"`
	PaidAt              *time.Time      `json:"paid_at"`
	Images              []UnitImageView `json:"images"`
	CreatedAt           time.Time       `json:"created_at"`
	TenantInfo          *TenantInfo     `json:"tenant_info"`
}

// TenancyView nests the full tenant and unit.
type TenancyView struct {
	ID               string      `json:"id"`
	Tenant           *UserView   `json:"tenant"`
	PropertyUnit     *UnitView   `json:"property_unit"`
	TenancyStartDate domain.Date `json:"tenancy_start_date"`
	TenancyEndDate   domain.Date `json:"tenancy_end_date"`
	MonthlyRent      float64     `json:"monthly_rent"`
	DepositAmount    float64     `json:"deposit_amount"`
	RentPeriodPaid   int         `json:"rent_period_paid"`
	PaidAmount       float64     `json:"paid_amount"`
	PaymentDueDate   domain.Date `json:"payment_due_date"`
	Active           bool        `json:"active"`
	CreatedAt        time.Time   `json:"created_at"`
}

type RentTransactionView struct {
	ID            string      `json:"id"`
	Tenancy       string      `json:"tenancy"`
	Amount        float64     `json:"amount"`
	Method        string      `json:"method"`
	Status        string      `json:"status"`
	PeriodStart   domain.Date `json:"period_start"`
	PeriodEnd     domain.Date `json:"period_end"`
	PaidDays      int         `json:"paid_days"`
	ReceiptNumber *string     `json:"receipt_number"`
	CreatedAt     time.Time   `json:"created_at"`
}

type BookingView struct {
	ID               string    `json:"id"`
	PropertyUnitID   string    `json:"property_unit_id"`
	PropertyUnitName string    `json:"property_unit_name"`
	GuestID          string    `json:"guest_id"`
	GuestEmail       *string   `json:"guest_email"`
	CheckIn          time.Time `json:"check_in"`
	CheckOut         time.Time `json:"check_out"`
	TotalAmount      float64   `json:"total_amount"`
	PaymentStatus    string    `json:"payment_status"`
	BookingStatus    string    `json:"booking_status"`
	CreatedAt        time.Time `json:"created_at"`
}

// assembler turns rows into views. Related rows are fetched once per batch.
type assembler struct {
	repos *repository.Repositories
}

func roleView(r domain.Role) RoleView {
	return RoleView{ID: r.ID, Name: r.Name, DisplayName: r.DisplayName, Description: stringPtr(r.Description)}
}

func projectView(p *domain.PropertyProject) ProjectView {
	return ProjectView{
		ID:          p.ID,
		Name:        p.Name,
		Address:     p.Address,
		Description: stringPtr(p.Description),
		CoverImage:  stringPtr(p.CoverImage),
		CreatedAt:   p.CreatedAt,
	}
}

func rentTransactionView(tx *domain.RentTransaction) RentTransactionView {
	return RentTransactionView{
		ID:            tx.ID,
		Tenancy:       tx.TenancyID,
		Amount:        tx.Amount,
		Method:        tx.Method,
		Status:        tx.Status,
		PeriodStart:   tx.PeriodStart,
		PeriodEnd:     tx.PeriodEnd,
		PaidDays:      tx.PaidDays,
		ReceiptNumber: stringPtr(tx.ReceiptNumber),
		CreatedAt:     tx.CreatedAt,
	}
}

func (a *assembler) user(ctx context.Context, u *domain.User) (*UserView, error) {
	views, err := a.users(ctx, []*domain.User{u})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// users prefetches the active tenancy of every user and the units they point at.
func (a *assembler) users(ctx context.Context, users []*domain.User) ([]UserView, error) {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	tenancies, err := a.repos.Tenancies.ActiveByTenantIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load active tenancies: %w", err)
	}
	unitIDs := make([]string, 0, len(tenancies))
	for _, t := range tenancies {
		unitIDs = append(unitIDs, t.PropertyUnitID)
	}
	units, err := a.repos.Units.GetUnitsByIDs(ctx, uniqueStrings(unitIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load tenancy units: %w", err)
	}

	out := make([]UserView, 0, len(users))
	for _, u := range users {
		v := UserView{
			ID:              u.ID,
			Email:           stringPtr(u.Email),
			FirstName:       u.FirstName,
			LastName:        u.LastName,
			FullName:        u.FullName(),
			Gender:          u.Gender,
			NationalID:      stringPtr(u.NationalID),
			PassportNumber:  stringPtr(u.PassportNumber),
			Roles:           make([]RoleView, 0, len(u.Roles)),
			IsActive:        u.IsActive,
			IsStaff:         u.IsStaff,
			PropertyProject: stringPtr(u.PropertyProjectID),
			LastLogin:       timePtr(u.LastLoginAt),
			CreatedAt:       u.CreatedAt,
		}
		for _, r := range u.Roles {
			v.Roles = append(v.Roles, roleView(r))
		}
		if t, ok := tenancies[u.ID]; ok {
			tv := &UserTenancyView{
				PropertyUnitID:   t.PropertyUnitID,
				TenancyStartDate: t.TenancyStartDate,
				TenancyEndDate:   t.TenancyEndDate,
			}
			if unit, ok := units[t.PropertyUnitID]; ok {
				tv.PropertyUnitName = unit.UnitName
			}
			v.Tenancy = tv
		}
		out = append(out, v)
	}
	return out, nil
}

func (a *assembler) unit(ctx context.Context, u *domain.PropertyUnit) (*UnitView, error) {
	views, err := a.units(ctx, []*domain.PropertyUnit{u})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// units prefetches images, active tenancies and their tenants for the batch.
func (a *assembler) units(ctx context.Context, units []*domain.PropertyUnit) ([]UnitView, error) {
	ids := make([]string, 0, len(units))
	for _, u := range units {
		ids = append(ids, u.ID)
	}
	images, err := a.repos.Units.ListImages(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load unit images: %w", err)
	}
	tenancies, err := a.repos.Tenancies.ActiveByUnitIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load active tenancies: %w", err)
	}
	tenantIDs := make([]string, 0, len(tenancies))
	for _, t := range tenancies {
		tenantIDs = append(tenantIDs, t.TenantID)
	}
	tenants, err := a.repos.Users.GetUsersByIDs(ctx, uniqueStrings(tenantIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load tenants: %w", err)
	}

	out := make([]UnitView, 0, len(units))
	for _, u := range units {
		v := UnitView{
			ID:                  u.ID,
			PropertyProject:     u.PropertyProjectID,
			PropertyProjectName: u.PropertyProjectName,
			UnitName:            u.UnitName,
			UnitType:            u.UnitType,
			Purpose:             u.Purpose,
			Price:               u.Price,
			ListedForRent:       u.ListedForRent,
			ListedForSale:       u.ListedForSale,
			Available:           u.Available,
			Amenities:           u.Amenities,
			Paid:                u.Paid,
			PaidAt:              timePtr(u.PaidAt),
			Images:              []UnitImageView{},
			CreatedAt:           u.CreatedAt,
		}
		for _, img := range images[u.ID] {
			v.Images = append(v.Images, UnitImageView{ID: img.ID, Image: img.Image, CreatedAt: img.CreatedAt})
		}
		if t, ok := tenancies[u.ID]; ok {
			info := &TenantInfo{
				TenantID:         t.TenantID,
				TenancyID:        t.ID,
				TenancyStartDate: t.TenancyStartDate,
				TenancyEndDate:   t.TenancyEndDate,
			}
			if tenant, ok := tenants[t.TenantID]; ok {
				info.FullName = tenant.FullName()
				info.Email = stringPtr(tenant.Email)
			}
			v.TenantInfo = info
		}
		out = append(out, v)
	}
	return out, nil
}

func (a *assembler) tenancy(ctx context.Context, t *domain.Tenancy) (*TenancyView, error) {
	views, err := a.tenancies(ctx, []*domain.Tenancy{t})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// tenancies nests full tenant and unit views, each built in one batch.
func (a *assembler) tenancies(ctx context.Context, tenancies []*domain.Tenancy) ([]TenancyView, error) {
	tenantIDs := make([]string, 0, len(tenancies))
	unitIDs := make([]string, 0, len(tenancies))
	for _, t := range tenancies {
		tenantIDs = append(tenantIDs, t.TenantID)
		unitIDs = append(unitIDs, t.PropertyUnitID)
	}

	tenantMap, err := a.repos.Users.GetUsersByIDs(ctx, uniqueStrings(tenantIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load tenants: %w", err)
	}
	tenantRows := make([]*domain.User, 0, len(tenantMap))
	for _, u := range tenantMap {
		tenantRows = append(tenantRows, u)
	}
	tenantViews, err := a.users(ctx, tenantRows)
	if err != nil {
		return nil, err
	}
	tenantsByID := make(map[string]*UserView, len(tenantViews))
	for i := range tenantViews {
		tenantsByID[tenantViews[i].ID] = &tenantViews[i]
	}

	unitMap, err := a.repos.Units.GetUnitsByIDs(ctx, uniqueStrings(unitIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load units: %w", err)
	}
	unitRows := make([]*domain.PropertyUnit, 0, len(unitMap))
	for _, u := range unitMap {
		unitRows = append(unitRows, u)
	}
	unitViews, err := a.units(ctx, unitRows)
	if err != nil {
		return nil, err
	}
	unitsByID := make(map[string]*UnitView, len(unitViews))
	for i := range unitViews {
		unitsByID[unitViews[i].ID] = &unitViews[i]
	}

	out := make([]TenancyView, 0, len(tenancies))
	for _, t := range tenancies {
		out = append(out, TenancyView{
			ID:               t.ID,
			Tenant:           tenantsByID[t.TenantID],
			PropertyUnit:     unitsByID[t.PropertyUnitID],
			TenancyStartDate: t.TenancyStartDate,
			TenancyEndDate:   t.TenancyEndDate,
			MonthlyRent:      t.MonthlyRent,
			DepositAmount:    t.DepositAmount,
			RentPeriodPaid:   t.RentPeriodPaid,
			PaidAmount:       t.PaidAmount,
			PaymentDueDate:   t.PaymentDueDate,
			Active:           t.Active,
			CreatedAt:        t.CreatedAt,
		})
	}
	return out, nil
}

func (a *assembler) booking(ctx context.Context, b *domain.Booking) (*BookingView, error) {
	views, err := a.bookings(ctx, []*domain.Booking{b})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// bookings prefetches units and guests for the batch.
func (a *assembler) bookings(ctx context.Context, bookings []*domain.Booking) ([]BookingView, error) {
	unitIDs := make([]string, 0, len(bookings))
	guestIDs := make([]string, 0, len(bookings))
	for _, b := range bookings {
		unitIDs = append(unitIDs, b.PropertyUnitID)
		guestIDs = append(guestIDs, b.GuestID)
	}
	units, err := a.repos.Units.GetUnitsByIDs(ctx, uniqueStrings(unitIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load booking units: %w", err)
	}
	guests, err := a.repos.Users.GetUsersByIDs(ctx, uniqueStrings(guestIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load guests: %w", err)
	}

	out := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		v := BookingView{
			ID:             b.ID,
			PropertyUnitID: b.PropertyUnitID,
			GuestID:        b.GuestID,
			CheckIn:        b.CheckIn,
			CheckOut:       b.CheckOut,
			TotalAmount:    b.TotalAmount,
			PaymentStatus:  b.PaymentStatus,
			BookingStatus:  b.BookingStatus,
			CreatedAt:      b.CreatedAt,
		}
		if u, ok := units[b.PropertyUnitID]; ok {
			v.PropertyUnitName = u.UnitName
		}
		if g, ok := guests[b.GuestID]; ok {
			v.GuestEmail = stringPtr(g.Email)
		}
		out = append(out, v)
	}
	return out, nil
}
