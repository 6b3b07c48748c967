package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andalize/proptic/internal/domain"
)

// memoryStore backs every Memory*Repository when DB is disabled. It enforces
// the same unique, foreign key and check rules as the schema.
type memoryStore struct {
	mu sync.RWMutex

	roles     map[string]domain.Role
	users     map[string]domain.User
	userRoles map[string][]string // user id -> role ids
	projects  map[string]domain.PropertyProject
	units     map[string]domain.PropertyUnit
	images    map[string]domain.PropertyUnitImage
	tenancies map[string]domain.Tenancy
	rent      map[string]domain.RentTransaction
	bookings  map[string]domain.Booking

	// seq orders rows created within the same clock tick.
	seq     int64
	created map[string]int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		roles:     map[string]domain.Role{},
		users:     map[string]domain.User{},
		userRoles: map[string][]string{},
		projects:  map[string]domain.PropertyProject{},
		units:     map[string]domain.PropertyUnit{},
		images:    map[string]domain.PropertyUnitImage{},
		tenancies: map[string]domain.Tenancy{},
		rent:      map[string]domain.RentTransaction{},
		bookings:  map[string]domain.Booking{},
		created:   map[string]int64{},
	}
}

// NewMemoryRepositories returns in-memory repositories sharing one store,
// seeded with the default role catalog.
func NewMemoryRepositories() *Repositories {
	s := newMemoryStore()
	for _, r := range domain.SeedRoles {
		r.ID = newID("")
		s.roles[r.ID] = r
	}
	return &Repositories{
		Roles:            &MemoryRolesRepository{s},
		Users:            &MemoryUsersRepository{s},
		Projects:         &MemoryProjectsRepository{s},
		Units:            &MemoryUnitsRepository{s},
		Tenancies:        &MemoryTenanciesRepository{s},
		RentTransactions: &MemoryRentTransactionsRepository{s},
		Bookings:         &MemoryBookingsRepository{s},
	}
}

func (s *memoryStore) stamp(id string) time.Time {
	s.seq++
	s.created[id] = s.seq
	return time.Now().UTC()
}

// newer orders by created_at then insertion sequence, newest first.
func (s *memoryStore) newer(idA string, a time.Time, idB string, b time.Time) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return s.created[idA] > s.created[idB]
}

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
}

func paginate[T any](all []T, page, size int) []T {
	if size <= 0 {
		return all
	}
	limit, offset := limitOffset(page, size)
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

// --- Roles ---

type MemoryRolesRepository struct{ s *memoryStore }

var _ RolesRepository = (*MemoryRolesRepository)(nil)

func (r *MemoryRolesRepository) ListRoles(_ context.Context) ([]domain.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Role, 0, len(r.s.roles))
	for _, role := range r.s.roles {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRolesRepository) GetRoleByName(_ context.Context, name string) (*domain.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, role := range r.s.roles {
		if role.Name == name {
			role := role
			return &role, nil
		}
	}
	return nil, notFound("role " + name)
}

func (r *MemoryRolesRepository) GetRolesByIDs(_ context.Context, ids []string) ([]domain.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Role{}
	for _, id := range validUUIDs(ids) {
		if role, ok := r.s.roles[id]; ok {
			out = append(out, role)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- Users ---

type MemoryUsersRepository struct{ s *memoryStore }

var _ UsersRepository = (*MemoryUsersRepository)(nil)

// withRoles copies u and attaches its roles. Caller holds the lock.
func (s *memoryStore) withRoles(u domain.User) *domain.User {
	u.Roles = []domain.Role{}
	for _, id := range s.userRoles[u.ID] {
		if role, ok := s.roles[id]; ok {
			u.Roles = append(u.Roles, role)
		}
	}
	sort.Slice(u.Roles, func(i, j int) bool { return u.Roles[i].Name < u.Roles[j].Name })
	return &u
}

func (r *MemoryUsersRepository) GetUser(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, notFound("user")
	}
	return r.s.withRoles(u), nil
}

func (r *MemoryUsersRepository) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email.Valid && strings.EqualFold(u.Email.String, email) {
			return r.s.withRoles(u), nil
		}
	}
	return nil, notFound("user")
}

func (r *MemoryUsersRepository) GetUsersByIDs(_ context.Context, ids []string) (map[string]*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := map[string]*domain.User{}
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out[id] = r.s.withRoles(u)
		}
	}
	return out, nil
}

func (r *MemoryUsersRepository) ListUsers(_ context.Context, filter UserFilter) ([]*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*domain.User{}
	for _, u := range r.s.users {
		full := r.s.withRoles(u)
		if filter.Role != "" && !full.HasRole(filter.Role) {
			continue
		}
		out = append(out, full)
	}
	sort.Slice(out, func(i, j int) bool {
		return r.s.newer(out[j].ID, out[j].CreatedAt, out[i].ID, out[i].CreatedAt)
	})
	return out, nil
}

func (r *MemoryUsersRepository) EmailExists(_ context.Context, email, excludeID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.ID != excludeID && u.Email.Valid && strings.EqualFold(u.Email.String, email) {
			return true, nil
		}
	}
	return false, nil
}

// checkUser enforces the users unique and foreign key constraints.
func (s *memoryStore) checkUser(u *domain.User, roleIDs []string) error {
	for _, other := range s.users {
		if other.ID == u.ID {
			continue
		}
		if u.Email.Valid && other.Email.Valid && strings.EqualFold(other.Email.String, u.Email.String) {
			return domain.FieldError("email", domain.MsgEmailTaken)
		}
		if u.NationalID.Valid && other.NationalID.Valid && other.NationalID.String == u.NationalID.String {
			return domain.FieldError("national_id", domain.MsgNationalIDTaken)
		}
		if u.PassportNumber.Valid && other.PassportNumber.Valid && other.PassportNumber.String == u.PassportNumber.String {
			return domain.FieldError("passport_number", domain.MsgPassportTaken)
		}
	}
	if u.PropertyProjectID.Valid {
		if _, ok := s.projects[u.PropertyProjectID.String]; !ok {
			return domain.FieldError("property_project", msgRelatedMissing)
		}
	}
	for _, id := range roleIDs {
		if _, ok := s.roles[id]; !ok {
			return domain.FieldError("role_ids", msgRelatedMissing)
		}
	}
	return nil
}

func (r *MemoryUsersRepository) CreateUser(_ context.Context, user *domain.User, roleIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user.ID = newID(user.ID)
	if err := r.s.checkUser(user, roleIDs); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.CreatedAt = r.s.stamp(user.ID)
	user.UpdatedAt = user.CreatedAt
	stored := *user
	stored.Roles = nil
	r.s.users[user.ID] = stored
	r.s.userRoles[user.ID] = append([]string(nil), roleIDs...)
	return nil
}

func (r *MemoryUsersRepository) UpdateUser(_ context.Context, user *domain.User, roleIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return notFound("user")
	}
	if err := r.s.checkUser(user, roleIDs); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	user.UpdatedAt = time.Now().UTC()
	stored := *user
	stored.Roles = nil
	r.s.users[user.ID] = stored
	if roleIDs != nil {
		r.s.userRoles[user.ID] = append([]string(nil), roleIDs...)
	}
	return nil
}

func (r *MemoryUsersRepository) DeactivateUser(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return notFound("user")
	}
	u.IsActive = false
	u.UpdatedAt = time.Now().UTC()
	r.s.users[id] = u
	return nil
}

func (r *MemoryUsersRepository) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil
	}
	u.LastLoginAt.Time, u.LastLoginAt.Valid = at, true
	r.s.users[id] = u
	return nil
}

// --- Projects ---

type MemoryProjectsRepository struct{ s *memoryStore }

var _ ProjectsRepository = (*MemoryProjectsRepository)(nil)

func (r *MemoryProjectsRepository) ListProjects(_ context.Context, page, size int) ([]*domain.PropertyProject, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]*domain.PropertyProject, 0, len(r.s.projects))
	for _, p := range r.s.projects {
		p := p
		all = append(all, &p)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].ID < all[j].ID
	})
	return paginate(all, page, size), len(all), nil
}

func (r *MemoryProjectsRepository) GetProject(_ context.Context, id string) (*domain.PropertyProject, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.projects[id]
	if !ok {
		return nil, notFound("project")
	}
	return &p, nil
}

func (r *MemoryProjectsRepository) GetProjectsByIDs(_ context.Context, ids []string) (map[string]*domain.PropertyProject, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := map[string]*domain.PropertyProject{}
	for _, id := range ids {
		if p, ok := r.s.projects[id]; ok {
			p := p
			out[id] = &p
		}
	}
	return out, nil
}

func (r *MemoryProjectsRepository) ProjectNameExists(_ context.Context, name, excludeID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.projects {
		if p.ID != excludeID && strings.EqualFold(p.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryProjectsRepository) CreateProject(_ context.Context, p *domain.PropertyProject) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = newID(p.ID)
	p.CreatedAt = r.s.stamp(p.ID)
	r.s.projects[p.ID] = *p
	return nil
}

func (r *MemoryProjectsRepository) UpdateProject(_ context.Context, p *domain.PropertyProject) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.projects[p.ID]
	if !ok {
		return notFound("project")
	}
	p.CreatedAt = old.CreatedAt
	r.s.projects[p.ID] = *p
	return nil
}

func (r *MemoryProjectsRepository) DeleteProject(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[id]; !ok {
		return notFound("project")
	}
	delete(r.s.projects, id)
	for uid, u := range r.s.users {
		if u.PropertyProjectID.Valid && u.PropertyProjectID.String == id {
			u.PropertyProjectID.String, u.PropertyProjectID.Valid = "", false
			r.s.users[uid] = u
		}
	}
	for unitID, u := range r.s.units {
		if u.PropertyProjectID == id {
			r.s.deleteUnit(unitID)
		}
	}
	return nil
}

// --- Units ---

type MemoryUnitsRepository struct{ s *memoryStore }

var _ UnitsRepository = (*MemoryUnitsRepository)(nil)

// unitView copies u with the project name joined. Caller holds the lock.
func (s *memoryStore) unitView(u domain.PropertyUnit) *domain.PropertyUnit {
	u.PropertyProjectName = s.projects[u.PropertyProjectID].Name
	u.Amenities = rawJSON(u.Amenities)
	return &u
}

func (r *MemoryUnitsRepository) ListUnits(_ context.Context, filter UnitFilter, page, size int) ([]*domain.PropertyUnit, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := []*domain.PropertyUnit{}
	for _, u := range r.s.units {
		if filter.ProjectID != "" && u.PropertyProjectID != filter.ProjectID {
			continue
		}
		all = append(all, r.s.unitView(u))
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.PropertyProjectName != b.PropertyProjectName {
			return a.PropertyProjectName < b.PropertyProjectName
		}
		if a.UnitName != b.UnitName {
			return a.UnitName < b.UnitName
		}
		return a.ID < b.ID
	})
	return paginate(all, page, size), len(all), nil
}

func (r *MemoryUnitsRepository) GetUnit(_ context.Context, id string) (*domain.PropertyUnit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.units[id]
	if !ok {
		return nil, notFound("unit")
	}
	return r.s.unitView(u), nil
}

func (r *MemoryUnitsRepository) GetUnitsByIDs(_ context.Context, ids []string) (map[string]*domain.PropertyUnit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := map[string]*domain.PropertyUnit{}
	for _, id := range ids {
		if u, ok := r.s.units[id]; ok {
			out[id] = r.s.unitView(u)
		}
	}
	return out, nil
}

func (s *memoryStore) checkUnit(u *domain.PropertyUnit) error {
	if _, ok := s.projects[u.PropertyProjectID]; !ok {
		return domain.FieldError("property_project", msgRelatedMissing)
	}
	if u.Price < 0 {
		return domain.FieldError("price", domain.MsgPriceNegative)
	}
	if msg := domain.ValidateAmenities(u.Amenities); msg != "" {
		return domain.FieldError("amenities", msg)
	}
	return nil
}

func (r *MemoryUnitsRepository) CreateUnit(_ context.Context, u *domain.PropertyUnit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkUnit(u); err != nil {
		return fmt.Errorf("failed to create unit: %w", err)
	}
	u.ID = newID(u.ID)
	u.CreatedAt = r.s.stamp(u.ID)
	stored := *u
	stored.Amenities = rawJSON(u.Amenities)
	stored.PropertyProjectName = ""
	r.s.units[u.ID] = stored
	return nil
}

func (r *MemoryUnitsRepository) UpdateUnit(_ context.Context, u *domain.PropertyUnit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.units[u.ID]
	if !ok {
		return notFound("unit")
	}
	if err := r.s.checkUnit(u); err != nil {
		return fmt.Errorf("failed to update unit: %w", err)
	}
	u.CreatedAt = old.CreatedAt
	stored := *u
	stored.Amenities = rawJSON(u.Amenities)
	stored.PropertyProjectName = ""
	r.s.units[u.ID] = stored
	return nil
}

func (r *MemoryUnitsRepository) DeleteUnit(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.units[id]; !ok {
		return notFound("unit")
	}
	r.s.deleteUnit(id)
	return nil
}

// deleteUnit cascades to images, tenancies (and their rent) and bookings.
func (s *memoryStore) deleteUnit(id string) {
	delete(s.units, id)
	for imgID, img := range s.images {
		if img.PropertyUnitID == id {
			delete(s.images, imgID)
		}
	}
	for tID, t := range s.tenancies {
		if t.PropertyUnitID == id {
			s.deleteTenancy(tID)
		}
	}
	for bID, b := range s.bookings {
		if b.PropertyUnitID == id {
			delete(s.bookings, bID)
		}
	}
}

func (r *MemoryUnitsRepository) ListImages(_ context.Context, unitIDs []string) (map[string][]domain.PropertyUnitImage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	want := map[string]bool{}
	for _, id := range unitIDs {
		want[id] = true
	}
	out := map[string][]domain.PropertyUnitImage{}
	for _, img := range r.s.images {
		if want[img.PropertyUnitID] {
			out[img.PropertyUnitID] = append(out[img.PropertyUnitID], img)
		}
	}
	for _, imgs := range out {
		sort.Slice(imgs, func(i, j int) bool {
			return r.s.newer(imgs[j].ID, imgs[j].CreatedAt, imgs[i].ID, imgs[i].CreatedAt)
		})
	}
	return out, nil
}

func (r *MemoryUnitsRepository) CreateImage(_ context.Context, img *domain.PropertyUnitImage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.units[img.PropertyUnitID]; !ok {
		return fmt.Errorf("failed to add unit image: %w", domain.FieldError("property_unit", msgRelatedMissing))
	}
	for _, other := range r.s.images {
		if other.PropertyUnitID == img.PropertyUnitID && other.Image == img.Image {
			return fmt.Errorf("failed to add unit image: %w", domain.FieldError("image", domain.MsgImageDuplicate))
		}
	}
	img.ID = newID(img.ID)
	img.CreatedAt = r.s.stamp(img.ID)
	r.s.images[img.ID] = *img
	return nil
}

func (r *MemoryUnitsRepository) DeleteImage(_ context.Context, unitID, imageID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	img, ok := r.s.images[imageID]
	if !ok || img.PropertyUnitID != unitID {
		return notFound("unit image")
	}
	delete(r.s.images, imageID)
	return nil
}

// --- Tenancies ---

type MemoryTenanciesRepository struct{ s *memoryStore }

var _ TenanciesRepository = (*MemoryTenanciesRepository)(nil)

func (r *MemoryTenanciesRepository) sorted() []*domain.Tenancy {
	out := make([]*domain.Tenancy, 0, len(r.s.tenancies))
	for _, t := range r.s.tenancies {
		t := t
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool {
		return r.s.newer(out[i].ID, out[i].CreatedAt, out[j].ID, out[j].CreatedAt)
	})
	return out
}

func (r *MemoryTenanciesRepository) ListTenancies(_ context.Context) ([]*domain.Tenancy, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.sorted(), nil
}

func (r *MemoryTenanciesRepository) GetTenancy(_ context.Context, id string) (*domain.Tenancy, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tenancies[id]
	if !ok {
		return nil, notFound("tenancy")
	}
	return &t, nil
}

func (r *MemoryTenanciesRepository) CreateTenancy(_ context.Context, t *domain.Tenancy) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[t.TenantID]; !ok {
		return fmt.Errorf("failed to create tenancy: %w", domain.FieldError("tenant_id", msgRelatedMissing))
	}
	if _, ok := r.s.units[t.PropertyUnitID]; !ok {
		return fmt.Errorf("failed to create tenancy: %w", domain.FieldError("property_unit_id", msgRelatedMissing))
	}
	t.ID = newID(t.ID)
	t.CreatedAt = r.s.stamp(t.ID)
	r.s.tenancies[t.ID] = *t
	return nil
}

func (r *MemoryTenanciesRepository) UpdateTenancy(_ context.Context, t *domain.Tenancy) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.tenancies[t.ID]
	if !ok {
		return notFound("tenancy")
	}
	t.TenantID, t.PropertyUnitID, t.CreatedAt = old.TenantID, old.PropertyUnitID, old.CreatedAt
	r.s.tenancies[t.ID] = *t
	return nil
}

func (r *MemoryTenanciesRepository) DeleteTenancy(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tenancies[id]; !ok {
		return notFound("tenancy")
	}
	r.s.deleteTenancy(id)
	return nil
}

func (s *memoryStore) deleteTenancy(id string) {
	delete(s.tenancies, id)
	for rid, tx := range s.rent {
		if tx.TenancyID == id {
			delete(s.rent, rid)
		}
	}
}

func (r *MemoryTenanciesRepository) ActiveByUnitIDs(_ context.Context, unitIDs []string) (map[string]*domain.Tenancy, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.activeBy(unitIDs, func(t *domain.Tenancy) string { return t.PropertyUnitID }), nil
}

func (r *MemoryTenanciesRepository) ActiveByTenantIDs(_ context.Context, tenantIDs []string) (map[string]*domain.Tenancy, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.activeBy(tenantIDs, func(t *domain.Tenancy) string { return t.TenantID }), nil
}

func (r *MemoryTenanciesRepository) activeBy(ids []string, key func(*domain.Tenancy) string) map[string]*domain.Tenancy {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := map[string]*domain.Tenancy{}
	// sorted is newest first, so the first hit per key wins.
	for _, t := range r.sorted() {
		if !t.Active || !want[key(t)] {
			continue
		}
		if _, seen := out[key(t)]; !seen {
			out[key(t)] = t
		}
	}
	return out
}

// --- Rent transactions ---

type MemoryRentTransactionsRepository struct{ s *memoryStore }

var _ RentTransactionsRepository = (*MemoryRentTransactionsRepository)(nil)

func (r *MemoryRentTransactionsRepository) ListRentTransactions(_ context.Context, filter RentTransactionFilter) ([]*domain.RentTransaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*domain.RentTransaction{}
	for _, tx := range r.s.rent {
		if filter.TenancyID != "" && tx.TenancyID != filter.TenancyID {
			continue
		}
		tx := tx
		out = append(out, &tx)
	}
	sort.Slice(out, func(i, j int) bool {
		return r.s.newer(out[i].ID, out[i].CreatedAt, out[j].ID, out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRentTransactionsRepository) GetRentTransaction(_ context.Context, id string) (*domain.RentTransaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	tx, ok := r.s.rent[id]
	if !ok {
		return nil, notFound("rent transaction")
	}
	return &tx, nil
}

func (r *MemoryRentTransactionsRepository) CreateRentTransaction(_ context.Context, tx *domain.RentTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tenancies[tx.TenancyID]; !ok {
		return fmt.Errorf("failed to record rent transaction: %w", domain.FieldError("tenancy", msgRelatedMissing))
	}
	if tx.Amount < 0 {
		return fmt.Errorf("failed to record rent transaction: %w", domain.FieldError("amount", domain.MsgAmountNegative))
	}
	tx.ID = newID(tx.ID)
	tx.CreatedAt = r.s.stamp(tx.ID)
	r.s.rent[tx.ID] = *tx
	return nil
}

// --- Bookings ---

type MemoryBookingsRepository struct{ s *memoryStore }

var _ BookingsRepository = (*MemoryBookingsRepository)(nil)

func (r *MemoryBookingsRepository) ListBookings(_ context.Context) ([]*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.Booking, 0, len(r.s.bookings))
	for _, b := range r.s.bookings {
		b := b
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool {
		return r.s.newer(out[i].ID, out[i].CreatedAt, out[j].ID, out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryBookingsRepository) GetBooking(_ context.Context, id string) (*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, notFound("booking")
	}
	return &b, nil
}

func (s *memoryStore) checkBooking(b *domain.Booking) error {
	if _, ok := s.units[b.PropertyUnitID]; !ok {
		return domain.FieldError("property_unit_id", msgRelatedMissing)
	}
	if _, ok := s.users[b.GuestID]; !ok {
		return domain.FieldError("guest_id", msgRelatedMissing)
	}
	return nil
}

func (r *MemoryBookingsRepository) CreateBooking(_ context.Context, b *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkBooking(b); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	b.ID = newID(b.ID)
	b.CreatedAt = r.s.stamp(b.ID)
	r.s.bookings[b.ID] = *b
	return nil
}

func (r *MemoryBookingsRepository) UpdateBooking(_ context.Context, b *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.bookings[b.ID]
	if !ok {
		return notFound("booking")
	}
	if err := r.s.checkBooking(b); err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	b.CreatedAt = old.CreatedAt
	r.s.bookings[b.ID] = *b
	return nil
}

func (r *MemoryBookingsRepository) DeleteBooking(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bookings[id]; !ok {
		return notFound("booking")
	}
	delete(r.s.bookings, id)
	return nil
}
