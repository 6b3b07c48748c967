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

// UserService manages users, their roles and their profile.
type UserService struct {
	repos  *repository.Repositories
	views  *assembler
	events *events.Emitter
	logger *zap.Logger
}

func NewUserService(repos *repository.Repositories, emitter *events.Emitter, logger *zap.Logger) *UserService {
	return &UserService{
		repos:  repos,
		views:  &assembler{repos: repos},
		events: emitter,
		logger: logger,
	}
}

// UserInput is the writable part of a user. Nil fields are left unchanged;
// an empty string clears a nullable column.
type UserInput struct {
	Email           *string  `json:"email"`
	Password        *string  `json:"password"`
	FirstName       *string  `json:"first_name"`
	LastName        *string  `json:"last_name"`
	Gender          *string  `json:"gender"`
	NationalID      *string  `json:"national_id"`
	PassportNumber  *string  `json:"passport_number"`
	PropertyProject *string  `json:"property_project"`
	RoleIDs         []string `json:"role_ids"`
}

// ProjectRef is the id and name of a project.
type ProjectRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LoggedInUserView is the current user with their home project.
type LoggedInUserView struct {
	User            *UserView   `json:"user"`
	PropertyProject *ProjectRef `json:"property_project"`
}

// UsersByRoleView lists the holders of one role.
type UsersByRoleView struct {
	Role  string     `json:"role"`
	Count int        `json:"count"`
	Users []UserView `json:"users"`
}

// applyUser merges in into u and records field failures on v. The
// returned error is reserved for repository failures.
func (s *UserService) applyUser(ctx context.Context, u *domain.User, in UserInput, v *domain.ValidationError) error {
	if in.Email != nil {
		email := domain.NormalizeEmail(*in.Email)
		switch {
		case email == "":
			u.Email = nullString("")
		case domain.ValidateEmailFormat(email) != "":
			v.Add("email", domain.MsgEmailInvalid)
		default:
			exists, err := s.repos.Users.EmailExists(ctx, email, u.ID)
			if err != nil {
				return fmt.Errorf("failed to check email: %w", err)
			}
			if exists {
				v.Add("email", domain.MsgEmailTaken)
			} else {
				u.Email = nullString(email)
			}
		}
	}
	if in.FirstName != nil {
		u.FirstName = trimmed(in.FirstName)
	}
	if in.LastName != nil {
		u.LastName = trimmed(in.LastName)
	}
	if in.Gender != nil {
		u.Gender = trimmed(in.Gender)
	}
	if in.NationalID != nil {
		id := trimmed(in.NationalID)
		if msg := domain.ValidateNationalID(id); msg != "" {
			v.Add("national_id", msg)
		} else {
			u.NationalID = nullString(id)
		}
	}
	if in.PassportNumber != nil {
		number := trimmed(in.PassportNumber)
		if msg := domain.ValidatePassportNumber(number); msg != "" {
			v.Add("passport_number", msg)
		} else {
			u.PassportNumber = nullString(number)
		}
	}
	if in.Password != nil {
		if msg := domain.ValidatePassword(*in.Password); msg != "" {
			v.Add("password", msg)
		}
	}
	if in.PropertyProject != nil {
		id := trimmed(in.PropertyProject)
		if id == "" {
			u.PropertyProjectID = nullString("")
		} else if _, err := s.repos.Projects.GetProject(ctx, id); err != nil {
			if !isNotFound(err) {
				return fmt.Errorf("failed to check property project: %w", err)
			}
			v.Add("property_project", relatedMissing(id))
		} else {
			u.PropertyProjectID = nullString(id)
		}
	}
	return nil
}

// finishUser runs the record level checks and hashes the password once every
// field is valid.
func finishUser(u *domain.User, in UserInput, v *domain.ValidationError) error {
	if !v.Empty() {
		return v
	}
	if msg := domain.RequireIdentityDocument(u.NationalID.String, u.PassportNumber.String); msg != "" {
		v.Add(domain.NonFieldErrors, msg)
		return v
	}
	if in.Password != nil {
		hash, err := HashPassword(*in.Password)
		if err != nil {
			return err
		}
		u.PasswordHash = nullString(hash)
	}
	return nil
}

// resolveRoles checks ids against the catalog and falls back to the default
// role when none are given.
func (s *UserService) resolveRoles(ctx context.Context, ids []string, v *domain.ValidationError) ([]string, error) {
	ids = uniqueStrings(ids)
	roles, err := s.repos.Roles.GetRolesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	if len(roles) != len(ids) {
		found := make(map[string]bool, len(roles))
		for _, r := range roles {
			found[r.ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				v.Add("role_ids", relatedMissing(id))
			}
		}
		return nil, nil
	}

	var catalog []domain.Role
	if len(roles) == 0 {
		catalog, err = s.repos.Roles.ListRoles(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load role catalog: %w", err)
		}
	}
	assigned, err := domain.AssignDefaultRole(roles, catalog)
	if errors.Is(err, domain.ErrDefaultRoleMissing) {
		v.Add("roles", domain.MsgDefaultRoleMissing)
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(assigned))
	for _, r := range assigned {
		out = append(out, r.ID)
	}
	return out, nil
}

// ListUsers returns every user, optionally only holders of role.
func (s *UserService) ListUsers(ctx context.Context, role string) ([]UserView, error) {
	users, err := s.repos.Users.ListUsers(ctx, repository.UserFilter{Role: role})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return s.views.users(ctx, users)
}

// ListTenants returns the holders of the tenant role.
func (s *UserService) ListTenants(ctx context.Context) ([]UserView, error) {
	return s.ListUsers(ctx, domain.RoleTenant)
}

// UsersByRole fails with ErrNotFound when the role does not exist.
func (s *UserService) UsersByRole(ctx context.Context, name string) (*UsersByRoleView, error) {
	if _, err := s.repos.Roles.GetRoleByName(ctx, name); err != nil {
		return nil, fmt.Errorf("role %q: %w", name, err)
	}
	users, err := s.ListUsers(ctx, name)
	if err != nil {
		return nil, err
	}
	return &UsersByRoleView{Role: name, Count: len(users), Users: users}, nil
}

func (s *UserService) ListRoles(ctx context.Context) ([]RoleView, error) {
	roles, err := s.repos.Roles.ListRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	out := make([]RoleView, 0, len(roles))
	for _, r := range roles {
		out = append(out, roleView(r))
	}
	return out, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*UserView, error) {
	u, err := s.repos.Users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.views.user(ctx, u)
}

// CreateUser creates an active, non-staff user. Without role_ids the user
// gets the tenant role.
func (s *UserService) CreateUser(ctx context.Context, in UserInput) (*UserView, error) {
	u := &domain.User{IsActive: true}
	v := domain.NewValidationError()
	if err := s.applyUser(ctx, u, in, v); err != nil {
		return nil, err
	}
	roleIDs, err := s.resolveRoles(ctx, in.RoleIDs, v)
	if err != nil {
		return nil, err
	}
	if err := finishUser(u, in, v); err != nil {
		return nil, err
	}
	if err := s.repos.Users.CreateUser(ctx, u, roleIDs); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	view, err := s.GetUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User created", zap.String("user_id", u.ID))
	s.events.Emit(ctx, events.UserCreated, u.ID, map[string]any{"email": view.Email, "roles": roleNames(view.Roles)})
	return view, nil
}

// UpdateUser merges in into the user. role_ids, when present, replaces the
// role set; an empty list resets it to the default role.
func (s *UserService) UpdateUser(ctx context.Context, id string, in UserInput) (*UserView, error) {
	return s.update(ctx, id, in, true)
}

// UpdateProfile is UpdateUser for the caller's own account; role_ids and the
// home project are ignored.
func (s *UserService) UpdateProfile(ctx context.Context, id string, in UserInput) (*UserView, error) {
	in.RoleIDs = nil
	in.PropertyProject = nil
	return s.update(ctx, id, in, false)
}

func (s *UserService) update(ctx context.Context, id string, in UserInput, allowRoles bool) (*UserView, error) {
	u, err := s.repos.Users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	v := domain.NewValidationError()
	if err := s.applyUser(ctx, u, in, v); err != nil {
		return nil, err
	}
	var roleIDs []string
	if allowRoles && in.RoleIDs != nil {
		if roleIDs, err = s.resolveRoles(ctx, in.RoleIDs, v); err != nil {
			return nil, err
		}
	}
	if err := finishUser(u, in, v); err != nil {
		return nil, err
	}
	if err := s.repos.Users.UpdateUser(ctx, u, roleIDs); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return s.GetUser(ctx, id)
}

// DeactivateUser clears is_active. The row stays readable.
func (s *UserService) DeactivateUser(ctx context.Context, id string) error {
	if err := s.repos.Users.DeactivateUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info("User deactivated", zap.String("user_id", id))
	s.events.Emit(ctx, events.UserDeactivated, id, nil)
	return nil
}

// LoggedInUser returns the user with the id and name of their home project.
func (s *UserService) LoggedInUser(ctx context.Context, id string) (*LoggedInUserView, error) {
	u, err := s.repos.Users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	view, err := s.views.user(ctx, u)
	if err != nil {
		return nil, err
	}
	out := &LoggedInUserView{User: view}
	if u.PropertyProjectID.Valid {
		p, err := s.repos.Projects.GetProject(ctx, u.PropertyProjectID.String)
		switch {
		case err == nil:
			out.PropertyProject = &ProjectRef{ID: p.ID, Name: p.Name}
		case !isNotFound(err):
			return nil, fmt.Errorf("failed to load property project: %w", err)
		}
	}
	return out, nil
}

// SuperuserInput is used by the admin CLI.
type SuperuserInput struct {
	Email          string
	Password       string
	FirstName      string
	LastName       string
	NationalID     string
	PassportNumber string
}

// CreateSuperuser creates a staff superuser holding the admin role.
func (s *UserService) CreateSuperuser(ctx context.Context, in SuperuserInput) (*UserView, error) {
	u := &domain.User{IsActive: true, IsStaff: true, IsSuperuser: true}
	input := UserInput{
		Email:          &in.Email,
		Password:       &in.Password,
		FirstName:      &in.FirstName,
		LastName:       &in.LastName,
		NationalID:     &in.NationalID,
		PassportNumber: &in.PassportNumber,
	}
	v := domain.NewValidationError()
	if domain.NormalizeEmail(in.Email) == "" {
		v.Add("email", domain.MsgFieldRequired)
	}
	if err := s.applyUser(ctx, u, input, v); err != nil {
		return nil, err
	}
	admin, err := s.repos.Roles.GetRoleByName(ctx, domain.RoleAdmin)
	if err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("failed to load admin role: %w", err)
	}
	if admin == nil {
		v.Add("roles", fmt.Sprintf("Role '%s' does not exist.", domain.RoleAdmin))
	}
	if err := finishUser(u, input, v); err != nil {
		return nil, err
	}
	if err := s.repos.Users.CreateUser(ctx, u, []string{admin.ID}); err != nil {
		return nil, fmt.Errorf("failed to create superuser: %w", err)
	}
	s.logger.Info("Superuser created", zap.String("user_id", u.ID))
	return s.GetUser(ctx, u.ID)
}

func roleNames(roles []RoleView) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, r.Name)
	}
	return out
}
