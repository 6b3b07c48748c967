package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andalize/proptic/internal/domain"
	"github.com/andalize/proptic/internal/events"

	"go.uber.org/zap"
)

// AuthService handles registration, login and bearer token resolution.
type AuthService struct {
	users  *UserService
	tokens *TokenIssuer
	events *events.Emitter
	logger *zap.Logger
}

func NewAuthService(users *UserService, tokens *TokenIssuer, emitter *events.Emitter, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, events: emitter, logger: logger}
}

// RegisterInput is the public sign-up payload. Role defaults to tenant.
type RegisterInput struct {
	Email          *string `json:"email"`
	Password       *string `json:"password"`
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Gender         *string `json:"gender"`
	NationalID     *string `json:"national_id"`
	PassportNumber *string `json:"passport_number"`
	Role           string  `json:"role"`
}

type RegisterResult struct {
	Message string    `json:"message"`
	Token   string    `json:"token"`
	User    *UserView `json:"user"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token  string   `json:"token"`
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
}

// Register creates a user holding the named role and signs a token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	input := UserInput{
		Email:          in.Email,
		Password:       in.Password,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Gender:         in.Gender,
		NationalID:     in.NationalID,
		PassportNumber: in.PassportNumber,
	}
	roleName := in.Role
	if roleName == "" {
		roleName = domain.DefaultRoleName
	}

	u := &domain.User{IsActive: true}
	v := domain.NewValidationError()
	if err := s.users.applyUser(ctx, u, input, v); err != nil {
		return nil, err
	}
	role, err := s.users.repos.Roles.GetRoleByName(ctx, roleName)
	if err != nil {
		if !isNotFound(err) {
			return nil, fmt.Errorf("failed to load role: %w", err)
		}
		v.Add("role", fmt.Sprintf("Role '%s' does not exist.", roleName))
	}
	if err := finishUser(u, input, v); err != nil {
		return nil, err
	}
	if err := s.users.repos.Users.CreateUser(ctx, u, []string{role.ID}); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	created, err := s.users.repos.Users.GetUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Issue(created)
	if err != nil {
		return nil, err
	}
	view, err := s.users.views.user(ctx, created)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", u.ID), zap.String("role", roleName))
	s.events.Emit(ctx, events.UserRegistered, u.ID, map[string]any{"email": view.Email, "role": roleName})
	return &RegisterResult{Message: "User created successfully", Token: token, User: view}, nil
}

// Login checks credentials. Every failure returns ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := domain.NormalizeEmail(in.Email)
	u, err := s.users.repos.Users.GetUserByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			CheckPassword(decoyHash(), in.Password)
			s.logger.Warn("Login rejected", zap.String("email", email), zap.String("reason", "unknown email"))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	hash := decoyHash()
	if u.PasswordHash.Valid {
		hash = u.PasswordHash.String
	}
	matched := CheckPassword(hash, in.Password)

	reason := ""
	switch {
	case !u.IsActive:
		reason = "inactive"
	case !u.PasswordHash.Valid:
		reason = "no password"
	case !matched:
		reason = "password mismatch"
	}
	if reason != "" {
		s.logger.Warn("Login rejected", zap.String("user_id", u.ID), zap.String("reason", reason))
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	if err := s.users.repos.Users.TouchLastLogin(ctx, u.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("Failed to record last login", zap.String("user_id", u.ID), zap.Error(err))
	}
	return &LoginResult{Token: token, UserID: u.ID, Email: u.Email.String, Roles: u.RoleNames()}, nil
}

// Authenticate resolves a bearer token to an active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	u, err := s.users.repos.Users.GetUser(ctx, claims.Subject)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: unknown subject", ErrInvalidToken)
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, fmt.Errorf("%w: user inactive", ErrInvalidToken)
	}
	return u, nil
}
