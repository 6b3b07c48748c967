package service

import (
	"github.com/andalize/proptic/internal/events"
	"github.com/andalize/proptic/internal/repository"

	"go.uber.org/zap"
)

// Services bundles every service the HTTP layer and the admin CLI use.
type Services struct {
	Users            *UserService
	Auth             *AuthService
	Projects         *ProjectService
	Units            *UnitService
	Tenancies        *TenancyService
	RentTransactions *RentTransactionService
	Bookings         *BookingService
}

func NewServices(repos *repository.Repositories, tokens *TokenIssuer, emitter *events.Emitter, logger *zap.Logger) *Services {
	users := NewUserService(repos, emitter, logger.Named("users"))
	return &Services{
		Users:            users,
		Auth:             NewAuthService(users, tokens, emitter, logger.Named("auth")),
		Projects:         NewProjectService(repos.Projects, emitter, logger.Named("projects")),
		Units:            NewUnitService(repos, emitter, logger.Named("units")),
		Tenancies:        NewTenancyService(repos, emitter, logger.Named("tenancies")),
		RentTransactions: NewRentTransactionService(repos, emitter, logger.Named("rent")),
		Bookings:         NewBookingService(repos, emitter, logger.Named("bookings")),
	}
}
