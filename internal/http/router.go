package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/andalize/proptic/internal/service"

	"go.uber.org/zap"
)

// APIPrefix is the base path of every resource route.
const APIPrefix = "/api/v1"

// Router wraps http.ServeMux; routing below the resource prefix is done by
// each handler's ServeHTTP.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler registers an http.Handler.
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterUserRoutes mounts /users.
func (r *Router) RegisterUserRoutes(h *UsersHandler) {
	r.Handle(APIPrefix+"/users", h.ServeHTTP)
	r.Handle(APIPrefix+"/users/", h.ServeHTTP)
}

// RegisterPropertyRoutes mounts /properties (projects, units, tenancies, rent).
func (r *Router) RegisterPropertyRoutes(h *PropertiesHandler) {
	r.Handle(APIPrefix+"/properties/", h.ServeHTTP)
}

// RegisterBookingRoutes mounts /bookings.
func (r *Router) RegisterBookingRoutes(h *BookingsHandler) {
	r.Handle(APIPrefix+"/bookings", h.ServeHTTP)
	r.Handle(APIPrefix+"/bookings/", h.ServeHTTP)
}

// RegisterHealthRoutes mounts /healthz. ping may be nil.
func (r *Router) RegisterHealthRoutes(ping func(ctx context.Context) error) {
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			writeMethodNotAllowed(w, req)
			return
		}
		if ping != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				r.logger.Warn("Health check failed", zap.Error(err))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// NewAPI assembles every route behind the auth and request log middleware.
func NewAPI(svc *service.Services, ping func(ctx context.Context) error, logger *zap.Logger) http.Handler {
	r := NewRouter(logger)
	r.RegisterUserRoutes(NewUsersHandler(svc.Users, svc.Auth, logger))
	r.RegisterPropertyRoutes(NewPropertiesHandler(svc, logger))
	r.RegisterBookingRoutes(NewBookingsHandler(svc.Bookings, logger))
	r.RegisterHealthRoutes(ping)
	return logMiddleware(logger, authMiddleware(svc.Auth, logger, r))
}
