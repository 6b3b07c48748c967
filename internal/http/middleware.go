package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/andalize/proptic/internal/domain"

	"go.uber.org/zap"
)

// Authenticator resolves a bearer token to the calling user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

type ctxKey int

const userKey ctxKey = iota

func withUser(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFrom returns the authenticated user, or nil for anonymous requests.
func UserFrom(ctx context.Context) *domain.User {
	u, _ := ctx.Value(userKey).(*domain.User)
	return u
}

// authMiddleware attaches the bearer token's user to the request context.
// Requests without an Authorization header pass through anonymously; a header
// that does not resolve to an active user is rejected everywhere.
func authMiddleware(auth Authenticator, logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeDetail(w, http.StatusUnauthorized, detailInvalidToken)
			return
		}
		u, err := auth.Authenticate(r.Context(), strings.TrimSpace(token))
		if err != nil {
			logger.Debug("Rejected bearer token", zap.String("path", r.URL.Path), zap.Error(err))
			writeDetail(w, http.StatusUnauthorized, detailInvalidToken)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), u)))
	})
}

// requireUser writes 401 and returns nil when the request is anonymous.
func requireUser(w http.ResponseWriter, r *http.Request) *domain.User {
	u := UserFrom(r.Context())
	if u == nil {
		writeDetail(w, http.StatusUnauthorized, detailNotProvided)
		return nil
	}
	return u
}

// requireStaff is requireUser plus a 403 for non-staff users.
func requireStaff(w http.ResponseWriter, r *http.Request) *domain.User {
	u := requireUser(w, r)
	if u == nil {
		return nil
	}
	if !u.IsStaff && !u.IsSuperuser {
		writeDetail(w, http.StatusForbidden, detailForbidden)
		return nil
	}
	return u
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

func logMiddleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("duration", time.Since(start)),
		}
		if rec.status >= http.StatusInternalServerError {
			logger.Warn("HTTP request", fields...)
			return
		}
		logger.Info("HTTP request", fields...)
	})
}
