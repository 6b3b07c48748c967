package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/andalize/proptic/internal/domain"
	"github.com/andalize/proptic/internal/service"

	"go.uber.org/zap"
)

// Client facing messages.
const (
	detailNotFound        = "Not found."
	detailInvalidPage     = "Invalid page."
	detailNotProvided     = "Authentication credentials were not provided."
	detailInvalidToken    = "Given token not valid for any token type"
	detailForbidden       = "You do not have permission to perform this action."
	detailBadCredentials  = "Unable to authenticate with provided credentials."
	detailInternal        = "internal server error"
	messageUserDeactivate = "User account has been deactivated."
)

// Detail is the body of every non-validation error.
type Detail struct {
	Detail string `json:"detail"`
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, Detail{Detail: detail})
}

func writeNotFound(w http.ResponseWriter) {
	writeDetail(w, http.StatusNotFound, detailNotFound)
}

func writeMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeDetail(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %q not allowed.", r.Method))
}

// writeError maps service errors to status codes. Unknown errors are logged
// and hidden behind a 500.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var v *domain.ValidationError
	var pe *parseError
	switch {
	case errors.As(err, &v):
		writeJSON(w, http.StatusBadRequest, v.Fields)
	case errors.As(err, &pe):
		writeDetail(w, http.StatusBadRequest, pe.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeNotFound(w)
	case errors.Is(err, service.ErrInvalidPage):
		writeDetail(w, http.StatusNotFound, detailInvalidPage)
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeDetail(w, http.StatusUnauthorized, detailBadCredentials)
	case errors.Is(err, service.ErrInvalidToken):
		writeDetail(w, http.StatusUnauthorized, detailInvalidToken)
	default:
		logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeDetail(w, http.StatusInternalServerError, detailInternal)
	}
}
