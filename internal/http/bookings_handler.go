package httpapi

import (
	"net/http"

	"github.com/andalize/proptic/internal/service"

	"go.uber.org/zap"
)

// BookingsHandler serves /api/v1/bookings.
type BookingsHandler struct {
	Bookings *service.BookingService
	logger   *zap.Logger
}

func NewBookingsHandler(bookings *service.BookingService, logger *zap.Logger) *BookingsHandler {
	return &BookingsHandler{Bookings: bookings, logger: logger}
}

func (h *BookingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := segments(r.URL.Path, APIPrefix+"/bookings")

	switch {
	case len(parts) == 0:
		switch r.Method {
		case http.MethodGet:
			items, err := h.Bookings.ListBookings(r.Context())
			if err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			writeJSON(w, http.StatusOK, items)
		case http.MethodPost:
			var in service.BookingInput
			if err := readBodyJSON(r, maxBodyBytes, &in); err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			b, err := h.Bookings.CreateBooking(r.Context(), in)
			if err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			writeJSON(w, http.StatusCreated, b)
		default:
			writeMethodNotAllowed(w, r)
		}

	case len(parts) == 1 && validID(parts[0]):
		id := parts[0]
		switch r.Method {
		case http.MethodGet:
			b, err := h.Bookings.GetBooking(r.Context(), id)
			if err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			writeJSON(w, http.StatusOK, b)
		case http.MethodPut, http.MethodPatch:
			var in service.BookingInput
			if err := readBodyJSON(r, maxBodyBytes, &in); err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			b, err := h.Bookings.UpdateBooking(r.Context(), id, in)
			if err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			writeJSON(w, http.StatusOK, b)
		case http.MethodDelete:
			if err := h.Bookings.DeleteBooking(r.Context(), id); err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			writeMethodNotAllowed(w, r)
		}

	default:
		writeNotFound(w)
	}
}
