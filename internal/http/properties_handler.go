package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/andalize/proptic/internal/export"
	"github.com/andalize/proptic/internal/service"

	"go.uber.org/zap"
)

// PropertiesHandler serves /api/v1/properties: projects, units and their
// images, tenancies and the rent ledger.
type PropertiesHandler struct {
	Projects  *service.ProjectService
	Units     *service.UnitService
	Tenancies *service.TenancyService
	Rent      *service.RentTransactionService
	logger    *zap.Logger
	now       func() time.Time
}

func NewPropertiesHandler(svc *service.Services, logger *zap.Logger) *PropertiesHandler {
	return &PropertiesHandler{
		Projects:  svc.Projects,
		Units:     svc.Units,
		Tenancies: svc.Tenancies,
		Rent:      svc.RentTransactions,
		logger:    logger,
		now:       time.Now,
	}
}

func (h *PropertiesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := segments(r.URL.Path, APIPrefix+"/properties")
	if len(parts) == 0 {
		writeNotFound(w)
		return
	}

	switch parts[0] {
	case "projects":
		h.serveProjects(w, r, parts[1:])
	case "units":
		h.serveUnits(w, r, parts[1:])
	case "tenancies":
		h.serveTenancies(w, r, parts[1:])
	case "rent-transactions":
		h.serveRent(w, r, parts[1:])
	default:
		writeNotFound(w)
	}
}

func (h *PropertiesHandler) serveProjects(w http.ResponseWriter, r *http.Request, parts []string) {
	switch {
	case len(parts) == 0:
		switch r.Method {
		case http.MethodGet:
			req, err := pageRequest(r)
			if err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			page, err := h.Projects.ListProjects(r.Context(), req)
			if err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			writePage(w, r, page)
		case http.MethodPost:
			var in service.ProjectInput
			if err := readBodyJSON(r, maxBodyBytes, &in); err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			p, err := h.Projects.CreateProject(r.Context(), in)
			if err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			writeJSON(w, http.StatusCreated, p)
		default:
			writeMethodNotAllowed(w, r)
		}

	case len(parts) == 1 && validID(parts[0]):
		id := parts[0]
		switch r.Method {
		case http.MethodGet:
			p, err := h.Projects.GetProject(r.Context(), id)
			if err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			writeJSON(w, http.StatusOK, p)
		case http.MethodPut, http.MethodPatch:
			var in service.ProjectInput
			if err := readBodyJSON(r, maxBodyBytes, &in); err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			p, err := h.Projects.UpdateProject(r.Context(), id, in)
			if err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			writeJSON(w, http.StatusOK, p)
		case http.MethodDelete:
			if err := h.Projects.DeleteProject(r.Context(), id); err != nil {
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

func (h *PropertiesHandler) serveUnits(w http.ResponseWriter, r *http.Request, parts []string) {
	switch {
	case len(parts) == 0:
		switch r.Method {
		case http.MethodGet:
			req, err := pageRequest(r)
			if err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			page, err := h.Units.ListUnits(r.Context(), service.UnitListRequest{
				PageRequest: req,
				ProjectID:   r.URL.Query().Get("property_project"),
			})
			if err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			writePage(w, r, page)
		case http.MethodPost:
			var in service.UnitInput
			if err := readBodyJSON(r, maxBodyBytes, &in); err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			u, err := h.Units.CreateUnit(r.Context(), in)
			if err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			writeJSON(w, http.StatusCreated, u)
		default:
			writeMethodNotAllowed(w, r)
		}

	case len(parts) == 1 && parts[0] == "export":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, r)
			return
		}
		h.exportUnits(w, r)

	case len(parts) == 1 && validID(parts[0]):
		id := parts[0]
		switch r.Method {
		case http.MethodGet:
			u, err := h.Units.GetUnit(r.Context(), id)
			if err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			writeJSON(w, http.StatusOK, u)
		case http.MethodPut, http.MethodPatch:
			var in service.UnitInput
			if err := readBodyJSON(r, maxBodyBytes, &in); err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			u, err := h.Units.UpdateUnit(r.Context(), id, in)
			if err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			writeJSON(w, http.StatusOK, u)
		case http.MethodDelete:
			if err := h.Units.DeleteUnit(r.Context(), id); err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			writeMethodNotAllowed(w, r)
		}

	case len(parts) == 2 && validID(parts[0]) && parts[1] == "images":
		unitID := parts[0]
		switch r.Method {
		case http.MethodGet:
			images, err := h.Units.ListImages(r.Context(), unitID)
			if err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			writeJSON(w, http.StatusOK, images)
		case http.MethodPost:
			var in service.ImageInput
			if err := readBodyJSON(r, maxBodyBytes, &in); err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			img, err := h.Units.AddImage(r.Context(), unitID, in)
			if err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			writeJSON(w, http.StatusCreated, img)
		default:
			writeMethodNotAllowed(w, r)
		}

	case len(parts) == 3 && validID(parts[0]) && parts[1] == "images" && validID(parts[2]):
		if r.Method != http.MethodDelete {
			writeMethodNotAllowed(w, r)
			return
		}
		if err := h.Units.DeleteImage(r.Context(), parts[0], parts[2]); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeNotFound(w)
	}
}

func (h *PropertiesHandler) serveTenancies(w http.ResponseWriter, r *http.Request, parts []string) {
	switch {
	case len(parts) == 0:
		switch r.Method {
		case http.MethodGet:
			items, err := h.Tenancies.ListTenancies(r.Context())
			if err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			writeJSON(w, http.StatusOK, items)
		case http.MethodPost:
			var in service.TenancyInput
			if err := readBodyJSON(r, maxBodyBytes, &in); err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			t, err := h.Tenancies.CreateTenancy(r.Context(), in)
			if err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			writeJSON(w, http.StatusCreated, t)
		default:
			writeMethodNotAllowed(w, r)
		}

	case len(parts) == 1 && validID(parts[0]):
		id := parts[0]
		switch r.Method {
		case http.MethodGet:
			t, err := h.Tenancies.GetTenancy(r.Context(), id)
			if err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			writeJSON(w, http.StatusOK, t)
		case http.MethodPut, http.MethodPatch:
			var in service.TenancyInput
			if err := readBodyJSON(r, maxBodyBytes, &in); err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			t, err := h.Tenancies.UpdateTenancy(r.Context(), id, in)
			if err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			writeJSON(w, http.StatusOK, t)
		case http.MethodDelete:
			if err := h.Tenancies.DeleteTenancy(r.Context(), id); err != nil {
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

// Rent transactions are append-only: no update or delete.
func (h *PropertiesHandler) serveRent(w http.ResponseWriter, r *http.Request, parts []string) {
	switch {
	case len(parts) == 0:
		switch r.Method {
		case http.MethodGet:
			items, err := h.Rent.ListRentTransactions(r.Context(), r.URL.Query().Get("tenancy"))
			if err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			writeJSON(w, http.StatusOK, items)
		case http.MethodPost:
			var in service.RentTransactionInput
			if err := readBodyJSON(r, maxBodyBytes, &in); err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			tx, err := h.Rent.RecordRentTransaction(r.Context(), in)
			if err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			writeJSON(w, http.StatusCreated, tx)
		default:
			writeMethodNotAllowed(w, r)
		}

	case len(parts) == 1 && parts[0] == "export":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, r)
			return
		}
		h.exportRent(w, r)

	case len(parts) == 1 && validID(parts[0]):
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, r)
			return
		}
		tx, err := h.Rent.GetRentTransaction(r.Context(), parts[0])
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, tx)

	default:
		writeNotFound(w)
	}
}

func (h *PropertiesHandler) exportUnits(w http.ResponseWriter, r *http.Request) {
	if requireStaff(w, r) == nil {
		return
	}
	units, err := h.Units.AllUnits(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	data, err := export.Units(units)
	if err != nil {
		writeError(w, r, h.logger, fmt.Errorf("failed to build units workbook: %w", err))
		return
	}
	h.writeWorkbook(w, "units", data)
}

func (h *PropertiesHandler) exportRent(w http.ResponseWriter, r *http.Request) {
	if requireStaff(w, r) == nil {
		return
	}
	txs, err := h.Rent.ListRentTransactions(r.Context(), r.URL.Query().Get("tenancy"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	data, err := export.RentLedger(txs)
	if err != nil {
		writeError(w, r, h.logger, fmt.Errorf("failed to build rent ledger workbook: %w", err))
		return
	}
	h.writeWorkbook(w, "rent_ledger", data)
}

func (h *PropertiesHandler) writeWorkbook(w http.ResponseWriter, name string, data []byte) {
	filename := fmt.Sprintf("%s_%s.xlsx", name, h.now().Format("20060102_150405"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
