package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/andalize/proptic/internal/domain"
	"github.com/andalize/proptic/internal/service"

	"go.uber.org/zap"
)

// UsersHandler serves /api/v1/users: accounts, registration, login, profile
// and roles.
type UsersHandler struct {
	Users  *service.UserService
	Auth   *service.AuthService
	logger *zap.Logger
}

func NewUsersHandler(users *service.UserService, auth *service.AuthService, logger *zap.Logger) *UsersHandler {
	return &UsersHandler{Users: users, Auth: auth, logger: logger}
}

func (h *UsersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := segments(r.URL.Path, APIPrefix+"/users")

	switch {
	case len(parts) == 0:
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			writeMethodNotAllowed(w, r)
		}

	case len(parts) == 1 && parts[0] == "register":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, r)
			return
		}
		h.register(w, r)

	case len(parts) == 1 && parts[0] == "login":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, r)
			return
		}
		h.login(w, r)

	case len(parts) == 1 && parts[0] == "me":
		switch r.Method {
		case http.MethodGet:
			h.getProfile(w, r)
		case http.MethodPut, http.MethodPatch:
			h.updateProfile(w, r)
		default:
			writeMethodNotAllowed(w, r)
		}

	case len(parts) == 1 && parts[0] == "logged-in-user":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, r)
			return
		}
		h.loggedInUser(w, r)

	case len(parts) == 1 && parts[0] == "tenants":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, r)
			return
		}
		users, err := h.Users.ListTenants(r.Context())
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, users)

	case len(parts) == 1 && parts[0] == "roles":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, r)
			return
		}
		roles, err := h.Users.ListRoles(r.Context())
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, roles)

	case len(parts) == 2 && parts[0] == "role":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, r)
			return
		}
		h.usersByRole(w, r, parts[1])

	case len(parts) == 1 && validID(parts[0]):
		id := parts[0]
		switch r.Method {
		case http.MethodGet:
			u, err := h.Users.GetUser(r.Context(), id)
			if err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			writeJSON(w, http.StatusOK, u)
		case http.MethodPut, http.MethodPatch:
			var in service.UserInput
			if err := readBodyJSON(r, maxBodyBytes, &in); err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			u, err := h.Users.UpdateUser(r.Context(), id, in)
			if err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			writeJSON(w, http.StatusOK, u)
		case http.MethodDelete:
			if err := h.Users.DeactivateUser(r.Context(), id); err != nil {
				writeError(w, r, h.logger, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"message": messageUserDeactivate})
		default:
			writeMethodNotAllowed(w, r)
		}

	default:
		writeNotFound(w)
	}
}

func (h *UsersHandler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.ListUsers(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UsersHandler) create(w http.ResponseWriter, r *http.Request) {
	var in service.UserInput
	if err := readBodyJSON(r, maxBodyBytes, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	u, err := h.Users.CreateUser(r.Context(), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *UsersHandler) register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := readBodyJSON(r, maxBodyBytes, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	res, err := h.Auth.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *UsersHandler) login(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := readBodyJSON(r, maxBodyBytes, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	res, err := h.Auth.Login(r.Context(), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *UsersHandler) getProfile(w http.ResponseWriter, r *http.Request) {
	me := requireUser(w, r)
	if me == nil {
		return
	}
	u, err := h.Users.GetUser(r.Context(), me.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UsersHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	me := requireUser(w, r)
	if me == nil {
		return
	}
	var in service.UserInput
	if err := readBodyJSON(r, maxBodyBytes, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	u, err := h.Users.UpdateProfile(r.Context(), me.ID, in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UsersHandler) loggedInUser(w http.ResponseWriter, r *http.Request) {
	me := requireUser(w, r)
	if me == nil {
		return
	}
	out, err := h.Users.LoggedInUser(r.Context(), me.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *UsersHandler) usersByRole(w http.ResponseWriter, r *http.Request, name string) {
	if requireStaff(w, r) == nil {
		return
	}
	out, err := h.Users.UsersByRole(r.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("Role '%s' does not exist", name)})
			return
		}
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
