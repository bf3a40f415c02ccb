package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/dkravets/chatline/backend/internal/model/user"
	"github.com/dkravets/chatline/backend/pkg/utils"
)

var validate = validator.New()

// Handler serves account registration, login and the user directory.
type Handler struct {
	users user.Store
}

// New creates the auth handler.
func New(users user.Store) *Handler {
	return &Handler{users: users}
}

// RegisterRoutes mounts the auth endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Get("/users", h.handleListUsers)
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=100"`
}

type sessionResponse struct {
	Success bool        `json:"success"`
	User    user.Public `json:"user"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	u, err := h.users.Register(r.Context(), payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, user.ErrUsernameTaken) {
			utils.RespondError(w, http.StatusBadRequest, "user already exists")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "server error")
		return
	}

	utils.RespondJSON(w, http.StatusOK, sessionResponse{Success: true, User: u.Public()})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	u, err := h.users.Authenticate(r.Context(), payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			// Deliberately generic: never say which field was wrong.
			utils.RespondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "server error")
		return
	}

	utils.RespondJSON(w, http.StatusOK, sessionResponse{Success: true, User: u.Public()})
}

type userEntry struct {
	Username string `json:"username"`
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	exclude := r.URL.Query().Get("exclude")

	names, err := h.users.ListUsernames(r.Context(), exclude)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "server error")
		return
	}

	entries := lo.Map(names, func(name string, _ int) userEntry {
		return userEntry{Username: name}
	})
	utils.RespondJSON(w, http.StatusOK, map[string][]userEntry{"users": entries})
}
