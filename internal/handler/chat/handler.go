package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dkravets/chatline/backend/internal/model/chat"
	"github.com/dkravets/chatline/backend/pkg/utils"
)

var validate = validator.New()

// Handler serves the chat registry.
type Handler struct {
	chats chat.Registry
}

// New creates the chat handler.
func New(chats chat.Registry) *Handler {
	return &Handler{chats: chats}
}

// RegisterRoutes mounts the chat endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chats", h.handleCreateChat)
	r.Get("/chats", h.handleListChats)
}

type createChatRequest struct {
	ID        string `json:"id" validate:"required,max=100"`
	Name      string `json:"name" validate:"required,max=100"`
	Kind      string `json:"kind" validate:"required,oneof=channel group private"`
	CreatedBy string `json:"createdBy" validate:"required,max=50"`
}

func (h *Handler) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	var payload createChatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// Rejected here, before any store access.
	if err := validate.Struct(payload); err != nil {
		if !chat.Kind(payload.Kind).Valid() {
			utils.RespondError(w, http.StatusBadRequest, "kind must be channel, group or private")
			return
		}
		utils.RespondError(w, http.StatusBadRequest, "invalid chat payload")
		return
	}

	_, err := h.chats.Create(r.Context(), chat.Chat{
		ID:        payload.ID,
		Name:      payload.Name,
		Kind:      chat.Kind(payload.Kind),
		CreatedBy: payload.CreatedBy,
	})
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrChatExists):
			utils.RespondError(w, http.StatusBadRequest, "chat already exists")
		case errors.Is(err, chat.ErrUnknownKind):
			utils.RespondError(w, http.StatusBadRequest, "kind must be channel, group or private")
		default:
			utils.RespondError(w, http.StatusInternalServerError, "server error")
		}
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleListChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.chats.List(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "server error")
		return
	}
	if chats == nil {
		chats = []chat.Chat{}
	}
	utils.RespondJSON(w, http.StatusOK, map[string][]chat.Chat{"chats": chats})
}
