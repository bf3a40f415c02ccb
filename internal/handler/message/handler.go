package message

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dkravets/chatline/backend/internal/model/chat"
	"github.com/dkravets/chatline/backend/pkg/utils"
)

var validate = validator.New()

// Handler serves the message ledger.
type Handler struct {
	messages chat.Ledger
}

// New creates the message handler.
func New(messages chat.Ledger) *Handler {
	return &Handler{messages: messages}
}

// RegisterRoutes mounts the message endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/messages", h.handleSendMessage)
	r.Get("/messages/{chatID}", h.handleListMessages)
	r.Get("/lastmessage/{chatID}", h.handleLatestMessage)
}

type sendMessageRequest struct {
	ChatID string `json:"chatId" validate:"required,max=100"`
	Sender string `json:"sender" validate:"required,max=50"`
	Text   string `json:"text" validate:"required"`
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "chatId, sender and text are required")
		return
	}

	// Whether the chat exists is the store's concern: an orphaned chat id
	// is rejected by its foreign key, surfaced as a plain server error.
	_, err := h.messages.Append(r.Context(), chat.Message{
		ChatID: payload.ChatID,
		Sender: payload.Sender,
		Text:   payload.Text,
	})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "server error")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	messages, err := h.messages.Transcript(r.Context(), chatID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "server error")
		return
	}
	if messages == nil {
		messages = []chat.Message{}
	}
	utils.RespondJSON(w, http.StatusOK, map[string][]chat.Message{"messages": messages})
}

type latestResponse struct {
	Message *chat.Message `json:"message"`
}

func (h *Handler) handleLatestMessage(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	m, ok, err := h.messages.Latest(r.Context(), chatID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "server error")
		return
	}

	resp := latestResponse{}
	if ok {
		resp.Message = &m
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}
