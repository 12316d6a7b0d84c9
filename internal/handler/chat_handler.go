package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/leaddesk/backend/internal/model"
	"github.com/leaddesk/backend/internal/service"
)

const maxChatBodyBytes = 64 << 10

// ChatHandler proxies the website chat widget.
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type chatRequest struct {
	Messages []model.ChatMessage `json:"messages"`
}

// Chat handles POST /api/chat.
// Body: {messages:[{role:"user"|"assistant", content}]}, last message from the user.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	reply, err := h.chatService.Reply(r.Context(), req.Messages)
	switch {
	case errors.Is(err, model.ErrValidation):
		writeFail(w, http.StatusBadRequest, "Invalid chat messages")
		return
	case errors.Is(err, service.ErrChatUnavailable):
		writeFail(w, http.StatusServiceUnavailable, "Chat is not available")
		return
	case err != nil:
		writeServerError(w, r, "Failed to get chat reply", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": model.ChatMessage{Role: model.ChatRoleAssistant, Content: reply},
	})
}
