// Package handlers provides HTTP handlers for the support engine API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/convodesk/support-engine/internal/chat"
	"github.com/convodesk/support-engine/internal/conversation"
	"github.com/convodesk/support-engine/internal/faq"
)

// ChatHandler handles inbound chat messages.
type ChatHandler struct {
	logger  zerolog.Logger
	service *chat.Service
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(logger zerolog.Logger, service *chat.Service) *ChatHandler {
	return &ChatHandler{logger: logger, service: service}
}

// MessageRequestDTO is the API request for one user turn.
type MessageRequestDTO struct {
	Message     string `json:"message"`
	MessageID   string `json:"messageId,omitempty"`
	AssistantID string `json:"assistantId,omitempty"`
	UserID      string `json:"userId"`
	PageID      string `json:"pageId,omitempty"`
	SessionID   string `json:"sessionId,omitempty"`
}

// Message handles POST /api/v1/chat/message.
func (h *ChatHandler) Message(w http.ResponseWriter, r *http.Request) {
	var dto MessageRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if dto.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if dto.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	resp, err := h.service.HandleMessage(r.Context(), chat.Request{
		Message:   dto.Message,
		MessageID: dto.MessageID,
		Identity: conversation.Identity{
			AssistantID: dto.AssistantID,
			UserID:      dto.UserID,
			PageID:      dto.PageID,
			SessionID:   dto.SessionID,
		},
	})

	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"response": resp.Text,
			"metadata": resp.Metadata,
		})
	case errors.Is(err, chat.ErrDuplicateRequest):
		writeError(w, http.StatusConflict, "duplicate message")
	case errors.Is(err, conversation.ErrLockTimeout):
		writeError(w, http.StatusServiceUnavailable, "conversation busy, try again")
	case errors.Is(err, faq.ErrValidation):
		writeError(w, http.StatusBadRequest, "message is required")
	default:
		h.logger.Error().Err(err).Msg("Chat request failed")
		writeError(w, http.StatusInternalServerError, "request failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}
