package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/shauryapandit/tutor-api-gdg/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler exposes the finance advice assistant over HTTP.
type ChatHandler struct {
	Service *service.ChatService
}

func NewChatHandler(s *service.ChatService) *ChatHandler {
	return &ChatHandler{Service: s}
}

// Chat handles POST /chat.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req struct {
		UserID        string `json:"userId" binding:"required"`
		Message       string `json:"message"`
		ChatSessionID string `json:"chatSessionId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	result, err := h.Service.Chat(c.Request.Context(), req.UserID, req.ChatSessionID, req.Message)
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Message must not be empty",
				"code":  "EMPTY_MESSAGE",
			})
			return
		}
		log.Printf("chat request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to communicate with Gemini API",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
