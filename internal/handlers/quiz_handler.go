package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/shauryapandit/tutor-api-gdg/internal/service"

	"github.com/gin-gonic/gin"
)

// QuizHandler exposes the quiz session state machine over HTTP.
type QuizHandler struct {
	Service *service.QuizService
}

func NewQuizHandler(s *service.QuizService) *QuizHandler {
	return &QuizHandler{Service: s}
}

// Start handles POST /start.
func (h *QuizHandler) Start(c *gin.Context) {
	var req struct {
		UserID string `json:"userId" binding:"required"`
		Level  string `json:"level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	result, err := h.Service.Start(c.Request.Context(), req.UserID, req.Level)
	if err != nil {
		writeQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId": result.SessionID,
		"question":  result.Question,
		"message":   "Welcome! Here's your first question: " + result.Question,
	})
}

// Answer handles POST /answer.
func (h *QuizHandler) Answer(c *gin.Context) {
	var req struct {
		UserID    string `json:"userId" binding:"required"`
		SessionID string `json:"sessionId" binding:"required"`
		Answer    string `json:"answer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	result, err := h.Service.Answer(c.Request.Context(), req.UserID, req.SessionID, req.Answer)
	if err != nil {
		writeQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Progress handles GET /progress/:userId/:sessionId.
func (h *QuizHandler) Progress(c *gin.Context) {
	userID := c.Param("userId")
	sessionID := c.Param("sessionId")

	history, err := h.Service.Progress(c.Request.Context(), userID, sessionID)
	if err != nil {
		writeQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

// writeQuizError maps service sentinels to status codes. Anything
// unrecognized is a server fault: logged, reported generically.
func writeQuizError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidLevel):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid difficulty level",
			"code":  "INVALID_LEVEL",
		})
	case errors.Is(err, service.ErrEmptyAnswer):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Answer must not be empty",
			"code":  "EMPTY_ANSWER",
		})
	case errors.Is(err, service.ErrNoActiveSession):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "No active session. Start first!",
			"code":  "NO_ACTIVE_SESSION",
		})
	case errors.Is(err, service.ErrQuizCompleted):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Quiz already completed",
			"code":  "QUIZ_COMPLETED",
		})
	default:
		log.Printf("quiz request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to process request",
			"code":  "INTERNAL_ERROR",
		})
	}
}
