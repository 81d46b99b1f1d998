package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shauryapandit/tutor-api-gdg/internal/event"
	"github.com/shauryapandit/tutor-api-gdg/internal/llm"
	"github.com/shauryapandit/tutor-api-gdg/internal/models"
	"github.com/shauryapandit/tutor-api-gdg/internal/repository"

	"github.com/google/uuid"
)

// ChatStore is the slice of the chat repository the chat service needs.
type ChatStore interface {
	Find(ctx context.Context, userID, chatSessionID string) (*models.ChatSession, error)
	Save(ctx context.Context, userID, chatSessionID string, history []models.ChatMessage) error
}

// ChatService forwards finance questions to the model under the advice
// system prompt and threads the persisted conversation history through each
// call.
type ChatService struct {
	Store  ChatStore
	LLM    llm.Generator
	Events *event.EventPublisher
}

func NewChatService(store ChatStore, gen llm.Generator, events *event.EventPublisher) *ChatService {
	return &ChatService{Store: store, LLM: gen, Events: events}
}

// ChatResult is the response payload of a successful Chat call.
type ChatResult struct {
	Reply         string `json:"reply"`
	ChatSessionID string `json:"chatSessionId"`
}

// Chat sends message for userID within the given conversation. An empty
// chatSessionID starts a fresh conversation under a generated id.
func (s *ChatService) Chat(ctx context.Context, userID, chatSessionID, message string) (*ChatResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}
	if chatSessionID == "" {
		chatSessionID = uuid.NewString()
	}

	var history []models.ChatMessage
	stored, err := s.Store.Find(ctx, userID, chatSessionID)
	switch {
	case err == nil:
		history = stored.History
	case errors.Is(err, repository.ErrNotFound):
		// Fresh conversation.
	default:
		return nil, fmt.Errorf("load chat history: %w", err)
	}

	reply, err := s.LLM.Chat(ctx, financialSystemPrompt, history, message)
	if err != nil {
		return nil, fmt.Errorf("chat generation: %w", err)
	}
	if reply == "" {
		reply = fallbackEvaluation
	}

	history = append(history,
		models.ChatMessage{Role: models.RoleUser, Text: message},
		models.ChatMessage{Role: models.RoleModel, Text: reply},
	)
	if err := s.Store.Save(ctx, userID, chatSessionID, history); err != nil {
		return nil, fmt.Errorf("save chat history: %w", err)
	}

	s.Events.Publish(event.ChatMessage, map[string]interface{}{
		"userId":        userID,
		"chatSessionId": chatSessionID,
		"turns":         len(history),
	})

	return &ChatResult{Reply: reply, ChatSessionID: chatSessionID}, nil
}
