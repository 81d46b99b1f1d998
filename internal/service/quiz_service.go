package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shauryapandit/tutor-api-gdg/internal/catalog"
	"github.com/shauryapandit/tutor-api-gdg/internal/event"
	"github.com/shauryapandit/tutor-api-gdg/internal/llm"
	"github.com/shauryapandit/tutor-api-gdg/internal/models"
	"github.com/shauryapandit/tutor-api-gdg/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// SessionStore is the slice of the session repository the quiz service
// needs. Tests substitute an in-memory fake.
type SessionStore interface {
	Create(ctx context.Context, session *models.QuizSession) error
	Find(ctx context.Context, userID, sessionID string) (*models.QuizSession, error)
	Update(ctx context.Context, userID, sessionID string, update bson.M) error
}

// QuizService drives the quiz session state machine: start, answer,
// progress. It holds no state of its own between requests; the store owns
// the durable record.
type QuizService struct {
	Store   SessionStore
	Catalog *catalog.Catalog
	LLM     llm.Generator
	Events  *event.EventPublisher
}

func NewQuizService(store SessionStore, cat *catalog.Catalog, gen llm.Generator, events *event.EventPublisher) *QuizService {
	return &QuizService{
		Store:   store,
		Catalog: cat,
		LLM:     gen,
		Events:  events,
	}
}

// StartResult is the response payload of a successful Start.
type StartResult struct {
	SessionID string `json:"sessionId"`
	Question  string `json:"question"`
}

// AnswerResult is the response payload of a successful Answer. Exactly one
// of NextQuestion and Message is set: NextQuestion while topics remain,
// Message on completion.
type AnswerResult struct {
	Evaluation   string `json:"evaluation"`
	NextQuestion string `json:"nextQuestion,omitempty"`
	Message      string `json:"message,omitempty"`
}

// Start creates a new active session for userID at the given level. The
// first question is always model-generated, hinted with the catalog topics;
// the full catalog list is stored as the remaining topic queue.
func (s *QuizService) Start(ctx context.Context, userID, level string) (*StartResult, error) {
	if !models.ValidLevel(level) {
		return nil, ErrInvalidLevel
	}
	lvl := models.Level(level)

	topics := s.Catalog.TopicsFor(lvl)
	if len(topics) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCatalog, lvl)
	}

	question, err := s.generateQuestion(ctx, lvl, "", topicNames(topics))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &models.QuizSession{
		UserID:          userID,
		SessionID:       uuid.NewString(),
		Level:           lvl,
		RemainingTopics: topics,
		CurrentQuestion: question,
		History:         []models.HistoryEntry{},
		Status:          models.StatusActive,
		StartedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Store.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	s.Events.Publish(event.SessionStarted, map[string]string{
		"userId":    userID,
		"sessionId": session.SessionID,
		"level":     level,
	})

	return &StartResult{SessionID: session.SessionID, Question: question}, nil
}

// Answer evaluates the user's answer to the session's current question,
// appends it to history, and either advances to the next topic or completes
// the quiz. The evaluation and history append are persisted before the next
// question is generated, so a generation failure never loses an accepted
// answer.
func (s *QuizService) Answer(ctx context.Context, userID, sessionID, answer string) (*AnswerResult, error) {
	if strings.TrimSpace(answer) == "" {
		return nil, ErrEmptyAnswer
	}

	session, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Completed() {
		return nil, ErrQuizCompleted
	}

	evaluation, err := s.evaluate(ctx, session.CurrentQuestion, answer)
	if err != nil {
		return nil, err
	}

	entry := models.HistoryEntry{
		Question:   session.CurrentQuestion,
		UserAnswer: answer,
		Evaluation: evaluation,
		AnsweredAt: time.Now(),
	}
	history := append(session.History, entry)

	if len(session.RemainingTopics) == 0 {
		update := bson.M{
			"history":          history,
			"current_question": "",
			"status":           models.StatusCompleted,
			"updated_at":       time.Now(),
		}
		if err := s.Store.Update(ctx, userID, sessionID, update); err != nil {
			return nil, fmt.Errorf("persist completion: %w", err)
		}
		s.Events.Publish(event.SessionCompleted, map[string]interface{}{
			"userId":    userID,
			"sessionId": sessionID,
			"answered":  len(history),
		})
		return &AnswerResult{Evaluation: evaluation, Message: completionMessage}, nil
	}

	next := session.RemainingTopics[0]
	rest := session.RemainingTopics[1:]

	// Persist the accepted answer before attempting generation. If the
	// next question cannot be generated the history entry survives.
	update := bson.M{
		"history":          history,
		"remaining_topics": rest,
		"updated_at":       time.Now(),
	}
	if err := s.Store.Update(ctx, userID, sessionID, update); err != nil {
		return nil, fmt.Errorf("persist answer: %w", err)
	}

	question, err := s.generateQuestion(ctx, session.Level, session.CurrentQuestion, next.Name)
	if err != nil {
		return nil, err
	}
	if err := s.Store.Update(ctx, userID, sessionID, bson.M{
		"current_question": question,
		"updated_at":       time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("persist next question: %w", err)
	}

	s.Events.Publish(event.AnswerSubmitted, map[string]interface{}{
		"userId":    userID,
		"sessionId": sessionID,
		"answered":  len(history),
	})

	return &AnswerResult{Evaluation: evaluation, NextQuestion: question}, nil
}

// Progress returns the ordered answer history for the session, regardless
// of whether it is active or completed.
func (s *QuizService) Progress(ctx context.Context, userID, sessionID string) ([]models.HistoryEntry, error) {
	session, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.History == nil {
		return []models.HistoryEntry{}, nil
	}
	return session.History, nil
}

func (s *QuizService) load(ctx context.Context, userID, sessionID string) (*models.QuizSession, error) {
	session, err := s.Store.Find(ctx, userID, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoActiveSession
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return session, nil
}

// generateQuestion asks the gateway for one question. An empty result is
// replaced with the fixed fallback so session creation never blocks on a
// quiet model; a gateway error is fatal for the request.
func (s *QuizService) generateQuestion(ctx context.Context, level models.Level, previousTopic, topicHint string) (string, error) {
	text, err := s.LLM.Generate(ctx, questionPrompt(level, previousTopic, topicHint))
	if err != nil {
		return "", fmt.Errorf("generate question: %w", err)
	}
	if text == "" {
		return fallbackQuestion, nil
	}
	return text, nil
}

func (s *QuizService) evaluate(ctx context.Context, question, answer string) (string, error) {
	text, err := s.LLM.Generate(ctx, evaluationPrompt(question, answer))
	if err != nil {
		return "", fmt.Errorf("evaluate answer: %w", err)
	}
	if text == "" {
		return fallbackEvaluation, nil
	}
	return text, nil
}

func topicNames(topics []models.Topic) string {
	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}
