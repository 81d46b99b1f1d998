package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shauryapandit/tutor-api-gdg/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChatRepository persists advice conversation history in the chat_sessions
// collection, keyed by (user_id, chat_session_id).
type ChatRepository struct {
	Col *mongo.Collection
}

func NewChatRepository(db *mongo.Database) *ChatRepository {
	return &ChatRepository{Col: db.Collection("chat_sessions")}
}

// Find returns the stored conversation, or ErrNotFound for a fresh session.
func (r *ChatRepository) Find(ctx context.Context, userID, chatSessionID string) (*models.ChatSession, error) {
	filter := bson.M{"user_id": userID, "chat_session_id": chatSessionID}
	var session models.ChatSession
	err := r.Col.FindOne(ctx, filter).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Save upserts the full history for the key pair.
func (r *ChatRepository) Save(ctx context.Context, userID, chatSessionID string, history []models.ChatMessage) error {
	filter := bson.M{"user_id": userID, "chat_session_id": chatSessionID}
	update := bson.M{"$set": bson.M{
		"history":    history,
		"updated_at": time.Now(),
	}}
	_, err := r.Col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}
