package repository

import (
	"context"
	"errors"

	"github.com/shauryapandit/tutor-api-gdg/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SessionRepository persists quiz sessions in the quiz_sessions collection,
// keyed by the compound (user_id, session_id) filter so one user can hold
// several sessions at once.
type SessionRepository struct {
	Col *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{Col: db.Collection("quiz_sessions")}
}

func key(userID, sessionID string) bson.M {
	return bson.M{"user_id": userID, "session_id": sessionID}
}

func (r *SessionRepository) Create(ctx context.Context, session *models.QuizSession) error {
	_, err := r.Col.InsertOne(ctx, session)
	return err
}

// Find returns the session for the key pair, or ErrNotFound when no such
// session exists.
func (r *SessionRepository) Find(ctx context.Context, userID, sessionID string) (*models.QuizSession, error) {
	var session models.QuizSession
	err := r.Col.FindOne(ctx, key(userID, sessionID)).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Update applies a $set merge of the supplied fields. Fields the caller
// omits keep their stored values. Updating a missing session returns
// ErrNotFound.
func (r *SessionRepository) Update(ctx context.Context, userID, sessionID string, update bson.M) error {
	res, err := r.Col.UpdateOne(ctx, key(userID, sessionID), bson.M{"$set": update})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
