package models

import "time"

// Chat message roles as the Gemini API names them.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ChatMessage is one turn of an advice conversation.
type ChatMessage struct {
	Role string `bson:"role" json:"role"`
	Text string `bson:"text" json:"text"`
}

// ChatSession holds the persisted history of one advice conversation,
// keyed by (UserID, ChatSessionID).
type ChatSession struct {
	UserID        string        `bson:"user_id" json:"userId"`
	ChatSessionID string        `bson:"chat_session_id" json:"chatSessionId"`
	History       []ChatMessage `bson:"history" json:"history"`
	UpdatedAt     time.Time     `bson:"updated_at" json:"updatedAt"`
}
