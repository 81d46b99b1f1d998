package models

import "time"

// Session status values.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Level is a difficulty tier accepted by the tutor. A session's level is
// fixed at creation.
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

// Levels lists the supported tiers in ascending order.
var Levels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}

// ValidLevel reports whether s names one of the supported difficulty tiers.
// Matching is case-sensitive.
func ValidLevel(s string) bool {
	switch Level(s) {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// Topic is one row of the finance topic catalog.
type Topic struct {
	Name       string `bson:"name" json:"name"`
	Difficulty string `bson:"difficulty" json:"difficulty"`
}

// HistoryEntry records one answered question. Entries are append-only and
// never reordered.
type HistoryEntry struct {
	Question   string    `bson:"question" json:"question"`
	UserAnswer string    `bson:"user_answer" json:"userAnswer"`
	Evaluation string    `bson:"evaluation" json:"evaluation"`
	AnsweredAt time.Time `bson:"answered_at" json:"answeredAt"`
}

// QuizSession is the durable record of one user's run through a quiz.
// It is keyed by (UserID, SessionID); a user may hold several sessions at
// once.
type QuizSession struct {
	UserID          string         `bson:"user_id" json:"userId"`
	SessionID       string         `bson:"session_id" json:"sessionId"`
	Level           Level          `bson:"level" json:"level"`
	RemainingTopics []Topic        `bson:"remaining_topics" json:"remainingTopics"`
	CurrentQuestion string         `bson:"current_question" json:"currentQuestion"`
	History         []HistoryEntry `bson:"history" json:"history"`
	Status          string         `bson:"status" json:"status"`
	StartedAt       time.Time      `bson:"started_at" json:"startedAt"`
	UpdatedAt       time.Time      `bson:"updated_at" json:"updatedAt"`
}

// Completed reports whether the session has reached its terminal state.
func (s *QuizSession) Completed() bool {
	return s.Status == StatusCompleted
}
