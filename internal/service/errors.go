package service

import "errors"

// Sentinel errors the handlers translate into HTTP status codes.
var (
	// ErrInvalidLevel rejects a difficulty outside the supported tiers.
	ErrInvalidLevel = errors.New("invalid difficulty level")

	// ErrEmptyAnswer rejects a blank quiz answer before any state changes.
	ErrEmptyAnswer = errors.New("answer must not be empty")

	// ErrEmptyMessage rejects a blank chat message.
	ErrEmptyMessage = errors.New("message must not be empty")

	// ErrNoActiveSession reports that no session exists for the
	// (userId, sessionId) pair. This is an expected outcome, not a
	// storage fault.
	ErrNoActiveSession = errors.New("no active session")

	// ErrQuizCompleted rejects answers to a session that already reached
	// its terminal state. Progress remains readable.
	ErrQuizCompleted = errors.New("quiz already completed")

	// ErrEmptyCatalog reports that a valid level has no topics configured.
	// This is a server-side configuration problem.
	ErrEmptyCatalog = errors.New("no topics configured for level")
)
