package repository

import "errors"

var (
	// ErrSessionNotFound is returned when a chat session does not exist
	ErrSessionNotFound = errors.New("chat session not found")

	// ErrMessageNotFound is returned when a chat message does not exist
	ErrMessageNotFound = errors.New("chat message not found")

	// ErrResultNotFound is returned when a validation result does not exist
	ErrResultNotFound = errors.New("validation result not found")

	// ErrResultAlreadyAttached is returned when a session already holds a
	// live invoice result
	ErrResultAlreadyAttached = errors.New("session already has a validation result attached")
)
