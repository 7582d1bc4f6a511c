package session

import "errors"

var (
	// ErrInvalidTransition is returned when a trigger is not permitted in
	// the current state
	ErrInvalidTransition = errors.New("invalid session state transition")

	// ErrInvalidState is returned when a state is not a known session state
	ErrInvalidState = errors.New("invalid session state")
)
